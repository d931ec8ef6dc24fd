package logger

import (
	"fmt"
	"log/slog"
)

// Logger is a thin chained wrapper over slog that carries the package,
// file, and function context of the call site. Err/Error/ErrMsg log and
// return an error so call sites can do `return log.Err(...)`.
type Logger struct {
	pkg      string
	file     string
	function string
}

func New(pkg string) Logger {
	return Logger{pkg: pkg}
}

func (l Logger) File(file string) Logger {
	l.file = file
	return l
}

func (l Logger) Function(function string) Logger {
	l.function = function
	return l
}

func (l Logger) attrs(args ...any) []any {
	out := make([]any, 0, len(args)+6)
	out = append(out, "pkg", l.pkg)
	if l.file != "" {
		out = append(out, "file", l.file)
	}
	if l.function != "" {
		out = append(out, "function", l.function)
	}
	return append(out, args...)
}

func (l Logger) Info(msg string, args ...any) {
	slog.Info(msg, l.attrs(args...)...)
}

func (l Logger) Warn(msg string, args ...any) {
	slog.Warn(msg, l.attrs(args...)...)
}

func (l Logger) Debug(msg string, args ...any) {
	slog.Debug(msg, l.attrs(args...)...)
}

// Err logs the error and returns it wrapped with the message.
func (l Logger) Err(msg string, err error, args ...any) error {
	slog.Error(msg, l.attrs(append(args, "error", err)...)...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs and returns a new error built from the message alone.
func (l Logger) Error(msg string, args ...any) error {
	slog.Error(msg, l.attrs(args...)...)
	return fmt.Errorf("%s", msg)
}

// ErrMsg is Error without structured context args.
func (l Logger) ErrMsg(msg string) error {
	slog.Error(msg, l.attrs()...)
	return fmt.Errorf("%s", msg)
}

// Er logs the error without returning one.
func (l Logger) Er(msg string, err error, args ...any) {
	slog.Error(msg, l.attrs(append(args, "error", err)...)...)
}

// ErMsg logs an error-level message without returning one.
func (l Logger) ErMsg(msg string) {
	slog.Error(msg, l.attrs()...)
}
