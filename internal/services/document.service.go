package services

import (
	"context"
	"errors"
	"server/internal/logger"
	. "server/internal/models"
	"time"
)

var ErrGenerationTimeout = errors.New("document generation timed out")

// DocumentGenerator renders the application packet (PDF) for a submitted
// application. The real renderer lives outside this subsystem; only its
// trigger and timeout contract matter here.
type DocumentGenerator interface {
	Generate(ctx context.Context, application *Application) error
}

// GeneratorFunc adapts a function to DocumentGenerator.
type GeneratorFunc func(ctx context.Context, application *Application) error

func (f GeneratorFunc) Generate(ctx context.Context, application *Application) error {
	return f(ctx, application)
}

// NewLoggingGenerator is the stand-in wired until the external packet
// renderer is configured; it records the trigger and succeeds.
func NewLoggingGenerator() DocumentGenerator {
	log := logger.New("DocumentGenerator")
	return GeneratorFunc(func(ctx context.Context, application *Application) error {
		log.Info("application packet generation triggered", "applicationID", application.ID)
		return nil
	})
}

// DocumentService wraps a generator with the submission-flow timeout. On
// timeout the submission is not retried automatically; the caller surfaces
// the error and the user resubmits.
type DocumentService struct {
	generator DocumentGenerator
	timeout   time.Duration
	log       logger.Logger
}

func NewDocumentService(generator DocumentGenerator, timeout time.Duration) *DocumentService {
	return &DocumentService{
		generator: generator,
		timeout:   timeout,
		log:       logger.New("DocumentService"),
	}
}

func (s *DocumentService) GeneratePacket(ctx context.Context, application *Application) error {
	log := s.log.Function("GeneratePacket")

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.generator.Generate(genCtx, application)
	}()

	select {
	case err := <-done:
		if err != nil {
			return log.Err("failed to generate application packet", err, "applicationID", application.ID)
		}
		return nil
	case <-genCtx.Done():
		log.Er("application packet generation timed out", genCtx.Err(),
			"applicationID", application.ID, "timeout", s.timeout)
		return ErrGenerationTimeout
	}
}
