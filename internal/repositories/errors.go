package repositories

import "errors"

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrProviderExists      = errors.New("provider already exists for application")
	ErrLinkNotFound        = errors.New("completion link not found")
	ErrLinkAlreadyUsed     = errors.New("completion link already used")

	// ErrQuotaExceeded is returned by DraftKV backends when they run out of
	// space. Callers surface it as a warning; it never crashes the form.
	ErrQuotaExceeded = errors.New("draft storage quota exceeded")
)
