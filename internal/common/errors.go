package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure categories callers branch on.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrRasterization       = errors.New("rasterization failed")
	ErrNoProviderAvailable = errors.New("no provider available")
	ErrWrite               = errors.New("write failed")
	ErrInvalidInput        = errors.New("invalid input")
)

// ProviderError marks a per-provider failure. Page is the 1-indexed page that
// triggered it, or 0 when the failure is not page-specific. Provider failures
// are isolated: one provider failing never aborts the run.
type ProviderError struct {
	Provider string
	Page     int
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("provider %s failed on page %d: %v", e.Provider, e.Page, e.Cause)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
