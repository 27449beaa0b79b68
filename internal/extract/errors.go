package extract

import "github.com/go-faster/errors"

var (
	// ErrInsufficientData marks a draft that failed its strategy's
	// acceptance check. It never leaves the orchestrator.
	ErrInsufficientData = errors.New("insufficient product data")

	// ErrExtractionExhausted is returned when every strategy came up empty.
	ErrExtractionExhausted = errors.New("could not extract product data from the page")

	// ErrCaptureTimeout is logged when the capture wait elapses; the cascade
	// continues with whatever was captured.
	ErrCaptureTimeout = errors.New("timed out waiting for product API responses")
)
