package ragd

import (
	"errors"
	"fmt"
)

// Sentinel errors derived from the API error codes.
// Use errors.Is() to check.
var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrFanoutOutOfRange    = errors.New("fanout out of range")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamFailure     = errors.New("upstream provider failure")
	ErrExtractionFailed    = errors.New("paragraph extraction failed")
)

// APIError carries the raw error payload returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ragd: %s (%d %s)", e.Message, e.Status, e.Code)
}

// Unwrap maps the API error code to a sentinel.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "document_not_found":
		return ErrDocumentNotFound
	case "unsupported_provider":
		return ErrUnsupportedProvider
	case "fanout_out_of_range":
		return ErrFanoutOutOfRange
	case "validation_failed", "bad_request":
		return ErrValidation
	case "upstream_failure":
		return ErrUpstreamFailure
	case "extraction_failed":
		return ErrExtractionFailed
	}
	return nil
}
