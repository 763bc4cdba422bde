package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnsupportedProvider signals an empty or unregistered LLM provider name.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrFanoutOutOfRange signals a retrieval fanout outside [0,5].
	ErrFanoutOutOfRange = errors.New("fanout out of range")
	// ErrEmptyQuestion signals a chat request without a question.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrEmptyText signals a segmentation request without text.
	ErrEmptyText = errors.New("text is required")
	// ErrEmptyDocument signals an upsert without id or content.
	ErrEmptyDocument = errors.New("document id and content are required")
	// ErrUpstreamFailure signals a failure from an embedding or completion provider.
	ErrUpstreamFailure = errors.New("upstream provider failure")
	// ErrExtractionFailed signals that the segmentation loop exhausted its attempts.
	ErrExtractionFailed = errors.New("structured extraction failed")
)
