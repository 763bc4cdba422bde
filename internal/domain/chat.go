package domain

import "context"

// Completer is the contract for an LLM completion backend. The prompt is sent
// as a single user message; the first completion's text is returned verbatim.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Segment is one titled chunk produced by paragraph segmentation.
// The id field doubles as a short human-readable title.
type Segment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}
