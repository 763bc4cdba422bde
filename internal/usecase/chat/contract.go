package chat

import "context"

// ContextBuilder assembles the retrieval context for a question.
type ContextBuilder interface {
	BuildContext(ctx context.Context, question string) (string, error)
}
