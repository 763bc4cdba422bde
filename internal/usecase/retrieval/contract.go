package retrieval

import (
	"context"

	"github.com/cutelabs/ragd/internal/domain"
)

// Embedder vectorizes the inbound question.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher finds the k nearest stored documents to a query vector.
type Searcher interface {
	Nearest(ctx context.Context, vector []float32, k int) ([]domain.ScoredDocument, error)
}

// FanoutProvider reports how many documents retrieval should pull.
type FanoutProvider interface {
	Fanout() int
}
