package document

import (
	"context"

	"github.com/cutelabs/ragd/internal/domain"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, doc domain.Document, vector []float32) error
	Get(ctx context.Context, id string) (domain.Document, error)
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}

// Embedder vectorizes document content.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
