package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/cutelabs/ragd/internal/db"
	"github.com/cutelabs/ragd/internal/domain"
	"github.com/cutelabs/ragd/internal/repository/document"
)

// store is the consumer interface for similarity search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo answers top-K similarity queries against the document index.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Nearest returns up to k documents ordered by decreasing similarity to the
// given embedding. k <= 0 returns an empty result without touching the store.
func (r *Repo) Nearest(ctx context.Context, vector []float32, k int) ([]domain.ScoredDocument, error) {
	if k <= 0 {
		return nil, nil
	}

	q := &db.KNNQuery{
		IndexName:    document.IndexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{document.FieldContent, "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	return parseResults(sr), nil
}

// parseResults converts db.SearchResult into ranked scored documents.
func parseResults(sr *db.SearchResult) []domain.ScoredDocument {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	docs := make([]domain.ScoredDocument, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		docs = append(docs, domain.ScoredDocument{
			Document: domain.Document{
				ID:      strings.TrimPrefix(entry.Key, document.KeyPrefix),
				Content: entry.Fields[document.FieldContent],
			},
			Score: entry.Score,
		})
	}
	return docs
}
