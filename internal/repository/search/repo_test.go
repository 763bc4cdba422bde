package search

import (
	"context"
	"errors"
	"testing"

	"github.com/cutelabs/ragd/internal/db"
)

type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func TestNearest_RankedResults(t *testing.T) {
	ms := &mockStore{searchKNNFn: func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "ragd:docs:idx" {
			t.Errorf("unexpected index %s", q.IndexName)
		}
		if q.K != 2 {
			t.Errorf("expected k=2, got %d", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{Key: "ragd:docs:a", Score: 0.95, Fields: map[string]string{"__content": "first"}},
				{Key: "ragd:docs:b", Score: 0.72, Fields: map[string]string{"__content": "second"}},
			},
		}, nil
	}}

	repo := New(ms)
	docs, err := repo.Nearest(context.Background(), []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "a" || docs[0].Content != "first" || docs[0].Score != 0.95 {
		t.Errorf("unexpected first doc: %+v", docs[0])
	}
	if docs[1].ID != "b" {
		t.Errorf("unexpected second doc: %+v", docs[1])
	}
}

func TestNearest_ZeroK_SkipsStore(t *testing.T) {
	ms := &mockStore{searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		t.Error("store must not be queried for k=0")
		return nil, nil
	}}

	repo := New(ms)
	docs, err := repo.Nearest(context.Background(), []float32{0.1}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty result, got %v", docs)
	}
}

func TestNearest_EmptyStore(t *testing.T) {
	repo := New(&mockStore{})
	docs, err := repo.Nearest(context.Background(), []float32{0.1}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty result, got %v", docs)
	}
}

func TestNearest_StoreError(t *testing.T) {
	wantErr := errors.New("timeout")
	ms := &mockStore{searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, wantErr
	}}

	repo := New(ms)
	_, err := repo.Nearest(context.Background(), []float32{0.1}, 1)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
