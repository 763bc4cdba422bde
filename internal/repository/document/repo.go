package document

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cutelabs/ragd/internal/domain"
)

// KeyPrefix namespaces document hashes; the FT index watches this prefix.
const KeyPrefix = domain.KeyPrefix + "docs:"

// IndexName is the FT index over document hashes.
const IndexName = KeyPrefix + "idx"

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the document storage contract on Redis hashes.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Upsert writes content and embedding under the document id, replacing any
// previous value. The FT index picks the hash up by key prefix.
func (r *Repo) Upsert(ctx context.Context, doc domain.Document, vector []float32) error {
	key := docKey(doc.ID)
	if err := r.store.HSet(ctx, key, buildHashFields(doc.Content, vector)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a document by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Document, error) {
	key := docKey(id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.Document{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	// HGETALL on a missing key returns an empty map, not an error.
	if len(fields) == 0 {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	return domain.Document{ID: id, Content: fields[FieldContent]}, nil
}

// Delete removes a document. Existence is checked first so that deleting an
// absent id reports ErrDocumentNotFound instead of succeeding silently.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := docKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// ListIDs enumerates all document ids, sorted for stable output.
func (r *Repo) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		// SCAN with the docs prefix also matches the FT index name.
		if key == IndexName {
			continue
		}
		ids = append(ids, strings.TrimPrefix(key, KeyPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}

func docKey(id string) string {
	return KeyPrefix + id
}
