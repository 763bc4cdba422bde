package document

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/domain"
)

// Service handles document CRUD with automatic vectorization on write.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
}

// New creates a document service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, logger: logger}
}

// Upsert embeds the content and stores it under the given id. An existing
// document under the same id is replaced whole, content and vector both.
func (s *Service) Upsert(ctx context.Context, doc domain.Document) error {
	if strings.TrimSpace(doc.ID) == "" || strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("document id and content are required: %w", domain.ErrEmptyDocument)
	}

	result, err := s.embed.Embed(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("vectorize document: %w", err)
	}

	if err := s.repo.Upsert(ctx, doc, result.Embedding); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	s.logger.Info("document upserted",
		zap.String("id", doc.ID),
		zap.Int("content_len", len(doc.Content)),
	)
	return nil
}

// Get retrieves a document by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes a document by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.logger.Info("document deleted", zap.String("id", id))
	return nil
}

// ListIDs returns all stored document ids.
func (s *Service) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list document ids: %w", err)
	}
	return ids, nil
}
