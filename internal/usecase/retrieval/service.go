package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/domain"
)

// Service builds the retrieval context for a question: embed the question,
// pull the fanout nearest documents, join their contents in rank order.
type Service struct {
	embed  Embedder
	search Searcher
	fanout FanoutProvider
	logger *zap.Logger
}

// New creates the context builder.
func New(embed Embedder, search Searcher, fanout FanoutProvider, logger *zap.Logger) *Service {
	return &Service{embed: embed, search: search, fanout: fanout, logger: logger}
}

// BuildContext returns the newline-joined contents of the nearest documents,
// best match first. No truncation and no dedup; the context is exactly what
// the store returned. Fanout zero skips retrieval entirely and yields "".
func (s *Service) BuildContext(ctx context.Context, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.ErrEmptyQuestion
	}

	k := s.fanout.Fanout()
	if k <= 0 {
		return "", nil
	}

	result, err := s.embed.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("vectorize question: %w", err)
	}

	docs, err := s.search.Nearest(ctx, result.Embedding, k)
	if err != nil {
		return "", fmt.Errorf("retrieve nearest documents: %w", err)
	}

	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, d.Content)
	}

	s.logger.Debug("context built",
		zap.Int("fanout", k),
		zap.Int("retrieved", len(docs)),
	)

	return strings.Join(contents, "\n"), nil
}
