package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/domain"
)

// Service answers questions: resolve the provider, build the retrieval
// context, compose the prompt, dispatch, return the completion verbatim.
type Service struct {
	router  *Router
	builder ContextBuilder
	logger  *zap.Logger
}

// New creates the chat orchestrator.
func New(router *Router, builder ContextBuilder, logger *zap.Logger) *Service {
	return &Service{router: router, builder: builder, logger: logger}
}

// Answer runs the full question pipeline. Provider resolution happens first
// so a bad provider name fails before any network call. The first choice of
// the completion comes back untouched.
func (s *Service) Answer(ctx context.Context, question, providerName string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", domain.ErrEmptyQuestion
	}

	completer, err := s.router.Resolve(providerName)
	if err != nil {
		return "", err
	}

	contextText, err := s.builder.BuildContext(ctx, question)
	if err != nil {
		return "", fmt.Errorf("build context: %w", err)
	}

	prompt := composePrompt(contextText, question)

	s.logger.Debug("dispatching composed prompt",
		zap.String("provider", providerName),
		zap.Int("prompt_len", len(prompt)),
	)

	answer, err := completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", providerName, err)
	}

	return answer, nil
}

// composePrompt assembles the single user message sent to the provider.
func composePrompt(contextText, question string) string {
	return fmt.Sprintf(
		"Context: %s\n\nQuestion: %s\nAnswer concisely based on the context above.\nAnswer:",
		contextText, question,
	)
}
