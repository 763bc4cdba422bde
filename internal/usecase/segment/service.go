package segment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/domain"
	"github.com/cutelabs/ragd/internal/metrics"
)

// maxAttempts bounds the retry loop. No partially valid result is ever
// returned; the loop either reaches a structurally valid reply within the
// budget or fails whole.
const maxAttempts = 3

const basePrompt = `Split the following paragraph into topic-based segments of roughly 2-5 sentences each.
Give every segment a short title.
Respond with ONLY a JSON array of objects of the form {"id": "<title>", "content": "<segment text>"}.
Do not wrap the array in prose, markdown, or code fences.

Paragraph:
%s`

const correctionNotice = `

Your last response was not a valid JSON array of {"id", "content"} objects, or was wrapped in extra text. Resend exactly as specified: only the JSON array, nothing else.`

// state of the extraction loop. Kept explicit so the retry contract is
// testable against a scripted completer without touching the network.
type state int

const (
	stateCompose state = iota
	stateAwait
	stateValidate
	stateSuccess
	stateExhausted
)

// Service drives a free-text completion provider to a contract-conforming
// JSON reply under a hard attempt budget. The provider is fixed at
// construction, not caller-selectable.
type Service struct {
	completer domain.Completer
	logger    *zap.Logger
}

// New creates the paragraph segmentation service.
func New(completer domain.Completer, logger *zap.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Divide asks the provider to segment a paragraph and validates the JSON
// shape of each reply. Malformed replies and transport failures both consume
// an attempt; the correction notice is appended from the second attempt on.
// After maxAttempts without a valid reply the whole call fails with
// ErrExtractionFailed and the last raw reply goes to the log.
func (s *Service) Divide(ctx context.Context, text string) ([]domain.Segment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}

	var (
		attempt  int
		raw      string
		lastRaw  string
		lastErr  error
		segments []domain.Segment
	)

	for st := stateCompose; ; {
		switch st {
		case stateCompose:
			st = stateAwait

		case stateAwait:
			attempt++

			var err error
			raw, err = s.completer.Complete(ctx, s.prompt(text, attempt))
			if err != nil {
				metrics.ExtractionAttemptsTotal.WithLabelValues("upstream_error").Inc()
				s.logger.Warn("segmentation attempt failed upstream",
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				lastErr = err
				if attempt >= maxAttempts {
					st = stateExhausted
					break
				}
				st = stateCompose
				break
			}
			st = stateValidate

		case stateValidate:
			lastRaw = raw

			var err error
			segments, err = validate(raw)
			if err == nil {
				metrics.ExtractionAttemptsTotal.WithLabelValues("valid").Inc()
				st = stateSuccess
				break
			}

			metrics.ExtractionAttemptsTotal.WithLabelValues("invalid").Inc()
			s.logger.Warn("segmentation reply failed validation",
				zap.Int("attempt", attempt),
				zap.String("raw", raw),
				zap.Error(err),
			)
			lastErr = err
			if attempt >= maxAttempts {
				st = stateExhausted
				break
			}
			st = stateCompose

		case stateSuccess:
			s.logger.Info("paragraph segmented",
				zap.Int("attempts", attempt),
				zap.Int("segments", len(segments)),
			)
			return segments, nil

		case stateExhausted:
			s.logger.Error("segmentation attempts exhausted",
				zap.Int("attempts", attempt),
				zap.String("last_raw", lastRaw),
				zap.Error(lastErr),
			)
			return nil, fmt.Errorf(
				"no valid segmentation after %d attempts: %v: %w",
				attempt, lastErr, domain.ErrExtractionFailed,
			)
		}
	}
}

// prompt composes the message for the given attempt. The correction notice
// is only present on retries.
func (s *Service) prompt(text string, attempt int) string {
	p := fmt.Sprintf(basePrompt, text)
	if attempt > 1 {
		p += correctionNotice
	}
	return p
}
