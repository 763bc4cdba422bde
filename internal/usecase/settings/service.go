package settings

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cutelabs/ragd/internal/domain"
)

// Fanout bounds. Zero is a valid stored value but Update treats a zero
// argument as a read, so zero can only come from configuration.
const (
	MinFanout = 0
	MaxFanout = 5
)

// Service holds the retrieval fanout: how many nearest documents feed the
// chat context. The value lives in memory behind a lock and is persisted
// through the store so it survives restarts.
type Service struct {
	store  Store
	logger *zap.Logger

	mu     sync.RWMutex
	fanout int
}

// New creates the settings service with the configured default fanout.
// Call Load before serving to pick up a previously persisted value.
func New(store Store, defaultFanout int, logger *zap.Logger) *Service {
	if defaultFanout < MinFanout {
		defaultFanout = MinFanout
	}
	if defaultFanout > MaxFanout {
		defaultFanout = MaxFanout
	}
	return &Service{store: store, fanout: defaultFanout, logger: logger}
}

// Load reads the persisted fanout. A missing key keeps the configured
// default; an out-of-range persisted value is clamped.
func (s *Service) Load(ctx context.Context) error {
	n, found, err := s.store.LoadFanout(ctx)
	if err != nil {
		return fmt.Errorf("load fanout: %w", err)
	}
	if !found {
		return nil
	}

	if n < MinFanout {
		n = MinFanout
	}
	if n > MaxFanout {
		n = MaxFanout
	}

	s.mu.Lock()
	s.fanout = n
	s.mu.Unlock()

	s.logger.Info("loaded persisted fanout", zap.Int("fanout", n))
	return nil
}

// Fanout returns the current fanout value.
func (s *Service) Fanout() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fanout
}

// Update sets the fanout and returns the value in effect afterwards.
// n=0 is a read: the current value comes back unchanged. 1..MaxFanout is
// persisted first, then applied in memory. Anything else is rejected.
func (s *Service) Update(ctx context.Context, n int) (int, error) {
	if n < MinFanout || n > MaxFanout {
		return 0, fmt.Errorf("fanout %d not in [%d, %d]: %w", n, MinFanout, MaxFanout, domain.ErrFanoutOutOfRange)
	}

	if n == 0 {
		return s.Fanout(), nil
	}

	if err := s.store.SaveFanout(ctx, n); err != nil {
		return 0, fmt.Errorf("persist fanout: %w", err)
	}

	s.mu.Lock()
	s.fanout = n
	s.mu.Unlock()

	s.logger.Info("fanout updated", zap.Int("fanout", n))
	return n, nil
}
