package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cutelabs/ragd/internal/db"
	"github.com/cutelabs/ragd/internal/domain"
)

// fanoutKey stores the retrieval fanout as a decimal string.
const fanoutKey = domain.KeyPrefix + "settings:fanout"

// store is the consumer interface for settings persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store persists runtime settings in the key-value store so they survive restarts.
type Store struct {
	store store
}

// New creates a settings store.
func New(s store) *Store {
	return &Store{store: s}
}

// LoadFanout reads the persisted fanout. Returns (0, false, nil) when the key
// has never been written.
func (s *Store) LoadFanout(ctx context.Context) (int, bool, error) {
	data, err := s.store.Get(ctx, fanoutKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("settings GET %s: %w", fanoutKey, err)
	}

	val, err := strconv.Atoi(string(data))
	if err != nil {
		return 0, false, fmt.Errorf("settings GET %s parse: %w", fanoutKey, err)
	}
	return val, true, nil
}

// SaveFanout persists the fanout value.
func (s *Store) SaveFanout(ctx context.Context, n int) error {
	if err := s.store.Set(ctx, fanoutKey, []byte(strconv.Itoa(n))); err != nil {
		return fmt.Errorf("settings SET %s: %w", fanoutKey, err)
	}
	return nil
}
