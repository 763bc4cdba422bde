package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/cutelabs/ragd/internal/db"
)

type mockKV struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func TestLoadFanout_Present(t *testing.T) {
	s := New(&mockKV{getFn: func(_ context.Context, key string) ([]byte, error) {
		if key != "ragd:settings:fanout" {
			t.Errorf("unexpected key %s", key)
		}
		return []byte("4"), nil
	}})

	val, ok, err := s.LoadFanout(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || val != 4 {
		t.Errorf("expected (4, true), got (%d, %v)", val, ok)
	}
}

func TestLoadFanout_Missing(t *testing.T) {
	s := New(&mockKV{})

	_, ok, err := s.LoadFanout(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a key never written")
	}
}

func TestLoadFanout_Garbage(t *testing.T) {
	s := New(&mockKV{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not-a-number"), nil
	}})

	if _, _, err := s.LoadFanout(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveFanout(t *testing.T) {
	var gotValue string
	s := New(&mockKV{setFn: func(_ context.Context, _ string, value []byte) error {
		gotValue = string(value)
		return nil
	}})

	if err := s.SaveFanout(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotValue != "5" {
		t.Errorf("expected \"5\", got %q", gotValue)
	}
}

func TestSaveFanout_StoreError(t *testing.T) {
	wantErr := errors.New("write refused")
	s := New(&mockKV{setFn: func(_ context.Context, _ string, _ []byte) error {
		return wantErr
	}})

	if err := s.SaveFanout(context.Background(), 2); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
