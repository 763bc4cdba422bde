package settings

import "context"

// Store persists the fanout value across restarts.
type Store interface {
	LoadFanout(ctx context.Context) (n int, found bool, err error)
	SaveFanout(ctx context.Context, n int) error
}
