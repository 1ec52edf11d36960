package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key has no value. Callers must not
// confuse it with an unreachable store, which surfaces as a different error.
var ErrNotFound = errors.New("kv: key not found")

// ErrLeaseTimeout is returned by Acquire when the lease could not be taken
// before the context deadline.
var ErrLeaseTimeout = errors.New("kv: lease acquisition timed out")

// Store is the volatile key-value substrate. Values are opaque bytes, every
// call is bounded by its context. There is no compare-and-swap; callers that
// need read-modify-write safety take a Lease on the key first.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Acquire takes a time-bounded exclusive claim on key, retrying until
	// the context expires.
	Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error)
}

// Lease is an exclusive claim on a key. It expires on its own after the ttl
// passed to Acquire; Release drops it early.
type Lease struct {
	Key string

	token   string
	release func(ctx context.Context) error
}

// Release drops the lease. Releasing an expired or already-released lease is
// a no-op.
func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.release == nil {
		return nil
	}
	return l.release(ctx)
}
