package kv

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const memoryRetryInterval = 5 * time.Millisecond

type memoryLease struct {
	token    string
	deadline time.Time
}

// Memory is an in-process Store used in tests and local development. It
// honors the same lease semantics as the Redis implementation.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	leases map[string]memoryLease
}

func NewMemory() *Memory {
	return &Memory{
		data:   make(map[string][]byte),
		leases: make(map[string]memoryLease),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *Memory) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	token := uuid.NewString()

	for {
		if m.tryAcquire(key, token, ttl) {
			return &Lease{
				Key:   key,
				token: token,
				release: func(ctx context.Context) error {
					m.mu.Lock()
					defer m.mu.Unlock()
					if held, ok := m.leases[key]; ok && held.token == token {
						delete(m.leases, key)
					}
					return nil
				},
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLeaseTimeout
		case <-time.After(memoryRetryInterval):
		}
	}
}

func (m *Memory) tryAcquire(key, token string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if held, ok := m.leases[key]; ok && time.Now().Before(held.deadline) {
		return false
	}
	m.leases[key] = memoryLease{token: token, deadline: time.Now().Add(ttl)}
	return true
}
