package queue

import (
	"context"
	"sync"
	"time"
)

// Lease guards a unit of periodic work so that at most one holder runs it
// at a time. A lease expires on its own after the ttl passed to Acquire.
type Lease interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)

	Release(ctx context.Context) error
}

// LocalLease is a Lease scoped to the current process.
type LocalLease struct {
	mu        sync.Mutex
	held      bool
	expiresAt time.Time
	now       func() time.Time
}

func NewLocalLease() *LocalLease {
	return &LocalLease{now: time.Now}
}

func (l *LocalLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.held && now.Before(l.expiresAt) {
		return false, nil
	}

	l.held = true
	l.expiresAt = now.Add(ttl)
	return true, nil
}

func (l *LocalLease) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.held = false
	return nil
}
