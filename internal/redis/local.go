package redisclient

import (
	"context"
	"sync"
)

type localLocker struct {
	mu sync.Mutex
}

// NewLocalLocker returns an in-process Locker backed by one mutex. Every key
// shares it, so all scheduling operations of the process are serialized.
func NewLocalLocker() Locker {
	return &localLocker{}
}

func (l *localLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return fn(ctx)
}
