// Package inflight tracks which candidates have an action awaiting the HR
// service, so a second action on the same candidate is refused rather than
// reordered or coalesced with the first.
package inflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/metrics"
)

// Guard records keys with an outstanding action.
type Guard interface {
	// TryAcquire atomically marks key busy. It returns ErrHeld if key was
	// already busy and ErrFull if no more keys fit.
	TryAcquire(ctx context.Context, key string) error

	// Release clears key. Releasing a key that is not held is a no-op.
	Release(ctx context.Context, key string)

	Size() int64
}

// inMemoryGuard implements Guard with a mutex-protected set.
// For bounded mode (maxSize > 0): TryAcquire fails once maxSize keys are held.
// For unbounded mode (maxSize <= 0): no size limit.
type inMemoryGuard struct {
	mu      sync.Mutex
	held    map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryGuard creates a new in-memory guard with configuration options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		maxSize: 10_000,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.held = make(map[string]struct{})
	return g
}

func (g *inMemoryGuard) TryAcquire(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return ErrHeld
	}
	if g.maxSize > 0 && len(g.held) >= g.maxSize {
		return fmt.Errorf("%w: %d actions in progress", ErrFull, len(g.held))
	}
	g.held[key] = struct{}{}
	metrics.UpdateInflightActions(int(g.size.Add(1)))
	return nil
}

func (g *inMemoryGuard) Release(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		delete(g.held, key)
		metrics.UpdateInflightActions(int(g.size.Add(-1)))
	}
}

// Size returns the number of keys currently held.
func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}

// Acquire takes key on g and returns the function that releases it. A busy
// key or a full guard yields an ErrBusy kind.
func Acquire(ctx context.Context, g Guard, key string) (func(), error) {
	if err := g.TryAcquire(ctx, key); err != nil {
		if errors.Is(err, ErrHeld) {
			err = fmt.Errorf("candidate %s has an action in progress", key)
		}
		return nil, model.WrapKind("acquire", model.ErrBusy, err)
	}
	return func() { g.Release(ctx, key) }, nil
}
