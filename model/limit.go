package model

import (
	"context"
	"fmt"
	"sync"
)

// CallLimiter enforces a maximum number of allowed model calls.
type CallLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewCallLimiter creates a new limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewCallLimiter(max int) *CallLimiter {
	return &CallLimiter{max: max}
}

// Increment increases the call counter and returns an error if the limit is exceeded.
func (l *CallLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("exceeded max model calls: %d", l.max)
	}

	return nil
}

// Count returns the current number of calls made.
func (l *CallLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many calls are left before hitting the limit.
func (l *CallLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1 // unlimited
	}

	return l.max - l.count
}

// LimitedModel counts calls against a CallLimiter before delegating.
type LimitedModel struct {
	Model
	limiter *CallLimiter
}

// Limit wraps m so that at most max calls reach the provider.
func Limit(m Model, max int) *LimitedModel {
	return &LimitedModel{Model: m, limiter: NewCallLimiter(max)}
}

// Limiter exposes the underlying counter.
func (l *LimitedModel) Limiter() *CallLimiter { return l.limiter }

// Generate implements Model.
func (l *LimitedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	if err := l.limiter.Increment(); err != nil {
		respCh := make(chan Response)
		errCh := make(chan error, 1)
		errCh <- err
		close(respCh)
		close(errCh)
		return respCh, errCh
	}
	return l.Model.Generate(ctx, req)
}
