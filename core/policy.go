package core

import (
	"context"
	"sync"
	"time"
)

// Default recovery settings.
const (
	DefaultMaxRetries  = 3
	DefaultBaseBackoff = 1500 * time.Millisecond
	DefaultMaxBackoff  = 6000 * time.Millisecond
)

// BackoffPolicy decides how long to wait before each retry on the same model.
type BackoffPolicy struct {
	MaxRetries int           // retries after the first attempt
	Base       time.Duration // wait before the first retry
	Max        time.Duration // cap on any single wait
}

// DefaultBackoff returns the standard 3 retries at 1.5s doubling to 6s.
func DefaultBackoff() BackoffPolicy {
	return BackoffPolicy{MaxRetries: DefaultMaxRetries, Base: DefaultBaseBackoff, Max: DefaultMaxBackoff}
}

// Delay returns the wait before retry n (0-based): Base*2^n capped at Max.
func (p BackoffPolicy) Delay(n int) time.Duration {
	if n < 0 {
		n = 0
	}
	d := p.Base
	for i := 0; i < n; i++ {
		if p.Max > 0 && d >= p.Max {
			break
		}
		d *= 2
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// Allows reports whether another retry may follow the given number of
// retries already made.
func (p BackoffPolicy) Allows(retries int) bool {
	return retries < p.MaxRetries
}

// ModelCursor walks an ordered model preference list. It only moves forward;
// a new cursor is needed to start from the top again.
type ModelCursor struct {
	mu     sync.Mutex
	models []string
	idx    int
}

// NewModelCursor returns a cursor at the first (most preferred) model.
func NewModelCursor(models []string) *ModelCursor {
	return &ModelCursor{models: append([]string(nil), models...)}
}

// Current returns the model in use, or "" when the list is empty.
func (c *ModelCursor) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.models) == 0 {
		return ""
	}
	return c.models[c.idx]
}

// Advance moves to the next model. It returns false, leaving the cursor
// where it is, when no lower-preference model remains.
func (c *ModelCursor) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx+1 >= len(c.models) {
		return false
	}
	c.idx++
	return true
}

// Models returns the preference list.
func (c *ModelCursor) Models() []string {
	return append([]string(nil), c.models...)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the real-clock Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
