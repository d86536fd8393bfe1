package speech

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Mutable wraps a Speaker with a runtime mute switch.
type Mutable struct {
	next  Speaker
	muted atomic.Bool
}

// NewMutable wraps next; it starts unmuted.
func NewMutable(next Speaker) *Mutable {
	return &Mutable{next: next}
}

// SetMuted turns speech off or back on.
func (m *Mutable) SetMuted(muted bool) {
	m.muted.Store(muted)
}

// Muted reports whether speech is currently off.
func (m *Mutable) Muted() bool {
	return m.muted.Load()
}

// Speak forwards to the wrapped speaker unless muted, in which case it
// returns ErrSuppressed.
func (m *Mutable) Speak(ctx context.Context, text string) error {
	if m.muted.Load() {
		return ErrSuppressed
	}
	return m.next.Speak(ctx, text)
}

// Cooldown suppresses repeating the same text within a time window.
// Without it every frame that still points at a word speaks it again.
type Cooldown struct {
	next   Speaker
	window time.Duration
	now    func() time.Time
	mu     sync.Mutex
	last   map[string]time.Time
}

// NewCooldown wraps next. A non-positive window disables suppression.
func NewCooldown(next Speaker, window time.Duration) *Cooldown {
	return &Cooldown{
		next:   next,
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

// Speak forwards text unless the same text was spoken within the window;
// a repeat returns ErrSuppressed.
func (c *Cooldown) Speak(ctx context.Context, text string) error {
	if c.window <= 0 {
		return c.next.Speak(ctx, text)
	}

	c.mu.Lock()
	now := c.now()
	if at, ok := c.last[text]; ok && now.Sub(at) < c.window {
		c.mu.Unlock()
		return ErrSuppressed
	}
	c.last[text] = now
	// Forget entries that can no longer suppress anything
	for k, at := range c.last {
		if now.Sub(at) >= c.window {
			delete(c.last, k)
		}
	}
	c.mu.Unlock()

	return c.next.Speak(ctx, text)
}
