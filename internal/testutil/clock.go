// Package testutil provides shared helpers for deterministic tests.
package testutil

import (
	"sync"
	"time"
)

// FixedClock returns a constant wall time from Now().
//
// Audit columns stamped through a FixedClock are identical across test
// runs, which keeps merge assertions and golden files stable.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixedClock creates a clock pinned to t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

// Now returns the pinned time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the pinned time forward by d. Used to simulate a later
// run in multi-run tests.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
