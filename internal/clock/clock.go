// Package clock abstracts wall-clock reads so time-dependent logic can be
// tested against a controlled clock. The clock is wall-clock, not monotonic:
// across process suspension or machine sleep, Now() may jump forward by an
// arbitrary amount, and callers must tolerate that.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// Mock is a manually advanced clock for tests.
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMock creates a mock clock frozen at the given instant.
func NewMock(now time.Time) *Mock {
	return &Mock{now: now}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the mock clock forward (or backward, with a negative d).
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set pins the mock clock to an exact instant.
func (m *Mock) Set(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
