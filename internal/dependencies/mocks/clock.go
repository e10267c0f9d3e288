package mocks

import (
	"time"

	"github.com/kpane/banktally/internal/dependencies/clock"
)

// MockClock is a Clock pinned to a settable instant
type MockClock struct {
	current time.Time
}

var _ clock.Clock = (*MockClock)(nil)

// NewMockClock returns a clock pinned to t
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the pinned instant
func (c *MockClock) Now() time.Time {
	return c.current
}

// Advance moves the pinned instant forward by d
func (c *MockClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// Set pins the clock to t
func (c *MockClock) Set(t time.Time) {
	c.current = t
}
