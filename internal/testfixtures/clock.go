package testfixtures

import (
	"sync"
	"time"
)

// referenceTime sits the evening before the seeded bookings, so every seed
// booking is upcoming.
var referenceTime = time.Date(2025, time.September, 30, 18, 0, 0, 0, time.UTC)

// ReferenceTime returns the baseline instant used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SeedDay returns midnight UTC of the day the built-in seed bookings occupy.
func SeedDay() time.Time {
	return time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
}

// Clock provides a controllable time source for tests.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is
// zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the current instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for injection; a nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
