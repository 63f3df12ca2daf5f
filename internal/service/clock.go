package service

import "time"

// Clock provides time operations. This interface enables deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock advances by Step on every call to Now, starting at FixedTime.
// A zero Step always returns FixedTime.
type TestClock struct {
	FixedTime time.Time
	Step      time.Duration
	calls     int
}

// Now returns the next tick.
func (t *TestClock) Now() time.Time {
	now := t.FixedTime.Add(time.Duration(t.calls) * t.Step)
	t.calls++
	return now
}
