package core

import "time"

// Clock abstracts wall-clock time so cache expiry and reminder scheduling
// can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewRealClock() Clock { return realClock{} }

// FixedClock is a settable Clock for tests.
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time { return c.Time }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.Time = c.Time.Add(d) }
