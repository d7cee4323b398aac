package main

import "time"

// Clock abstracts wall-clock reads so tests can inject deterministic time
// instead of racing against time.Now. Every "now" read in the statistics
// engine goes through one, per the injected-clock requirement.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var defaultClock Clock = systemClock{}

// fakeClock is a settable Clock for tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Set(t time.Time) { c.t = t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
