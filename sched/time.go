package sched

import (
	"sync"
	"time"
)

// VTime is a point on the simulation timeline, counted in nanoseconds since
// the scheduler's epoch.
type VTime int64

// Add returns the time t+d.
func (t VTime) Add(d time.Duration) VTime {
	return t + VTime(d)
}

// Sub returns the duration t-u.
func (t VTime) Sub(u VTime) time.Duration {
	return time.Duration(t - u)
}

// Duration returns the time elapsed since the epoch.
func (t VTime) Duration() time.Duration {
	return time.Duration(t)
}

func (t VTime) String() string {
	return time.Duration(t).String()
}

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTime
}

// A Clock is the source the drain loop reads to advance simulation time.
type Clock interface {
	Now() VTime
}

// RealClock follows the monotonic wall clock from the moment it is created.
type RealClock struct {
	start time.Time
}

// NewRealClock creates a RealClock whose epoch is now.
func NewRealClock() *RealClock {
	return &RealClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created.
func (c *RealClock) Now() VTime {
	return VTime(time.Since(c.start))
}

// ManualClock only moves when told to. It makes drain passes reproducible.
type ManualClock struct {
	lock sync.Mutex
	now  VTime
}

// NewManualClock creates a ManualClock standing at the epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current reading of the clock.
func (c *ManualClock) Now() VTime {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.now
}

// Advance moves the clock forward by d and returns the new reading.
func (c *ManualClock) Advance(d time.Duration) VTime {
	c.lock.Lock()
	defer c.lock.Unlock()

	if d > 0 {
		c.now = c.now.Add(d)
	}

	return c.now
}

// Set moves the clock to t. Moving backwards is ignored.
func (c *ManualClock) Set(t VTime) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if t > c.now {
		c.now = t
	}
}
