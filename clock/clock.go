// Package clock tracks elapsed animation time from host frame timestamps.
package clock

import "errors"

// ErrRegression is reported by Advance when a sample does not move the clock
// forward. It is never fatal: the sample is ignored.
var ErrRegression = errors.New("clock: timestamp did not advance")

// Clock accumulates seconds between strictly increasing millisecond samples.
type Clock struct {
	lastUpdate float64
	elapsed    float64
	primed     bool
}

// New returns a clock whose first sample only establishes the baseline.
func New() *Clock {
	return &Clock{}
}

// Start returns a clock with its baseline already set to now.
func Start(now float64) *Clock {
	return &Clock{lastUpdate: now, primed: true}
}

// Tick advances the clock to now and returns the delta in seconds, or 0 if
// now is not past the previous sample.
func (c *Clock) Tick(now float64) float64 {
	delta, _ := c.Advance(now)
	return delta
}

// Advance is Tick with the regression case reported as ErrRegression.
func (c *Clock) Advance(now float64) (float64, error) {
	if !c.primed {
		c.lastUpdate = now
		c.primed = true
		return 0, nil
	}
	if now <= c.lastUpdate {
		return 0, ErrRegression
	}
	delta := (now - c.lastUpdate) / 1000
	c.elapsed += delta
	c.lastUpdate = now
	return delta, nil
}

// Elapsed returns the accumulated seconds.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// LastUpdate returns the timestamp of the last accepted sample.
func (c *Clock) LastUpdate() float64 {
	return c.lastUpdate
}
