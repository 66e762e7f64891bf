package animation

import "time"

// Clock provides time for frame scheduling and animations. Tests inject a
// fake clock to control timing deterministically.
type Clock interface {
	Now() time.Time
}

// systemClock uses wall time.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the Clock backed by time.Now.
var SystemClock Clock = systemClock{}

// orSystem returns c, or SystemClock when c is nil.
func orSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}
