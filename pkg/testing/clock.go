package testing

import (
	"sync"
	"time"

	"github.com/go-drift/charts/pkg/animation"
)

// FakeClock provides controllable time for deterministic tests.
// All methods are safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ animation.Clock = (*FakeClock)(nil)

// NewFakeClock returns a FakeClock starting at a fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set sets the clock to an exact time.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Pump advances clock by dt and steps loop, frames times. It returns the
// total number of frame callbacks that ran.
func Pump(loop *animation.FrameLoop, clock *FakeClock, frames int, dt time.Duration) int {
	ran := 0
	for range frames {
		if clock != nil {
			clock.Advance(dt)
		}
		ran += loop.Step()
	}
	return ran
}

// PumpUntilIdle steps loop until no callbacks are pending or maxFrames is
// reached, and returns the number of frames stepped.
func PumpUntilIdle(loop *animation.FrameLoop, clock *FakeClock, dt time.Duration, maxFrames int) int {
	frames := 0
	for frames < maxFrames && loop.Pending() > 0 {
		if clock != nil {
			clock.Advance(dt)
		}
		loop.Step()
		frames++
	}
	return frames
}
