// Package animation provides the timing primitives used by the chart
// interaction packages.
//
// # Frames
//
// A [FrameScheduler] plays the role of requestAnimationFrame: callers request
// a callback for the next frame and may cancel it before it fires. Two
// implementations are provided:
//
//   - [FrameLoop]: pumped explicitly by the host renderer once per frame via
//     [FrameLoop.Step]. Use it when the host has a frame-commit hook, and in
//     tests where frames must be deterministic.
//
//   - [TimerScheduler]: fires each request after a fixed interval on a timer
//     goroutine. Use it when no frame hook is available.
//
// # Tweens
//
// [DomainTween] animates an axis domain between two values using gween easing
// functions. [Easing] looks easing functions up by name for configuration
// files.
package animation

import (
	"sync"
	"time"
)

// DefaultFrameInterval is one frame at 60Hz.
const DefaultFrameInterval = time.Second / 60

// FrameHandle identifies a requested frame callback. The zero handle is never
// issued, so it can be used as "nothing scheduled".
type FrameHandle uint64

// FrameScheduler schedules callbacks for the next frame.
type FrameScheduler interface {
	// RequestFrame schedules cb to run once on the next frame.
	RequestFrame(cb func(now time.Time)) FrameHandle
	// CancelFrame removes a pending callback. Cancelling a handle that has
	// already fired or was never issued is a no-op.
	CancelFrame(h FrameHandle)
}

// FrameLoop is a FrameScheduler driven by the host's frame loop.
//
// Callbacks requested before a call to Step run during that Step, in request
// order. Callbacks requested while Step is running wait for the next Step.
type FrameLoop struct {
	clock Clock

	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]func(time.Time)
	order   []FrameHandle
	frames  int
}

// NewFrameLoop returns a FrameLoop that timestamps frames with clock.
// A nil clock uses SystemClock.
func NewFrameLoop(clock Clock) *FrameLoop {
	return &FrameLoop{
		clock:   orSystem(clock),
		pending: make(map[FrameHandle]func(time.Time)),
	}
}

// RequestFrame schedules cb for the next Step.
func (l *FrameLoop) RequestFrame(cb func(time.Time)) FrameHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	h := l.next
	l.pending[h] = cb
	l.order = append(l.order, h)
	return h
}

// CancelFrame removes a pending callback.
func (l *FrameLoop) CancelFrame(h FrameHandle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pending, h)
}

// Step runs every callback that was pending when Step was called and returns
// how many ran. This should be called once per frame by the host.
func (l *FrameLoop) Step() int {
	l.mu.Lock()
	if len(l.order) == 0 {
		l.mu.Unlock()
		return 0
	}
	// Take the batch so callbacks can request the next frame without
	// holding the lock.
	order := l.order
	l.order = nil
	batch := make([]func(time.Time), 0, len(order))
	for _, h := range order {
		if cb, ok := l.pending[h]; ok {
			batch = append(batch, cb)
			delete(l.pending, h)
		}
	}
	l.frames++
	l.mu.Unlock()

	now := l.clock.Now()
	for _, cb := range batch {
		cb(now)
	}
	return len(batch)
}

// Pending returns the number of callbacks waiting for the next Step.
func (l *FrameLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Frames returns how many non-empty Steps have run.
func (l *FrameLoop) Frames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// TimerScheduler is a FrameScheduler that fires each request after Interval.
// Callbacks run on timer goroutines.
type TimerScheduler struct {
	Interval time.Duration
	Clock    Clock

	mu     sync.Mutex
	next   FrameHandle
	timers map[FrameHandle]*time.Timer
}

// NewTimerScheduler returns a TimerScheduler with the given interval.
// A non-positive interval uses DefaultFrameInterval.
func NewTimerScheduler(interval time.Duration) *TimerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TimerScheduler{Interval: interval}
}

// RequestFrame schedules cb to run after Interval.
func (s *TimerScheduler) RequestFrame(cb func(time.Time)) FrameHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers == nil {
		s.timers = make(map[FrameHandle]*time.Timer)
	}
	s.next++
	h := s.next
	clock := orSystem(s.Clock)
	s.timers[h] = time.AfterFunc(s.Interval, func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()
		if live {
			cb(clock.Now())
		}
	})
	return h
}

// CancelFrame stops a pending timer.
func (s *TimerScheduler) CancelFrame(h FrameHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending returns the number of timers that have not fired yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
