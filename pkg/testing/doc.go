// Package testing provides helpers for deterministic chart interaction tests.
//
// # Time and Frames
//
// [FakeClock] replaces wall time, and [Pump] advances it while stepping an
// [animation.FrameLoop], so coalesced pointer updates and domain tweens can be
// asserted frame by frame:
//
//	clock := charttest.NewFakeClock()
//	loop := animation.NewFrameLoop(clock)
//	store := interaction.NewStore(cfg, interaction.WithFrameScheduler(loop))
//	store.SetCrosshair(&interaction.Crosshair{DataX: 2, PixelX: 40})
//	charttest.Pump(loop, clock, 1, animation.DefaultFrameInterval)
//
// # Gestures
//
// [Gestures] replays drags, pinches and hover paths against anything that
// exposes the pan/pinch methods of panzoom.Engine.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import charttest "github.com/go-drift/charts/pkg/testing"
package testing
