// Package panzoom converts pan, pinch and wheel gestures into new axis
// domains.
//
// The Engine holds only transient gesture state (the last pan position and
// the pinch baseline). Committed domains belong to the caller, which the
// Engine reads through a getter and writes through a setter. Clamping policy
// is the caller's as well: every proposed domain passes through
// Options.ClampDomain before it is emitted.
//
// None of the operations fail. Degenerate input such as a zero pinch
// baseline or zero-size plot is the caller's to avoid; the engine does not
// guard it beyond never panicking.
package panzoom

import (
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/go-drift/charts/pkg/animation"
	"github.com/go-drift/charts/pkg/geom"
)

// Mode restricts which axes gestures affect.
type Mode string

const (
	ModeX    Mode = "x"
	ModeY    Mode = "y"
	ModeBoth Mode = "both"
)

// ParseMode parses "x", "y" or "both". The empty string is ModeBoth.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBoth:
		return ModeBoth, nil
	case ModeX, ModeY:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown zoom mode %q", s)
	}
}

// AffectsX reports whether gestures change the x domain.
func (m Mode) AffectsX() bool { return m != ModeY }

// AffectsY reports whether gestures change the y domain.
func (m Mode) AffectsY() bool { return m != ModeX }

// State is a pair of axis domains.
type State struct {
	X geom.Domain
	Y geom.Domain
}

// ClampFunc adjusts a candidate domain given the base (initial) domain of the
// same axis.
type ClampFunc func(candidate, base geom.Domain) geom.Domain

// Options configure an Engine.
type Options struct {
	// Enabled turns every operation into a no-op when false.
	Enabled bool
	// Mode selects the affected axes.
	Mode Mode
	// MinZoom is the smallest allowed fraction of the base range.
	MinZoom float64
	// WheelZoomStep is the fractional range change per wheel step.
	WheelZoomStep float64
	// WheelEnabled gates WheelZoom.
	WheelEnabled bool
	// InvertPinch uses startDistance/distance as the pinch scale.
	InvertPinch bool
	// InvertWheel swaps the wheel zoom direction.
	InvertWheel bool
	// ResetOnDoubleTap makes DoubleTap call OnReset.
	ResetOnDoubleTap bool
	// OnReset is called by DoubleTap.
	OnReset func()
	// Base returns the domains that clamping and wheel limits are measured
	// against. Nil uses the domains current when the Engine was created.
	Base func() State
	// ClampDomain post-processes every proposed domain. Nil leaves
	// candidates unchanged.
	ClampDomain ClampFunc
	// WheelEventsPerSecond limits how many wheel events are applied. Zero
	// disables limiting.
	WheelEventsPerSecond float64
	// Clock timestamps wheel events for the limiter. Nil uses the system clock.
	Clock animation.Clock
}

// DefaultOptions returns the defaults: enabled, both axes, MinZoom 0.1,
// WheelZoomStep 0.1, wheel zoom and double-tap reset on.
func DefaultOptions() Options {
	return Options{
		Enabled:          true,
		Mode:             ModeBoth,
		MinZoom:          0.1,
		WheelZoomStep:    0.1,
		WheelEnabled:     true,
		ResetOnDoubleTap: true,
	}
}

// Engine turns gestures into domain updates.
// It is not safe for concurrent use; drive it from the UI thread.
type Engine struct {
	get  func() State
	set  func(State)
	opts Options
	base State

	panning          bool
	lastPanX         float64
	lastPanY         float64
	pinching         bool
	pinchStart       float64
	pinchSnapshot    State
	wheelLimiter     *rate.Limiter
	clock            animation.Clock
	emitted, dropped int
}

// New returns an Engine reading domains from get and writing them to set.
func New(get func() State, set func(State), opts Options) *Engine {
	if opts.Mode == "" {
		opts.Mode = ModeBoth
	}
	if opts.MinZoom <= 0 || opts.MinZoom > 1 {
		opts.MinZoom = 0.1
	}
	if opts.WheelZoomStep <= 0 {
		opts.WheelZoomStep = 0.1
	}
	e := &Engine{get: get, set: set, opts: opts, clock: opts.Clock}
	if e.clock == nil {
		e.clock = animation.SystemClock
	}
	if opts.Base == nil {
		e.base = get()
	}
	if opts.WheelEventsPerSecond > 0 {
		e.wheelLimiter = rate.NewLimiter(rate.Limit(opts.WheelEventsPerSecond), 1)
	}
	return e
}

func (e *Engine) baseState() State {
	if e.opts.Base != nil {
		return e.opts.Base()
	}
	return e.base
}

func (e *Engine) clamp(candidate, base geom.Domain) geom.Domain {
	if e.opts.ClampDomain == nil {
		return candidate
	}
	return e.opts.ClampDomain(candidate, base)
}

func (e *Engine) emit(next State) {
	e.emitted++
	e.set(next)
}

// StartPan records the pan origin.
func (e *Engine) StartPan(x, y float64) {
	if !e.opts.Enabled {
		return
	}
	e.panning = true
	e.lastPanX, e.lastPanY = x, y
}

// UpdatePan moves the domains by the pixel delta since the last call so that
// content follows the pointer: dragging right reveals lower x values, dragging
// down reveals higher y values.
func (e *Engine) UpdatePan(x, y, plotWidth, plotHeight float64) {
	if !e.opts.Enabled || !e.panning {
		return
	}
	dx := x - e.lastPanX
	dy := y - e.lastPanY
	e.lastPanX, e.lastPanY = x, y
	if dx == 0 && dy == 0 {
		return
	}

	cur := e.get()
	base := e.baseState()
	next := cur
	if e.opts.Mode.AffectsX() && plotWidth > 0 {
		delta := dx / plotWidth * cur.X.Span()
		next.X = e.clamp(cur.X.Shift(-delta), base.X)
	}
	if e.opts.Mode.AffectsY() && plotHeight > 0 {
		delta := dy / plotHeight * cur.Y.Span()
		next.Y = e.clamp(cur.Y.Shift(delta), base.Y)
	}
	e.emit(next)
}

// EndPan clears pan tracking.
func (e *Engine) EndPan() {
	e.panning = false
}

// StartPinch records the pinch baseline distance and the domains at gesture
// start.
func (e *Engine) StartPinch(distance float64) {
	if !e.opts.Enabled {
		return
	}
	e.pinching = true
	e.pinchStart = distance
	e.pinchSnapshot = e.get()
}

// UpdatePinch rescales the snapshot domains around their midpoints. The scale
// is distance/startDistance (inverted with InvertPinch) clamped to
// [MinZoom, 1], so a pinch can zoom in from its starting domains but never
// out past them.
func (e *Engine) UpdatePinch(distance float64) {
	if !e.opts.Enabled || !e.pinching {
		return
	}
	scale := distance / e.pinchStart
	if e.opts.InvertPinch {
		scale = e.pinchStart / distance
	}
	if math.IsNaN(scale) {
		return
	}
	scale = math.Max(e.opts.MinZoom, math.Min(1, scale))

	snap := e.pinchSnapshot
	base := e.baseState()
	next := e.get()
	if e.opts.Mode.AffectsX() {
		next.X = e.clamp(scaleAround(snap.X, scale), base.X)
	}
	if e.opts.Mode.AffectsY() {
		next.Y = e.clamp(scaleAround(snap.Y, scale), base.Y)
	}
	e.emit(next)
}

func scaleAround(d geom.Domain, scale float64) geom.Domain {
	mid := d.Mid()
	half := d.Span() / 2 * scale
	return geom.Domain{Lo: mid - half, Hi: mid + half}
}

// EndPinch clears pinch tracking.
func (e *Engine) EndPinch() {
	e.pinching = false
	e.pinchStart = 0
}

// WheelZoom applies one discrete zoom step. A negative deltaY zooms in. The
// anchor ratios locate the cursor within the plot, measured from the start of
// each domain, and the data value under the cursor stays under it. The
// resulting range is kept within [MinZoom*baseRange, baseRange].
func (e *Engine) WheelZoom(deltaY, anchorXRatio, anchorYRatio float64) {
	if !e.opts.Enabled || !e.opts.WheelEnabled || deltaY == 0 {
		return
	}
	if e.wheelLimiter != nil && !e.wheelLimiter.AllowN(e.clock.Now(), 1) {
		e.dropped++
		return
	}
	zoomIn := deltaY < 0
	if e.opts.InvertWheel {
		zoomIn = !zoomIn
	}
	factor := 1 + e.opts.WheelZoomStep
	if zoomIn {
		factor = 1 - e.opts.WheelZoomStep
	}

	cur := e.get()
	base := e.baseState()
	next := cur
	if e.opts.Mode.AffectsX() {
		next.X = e.clamp(e.zoomAnchored(cur.X, base.X, factor, anchorXRatio), base.X)
	}
	if e.opts.Mode.AffectsY() {
		next.Y = e.clamp(e.zoomAnchored(cur.Y, base.Y, factor, anchorYRatio), base.Y)
	}
	e.emit(next)
}

func (e *Engine) zoomAnchored(cur, base geom.Domain, factor, ratio float64) geom.Domain {
	ratio = math.Max(0, math.Min(1, ratio))
	anchor := cur.Lerp(ratio)
	baseRange := math.Abs(base.Span())
	newRange := math.Abs(cur.Span()) * factor
	newRange = math.Max(e.opts.MinZoom*baseRange, math.Min(baseRange, newRange))
	start := anchor - newRange*ratio
	return geom.Domain{Lo: start, Hi: start + newRange}
}

// DoubleTap resets the zoom when ResetOnDoubleTap is set.
func (e *Engine) DoubleTap() {
	if !e.opts.Enabled || !e.opts.ResetOnDoubleTap || e.opts.OnReset == nil {
		return
	}
	e.EndPan()
	e.EndPinch()
	e.opts.OnReset()
}

// Stats returns how many domain updates were emitted and how many wheel
// events the rate limiter dropped.
func (e *Engine) Stats() (emitted, droppedWheel int) {
	return e.emitted, e.dropped
}
