// Package interaction provides the shared state behind a group of charts:
// registered series, the pointer and crosshair, zoom domains and the selection.
//
// One Store is owned by one provider (a screen or region) and passed to every
// chart under it, usually through a context.Context (see NewContext). Charts
// write through the Store methods; overlays read Snapshot and subscribe with
// AddListener.
//
// High-frequency pointer and crosshair writes are filtered and coalesced
// before they reach the state:
//
//   - a pixel threshold drops pointer moves that are too small to matter;
//   - a FrameScheduler collapses every write within one frame to the last one.
//
// Every state change produces new values (never in-place edits), so consumers
// can detect change by pointer comparison.
package interaction

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/go-drift/charts/pkg/animation"
	"github.com/go-drift/charts/pkg/errors"
	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/panzoom"
	"github.com/go-drift/charts/pkg/series"
)

// Option configures a Store.
type Option func(*Store)

// WithFrameScheduler sets the scheduler used for per-frame coalescing and
// animations. The default is a TimerScheduler ticking at Config.FrameInterval.
func WithFrameScheduler(fs animation.FrameScheduler) Option {
	return func(s *Store) { s.frames = fs }
}

// WithMetrics records store traffic in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the clock used by the default scheduler and the wheel limiter.
func WithClock(c animation.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Store is the shared interaction state of a group of charts.
// It is safe for concurrent use.
type Store struct {
	frames  animation.FrameScheduler
	metrics *Metrics
	logger  *slog.Logger
	clock   animation.Clock

	mu        sync.Mutex
	state     State
	pointer   pending[*Pointer]
	crosshair pending[*Crosshair]
	reset     *resetAnimation
	listeners []listener
	nextID    int
	disposed  bool
}

// pending holds the latest coalesced value waiting for the next frame.
type pending[T any] struct {
	value  T
	queued bool
	handle animation.FrameHandle
}

type listener struct {
	id int
	fn func(Aspect)
}

type resetAnimation struct {
	x, y   *animation.DomainTween
	last   time.Time
	handle animation.FrameHandle
}

// NewStore returns a Store with the given configuration.
func NewStore(cfg Config, opts ...Option) *Store {
	s := &Store{state: State{Config: cfg}}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = animation.SystemClock
	}
	if s.frames == nil {
		ts := animation.NewTimerScheduler(cfg.FrameInterval)
		ts.Clock = s.clock
		s.frames = ts
	}
	return s
}

// Config returns the configuration the store was created with.
func (s *Store) Config() Config {
	return s.state.Config
}

// Snapshot returns the current state. See State for the sharing rules.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AddListener registers fn to be called after every state change with the
// aspects that changed. It returns a function that removes the listener.
//
// Listeners run on the goroutine that made the change (a frame callback for
// coalesced updates), outside the store lock. A panicking listener is
// reported through the errors package and does not affect other listeners.
func (s *Store) AddListener(fn func(Aspect)) (remove func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(slices.Clone(s.listeners), func(l listener) bool {
			return l.id == id
		})
	}
}

// notify must be called without s.mu held.
func (s *Store) notify(changed Aspect) {
	if changed == 0 {
		return
	}
	s.mu.Lock()
	ls := s.listeners
	s.mu.Unlock()
	for _, l := range ls {
		errors.Guard("interaction.listener", func() { l.fn(changed) })
	}
}

// Dispose cancels pending frames and animations and drops every listener.
// Mutations after Dispose are ignored.
func (s *Store) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.cancelLocked(&s.pointer.handle)
	s.cancelLocked(&s.crosshair.handle)
	s.stopResetLocked()
	s.listeners = nil
	s.mu.Unlock()
	s.logger.Debug("interaction store disposed")
}

func (s *Store) cancelLocked(h *animation.FrameHandle) {
	if *h != 0 {
		s.frames.CancelFrame(*h)
		*h = 0
	}
}

// RegisterSeries upserts a series by ID and returns the stored entry.
//
// The points are copied, so callers may reuse their buffer, and sorted by X
// if they are not already. When an entry with the same
// ID exists and the registration has the same point count, last point, name
// and color, the existing *Series is returned and nothing changes, so
// consumers memoizing on the pointer do not recompute. Visibility of an
// existing entry is kept; reg.Hidden only applies to new entries.
func (s *Store) RegisterSeries(reg series.Registration) *series.Series {
	points := slices.Clone(reg.Points)
	series.SortByX(points)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	idx := slices.IndexFunc(s.state.Series, func(e *series.Series) bool { return e.ID == reg.ID })
	if idx >= 0 {
		existing := s.state.Series[idx]
		if existing.SameShape(reg.Name, reg.Color, points) {
			s.mu.Unlock()
			s.metrics.registration(RegistrationUnchanged)
			return existing
		}
		next := &series.Series{ID: reg.ID, Name: reg.Name, Color: reg.Color, Points: points, Visible: existing.Visible}
		list := slices.Clone(s.state.Series)
		list[idx] = next
		s.state.Series = list
		s.mu.Unlock()
		s.metrics.registration(RegistrationUpdated)
		s.logger.Debug("series updated", "id", reg.ID, "points", len(points))
		s.notify(AspectSeries)
		return next
	}
	next := &series.Series{ID: reg.ID, Name: reg.Name, Color: reg.Color, Points: points, Visible: !reg.Hidden}
	s.state.Series = append(slices.Clip(s.state.Series), next)
	s.mu.Unlock()
	s.metrics.registration(RegistrationInserted)
	s.logger.Debug("series registered", "id", reg.ID, "points", len(points), "visible", next.Visible)
	s.notify(AspectSeries)
	return next
}

// UpdateSeriesVisibility shows or hides one series. Unknown IDs and unchanged
// visibility are ignored.
func (s *Store) UpdateSeriesVisibility(id series.ID, visible bool) {
	s.mu.Lock()
	idx := slices.IndexFunc(s.state.Series, func(e *series.Series) bool { return e.ID == id })
	if s.disposed || idx < 0 || s.state.Series[idx].Visible == visible {
		s.mu.Unlock()
		return
	}
	list := slices.Clone(s.state.Series)
	list[idx] = list[idx].WithVisible(visible)
	s.state.Series = list
	s.mu.Unlock()
	s.notify(AspectSeries)
}

// UnregisterSeries removes a series. Charts call it when they are torn down.
func (s *Store) UnregisterSeries(id series.ID) bool {
	s.mu.Lock()
	idx := slices.IndexFunc(s.state.Series, func(e *series.Series) bool { return e.ID == id })
	if s.disposed || idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.state.Series = slices.Delete(slices.Clone(s.state.Series), idx, idx+1)
	s.mu.Unlock()
	s.metrics.registration(RegistrationRemoved)
	s.logger.Debug("series unregistered", "id", id)
	s.notify(AspectSeries)
	return true
}

// SetPointer updates the shared pointer. A nil pointer clears it.
//
// With a positive PointerPixelThreshold, a move smaller than the threshold on
// both axes from the committed pointer is dropped unless a move is already
// queued. With PointerRAF the value is committed on the next frame, and only
// the last value requested within a frame is committed.
func (s *Store) SetPointer(p *Pointer) {
	if p != nil {
		cp := *p
		p = &cp
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	// A queued move already passed the threshold; later moves in the same
	// frame replace it so the final position is committed.
	if th := s.state.Config.PointerPixelThreshold; th > 0 && p != nil && s.state.Pointer != nil && !s.pointer.queued {
		prev := s.state.Pointer
		if math.Abs(p.X-prev.X) < th && math.Abs(p.Y-prev.Y) < th {
			s.mu.Unlock()
			s.metrics.update("pointer", OutcomeDropped)
			return
		}
	}
	if !s.state.Config.PointerRAF {
		s.state.Pointer = p
		s.mu.Unlock()
		s.metrics.update("pointer", OutcomeCommitted)
		s.notify(AspectPointer)
		return
	}
	if s.pointer.queued {
		s.metrics.update("pointer", OutcomeCoalesced)
	}
	s.pointer.value, s.pointer.queued = p, true
	if s.pointer.handle == 0 {
		s.pointer.handle = s.frames.RequestFrame(s.flushPointer)
	}
	s.mu.Unlock()
}

func (s *Store) flushPointer(time.Time) {
	defer errors.Recover("interaction.flush")
	s.mu.Lock()
	s.pointer.handle = 0
	if s.disposed || !s.pointer.queued {
		s.mu.Unlock()
		return
	}
	s.state.Pointer = s.pointer.value
	s.pointer.value, s.pointer.queued = nil, false
	s.mu.Unlock()
	s.metrics.frame()
	s.metrics.update("pointer", OutcomeCommitted)
	s.notify(AspectPointer)
}

// SetCrosshair updates the shared crosshair. A nil crosshair clears it.
// With CrosshairRAF, writes are coalesced per frame like SetPointer.
func (s *Store) SetCrosshair(c *Crosshair) {
	if c != nil {
		cp := *c
		c = &cp
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	if !s.state.Config.CrosshairRAF {
		s.state.Crosshair = c
		s.mu.Unlock()
		s.metrics.update("crosshair", OutcomeCommitted)
		s.notify(AspectCrosshair)
		return
	}
	if s.crosshair.queued {
		s.metrics.update("crosshair", OutcomeCoalesced)
	}
	s.crosshair.value, s.crosshair.queued = c, true
	if s.crosshair.handle == 0 {
		s.crosshair.handle = s.frames.RequestFrame(s.flushCrosshair)
	}
	s.mu.Unlock()
}

func (s *Store) flushCrosshair(time.Time) {
	defer errors.Recover("interaction.flush")
	s.mu.Lock()
	s.crosshair.handle = 0
	if s.disposed || !s.crosshair.queued {
		s.mu.Unlock()
		return
	}
	s.state.Crosshair = s.crosshair.value
	s.crosshair.value, s.crosshair.queued = nil, false
	s.mu.Unlock()
	s.metrics.frame()
	s.metrics.update("crosshair", OutcomeCommitted)
	s.notify(AspectCrosshair)
}

// SetRootOffset records the page offset of the provider's root element.
// Only the first call has an effect.
func (s *Store) SetRootOffset(o geom.Offset) {
	s.mu.Lock()
	if s.disposed || s.state.RootOffset != nil {
		s.mu.Unlock()
		return
	}
	s.state.RootOffset = &o
	s.mu.Unlock()
	s.notify(AspectRootOffset)
}

// SetSelectedPoints replaces the selection.
func (s *Store) SetSelectedPoints(sel []Selection) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.state.SelectedPoints = slices.Clone(sel)
	s.mu.Unlock()
	s.notify(AspectSelection)
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.SetSelectedPoints(nil)
}

// InitializeDomains sets both the initial and the current domains to pair.
// It overwrites earlier domains; callers that share a store across charts
// should use EnsureDomains.
func (s *Store) InitializeDomains(pair DomainPair) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.stopResetLocked()
	s.state.Domains = &Domains{Initial: pair, Current: pair}
	s.mu.Unlock()
	s.logger.Debug("domains initialized", "x", pair.X, "y", pair.Y)
	s.notify(AspectDomains)
}

// EnsureDomains initializes the domains unless they already are, and reports
// whether it did.
func (s *Store) EnsureDomains(pair DomainPair) bool {
	s.mu.Lock()
	initialized := s.state.Domains != nil
	s.mu.Unlock()
	if initialized {
		return false
	}
	s.InitializeDomains(pair)
	return true
}

// Domains returns the current domains, or nil before initialization.
func (s *Store) Domains() *Domains {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Domains
}

// SetDomains merges patch into the current domains. It is a no-op before the
// domains are initialized. A running reset animation is cancelled.
func (s *Store) SetDomains(patch DomainPatch) {
	s.mu.Lock()
	if s.disposed || s.state.Domains == nil || (patch.X == nil && patch.Y == nil) {
		s.mu.Unlock()
		return
	}
	s.stopResetLocked()
	s.applyDomainsLocked(patch)
	s.mu.Unlock()
	s.notify(AspectDomains)
}

func (s *Store) applyDomainsLocked(patch DomainPatch) {
	next := *s.state.Domains
	if patch.X != nil {
		next.Current.X = *patch.X
	}
	if patch.Y != nil {
		next.Current.Y = *patch.Y
	}
	s.state.Domains = &next
}

// ResetZoom sets the current domains back to the initial ones.
func (s *Store) ResetZoom() {
	s.mu.Lock()
	if s.disposed || s.state.Domains == nil {
		s.mu.Unlock()
		return
	}
	s.stopResetLocked()
	initial := s.state.Domains.Initial
	s.applyDomainsLocked(DomainPatch{X: &initial.X, Y: &initial.Y})
	s.mu.Unlock()
	s.logger.Debug("zoom reset")
	s.notify(AspectDomains)
}

// AnimateResetZoom eases the current domains back to the initial ones over d,
// advancing once per frame. The last frame sets them to the initial domains
// exactly. A nil fn uses animation.EaseOut. It returns false when the domains
// are not initialized.
func (s *Store) AnimateResetZoom(d time.Duration, fn ease.TweenFunc) bool {
	if d <= 0 {
		s.ResetZoom()
		return s.Domains() != nil
	}
	s.mu.Lock()
	if s.disposed || s.state.Domains == nil {
		s.mu.Unlock()
		return false
	}
	s.stopResetLocked()
	dom := s.state.Domains
	anim := &resetAnimation{
		x:    animation.NewDomainTween(dom.Current.X, dom.Initial.X, d, fn),
		y:    animation.NewDomainTween(dom.Current.Y, dom.Initial.Y, d, fn),
		last: s.clock.Now(),
	}
	s.reset = anim
	anim.handle = s.frames.RequestFrame(func(now time.Time) { s.stepReset(anim, now) })
	s.mu.Unlock()
	return true
}

func (s *Store) stepReset(anim *resetAnimation, now time.Time) {
	defer errors.Recover("interaction.flush")
	s.mu.Lock()
	if s.disposed || s.reset != anim {
		s.mu.Unlock()
		return
	}
	dt := now.Sub(anim.last)
	anim.last = now
	x, xDone := anim.x.Update(dt)
	y, yDone := anim.y.Update(dt)
	s.applyDomainsLocked(DomainPatch{X: &x, Y: &y})
	if xDone && yDone {
		s.reset = nil
		anim.handle = 0
	} else {
		anim.handle = s.frames.RequestFrame(func(now time.Time) { s.stepReset(anim, now) })
	}
	s.mu.Unlock()
	s.metrics.frame()
	s.notify(AspectDomains)
}

// Animating reports whether a reset animation is running.
func (s *Store) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset != nil
}

func (s *Store) stopResetLocked() {
	if s.reset == nil {
		return
	}
	s.cancelLocked(&s.reset.handle)
	s.reset = nil
}

// PanZoom returns a gesture engine that reads and writes the store domains.
//
// Limits and clamping are measured against the initial domains. With
// ClampToInitialDomain the current domains never leave them. A double tap
// calls ResetZoom when ResetOnDoubleTap is set.
func (s *Store) PanZoom() *panzoom.Engine {
	opts := s.state.Config.PanZoomOptions()
	opts.Clock = s.clock
	opts.OnReset = s.ResetZoom
	opts.Base = func() panzoom.State {
		d := s.Domains()
		if d == nil {
			return panzoom.State{}
		}
		return panzoom.State{X: d.Initial.X, Y: d.Initial.Y}
	}
	if s.state.Config.ClampToInitialDomain {
		opts.ClampDomain = panzoom.ClampToBase
	}
	get := func() panzoom.State {
		d := s.Domains()
		if d == nil {
			return panzoom.State{}
		}
		return panzoom.State{X: d.Current.X, Y: d.Current.Y}
	}
	set := func(st panzoom.State) {
		s.SetDomains(DomainPatch{X: &st.X, Y: &st.Y})
	}
	return panzoom.New(get, set, opts)
}
