package interaction_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

	"github.com/go-drift/charts/pkg/animation"
	charterrors "github.com/go-drift/charts/pkg/errors"
	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/interaction"
	"github.com/go-drift/charts/pkg/series"
	charttest "github.com/go-drift/charts/pkg/testing"
)

const frame = 16 * time.Millisecond

type fixture struct {
	store   *interaction.Store
	loop    *animation.FrameLoop
	clock   *charttest.FakeClock
	metrics *interaction.Metrics
	changes []interaction.Aspect
}

func newFixture(t *testing.T, cfg interaction.Config) *fixture {
	t.Helper()
	f := &fixture{clock: charttest.NewFakeClock()}
	f.loop = animation.NewFrameLoop(f.clock)
	f.metrics = interaction.NewMetrics(prometheus.NewRegistry())
	f.store = interaction.NewStore(cfg,
		interaction.WithFrameScheduler(f.loop),
		interaction.WithClock(f.clock),
		interaction.WithMetrics(f.metrics),
	)
	f.store.AddListener(func(a interaction.Aspect) { f.changes = append(f.changes, a) })
	t.Cleanup(f.store.Dispose)
	return f
}

func (f *fixture) step() int {
	return charttest.Pump(f.loop, f.clock, 1, frame)
}

func pts(xy ...float64) []series.Point {
	out := make([]series.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, series.At(xy[i], xy[i+1]))
	}
	return out
}

func TestRegisterSeriesSortsPoints(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	in := pts(3, 1, 1, 2, 2, 3, 1, 4)

	got := f.store.RegisterSeries(series.Registration{ID: "a", Points: in})

	require.Len(t, got.Points, 4)
	assert.True(t, series.IsSortedByX(got.Points))
	assert.Equal(t, []float64{2, 4}, []float64{got.Points[0].Y, got.Points[1].Y}, "equal x keeps input order")
	assert.Equal(t, 3.0, in[0].X, "caller's slice is untouched")
	assert.True(t, got.Visible)
}

func TestRegisterSeriesIsReferenceStable(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	reg := series.Registration{ID: "a", Name: "Alpha", Color: "#f00", Points: pts(0, 1, 1, 2)}

	first := f.store.RegisterSeries(reg)
	before := f.store.Snapshot().Series[0]
	second := f.store.RegisterSeries(reg)

	assert.Same(t, first, second)
	assert.Same(t, before, f.store.Snapshot().Series[0])
	assert.Equal(t, []interaction.Aspect{interaction.AspectSeries}, f.changes, "unchanged registration does not notify")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Registrations(interaction.RegistrationUnchanged)))
}

func TestRegisterSeriesCopiesCallerBuffer(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	buf := pts(0, 1, 1, 2, 2, 3)

	first := f.store.RegisterSeries(series.Registration{ID: "a", Points: buf})
	buf[2].Y = 99
	buf[0].X = 5

	assert.Equal(t, 3.0, first.Points[2].Y, "stored points do not alias the buffer")
	assert.True(t, series.IsSortedByX(first.Points))

	buf[0].X = 0
	second := f.store.RegisterSeries(series.Registration{ID: "a", Points: buf})
	assert.NotSame(t, first, second, "a changed last point is detected")
	assert.Equal(t, 99.0, second.Points[2].Y)
	assert.Equal(t, []interaction.Aspect{interaction.AspectSeries, interaction.AspectSeries}, f.changes)
}

func TestRegisterSeriesReplacesOnChange(t *testing.T) {
	tests := []struct {
		name string
		reg  series.Registration
	}{
		{"last point", series.Registration{ID: "a", Name: "Alpha", Points: pts(0, 1, 1, 3)}},
		{"point count", series.Registration{ID: "a", Name: "Alpha", Points: pts(0, 1, 1, 2, 2, 2)}},
		{"name", series.Registration{ID: "a", Name: "Beta", Points: pts(0, 1, 1, 2)}},
		{"color", series.Registration{ID: "a", Name: "Alpha", Color: "blue", Points: pts(0, 1, 1, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, interaction.DefaultConfig())
			first := f.store.RegisterSeries(series.Registration{ID: "a", Name: "Alpha", Points: pts(0, 1, 1, 2)})
			f.store.UpdateSeriesVisibility("a", false)

			next := f.store.RegisterSeries(tt.reg)

			assert.NotSame(t, first, next)
			assert.False(t, next.Visible, "stored visibility survives replacement")
			assert.Len(t, f.store.Snapshot().Series, 1)
		})
	}
}

func TestHiddenOnlyAppliesToNewSeries(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())

	s := f.store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 0), Hidden: true})
	assert.False(t, s.Visible)

	f.store.UpdateSeriesVisibility("a", true)
	s = f.store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 0, 1, 1), Hidden: true})
	assert.True(t, s.Visible)
}

func TestUpdateSeriesVisibility(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	a := f.store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 0)})
	b := f.store.RegisterSeries(series.Registration{ID: "b", Points: pts(0, 0)})
	f.changes = nil

	f.store.UpdateSeriesVisibility("b", false)
	f.store.UpdateSeriesVisibility("b", false)
	f.store.UpdateSeriesVisibility("missing", false)

	snap := f.store.Snapshot()
	assert.Same(t, a, snap.Series[0], "other entries keep their identity")
	assert.NotSame(t, b, snap.Series[1])
	assert.False(t, snap.Series[1].Visible)
	assert.True(t, b.Visible, "published entries are never modified")
	assert.Len(t, f.changes, 1)
	assert.Len(t, snap.VisibleSeries(), 1)
}

func TestUnregisterSeries(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	f.store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 0)})
	f.store.RegisterSeries(series.Registration{ID: "b", Points: pts(0, 0)})
	before := f.store.Snapshot()

	assert.True(t, f.store.UnregisterSeries("a"))
	assert.False(t, f.store.UnregisterSeries("a"))

	after := f.store.Snapshot()
	require.Len(t, after.Series, 1)
	assert.Equal(t, series.ID("b"), after.Series[0].ID)
	assert.Len(t, before.Series, 2, "earlier snapshots are unaffected")
	_, ok := after.SeriesByID("a")
	assert.False(t, ok)
}

func TestPointerImmediate(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.PointerRAF = false
	f := newFixture(t, cfg)

	p := &interaction.Pointer{X: 10, Y: 20, Inside: true}
	f.store.SetPointer(p)
	p.X = 99

	got := f.store.Snapshot().Pointer
	require.NotNil(t, got)
	assert.Equal(t, 10.0, got.X, "store keeps its own copy")
	assert.Equal(t, []interaction.Aspect{interaction.AspectPointer}, f.changes)

	f.store.SetPointer(nil)
	assert.Nil(t, f.store.Snapshot().Pointer)
}

func TestPointerThreshold(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.PointerRAF = false
	cfg.PointerPixelThreshold = 5
	f := newFixture(t, cfg)

	f.store.SetPointer(&interaction.Pointer{X: 100, Y: 100, Inside: true})
	committed := f.store.Snapshot().Pointer

	f.store.SetPointer(&interaction.Pointer{X: 102, Y: 103, Inside: true})
	assert.Same(t, committed, f.store.Snapshot().Pointer, "(2,3) is below the threshold")

	f.store.SetPointer(&interaction.Pointer{X: 104, Y: 104, Inside: true})
	assert.Same(t, committed, f.store.Snapshot().Pointer, "deltas are measured from the committed pointer")

	f.store.SetPointer(&interaction.Pointer{X: 112, Y: 118, Inside: true})
	got := f.store.Snapshot().Pointer
	assert.Equal(t, geom.Offset{X: 112, Y: 118}, geom.Offset{X: got.X, Y: got.Y})

	f.store.SetPointer(&interaction.Pointer{X: 113, Y: 200})
	assert.Equal(t, 200.0, f.store.Snapshot().Pointer.Y, "one axis over the threshold is enough")

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Updates("pointer", interaction.OutcomeDropped)))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.Updates("pointer", interaction.OutcomeCommitted)))
}

func TestPointerThresholdWithFrames(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.PointerPixelThreshold = 5
	f := newFixture(t, cfg)

	f.store.SetPointer(&interaction.Pointer{X: 102, Y: 103, Inside: true})
	f.step()

	f.store.SetPointer(&interaction.Pointer{X: 103, Y: 104, Inside: true})
	assert.Zero(t, f.loop.Pending(), "sub-threshold move with nothing queued is dropped")

	f.store.SetPointer(&interaction.Pointer{X: 110, Y: 110, Inside: true})
	f.store.SetPointer(&interaction.Pointer{X: 103, Y: 104, Inside: true})
	f.step()

	got := f.store.Snapshot().Pointer
	require.NotNil(t, got)
	assert.Equal(t, geom.Offset{X: 103, Y: 104}, geom.Offset{X: got.X, Y: got.Y}, "the last requested position is committed")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Updates("pointer", interaction.OutcomeDropped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Updates("pointer", interaction.OutcomeCoalesced)))
}

func TestPointerCoalescedPerFrame(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())

	for i := range 5 {
		f.store.SetPointer(&interaction.Pointer{X: float64(i), Y: 1, Inside: true})
	}
	assert.Nil(t, f.store.Snapshot().Pointer, "nothing is committed before the frame")
	assert.Equal(t, 1, f.loop.Pending(), "one frame in flight")

	assert.Equal(t, 1, f.step())
	got := f.store.Snapshot().Pointer
	require.NotNil(t, got)
	assert.Equal(t, 4.0, got.X)
	assert.Equal(t, []interaction.Aspect{interaction.AspectPointer}, f.changes)

	assert.Zero(t, f.step(), "idle store requests no frames")
}

func TestCrosshairCoalescedPerFrame(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	const n = 10

	for i := range n {
		f.store.SetCrosshair(&interaction.Crosshair{DataX: float64(i), PixelX: float64(i * 10)})
	}
	f.step()

	assert.Equal(t, &interaction.Crosshair{DataX: n - 1, PixelX: (n - 1) * 10}, f.store.Snapshot().Crosshair)
	assert.Len(t, f.changes, 1, "exactly one state transition")
	assert.Equal(t, float64(n-1), testutil.ToFloat64(f.metrics.Updates("crosshair", interaction.OutcomeCoalesced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Frames()))

	f.store.SetCrosshair(nil)
	f.step()
	assert.Nil(t, f.store.Snapshot().Crosshair)
}

func TestCrosshairImmediate(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.CrosshairRAF = false
	f := newFixture(t, cfg)

	f.store.SetCrosshair(&interaction.Crosshair{DataX: 1, PixelX: 2})
	assert.NotNil(t, f.store.Snapshot().Crosshair)
	assert.Zero(t, f.loop.Pending())
}

func TestRootOffsetIsSetOnce(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())

	f.store.SetRootOffset(geom.Offset{X: 10, Y: 20})
	f.store.SetRootOffset(geom.Offset{X: 30, Y: 40})

	assert.Equal(t, &geom.Offset{X: 10, Y: 20}, f.store.Snapshot().RootOffset)
	assert.Len(t, f.changes, 1)
}

func TestSelection(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	sel := []interaction.Selection{{SeriesID: "a", Index: 2, Point: series.At(2, 4)}}

	f.store.SetSelectedPoints(sel)
	sel[0].Index = 9
	assert.Equal(t, 2, f.store.Snapshot().SelectedPoints[0].Index)

	f.store.ClearSelection()
	assert.Empty(t, f.store.Snapshot().SelectedPoints)
	assert.Equal(t, []interaction.Aspect{interaction.AspectSelection, interaction.AspectSelection}, f.changes)
}

var initial = interaction.DomainPair{
	X: geom.Domain{Lo: 0, Hi: 100},
	Y: geom.Domain{Lo: -10, Hi: 10},
}

func TestSetDomainsBeforeInitializeIsNoOp(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	x := geom.Domain{Lo: 1, Hi: 2}

	f.store.SetDomains(interaction.DomainPatch{X: &x})
	f.store.ResetZoom()

	assert.Nil(t, f.store.Domains())
	assert.Empty(t, f.changes)
}

func TestDomainsLifecycle(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())

	f.store.InitializeDomains(initial)
	d := f.store.Domains()
	require.NotNil(t, d)
	assert.Equal(t, initial, d.Initial)
	assert.Equal(t, initial, d.Current)

	x := geom.Domain{Lo: 20, Hi: 40}
	f.store.SetDomains(interaction.DomainPatch{X: &x})
	d = f.store.Domains()
	assert.Equal(t, x, d.Current.X)
	assert.Equal(t, initial.Y, d.Current.Y, "unset axes are kept")
	assert.Equal(t, initial, d.Initial)

	assert.False(t, f.store.EnsureDomains(interaction.DomainPair{}))
	assert.Equal(t, initial, f.store.Domains().Initial)

	f.store.ResetZoom()
	assert.Equal(t, initial, f.store.Domains().Current)
}

func TestResetZoomRoundTrip(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	require.True(t, f.store.EnsureDomains(initial))
	e := f.store.PanZoom()
	g := charttest.Gestures{Plot: geom.Size{Width: 300, Height: 200}, Steps: 7}

	g.DragFrom(e, geom.Offset{X: 10, Y: 10}, geom.Offset{X: 123, Y: -47})
	g.Pinch(e, 200, 93)
	e.WheelZoom(-1, 0.3, 0.9)
	g.DragFrom(e, geom.Offset{X: 200, Y: 100}, geom.Offset{X: -31, Y: 17})
	require.NotEqual(t, initial, f.store.Domains().Current)

	f.store.ResetZoom()
	assert.Equal(t, initial, f.store.Domains().Current)
}

func TestPanZoomDoubleTapResets(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.EnableWheelZoom = true
	f := newFixture(t, cfg)
	f.store.InitializeDomains(initial)
	e := f.store.PanZoom()

	e.WheelZoom(-1, 0.5, 0.5)
	require.NotEqual(t, initial, f.store.Domains().Current)

	e.DoubleTap()
	assert.Equal(t, initial, f.store.Domains().Current)
}

func TestPanZoomClampsToInitialDomain(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.ClampToInitialDomain = true
	f := newFixture(t, cfg)
	f.store.InitializeDomains(initial)
	e := f.store.PanZoom()

	e.StartPinch(100)
	e.UpdatePinch(50)
	e.EndPinch()
	e.StartPan(0, 0)
	e.UpdatePan(1000, 0, 100, 100)

	cur := f.store.Domains().Current
	assert.InDelta(t, 0, cur.X.Lo, 1e-9)
	assert.InDelta(t, 50, cur.X.Hi, 1e-9)
}

func TestAnimateResetZoom(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	f.store.InitializeDomains(initial)
	x := geom.Domain{Lo: 40, Hi: 60}
	f.store.SetDomains(interaction.DomainPatch{X: &x})

	require.True(t, f.store.AnimateResetZoom(100*time.Millisecond, ease.Linear))
	assert.True(t, f.store.Animating())

	f.step()
	mid := f.store.Domains().Current.X
	assert.Greater(t, mid.Lo, initial.X.Lo)
	assert.Less(t, mid.Lo, x.Lo)

	frames := charttest.PumpUntilIdle(f.loop, f.clock, frame, 50)
	assert.Less(t, frames, 50)
	assert.Equal(t, initial, f.store.Domains().Current, "last frame lands exactly on the initial domains")
	assert.False(t, f.store.Animating())
}

func TestSetDomainsCancelsResetAnimation(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	f.store.InitializeDomains(initial)
	x := geom.Domain{Lo: 40, Hi: 60}
	f.store.SetDomains(interaction.DomainPatch{X: &x})
	f.store.AnimateResetZoom(time.Second, nil)
	f.step()

	y := geom.Domain{Lo: 0, Hi: 1}
	f.store.SetDomains(interaction.DomainPatch{Y: &y})
	assert.False(t, f.store.Animating())
	assert.Zero(t, f.loop.Pending())
	assert.Equal(t, y, f.store.Domains().Current.Y)
}

func TestAnimateResetZoomBeforeInitialize(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	assert.False(t, f.store.AnimateResetZoom(time.Second, nil))
	assert.False(t, f.store.AnimateResetZoom(0, nil))
}

func TestDisposeCancelsPendingFrames(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	f.store.InitializeDomains(initial)
	f.store.SetPointer(&interaction.Pointer{X: 1, Y: 1})
	f.store.SetCrosshair(&interaction.Crosshair{DataX: 1})
	f.store.AnimateResetZoom(time.Second, nil)
	require.Equal(t, 3, f.loop.Pending())
	f.changes = nil

	f.store.Dispose()
	assert.Zero(t, f.loop.Pending())

	f.store.SetPointer(&interaction.Pointer{X: 2, Y: 2})
	f.store.RegisterSeries(series.Registration{ID: "a"})
	f.step()
	assert.Nil(t, f.store.Snapshot().Pointer)
	assert.Empty(t, f.store.Snapshot().Series)
	assert.Empty(t, f.changes)
}

func TestRemoveListener(t *testing.T) {
	f := newFixture(t, interaction.DefaultConfig())
	calls := 0
	remove := f.store.AddListener(func(interaction.Aspect) { calls++ })

	f.store.SetRootOffset(geom.Offset{})
	remove()
	f.store.ClearSelection()

	assert.Equal(t, 1, calls)
	assert.Len(t, f.changes, 2)
}

type panicRecorder struct{ panics []*charterrors.PanicError }

func (r *panicRecorder) HandleError(*charterrors.ChartError) {}
func (r *panicRecorder) HandlePanic(err *charterrors.PanicError) {
	r.panics = append(r.panics, err)
}

func TestPanickingListenerIsReported(t *testing.T) {
	rec := &panicRecorder{}
	charterrors.SetHandler(rec)
	t.Cleanup(func() { charterrors.SetHandler(nil) })

	f := newFixture(t, interaction.DefaultConfig())
	f.store.AddListener(func(interaction.Aspect) { panic("boom") })

	f.store.SetRootOffset(geom.Offset{})

	require.Len(t, rec.panics, 1)
	assert.Equal(t, "interaction.listener", rec.panics[0].Op)
	assert.Len(t, f.changes, 1, "other listeners still run")
}

func TestContext(t *testing.T) {
	ctx, s := interaction.Provide(context.Background(), interaction.DefaultConfig(),
		interaction.WithFrameScheduler(animation.NewFrameLoop(nil)))
	t.Cleanup(s.Dispose)

	got, ok := interaction.FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.Same(t, s, interaction.MustFromContext(ctx))

	_, ok = interaction.FromContext(context.Background())
	assert.False(t, ok)
}

func TestMustFromContextPanicsWithUsageError(t *testing.T) {
	defer func() {
		r := recover()
		ue, ok := r.(*charterrors.UsageError)
		require.True(t, ok, "panic value %T", r)
		assert.Equal(t, "interaction.MustFromContext", ue.Op)
	}()
	interaction.MustFromContext(context.Background())
	t.Fatal("expected a panic")
}

func TestStoresAreIndependent(t *testing.T) {
	a := newFixture(t, interaction.DefaultConfig())
	b := newFixture(t, interaction.DefaultConfig())

	a.store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 0)})

	assert.Len(t, a.store.Snapshot().Series, 1)
	assert.Empty(t, b.store.Snapshot().Series)
}
