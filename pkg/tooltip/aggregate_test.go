package tooltip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/charts/pkg/animation"
	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/interaction"
	"github.com/go-drift/charts/pkg/series"
	charttest "github.com/go-drift/charts/pkg/testing"
)

func pts(xy ...float64) []series.Point {
	out := make([]series.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, series.At(xy[i], xy[i+1]))
	}
	return out
}

func entryFor(t *testing.T, res *Result, id series.ID) Entry {
	t.Helper()
	for _, e := range res.Entries {
		if e.SeriesID == id {
			return e
		}
	}
	t.Fatalf("no entry for series %q in %+v", id, res.Entries)
	return Entry{}
}

func TestScenario(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.MultiTooltip = true
	clock := charttest.NewFakeClock()
	loop := animation.NewFrameLoop(clock)
	store := interaction.NewStore(cfg, interaction.WithFrameScheduler(loop))
	defer store.Dispose()
	agg := NewAggregator(store, nil)
	defer agg.Dispose()

	store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 2, 2, 4, 4, 8)})
	store.RegisterSeries(series.Registration{ID: "b", Points: pts(0, 3, 3, 9, 6, 27)})

	store.SetCrosshair(&interaction.Crosshair{DataX: 2})
	charttest.Pump(loop, clock, 1, 0)
	res := agg.Result()
	require.Len(t, res.Entries, 2)
	assert.Equal(t, series.ID("a"), res.Entries[0].SeriesID)
	assert.Equal(t, 2.0, res.Entries[0].Point.X)
	assert.Equal(t, 3.0, res.Entries[1].Point.X)

	store.SetCrosshair(&interaction.Crosshair{DataX: 5.2})
	charttest.Pump(loop, clock, 1, 0)
	res = agg.Result()
	require.Len(t, res.Entries, 2)
	assert.Equal(t, 4.0, entryFor(t, res, "a").Point.X)
	assert.Equal(t, 6.0, entryFor(t, res, "b").Point.X)

	store.UpdateSeriesVisibility("b", false)
	assert.Len(t, agg.Result().Entries, 1)
}

func TestBestEntryBreaksTiesByPointerY(t *testing.T) {
	a := &series.Series{ID: "a", Visible: true, Points: []series.Point{series.At(2, 10).WithPixel(50, 100)}}
	b := &series.Series{ID: "b", Visible: true, Points: []series.Point{series.At(2, 20).WithPixel(50, 40)}}
	st := interaction.State{
		Series:    []*series.Series{a, b},
		Crosshair: &interaction.Crosshair{DataX: 2, PixelX: 50},
		Pointer:   &interaction.Pointer{X: 50, Y: 45, Inside: true},
	}

	res := Aggregate(st)
	require.NotNil(t, res.Best)
	assert.Equal(t, series.ID("b"), res.Best.SeriesID)
	assert.Empty(t, res.Entries, "single-tooltip mode leaves entries empty")
	assert.True(t, res.HasAnchor)
	assert.Equal(t, 50.0, res.AnchorPixelX)
	assert.Equal(t, 40.0, res.AnchorPixelY, "anchored to the point, not the pointer")

	st.Pointer.Inside = false
	assert.Equal(t, series.ID("a"), Aggregate(st).Best.SeriesID, "outside pointer keeps registration order")
}

func TestMixedPixelEntriesRankByDataDistance(t *testing.T) {
	// By pixel c beats a, by data a beats b beats c: mixing the two metrics
	// would make the order depend on registration order.
	a := &series.Series{ID: "a", Visible: true, Points: []series.Point{series.At(2.1, 0).WithPixel(100, 0)}}
	b := &series.Series{ID: "b", Visible: true, Points: []series.Point{series.At(2.5, 0)}}
	c := &series.Series{ID: "c", Visible: true, Points: []series.Point{series.At(2.9, 0).WithPixel(21, 0)}}
	orders := [][]*series.Series{{a, b, c}, {c, b, a}, {b, c, a}, {c, a, b}}

	for _, list := range orders {
		res := Aggregate(interaction.State{
			Series:    list,
			Crosshair: &interaction.Crosshair{DataX: 2, PixelX: 20},
			Config:    interaction.Config{MultiTooltip: true},
		})
		require.Len(t, res.Entries, 3)
		got := []series.ID{res.Entries[0].SeriesID, res.Entries[1].SeriesID, res.Entries[2].SeriesID}
		assert.Equal(t, []series.ID{"a", "b", "c"}, got)
	}
}

func TestFindNearestPoint(t *testing.T) {
	points := pts(0, 0, 1, 1, 3, 3, 3, 30, 3, 300, 7, 7)
	cases := []struct {
		x    float64
		want int
	}{
		{-5, 0},
		{0.4, 0},
		{0.6, 1},
		{2.9, 2},
		{4.9, 2},
		{5.1, 5},
		{99, 5},
	}
	for _, c := range cases {
		got := findNearestPoint(points, interaction.Crosshair{DataX: c.x}, nil)
		assert.Equal(t, c.want, got, "x=%v", c.x)
	}
}

func TestFindNearestPointConsidersEqualXRuns(t *testing.T) {
	points := []series.Point{
		series.At(3, 1).WithPixel(30, 190),
		series.At(3, 5).WithPixel(30, 150),
		series.At(3, 9).WithPixel(30, 110),
		series.At(4, 0).WithPixel(40, 200),
	}
	cross := interaction.Crosshair{DataX: 3.2, PixelX: 32}
	pointer := &interaction.Pointer{X: 32, Y: 112, Inside: true}

	assert.Equal(t, 2, findNearestPoint(points, cross, pointer), "the point nearest the pointer in y wins the run")
	assert.Equal(t, 0, findNearestPoint(points, cross, nil), "without a pointer the first of the run wins")
}

func TestFindNearestPointPrefersPixelDistance(t *testing.T) {
	// Pixel positions disagree with data distance, as on a log axis.
	points := []series.Point{
		series.At(1, 0).WithPixel(10, 0),
		series.At(10, 0).WithPixel(60, 0),
	}
	cross := interaction.Crosshair{DataX: 4, PixelX: 50}
	assert.Equal(t, 1, findNearestPoint(points, cross, nil))

	points[1].Pixel = nil
	assert.Equal(t, 0, findNearestPoint(points, cross, nil), "falls back to data distance")
}

func TestAggregateDegradedInput(t *testing.T) {
	s := &series.Series{ID: "a", Visible: true, Points: pts(0, 0, 1, 1)}
	empty := &series.Series{ID: "e", Visible: true}
	pointer := &interaction.Pointer{X: 1, Y: 2}

	res := Aggregate(interaction.State{Series: []*series.Series{s}, Pointer: pointer})
	assert.Nil(t, res.Best, "no crosshair")
	assert.Same(t, pointer, res.Pointer)

	res = Aggregate(interaction.State{
		Series:    []*series.Series{empty, s},
		Crosshair: &interaction.Crosshair{DataX: 0.9, PixelX: 90},
		Pointer:   pointer,
		Config:    interaction.Config{MultiTooltip: true},
	})
	require.Len(t, res.Entries, 1)
	assert.Equal(t, 1, res.Best.Index)
	assert.True(t, math.IsNaN(res.Best.PixelDistance))
	assert.Equal(t, 2.0, res.AnchorPixelY, "falls back to the pointer")

	res = Aggregate(interaction.State{Series: []*series.Series{s}, Crosshair: &interaction.Crosshair{}})
	assert.False(t, res.HasAnchor)
}

func TestAggregatorMemoizes(t *testing.T) {
	cfg := interaction.DefaultConfig()
	cfg.CrosshairRAF = false
	cfg.PointerRAF = false
	store := interaction.NewStore(cfg, interaction.WithFrameScheduler(animation.NewFrameLoop(nil)))
	defer store.Dispose()

	var pushed []*Result
	agg := NewAggregator(store, func(r *Result) { pushed = append(pushed, r) })
	defer agg.Dispose()

	store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 0, 1, 1)})
	store.SetCrosshair(&interaction.Crosshair{DataX: 1})
	first := agg.Result()
	assert.Same(t, first, agg.Result())

	store.RegisterSeries(series.Registration{ID: "a", Points: pts(0, 0, 1, 1)})
	store.SetRootOffset(geom.Offset{X: 1})
	assert.Same(t, first, agg.Result(), "unrelated and no-op changes keep the result")

	store.SetCrosshair(&interaction.Crosshair{DataX: 0})
	second := agg.Result()
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, second.Best.Index)
	assert.Len(t, pushed, 3)
	assert.Same(t, second, pushed[len(pushed)-1])

	agg.Dispose()
	store.SetCrosshair(nil)
	assert.Len(t, pushed, 3)
}
