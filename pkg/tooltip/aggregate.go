// Package tooltip derives tooltip content from interaction state: the nearest
// point of every visible series to the crosshair, and a single best entry used
// to anchor the overlay.
package tooltip

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/go-drift/charts/pkg/interaction"
	"github.com/go-drift/charts/pkg/series"
)

// epsilon is the tolerance under which two distances are equal.
const epsilon = 1e-9

// Entry is the nearest point of one series.
type Entry struct {
	SeriesID series.ID
	Name     string
	Color    string
	Point    series.Point
	Index    int

	// XDistance is |Point.X - crosshair data x|.
	XDistance float64
	// PixelDistance is |Point.Pixel.X - crosshair pixel x|. It is NaN when
	// the point has no pixel position.
	PixelDistance float64
}

// HasPixel reports whether the entry's point carries a pixel position.
func (e *Entry) HasPixel() bool {
	return e.Point.Pixel != nil
}

// Result is the aggregated tooltip for one state.
type Result struct {
	// Entries holds one entry per visible series, best first. It is only
	// filled in multi-tooltip mode.
	Entries []Entry
	// Best is the entry the overlay anchors to, or nil when no visible series
	// has points or there is no crosshair.
	Best *Entry

	AnchorPixelX float64
	AnchorPixelY float64
	// HasAnchor reports whether AnchorPixelX and AnchorPixelY are set.
	HasAnchor bool

	Pointer *interaction.Pointer
}

// Aggregate computes the tooltip for st. It never fails: missing crosshair,
// series or pixel positions produce an empty or coarser result.
func Aggregate(st interaction.State) *Result {
	res := &Result{Pointer: st.Pointer}
	if st.Crosshair == nil {
		return res
	}
	cross := *st.Crosshair

	var found []Entry
	for _, s := range st.Series {
		if !s.Visible || s.Len() == 0 {
			continue
		}
		idx := findNearestPoint(s.Points, cross, st.Pointer)
		found = append(found, newEntry(s, idx, cross))
	}
	if len(found) == 0 {
		return res
	}

	byPixel := !slices.ContainsFunc(found, func(e Entry) bool { return !e.HasPixel() })
	slices.SortStableFunc(found, func(a, b Entry) int {
		switch {
		case preferEntry(&b, &a, st.Pointer, byPixel):
			return 1
		case preferEntry(&a, &b, st.Pointer, byPixel):
			return -1
		}
		return 0
	})
	best := found[0]
	res.Best = &best
	if st.Config.MultiTooltip {
		res.Entries = found
	}

	res.AnchorPixelX = cross.PixelX
	switch {
	case best.Point.Pixel != nil:
		res.AnchorPixelY = best.Point.Pixel.Y
		res.HasAnchor = true
	case st.Pointer != nil:
		res.AnchorPixelY = st.Pointer.Y
		res.HasAnchor = true
	}
	return res
}

func newEntry(s *series.Series, idx int, cross interaction.Crosshair) Entry {
	p := s.Points[idx]
	e := Entry{
		SeriesID:      s.ID,
		Name:          s.Name,
		Color:         s.Color,
		Point:         p,
		Index:         idx,
		XDistance:     math.Abs(p.X - cross.DataX),
		PixelDistance: math.NaN(),
	}
	if p.Pixel != nil {
		e.PixelDistance = math.Abs(p.Pixel.X - cross.PixelX)
	}
	return e
}

// findNearestPoint returns the index of the point of an x-sorted, non-empty
// slice closest to the crosshair.
//
// A binary search seeds the two points bracketing the crosshair; the search
// then walks outward while the x distance does not get worse, so runs of
// equal x are all considered. The candidates are ranked with preferPoint.
func findNearestPoint(points []series.Point, cross interaction.Crosshair, pointer *interaction.Pointer) int {
	n := len(points)
	if n == 1 {
		return 0
	}
	target := cross.DataX
	hi := sort.Search(n, func(i int) bool { return points[i].X >= target })
	lo := hi - 1
	hi = min(hi, n-1)
	lo = max(lo, 0)

	dist := func(i int) float64 { return math.Abs(points[i].X - target) }
	bestDist := math.Min(dist(lo), dist(hi))

	for lo > 0 && dist(lo-1) <= bestDist+epsilon {
		lo--
	}
	for hi < n-1 && dist(hi+1) <= bestDist+epsilon {
		hi++
	}

	byPixel := !slices.ContainsFunc(points[lo:hi+1], func(p series.Point) bool { return !hasPixel(p) })
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if preferPoint(points[i], points[best], cross, pointer, byPixel) {
			best = i
		}
	}
	return best
}

// preferPoint reports whether a is strictly better than b for the crosshair.
// Pixel x distance is compared when byPixel is set, data x distance
// otherwise. Equal distances fall back to the y pixel distance to the pointer
// when it is inside the chart.
//
// byPixel is decided once for a whole candidate set so the order stays
// transitive.
func preferPoint(a, b series.Point, cross interaction.Crosshair, pointer *interaction.Pointer, byPixel bool) bool {
	var da, db float64
	if byPixel {
		da, db = math.Abs(a.Pixel.X-cross.PixelX), math.Abs(b.Pixel.X-cross.PixelX)
	} else {
		da, db = math.Abs(a.X-cross.DataX), math.Abs(b.X-cross.DataX)
	}
	if c := compareDistance(da, db); c != 0 {
		return c < 0
	}
	return closerInY(a, b, pointer) < 0
}

// preferEntry reports whether a should rank before b across series, using the
// same policy as preferPoint.
func preferEntry(a, b *Entry, pointer *interaction.Pointer, byPixel bool) bool {
	var c int
	if byPixel {
		c = compareDistance(a.PixelDistance, b.PixelDistance)
	} else {
		c = compareDistance(a.XDistance, b.XDistance)
	}
	if c != 0 {
		return c < 0
	}
	return closerInY(a.Point, b.Point, pointer) < 0
}

func compareDistance(a, b float64) int {
	if math.Abs(a-b) <= epsilon {
		return 0
	}
	return cmp.Compare(a, b)
}

// closerInY compares the y pixel distance of a and b to an inside pointer.
// It returns 0 when the comparison is not possible.
func closerInY(a, b series.Point, pointer *interaction.Pointer) int {
	if pointer == nil || !pointer.Inside || !hasPixel(a) || !hasPixel(b) {
		return 0
	}
	return compareDistance(math.Abs(a.Pixel.Y-pointer.Y), math.Abs(b.Pixel.Y-pointer.Y))
}

func hasPixel(p series.Point) bool {
	return p.Pixel != nil
}
