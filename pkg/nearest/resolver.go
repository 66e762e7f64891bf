// Package nearest resolves pixel positions to the closest data point across a
// set of series.
//
// Small series are scanned linearly in pixel space. Series with at least
// [IndexThreshold] points are searched through a [spatial.Index] built in data
// space, memoized per points slice so repeated lookups during pointer moves
// and visibility toggles do not rebuild it.
package nearest

import (
	"math"
	"sync"

	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/series"
	"github.com/go-drift/charts/pkg/spatial"
)

const (
	// IndexThreshold is the point count at which a series switches from a
	// linear scan to a spatial index.
	IndexThreshold = 1000

	// DefaultMaxDistance is the search radius in pixels when a lookup does
	// not specify one.
	DefaultMaxDistance = 30.0
)

// Match is a resolved data point.
type Match struct {
	SeriesID series.ID
	Point    series.Point
	Index    int     // position within the series' points
	Distance float64 // pixels
}

// Lookup finds the data point closest to (chartX, chartY). A maxDistancePx of
// zero or less uses [DefaultMaxDistance].
type Lookup func(chartX, chartY, maxDistancePx float64) (Match, bool)

// Resolver owns the index cache shared by successive lookups. It is safe for
// concurrent use.
type Resolver struct {
	// GridSize is the spatial index cell size in data units. Zero uses
	// spatial.DefaultGridSize.
	GridSize float64

	// Threshold overrides IndexThreshold when positive.
	Threshold int

	mu      sync.Mutex
	indexes map[pointsKey]*spatial.Index
}

// pointsKey identifies a points slice. The store never mutates a published
// slice, so the same backing array and length mean the same points.
type pointsKey struct {
	first *series.Point
	n     int
}

func keyOf(s *series.Series) pointsKey {
	if len(s.Points) == 0 {
		return pointsKey{}
	}
	return pointsKey{first: &s.Points[0], n: len(s.Points)}
}

// NewResolver returns a Resolver with default settings.
func NewResolver() *Resolver {
	return &Resolver{}
}

func (r *Resolver) threshold() int {
	if r.Threshold > 0 {
		return r.Threshold
	}
	return IndexThreshold
}

// Bind captures the current series list, domains and plot size and returns a
// Lookup over them. Cached indexes for series no longer in list are dropped,
// so a Resolver never retains more indexes than the latest binding needs.
func (r *Resolver) Bind(list []*series.Series, xDomain, yDomain geom.Domain, plot geom.Size) Lookup {
	xs := geom.Scale{Domain: xDomain, Extent: plot.Width}
	ys := geom.Scale{Domain: yDomain, Extent: plot.Height, Invert: true}
	r.prune(list)

	return func(chartX, chartY, maxDistancePx float64) (Match, bool) {
		if maxDistancePx <= 0 {
			maxDistancePx = DefaultMaxDistance
		}
		query := geom.Offset{X: chartX, Y: chartY}
		best := Match{Index: -1, Distance: math.Inf(1)}
		for _, s := range list {
			if s == nil || !s.Visible || len(s.Points) == 0 {
				continue
			}
			var (
				m  Match
				ok bool
			)
			if len(s.Points) >= r.threshold() && xs.Valid() && ys.Valid() {
				m, ok = r.searchIndexed(s, xs, ys, query, maxDistancePx)
			} else {
				m, ok = searchLinear(s, xs, ys, query, maxDistancePx)
			}
			// Strict comparison keeps the earlier series on ties.
			if ok && m.Distance < best.Distance {
				best = m
			}
		}
		if best.Index < 0 {
			return Match{}, false
		}
		return best, true
	}
}

func (r *Resolver) searchIndexed(s *series.Series, xs, ys geom.Scale, q geom.Offset, maxPx float64) (Match, bool) {
	idx := r.index(s)
	dataX := xs.ToData(q.X)
	dataY := ys.ToData(q.Y)
	// With different units per pixel on each axis a pixel circle becomes an
	// ellipse in data space; searching with the larger semi-axis covers it.
	radius := maxPx * math.Max(xs.UnitsPerPixel(), ys.UnitsPerPixel())

	found, ok := idx.FindClosest(dataX, dataY, radius)
	if !ok {
		return Match{}, false
	}
	px := pixelOf(found.Point, xs, ys)
	d := px.Distance(q)
	if d > maxPx {
		return Match{}, false
	}
	return Match{SeriesID: s.ID, Point: found.Point, Index: found.Index, Distance: d}, true
}

func searchLinear(s *series.Series, xs, ys geom.Scale, q geom.Offset, maxPx float64) (Match, bool) {
	best := Match{Index: -1, Distance: math.Inf(1)}
	for i, p := range s.Points {
		if p.Pixel == nil && !(xs.Valid() && ys.Valid()) {
			continue
		}
		d := pixelOf(p, xs, ys).Distance(q)
		if d <= maxPx && d < best.Distance {
			best = Match{SeriesID: s.ID, Point: p, Index: i, Distance: d}
		}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}

// pixelOf prefers the chart-supplied pixel position and projects otherwise.
func pixelOf(p series.Point, xs, ys geom.Scale) geom.Offset {
	if p.Pixel != nil {
		return *p.Pixel
	}
	return geom.Offset{X: xs.ToPixel(p.X), Y: ys.ToPixel(p.Y)}
}

func (r *Resolver) index(s *series.Series) *spatial.Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := keyOf(s)
	if idx, ok := r.indexes[key]; ok {
		return idx
	}
	if r.indexes == nil {
		r.indexes = make(map[pointsKey]*spatial.Index)
	}
	idx := spatial.New(s.Points, r.GridSize)
	r.indexes[key] = idx
	return idx
}

func (r *Resolver) prune(list []*series.Series) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.indexes) == 0 {
		return
	}
	live := make(map[pointsKey]struct{}, len(list))
	for _, s := range list {
		if s != nil {
			live[keyOf(s)] = struct{}{}
		}
	}
	for k := range r.indexes {
		if _, ok := live[k]; !ok {
			delete(r.indexes, k)
		}
	}
}

// CachedIndexes reports how many spatial indexes are currently memoized.
func (r *Resolver) CachedIndexes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.indexes)
}
