// Package spatial provides a uniform-grid point index for nearest-neighbor
// queries over a single series.
//
// The index buckets points into square cells of GridSize units and answers
// [Index.FindClosest] by scanning the query's cell and its eight neighbors.
// That scan is exact only while maxDistance <= GridSize: a closer point two or
// more cells away is never visited. Callers doing local hit-testing keep the
// radius small relative to the grid, and the index accepts the approximation
// outside that range instead of widening the scan.
package spatial

import (
	"math"

	"github.com/go-drift/charts/pkg/series"
)

// DefaultGridSize is the cell size used when New receives a non-positive size.
const DefaultGridSize = 20.0

type cell struct {
	cx, cy int
}

// Match is the result of a nearest-point query.
type Match struct {
	Point    series.Point
	Index    int // position of Point in the slice given to New
	Distance float64
}

// Index is an immutable grid over a point set. Build a new Index whenever the
// underlying points change.
type Index struct {
	gridSize   float64
	minX, minY float64
	maxX, maxY float64
	points     []series.Point
	cells      map[cell][]int
}

// New builds an index over points. The slice is retained, not copied, and
// must not be modified while the index is in use.
func New(points []series.Point, gridSize float64) *Index {
	if gridSize <= 0 || math.IsNaN(gridSize) {
		gridSize = DefaultGridSize
	}
	idx := &Index{
		gridSize: gridSize,
		points:   points,
		cells:    make(map[cell][]int),
	}
	idx.computeBounds()
	for i, p := range points {
		c := idx.cellFor(p.X, p.Y)
		idx.cells[c] = append(idx.cells[c], i)
	}
	return idx
}

func (idx *Index) computeBounds() {
	if len(idx.points) == 0 {
		idx.minX, idx.minY, idx.maxX, idx.maxY = 0, 0, 1, 1
		return
	}
	idx.minX, idx.minY = math.Inf(1), math.Inf(1)
	idx.maxX, idx.maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range idx.points {
		idx.minX = math.Min(idx.minX, p.X)
		idx.minY = math.Min(idx.minY, p.Y)
		idx.maxX = math.Max(idx.maxX, p.X)
		idx.maxY = math.Max(idx.maxY, p.Y)
	}
}

func (idx *Index) cellFor(x, y float64) cell {
	return cell{
		cx: int(math.Floor((x - idx.minX) / idx.gridSize)),
		cy: int(math.Floor((y - idx.minY) / idx.gridSize)),
	}
}

// GridSize returns the cell size.
func (idx *Index) GridSize() float64 { return idx.gridSize }

// Len returns the number of indexed points.
func (idx *Index) Len() int { return len(idx.points) }

// Bounds returns the bounding box of the indexed points. An empty index
// reports [0,1]x[0,1].
func (idx *Index) Bounds() (minX, minY, maxX, maxY float64) {
	return idx.minX, idx.minY, idx.maxX, idx.maxY
}

// FindClosest returns the point nearest to (x, y) whose Euclidean distance is
// at most maxDistance, searching the 3x3 block of cells around the query.
func (idx *Index) FindClosest(x, y, maxDistance float64) (Match, bool) {
	center := idx.cellFor(x, y)
	best := Match{Index: -1, Distance: math.Inf(1)}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			for _, i := range idx.cells[cell{cx: center.cx + dx, cy: center.cy + dy}] {
				p := idx.points[i]
				d := math.Hypot(p.X-x, p.Y-y)
				if d <= maxDistance && d < best.Distance {
					best = Match{Point: p, Index: i, Distance: d}
				}
			}
		}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}

// Linear is the exact brute-force counterpart of FindClosest over points.
func Linear(points []series.Point, x, y, maxDistance float64) (Match, bool) {
	best := Match{Index: -1, Distance: math.Inf(1)}
	for i, p := range points {
		d := math.Hypot(p.X-x, p.Y-y)
		if d <= maxDistance && d < best.Distance {
			best = Match{Point: p, Index: i, Distance: d}
		}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}
