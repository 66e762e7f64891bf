package spatial

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/charts/pkg/series"
)

func randomPoints(r *rand.Rand, n int, w, h float64) []series.Point {
	pts := make([]series.Point, n)
	for i := range pts {
		pts[i] = series.At(r.Float64()*w, r.Float64()*h)
	}
	return pts
}

func TestEmptyIndexBounds(t *testing.T) {
	idx := New(nil, 0)
	minX, minY, maxX, maxY := idx.Bounds()
	assert.Equal(t, [4]float64{0, 0, 1, 1}, [4]float64{minX, minY, maxX, maxY})
	assert.Equal(t, DefaultGridSize, idx.GridSize())

	_, ok := idx.FindClosest(0.5, 0.5, 100)
	assert.False(t, ok)
}

func TestFindClosestRespectsMaxDistance(t *testing.T) {
	pts := []series.Point{series.At(0, 0), series.At(10, 0), series.At(10, 10)}
	idx := New(pts, 20)

	m, ok := idx.FindClosest(9, 1, 5)
	require.True(t, ok)
	assert.Equal(t, 1, m.Index)
	assert.InDelta(t, 1.4142, m.Distance, 1e-3)

	_, ok = idx.FindClosest(5, 5, 2)
	assert.False(t, ok, "nothing within 2 units of (5,5)")
}

func TestFindClosestAgreesWithLinearWithinGrid(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	pts := randomPoints(r, 2500, 1000, 600)
	const grid = 20.0
	idx := New(pts, grid)

	for q := range 250 {
		x := r.Float64()*1100 - 50
		y := r.Float64()*700 - 50
		maxDist := grid * float64(q%4+1) / 4 // 5, 10, 15, 20

		want, wantOK := Linear(pts, x, y, maxDist)
		got, gotOK := idx.FindClosest(x, y, maxDist)
		require.Equal(t, wantOK, gotOK, "query %d at (%.2f,%.2f) r=%v", q, x, y, maxDist)
		if wantOK {
			assert.InDelta(t, want.Distance, got.Distance, 1e-12, "query %d", q)
		}
	}
}

// A 3x3 neighborhood cannot see points two cells away, so a radius wider than
// the grid may report a farther point, or none at all.
func TestFindClosestBeyondGridIsApproximate(t *testing.T) {
	pts := []series.Point{
		series.At(0, 0),    // cell 0, anchors the grid origin
		series.At(9.9, 0),  // cell 0
		series.At(30.5, 0), // cell 3
		series.At(100, 0),  // cell 10
	}
	idx := New(pts, 10)

	// Inside the grid size the answer is exact.
	got, ok := idx.FindClosest(12, 0, 10)
	require.True(t, ok)
	assert.Equal(t, 1, got.Index)

	// Query at x=20 (cell 2) with radius 15: the true nearest is x=9.9 in
	// cell 0, but only cells 1..3 are scanned, so x=30.5 wins.
	want, ok := Linear(pts, 20, 0, 15)
	require.True(t, ok)
	assert.Equal(t, 1, want.Index)
	got, ok = idx.FindClosest(20, 0, 15)
	require.True(t, ok)
	assert.Equal(t, 2, got.Index)
	assert.Greater(t, got.Distance, want.Distance)

	// Query at x=70 (cell 7): x=100 is within 35 units but three cells away.
	_, ok = idx.FindClosest(70, 0, 35)
	assert.False(t, ok)
	_, ok = Linear(pts, 70, 0, 35)
	assert.True(t, ok)
}

func TestLinearExhaustiveGrid(t *testing.T) {
	pts := []series.Point{
		series.At(1, 1), series.At(4, 2), series.At(7, 7), series.At(2, 9), series.At(9, 3),
	}
	for qx := 0.0; qx <= 10; qx += 0.5 {
		for qy := 0.0; qy <= 10; qy += 0.5 {
			got, ok := Linear(pts, qx, qy, 3)
			best, bestD := -1, 3.0
			for i, p := range pts {
				d := dist(p.X, p.Y, qx, qy)
				if d <= bestD && (best < 0 || d < dist(pts[best].X, pts[best].Y, qx, qy)) {
					best, bestD = i, d
				}
			}
			if best < 0 {
				assert.False(t, ok, "(%v,%v)", qx, qy)
				continue
			}
			require.True(t, ok, "(%v,%v)", qx, qy)
			assert.InDelta(t, dist(pts[best].X, pts[best].Y, qx, qy), got.Distance, 1e-12)
		}
	}
}

func dist(ax, ay, bx, by float64) float64 {
	dx, dy := ax-bx, ay-by
	return math.Sqrt(dx*dx + dy*dy)
}

func BenchmarkFindClosest(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 4))
	pts := randomPoints(r, 10000, 2000, 1000)
	idx := New(pts, 20)
	b.ResetTimer()
	for i := range b.N {
		idx.FindClosest(float64(i%2000), float64(i%1000), 15)
	}
}

func BenchmarkLinear(b *testing.B) {
	r := rand.New(rand.NewPCG(3, 4))
	pts := randomPoints(r, 10000, 2000, 1000)
	b.ResetTimer()
	for i := range b.N {
		Linear(pts, float64(i%2000), float64(i%1000), 15)
	}
}
