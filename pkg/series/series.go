// Package series defines the data model that charts register with an
// interaction store: points, their optional chart-specific metadata, and the
// registered series that own them.
package series

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/go-drift/charts/pkg/geom"
)

// ID identifies a series within one interaction store. Numeric identifiers
// are carried as their decimal string form, see [IntID].
type ID string

// IntID returns the ID for a numeric series identifier.
func IntID(n int) ID {
	return ID(strconv.Itoa(n))
}

// Point is one data point of a series.
type Point struct {
	X float64
	Y float64

	// Pixel is the point's position in chart coordinates, set by charts that
	// have already laid the point out. Nil means the position is unknown and
	// consumers fall back to data-space distances.
	Pixel *geom.Offset

	// Meta carries chart-type specific details for tooltips.
	Meta Meta
}

// At returns a point at (x, y) with no pixel position.
func At(x, y float64) Point {
	return Point{X: x, Y: y}
}

// WithPixel returns a copy of p positioned at (px, py) in chart coordinates.
func (p Point) WithPixel(px, py float64) Point {
	p.Pixel = &geom.Offset{X: px, Y: py}
	return p
}

// Registration is what a chart submits when it (re)computes its layout.
type Registration struct {
	ID     ID
	Name   string
	Color  string
	Points []Point

	// Hidden registers the series as invisible. It only applies the first
	// time an ID is registered; afterwards visibility is owned by the store.
	Hidden bool
}

// Series is a registered series as held by an interaction store.
//
// A *Series is never mutated after it has been published by a store. Any
// change produces a new *Series, so pointer equality can be used to detect
// changes.
type Series struct {
	ID      ID
	Name    string
	Color   string
	Points  []Point
	Visible bool
}

// Len returns the number of points.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Last returns the last point and whether the series has any.
func (s *Series) Last() (Point, bool) {
	if s.Len() == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// WithVisible returns a copy of s with the visibility flag replaced.
func (s *Series) WithVisible(visible bool) *Series {
	next := *s
	next.Visible = visible
	return &next
}

// SortedByX returns points ordered ascending by X. The input is returned
// as-is when it is already sorted; otherwise a sorted copy is returned and the
// caller's slice is left untouched. Equal X values keep their input order.
func SortedByX(points []Point) []Point {
	if IsSortedByX(points) {
		return points
	}
	sorted := slices.Clone(points)
	SortByX(sorted)
	return sorted
}

// SortByX sorts points ascending by X in place. Equal X values keep their
// order.
func SortByX(points []Point) {
	if IsSortedByX(points) {
		return
	}
	slices.SortStableFunc(points, func(a, b Point) int {
		return cmp.Compare(a.X, b.X)
	})
}

// IsSortedByX reports whether points are ascending by X in a single pass.
func IsSortedByX(points []Point) bool {
	for i := 1; i < len(points); i++ {
		if points[i].X < points[i-1].X {
			return false
		}
	}
	return true
}

// SameShape reports whether a registration would render identically to s
// for the purposes of change detection: same point count, same last point
// coordinates, same name and color. Interior points are deliberately not
// compared.
func (s *Series) SameShape(name, color string, points []Point) bool {
	if s.Name != name || s.Color != color {
		return false
	}
	if len(s.Points) != len(points) {
		return false
	}
	if len(points) == 0 {
		return true
	}
	a := s.Points[len(s.Points)-1]
	b := points[len(points)-1]
	return a.X == b.X && a.Y == b.Y
}
