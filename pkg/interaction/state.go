package interaction

import (
	"strings"

	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/series"
)

// Pointer is the shared pointer position in chart coordinates.
type Pointer struct {
	X      float64
	Y      float64
	Inside bool

	// Page is the position in page coordinates, when the host reports it.
	Page *geom.Offset

	// Data is a chart-specific payload set by the chart under the pointer
	// for single-tooltip mode.
	Data series.Meta
}

// Crosshair is the shared vertical slice, in data and pixel x.
type Crosshair struct {
	DataX  float64
	PixelX float64
}

// DomainPair holds the x and y domains of a chart.
type DomainPair struct {
	X geom.Domain
	Y geom.Domain
}

// Domains pairs the initial domains, fixed when first initialized and used
// as the clamp and reset anchor, with the current pan/zoom domains.
type Domains struct {
	Initial DomainPair
	Current DomainPair
}

// DomainPatch updates one or both current domains. Nil fields are left alone.
type DomainPatch struct {
	X *geom.Domain
	Y *geom.Domain
}

// Selection is a point selected by the user.
type Selection struct {
	SeriesID series.ID
	Index    int
	Point    series.Point
}

// State is a read-only snapshot of a Store.
//
// Every field is replaced, never modified, when the store changes, so
// snapshots can be compared by pointer (and the Series elements by pointer) to
// detect changes. Callers must not modify anything reachable from a State.
type State struct {
	Pointer        *Pointer
	Crosshair      *Crosshair
	SelectedPoints []Selection
	Series         []*series.Series
	Domains        *Domains
	RootOffset     *geom.Offset
	Config         Config
}

// SeriesByID returns the registered series with the given id.
func (s State) SeriesByID(id series.ID) (*series.Series, bool) {
	for _, entry := range s.Series {
		if entry.ID == id {
			return entry, true
		}
	}
	return nil, false
}

// VisibleSeries returns the visible series in registration order.
func (s State) VisibleSeries() []*series.Series {
	out := make([]*series.Series, 0, len(s.Series))
	for _, entry := range s.Series {
		if entry.Visible {
			out = append(out, entry)
		}
	}
	return out
}

// Aspect is a bitmask naming the parts of State a change touched.
type Aspect uint8

const (
	AspectPointer Aspect = 1 << iota
	AspectCrosshair
	AspectSeries
	AspectDomains
	AspectRootOffset
	AspectSelection

	// AspectAll matches every aspect.
	AspectAll = AspectPointer | AspectCrosshair | AspectSeries | AspectDomains | AspectRootOffset | AspectSelection
)

// Has reports whether a includes any of other.
func (a Aspect) Has(other Aspect) bool {
	return a&other != 0
}

func (a Aspect) String() string {
	if a == 0 {
		return "none"
	}
	names := []struct {
		bit  Aspect
		name string
	}{
		{AspectPointer, "pointer"},
		{AspectCrosshair, "crosshair"},
		{AspectSeries, "series"},
		{AspectDomains, "domains"},
		{AspectRootOffset, "rootOffset"},
		{AspectSelection, "selection"},
	}
	var parts []string
	for _, n := range names {
		if a.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
