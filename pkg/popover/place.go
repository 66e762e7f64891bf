// Package popover positions and fills the floating tooltip overlay.
//
// It consumes a tooltip.Result: Place turns the anchor into a top-left
// position inside a container, Visibility hides the overlay only after a
// grace period, and Lines formats entry content by metadata kind.
package popover

import (
	"math"

	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/tooltip"
)

// DefaultGap is the distance between the anchor and the popover.
const DefaultGap = 12

// Placement configures Place.
type Placement struct {
	// Gap separates the popover from the anchor. Zero uses DefaultGap.
	Gap float64
	// Margin is the minimum distance kept from the container edges.
	Margin float64
}

// Position is a placed popover.
type Position struct {
	// TopLeft is the popover origin in the container's coordinates.
	TopLeft geom.Offset
	// Left and Above report which side of the anchor the popover ended up on.
	Left  bool
	Above bool
}

// Rect returns the popover bounds for size.
func (p Position) Rect(size geom.Size) geom.Rect {
	return geom.RectFromLTWH(p.TopLeft.X, p.TopLeft.Y, size.Width, size.Height)
}

// Place positions a popover of the given size next to anchor inside bounds.
//
// The popover goes to the right of and above the anchor, flips to the other
// side on either axis when it would overflow, and is finally clamped into
// bounds. A popover larger than bounds is aligned to the top-left edge.
func Place(anchor geom.Offset, size geom.Size, bounds geom.Rect, opts Placement) Position {
	gap := opts.Gap
	if gap == 0 {
		gap = DefaultGap
	}
	minX, maxX := bounds.Left+opts.Margin, bounds.Right-opts.Margin-size.Width
	minY, maxY := bounds.Top+opts.Margin, bounds.Bottom-opts.Margin-size.Height

	var pos Position
	x := anchor.X + gap
	if x > maxX {
		if left := anchor.X - gap - size.Width; left >= minX {
			x, pos.Left = left, true
		}
	}
	y := anchor.Y - gap - size.Height
	pos.Above = true
	if y < minY {
		if below := anchor.Y + gap; below <= maxY {
			y, pos.Above = below, false
		}
	}
	pos.TopLeft = geom.Offset{X: clamp(x, minX, maxX), Y: clamp(y, minY, maxY)}
	return pos
}

// clamp keeps v in [lo, hi], preferring lo when the range is empty.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Frame locates a chart inside its provider's root element.
type Frame struct {
	// Origin is the chart plot origin relative to the root element.
	Origin geom.Offset
	// Root is the root element's page offset, when known.
	Root *geom.Offset
}

// Anchor converts the result anchor from chart pixels to container
// coordinates, or to page coordinates when page is true and the root offset
// is known. It reports false when the result has no anchor.
func (f Frame) Anchor(res *tooltip.Result, page bool) (geom.Offset, bool) {
	if res == nil || !res.HasAnchor {
		return geom.Offset{}, false
	}
	p := f.Origin.Add(geom.Offset{X: res.AnchorPixelX, Y: res.AnchorPixelY})
	if page && f.Root != nil {
		p = p.Add(*f.Root)
	}
	return p, true
}
