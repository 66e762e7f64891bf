package panzoom

import (
	"math"

	"github.com/go-drift/charts/pkg/geom"
)

// ClampToBase keeps a candidate inside base. A candidate wider than base
// collapses to base; otherwise it is translated back inside without changing
// its span, so panning against an edge stops rather than squeezing.
func ClampToBase(candidate, base geom.Domain) geom.Domain {
	lo, hi := math.Min(base.Lo, base.Hi), math.Max(base.Lo, base.Hi)
	span := candidate.Span()
	if span >= hi-lo {
		return geom.Domain{Lo: lo, Hi: hi}
	}
	if candidate.Lo < lo {
		return geom.Domain{Lo: lo, Hi: lo + span}
	}
	if candidate.Hi > hi {
		return geom.Domain{Lo: hi - span, Hi: hi}
	}
	return candidate
}

// NoClamp returns the candidate unchanged.
func NoClamp(candidate, _ geom.Domain) geom.Domain {
	return candidate
}
