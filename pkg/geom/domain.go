package geom

// Domain is the [Lo, Hi] range of data values mapped onto one plot axis.
type Domain struct {
	Lo float64
	Hi float64
}

// Span returns Hi - Lo. It may be zero or negative for malformed input.
func (d Domain) Span() float64 {
	return d.Hi - d.Lo
}

// Mid returns the center of the domain.
func (d Domain) Mid() float64 {
	return (d.Lo + d.Hi) * 0.5
}

// Shift returns the domain translated by delta.
func (d Domain) Shift(delta float64) Domain {
	return Domain{Lo: d.Lo + delta, Hi: d.Hi + delta}
}

// Contains reports whether v lies within the closed domain.
func (d Domain) Contains(v float64) bool {
	return v >= d.Lo && v <= d.Hi
}

// Equal reports whether both bounds are within 1e-9 of other's.
func (d Domain) Equal(other Domain) bool {
	return FloatEqual(d.Lo, other.Lo) && FloatEqual(d.Hi, other.Hi)
}

// Normalize maps v into [0,1] relative to the domain.
// A zero-span domain maps everything to 0.
func (d Domain) Normalize(v float64) float64 {
	span := d.Span()
	if span == 0 {
		return 0
	}
	return (v - d.Lo) / span
}

// Lerp maps t in [0,1] back into domain values.
func (d Domain) Lerp(t float64) float64 {
	return d.Lo + d.Span()*t
}

// Scale maps data values onto pixels along one axis of length Extent.
// When Invert is set the domain's Lo maps to Extent instead of 0, which is the
// usual orientation for a y axis where pixel rows grow downwards.
type Scale struct {
	Domain Domain
	Extent float64
	Invert bool
}

// Valid reports whether the scale can convert in both directions.
func (s Scale) Valid() bool {
	return s.Extent > 0 && s.Domain.Span() != 0
}

// ToPixel converts a data value into a pixel position.
func (s Scale) ToPixel(v float64) float64 {
	t := s.Domain.Normalize(v)
	if s.Invert {
		t = 1 - t
	}
	return t * s.Extent
}

// ToData converts a pixel position into a data value.
func (s Scale) ToData(px float64) float64 {
	if s.Extent == 0 {
		return s.Domain.Lo
	}
	t := px / s.Extent
	if s.Invert {
		t = 1 - t
	}
	return s.Domain.Lerp(t)
}

// UnitsPerPixel returns how many data units one pixel covers.
func (s Scale) UnitsPerPixel() float64 {
	if s.Extent == 0 {
		return 0
	}
	span := s.Domain.Span()
	if span < 0 {
		span = -span
	}
	return span / s.Extent
}
