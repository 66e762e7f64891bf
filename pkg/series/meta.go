package series

import "fmt"

// MetaKind discriminates the chart-specific payload carried by a point.
type MetaKind int

const (
	// MetaNone means the point has no payload.
	MetaNone MetaKind = iota
	// MetaCandlestick is an OHLC bar.
	MetaCandlestick
	// MetaBubble is a sized scatter point.
	MetaBubble
	// MetaHeatmap is a cell with an intensity value.
	MetaHeatmap
	// MetaFunnel is a funnel stage.
	MetaFunnel
	// MetaCustom is an application-defined payload.
	MetaCustom
)

func (k MetaKind) String() string {
	switch k {
	case MetaNone:
		return "none"
	case MetaCandlestick:
		return "candlestick"
	case MetaBubble:
		return "bubble"
	case MetaHeatmap:
		return "heatmap"
	case MetaFunnel:
		return "funnel"
	case MetaCustom:
		return "custom"
	default:
		return fmt.Sprintf("MetaKind(%d)", int(k))
	}
}

// Meta is the tagged union of point payloads. The set of implementations is
// closed: [Candlestick], [Bubble], [Heatmap], [Funnel] and [Custom].
type Meta interface {
	Kind() MetaKind
	isMeta()
}

// KindOf returns the kind of m, treating nil as [MetaNone].
func KindOf(m Meta) MetaKind {
	if m == nil {
		return MetaNone
	}
	return m.Kind()
}

// Candlestick is an open/high/low/close bar.
type Candlestick struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

func (Candlestick) Kind() MetaKind { return MetaCandlestick }
func (Candlestick) isMeta()        {}

// Bullish reports whether the bar closed at or above its open.
func (c Candlestick) Bullish() bool { return c.Close >= c.Open }

// Bubble is a scatter point with a size dimension.
type Bubble struct {
	Size  float64
	Label string
}

func (Bubble) Kind() MetaKind { return MetaBubble }
func (Bubble) isMeta()        {}

// Heatmap is a grid cell.
type Heatmap struct {
	Row    string
	Column string
	Value  float64
}

func (Heatmap) Kind() MetaKind { return MetaHeatmap }
func (Heatmap) isMeta()        {}

// Funnel is one stage of a funnel chart.
type Funnel struct {
	Stage   string
	Value   float64
	Percent float64
}

func (Funnel) Kind() MetaKind { return MetaFunnel }
func (Funnel) isMeta()        {}

// Custom wraps an application payload that the toolkit does not interpret.
type Custom struct {
	Value any
}

func (Custom) Kind() MetaKind { return MetaCustom }
func (Custom) isMeta()        {}
