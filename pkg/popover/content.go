package popover

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/go-drift/charts/pkg/series"
	"github.com/go-drift/charts/pkg/tooltip"
)

// Line is one label/value row of popover content.
type Line struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Block is the content shown for one series.
type Block struct {
	Title string `json:"title,omitempty"`
	Color string `json:"color,omitempty"`
	Lines []Line `json:"lines"`
}

// Formatter renders tooltip content with locale-aware number formatting.
type Formatter struct {
	printer  *message.Printer
	fraction int
}

// NewFormatter returns a Formatter for tag that prints at most maxFraction
// fraction digits. A negative maxFraction uses the locale's default pattern.
func NewFormatter(tag language.Tag, maxFraction int) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), fraction: maxFraction}
}

// Number formats v with grouping separators.
func (f *Formatter) Number(v float64) string {
	if f.fraction < 0 {
		return f.printer.Sprint(number.Decimal(v))
	}
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(f.fraction)))
}

// Lines returns the rows for a point. Points without metadata show x and y;
// the others show the fields of their metadata kind.
func (f *Formatter) Lines(p series.Point) []Line {
	if p.Meta == nil {
		return []Line{{"x", f.Number(p.X)}, {"y", f.Number(p.Y)}}
	}
	return f.MetaLines(p.Meta)
}

// MetaLines returns the rows for a metadata payload, such as the one a chart
// attaches to the pointer in single-tooltip mode. A nil payload has no rows.
func (f *Formatter) MetaLines(m series.Meta) []Line {
	switch m := m.(type) {
	case nil:
		return nil
	case series.Candlestick:
		lines := []Line{
			{"open", f.Number(m.Open)},
			{"high", f.Number(m.High)},
			{"low", f.Number(m.Low)},
			{"close", f.Number(m.Close)},
		}
		if m.Volume > 0 {
			lines = append(lines, Line{"volume", f.Number(m.Volume)})
		}
		return lines
	case series.Bubble:
		lines := []Line{{"size", f.Number(m.Size)}}
		if m.Label != "" {
			lines = append([]Line{{"label", m.Label}}, lines...)
		}
		return lines
	case series.Heatmap:
		return []Line{{"row", m.Row}, {"column", m.Column}, {"value", f.Number(m.Value)}}
	case series.Funnel:
		return []Line{{"stage", m.Stage}, {"value", f.Number(m.Value)}, {"percent", f.Number(m.Percent) + "%"}}
	case series.Custom:
		return []Line{{"value", fmt.Sprint(m.Value)}}
	default:
		panic(fmt.Sprintf("popover: unhandled meta kind %v", m.Kind()))
	}
}

// Blocks returns the popover content for res: one block per entry in
// multi-tooltip mode, otherwise a single block for the pointer payload or,
// without one, the best entry.
func (f *Formatter) Blocks(res *tooltip.Result) []Block {
	if res == nil {
		return nil
	}
	if len(res.Entries) > 0 {
		blocks := make([]Block, len(res.Entries))
		for i, e := range res.Entries {
			blocks[i] = f.entryBlock(e)
		}
		return blocks
	}
	if res.Pointer != nil && res.Pointer.Data != nil {
		return []Block{{Lines: f.MetaLines(res.Pointer.Data)}}
	}
	if res.Best != nil {
		return []Block{f.entryBlock(*res.Best)}
	}
	return nil
}

func (f *Formatter) entryBlock(e tooltip.Entry) Block {
	title := e.Name
	if title == "" {
		title = string(e.SeriesID)
	}
	return Block{Title: title, Color: e.Color, Lines: f.Lines(e.Point)}
}
