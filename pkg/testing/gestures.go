package testing

import "github.com/go-drift/charts/pkg/geom"

// Panner receives pan gestures. panzoom.Engine implements it.
type Panner interface {
	StartPan(x, y float64)
	UpdatePan(x, y, plotWidth, plotHeight float64)
	EndPan()
}

// Pincher receives pinch gestures. panzoom.Engine implements it.
type Pincher interface {
	StartPinch(distance float64)
	UpdatePinch(distance float64)
	EndPinch()
}

// Gestures replays pointer gestures in evenly spaced steps.
type Gestures struct {
	// Plot is passed to UpdatePan.
	Plot geom.Size
	// Steps is the number of intermediate moves. Zero means one move.
	Steps int
	// AfterMove, if set, runs after every intermediate move, e.g. to step a
	// frame loop between pointer events.
	AfterMove func()
}

func (g Gestures) steps() int {
	if g.Steps <= 0 {
		return 1
	}
	return g.Steps
}

func (g Gestures) after() {
	if g.AfterMove != nil {
		g.AfterMove()
	}
}

// DragFrom simulates a pan from start by delta.
func (g Gestures) DragFrom(p Panner, start, delta geom.Offset) {
	p.StartPan(start.X, start.Y)
	for _, pos := range Path(start, start.Add(delta), g.steps())[1:] {
		p.UpdatePan(pos.X, pos.Y, g.Plot.Width, g.Plot.Height)
		g.after()
	}
	p.EndPan()
}

// Pinch simulates two fingers moving from fromDistance apart to toDistance.
func (g Gestures) Pinch(p Pincher, fromDistance, toDistance float64) {
	p.StartPinch(fromDistance)
	n := g.steps()
	for i := 1; i <= n; i++ {
		frac := float64(i) / float64(n)
		p.UpdatePinch(fromDistance + (toDistance-fromDistance)*frac)
		g.after()
	}
	p.EndPinch()
}

// Hover feeds every position of path to move.
func (g Gestures) Hover(path []geom.Offset, move func(geom.Offset)) {
	for _, pos := range path {
		move(pos)
		g.after()
	}
}

// Path returns steps+1 evenly spaced positions from start to end inclusive.
func Path(start, end geom.Offset, steps int) []geom.Offset {
	if steps <= 0 {
		return []geom.Offset{start, end}
	}
	path := make([]geom.Offset, 0, steps+1)
	for i := 0; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		path = append(path, geom.Offset{
			X: start.X + (end.X-start.X)*frac,
			Y: start.Y + (end.Y-start.Y)*frac,
		})
	}
	return path
}
