package cmd

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/charts/pkg/animation"
	"github.com/go-drift/charts/pkg/config"
	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/interaction"
	"github.com/go-drift/charts/pkg/nearest"
	"github.com/go-drift/charts/pkg/panzoom"
	"github.com/go-drift/charts/pkg/popover"
	"github.com/go-drift/charts/pkg/series"
	"github.com/go-drift/charts/pkg/tooltip"
)

// Record is the state printed after one event.
type Record struct {
	Scenario string          `json:"scenario,omitempty"`
	Step     int             `json:"step"`
	Event    string          `json:"event"`
	Domains  *domainsOut     `json:"domains,omitempty"`
	Hit      *hitOut         `json:"hit,omitempty"`
	Best     *entryOut       `json:"best,omitempty"`
	Entries  []entryOut      `json:"entries,omitempty"`
	Visible  bool            `json:"visible"`
	Popover  *offsetOut      `json:"popover,omitempty"`
	Blocks   []popover.Block `json:"blocks,omitempty"`
}

type offsetOut struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type domainsOut struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

type entryOut struct {
	Series series.ID `json:"series"`
	Index  int       `json:"index"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
}

type hitOut struct {
	entryOut
	Distance float64 `json:"distance"`
}

// stepClock is advanced by the simulator one frame at a time.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type simulator struct {
	sc       *Scenario
	settings *config.File
	interval time.Duration

	clock    *stepClock
	loop     *animation.FrameLoop
	store    *interaction.Store
	agg      *tooltip.Aggregator
	engine   *panzoom.Engine
	resolver *nearest.Resolver
	format   *popover.Formatter
	vis      popover.Visibility
	frame    popover.Frame
	registry *prometheus.Registry

	hit *nearest.Match
}

func newSimulator(sc *Scenario, settings *config.File, logger *slog.Logger) (*simulator, error) {
	cfg, err := sc.config(settings.Interaction)
	if err != nil {
		return nil, err
	}
	interval := cfg.FrameInterval
	if interval <= 0 {
		interval = animation.DefaultFrameInterval
	}
	s := &simulator{
		sc:       sc,
		settings: settings,
		interval: interval,
		clock:    &stepClock{now: time.Unix(0, 0).UTC()},
		resolver: nearest.NewResolver(),
		format:   settings.Popover.Formatter(),
		registry: prometheus.NewRegistry(),
	}
	s.loop = animation.NewFrameLoop(s.clock)
	s.vis = popover.Visibility{Grace: settings.Popover.Grace, Clock: s.clock}
	s.store = interaction.NewStore(cfg,
		interaction.WithFrameScheduler(s.loop),
		interaction.WithClock(s.clock),
		interaction.WithLogger(logger.With("scenario", sc.Name)),
		interaction.WithMetrics(interaction.NewMetrics(s.registry)),
	)
	s.agg = tooltip.NewAggregator(s.store, nil)
	s.store.InitializeDomains(sc.domains())
	s.engine = s.store.PanZoom()
	if sc.RootOffset != nil {
		s.store.SetRootOffset(geom.Offset{X: sc.RootOffset[0], Y: sc.RootOffset[1]})
	}
	for _, def := range sc.Series {
		s.store.RegisterSeries(def.registration())
	}
	return s, nil
}

func (s *simulator) close() {
	s.agg.Dispose()
	s.store.Dispose()
}

// step advances one frame.
func (s *simulator) step() {
	s.clock.advance(s.interval)
	s.loop.Step()
}

func (s *simulator) scales() (geom.Scale, geom.Scale) {
	d := s.store.Domains().Current
	return geom.Scale{Domain: d.X, Extent: s.sc.Plot.Width},
		geom.Scale{Domain: d.Y, Extent: s.sc.Plot.Height, Invert: true}
}

// run applies every event, stepping one frame after each, and passes the
// resulting records to emit.
func (s *simulator) run(emit func(Record) error) error {
	for i, ev := range s.sc.Events {
		if err := s.apply(ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev.Kind(), err)
		}
		s.step()
		if err := emit(s.record(i, ev.Kind())); err != nil {
			return err
		}
	}
	return nil
}

func (s *simulator) apply(ev Event) error {
	plot := s.sc.Plot
	switch ev.Kind() {
	case "pointer":
		s.movePointer(ev.Pointer[0], ev.Pointer[1])
	case "leave":
		s.hit = nil
		s.store.SetPointer(nil)
		s.store.SetCrosshair(nil)
	case "crosshair":
		xs, _ := s.scales()
		s.store.SetCrosshair(&interaction.Crosshair{DataX: *ev.Crosshair, PixelX: xs.ToPixel(*ev.Crosshair)})
	case "register":
		s.store.RegisterSeries(ev.Register.registration())
	case "unregister":
		s.store.UnregisterSeries(ev.Unregister)
	case "hide":
		s.store.UpdateSeriesVisibility(ev.Hide, false)
	case "show":
		s.store.UpdateSeriesVisibility(ev.Show, true)
	case "pan":
		steps := max(ev.Pan.Steps, 1)
		s.engine.StartPan(ev.Pan.From[0], ev.Pan.From[1])
		for k := 1; k <= steps; k++ {
			t := float64(k) / float64(steps)
			x := ev.Pan.From[0] + (ev.Pan.To[0]-ev.Pan.From[0])*t
			y := ev.Pan.From[1] + (ev.Pan.To[1]-ev.Pan.From[1])*t
			s.engine.UpdatePan(x, y, plot.Width, plot.Height)
		}
		s.engine.EndPan()
	case "pinch":
		steps := max(ev.Pinch.Steps, 1)
		s.engine.StartPinch(ev.Pinch.From)
		for k := 1; k <= steps; k++ {
			s.engine.UpdatePinch(ev.Pinch.From + (ev.Pinch.To-ev.Pinch.From)*float64(k)/float64(steps))
		}
		s.engine.EndPinch()
	case "wheel":
		s.engine.WheelZoom(ev.Wheel.DeltaY, ev.Wheel.X, ev.Wheel.Y)
	case "doubleTap":
		s.engine.DoubleTap()
	case "reset":
		if ev.Reset.Duration <= 0 {
			s.store.ResetZoom()
			break
		}
		fn, ok := animation.Easing(ev.Reset.Easing)
		if !ok {
			return fmt.Errorf("unknown easing %q", ev.Reset.Easing)
		}
		s.store.AnimateResetZoom(ev.Reset.Duration, fn)
	case "wait":
		for range ev.Wait - 1 {
			s.step()
		}
	}
	return nil
}

// movePointer publishes the pointer with the payload of the point under it
// and moves the crosshair along with it when enabled.
func (s *simulator) movePointer(px, py float64) {
	plot := s.sc.Plot
	inside := px >= 0 && py >= 0 && px <= plot.Width && py <= plot.Height
	p := &interaction.Pointer{X: px, Y: py, Inside: inside}
	if root := s.store.Snapshot().RootOffset; root != nil {
		page := root.Add(geom.Offset{X: s.sc.Origin[0] + px, Y: s.sc.Origin[1] + py})
		p.Page = &page
	}

	s.hit = nil
	d := s.store.Domains().Current
	lookup := s.resolver.Bind(s.store.Snapshot().Series, d.X, d.Y, geom.Size{Width: plot.Width, Height: plot.Height})
	if m, ok := lookup(px, py, nearest.DefaultMaxDistance); ok && inside {
		s.hit = &m
		p.Data = m.Point.Meta
	}
	s.store.SetPointer(p)

	if s.store.Config().EnableCrosshair && inside {
		xs, _ := s.scales()
		s.store.SetCrosshair(&interaction.Crosshair{DataX: xs.ToData(px), PixelX: px})
	}
}

func (s *simulator) record(i int, kind string) Record {
	rec := Record{Scenario: s.sc.Name, Step: i, Event: kind}
	if d := s.store.Domains(); d != nil {
		rec.Domains = &domainsOut{
			X: [2]float64{d.Current.X.Lo, d.Current.X.Hi},
			Y: [2]float64{d.Current.Y.Lo, d.Current.Y.Hi},
		}
	}
	if s.hit != nil {
		rec.Hit = &hitOut{entryOut: entryOf(s.hit.SeriesID, s.hit.Index, s.hit.Point), Distance: s.hit.Distance}
	}

	res := s.agg.Result()
	if res.Best != nil {
		e := entryOf(res.Best.SeriesID, res.Best.Index, res.Best.Point)
		rec.Best = &e
	}
	for _, e := range res.Entries {
		rec.Entries = append(rec.Entries, entryOf(e.SeriesID, e.Index, e.Point))
	}

	blocks := s.format.Blocks(res)
	rec.Visible = s.vis.Update(len(blocks) > 0 && res.HasAnchor)
	if !rec.Visible {
		return rec
	}
	if len(blocks) > 0 {
		rec.Blocks = blocks
	}
	s.frame = popover.Frame{Origin: geom.Offset{X: s.sc.Origin[0], Y: s.sc.Origin[1]}, Root: s.store.Snapshot().RootOffset}
	if anchor, ok := s.frame.Anchor(res, s.settings.Popover.PageAnchor); ok {
		bounds := geom.RectFromLTWH(0, 0, s.sc.Origin[0]+s.sc.Plot.Width, s.sc.Origin[1]+s.sc.Plot.Height)
		if s.settings.Popover.PageAnchor && s.frame.Root != nil {
			bounds = bounds.Translate(s.frame.Root.X, s.frame.Root.Y)
		}
		pos := popover.Place(anchor, estimateSize(blocks), bounds, s.settings.Popover.Placement())
		rec.Popover = &offsetOut{X: pos.TopLeft.X, Y: pos.TopLeft.Y}
	}
	return rec
}

func entryOf(id series.ID, index int, p series.Point) entryOut {
	return entryOut{Series: id, Index: index, X: p.X, Y: p.Y}
}

// estimateSize approximates the rendered popover size with a fixed-width
// font: 7px per character, 16px per line and 8px of padding.
func estimateSize(blocks []popover.Block) geom.Size {
	width, lines := 0, 0
	for _, b := range blocks {
		if b.Title != "" {
			width = max(width, len(b.Title))
			lines++
		}
		for _, l := range b.Lines {
			width = max(width, len(l.Label)+len(l.Value)+2)
			lines++
		}
	}
	return geom.Size{Width: float64(width)*7 + 16, Height: float64(lines)*16 + 8}
}
