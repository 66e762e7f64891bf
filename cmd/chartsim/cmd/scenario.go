package cmd

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/charts/pkg/geom"
	"github.com/go-drift/charts/pkg/interaction"
	"github.com/go-drift/charts/pkg/series"
)

// Scenario is a scripted interaction session.
type Scenario struct {
	Name string `yaml:"name"`
	// Interaction overrides flags of the loaded config for this scenario.
	Interaction yaml.Node `yaml:"interaction"`
	Plot        size      `yaml:"plot"`
	// Origin is the plot origin inside the provider's root element.
	Origin     [2]float64  `yaml:"origin"`
	RootOffset *[2]float64 `yaml:"rootOffset"`
	Domains    struct {
		X [2]float64 `yaml:"x"`
		Y [2]float64 `yaml:"y"`
	} `yaml:"domains"`
	Series []seriesSpec `yaml:"series"`
	Events []Event      `yaml:"events"`
}

type size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type seriesSpec struct {
	ID     series.ID   `yaml:"id"`
	Name   string      `yaml:"name"`
	Color  string      `yaml:"color"`
	Hidden bool        `yaml:"hidden"`
	Points []pointSpec `yaml:"points"`
}

// pointSpec is a point with at most one metadata payload.
type pointSpec struct {
	X           float64             `yaml:"x"`
	Y           float64             `yaml:"y"`
	Candlestick *series.Candlestick `yaml:"candlestick"`
	Bubble      *series.Bubble      `yaml:"bubble"`
	Heatmap     *series.Heatmap     `yaml:"heatmap"`
	Funnel      *series.Funnel      `yaml:"funnel"`
}

func (p pointSpec) point() series.Point {
	pt := series.At(p.X, p.Y)
	switch {
	case p.Candlestick != nil:
		pt.Meta = *p.Candlestick
	case p.Bubble != nil:
		pt.Meta = *p.Bubble
	case p.Heatmap != nil:
		pt.Meta = *p.Heatmap
	case p.Funnel != nil:
		pt.Meta = *p.Funnel
	}
	return pt
}

func (s seriesSpec) registration() series.Registration {
	points := make([]series.Point, len(s.Points))
	for i, p := range s.Points {
		points[i] = p.point()
	}
	return series.Registration{ID: s.ID, Name: s.Name, Color: s.Color, Hidden: s.Hidden, Points: points}
}

// Event is one scripted step. Exactly one field is set.
type Event struct {
	// Pointer moves the pointer to plot pixel coordinates.
	Pointer *[2]float64 `yaml:"pointer"`
	// Leave removes the pointer and crosshair.
	Leave bool `yaml:"leave"`
	// Crosshair places the crosshair at a data x value.
	Crosshair *float64 `yaml:"crosshair"`

	Register   *seriesSpec `yaml:"register"`
	Unregister series.ID   `yaml:"unregister"`
	Hide       series.ID   `yaml:"hide"`
	Show       series.ID   `yaml:"show"`

	Pan *struct {
		From  [2]float64 `yaml:"from"`
		To    [2]float64 `yaml:"to"`
		Steps int        `yaml:"steps"`
	} `yaml:"pan"`
	Pinch *struct {
		From  float64 `yaml:"from"`
		To    float64 `yaml:"to"`
		Steps int     `yaml:"steps"`
	} `yaml:"pinch"`
	Wheel *struct {
		DeltaY float64 `yaml:"deltaY"`
		X      float64 `yaml:"x"`
		Y      float64 `yaml:"y"`
	} `yaml:"wheel"`
	DoubleTap bool `yaml:"doubleTap"`
	// Reset restores the initial domains, easing over the duration if set.
	Reset *struct {
		Duration time.Duration `yaml:"duration"`
		Easing   string        `yaml:"easing"`
	} `yaml:"reset"`
	// Wait advances the given number of frames.
	Wait int `yaml:"wait"`
}

// Kind names the field that is set.
func (e Event) Kind() string {
	switch {
	case e.Pointer != nil:
		return "pointer"
	case e.Leave:
		return "leave"
	case e.Crosshair != nil:
		return "crosshair"
	case e.Register != nil:
		return "register"
	case e.Unregister != "":
		return "unregister"
	case e.Hide != "":
		return "hide"
	case e.Show != "":
		return "show"
	case e.Pan != nil:
		return "pan"
	case e.Pinch != nil:
		return "pinch"
	case e.Wheel != nil:
		return "wheel"
	case e.DoubleTap:
		return "doubleTap"
	case e.Reset != nil:
		return "reset"
	case e.Wait > 0:
		return "wait"
	default:
		return ""
	}
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if sc.Plot.Width <= 0 || sc.Plot.Height <= 0 {
		return nil, fmt.Errorf("scenario %q: plot width and height must be positive", sc.Name)
	}
	for i, ev := range sc.Events {
		if ev.Kind() == "" {
			return nil, fmt.Errorf("scenario %q: event %d has no action", sc.Name, i)
		}
	}
	return &sc, nil
}

// config applies the scenario overrides to base.
func (sc *Scenario) config(base interaction.Config) (interaction.Config, error) {
	cfg := base
	if sc.Interaction.Kind == 0 {
		return cfg, nil
	}
	if err := sc.Interaction.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("scenario %q: interaction: %w", sc.Name, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("scenario %q: interaction: %w", sc.Name, err)
	}
	return cfg, nil
}

func (sc *Scenario) domains() interaction.DomainPair {
	x := geom.Domain{Lo: sc.Domains.X[0], Hi: sc.Domains.X[1]}
	y := geom.Domain{Lo: sc.Domains.Y[0], Hi: sc.Domains.Y[1]}
	if x.Span() == 0 {
		x = dataExtent(sc.Series, func(p pointSpec) float64 { return p.X })
	}
	if y.Span() == 0 {
		y = dataExtent(sc.Series, func(p pointSpec) float64 { return p.Y })
	}
	return interaction.DomainPair{X: x, Y: y}
}

// dataExtent returns the range of one coordinate over every point, or [0,1]
// when there are no points.
func dataExtent(list []seriesSpec, coord func(pointSpec) float64) geom.Domain {
	d := geom.Domain{Lo: 0, Hi: 1}
	first := true
	for _, s := range list {
		for _, p := range s.Points {
			v := coord(p)
			if first {
				d = geom.Domain{Lo: v, Hi: v}
				first = false
				continue
			}
			d.Lo = min(d.Lo, v)
			d.Hi = max(d.Hi, v)
		}
	}
	if d.Span() == 0 {
		d.Hi = d.Lo + 1
	}
	return d
}
