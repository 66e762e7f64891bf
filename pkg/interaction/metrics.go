package interaction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Update outcomes recorded by Metrics.
const (
	OutcomeCommitted = "committed" // written to state
	OutcomeDropped   = "dropped"   // below the pixel threshold
	OutcomeCoalesced = "coalesced" // superseded within a frame
)

// Registration outcomes recorded by Metrics.
const (
	RegistrationInserted  = "inserted"
	RegistrationUpdated   = "updated"
	RegistrationUnchanged = "unchanged"
	RegistrationRemoved   = "removed"
)

// Metrics counts store traffic. A nil *Metrics records nothing.
type Metrics struct {
	updates       *prometheus.CounterVec
	frames        prometheus.Counter
	registrations *prometheus.CounterVec
}

// NewMetrics creates the store counters and registers them with reg.
// A nil reg creates unregistered counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "charts",
			Subsystem: "interaction",
			Name:      "updates_total",
			Help:      "Pointer and crosshair updates by outcome.",
		}, []string{"kind", "outcome"}),
		frames: f.NewCounter(prometheus.CounterOpts{
			Namespace: "charts",
			Subsystem: "interaction",
			Name:      "frames_total",
			Help:      "Frame callbacks that committed coalesced state.",
		}),
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "charts",
			Name:      "series_registrations_total",
			Help:      "Series registrations by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) update(kind, outcome string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) frame() {
	if m == nil {
		return
	}
	m.frames.Inc()
}

func (m *Metrics) registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// Updates returns the counter for one kind ("pointer" or "crosshair") and outcome.
func (m *Metrics) Updates(kind, outcome string) prometheus.Counter {
	return m.updates.WithLabelValues(kind, outcome)
}

// Frames returns the frame counter.
func (m *Metrics) Frames() prometheus.Counter {
	return m.frames
}

// Registrations returns the registration counter for outcome.
func (m *Metrics) Registrations(outcome string) prometheus.Counter {
	return m.registrations.WithLabelValues(outcome)
}
