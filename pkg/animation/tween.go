package animation

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/go-drift/charts/pkg/geom"
)

// DomainTween animates an axis domain from one value to another.
//
// gween interpolates in float32, which is too coarse for domains such as
// millisecond timestamps, so the tween only drives eased progress in [0,1]
// and the domain itself is interpolated in float64. The final value is the
// target exactly.
type DomainTween struct {
	from     geom.Domain
	to       geom.Domain
	progress *gween.Tween
	done     bool
}

// NewDomainTween returns a tween from -> to over duration. A nil easing
// function uses EaseOut.
func NewDomainTween(from, to geom.Domain, duration time.Duration, fn ease.TweenFunc) *DomainTween {
	if fn == nil {
		fn = EaseOut
	}
	return &DomainTween{
		from:     from,
		to:       to,
		progress: gween.New(0, 1, float32(duration.Seconds()), fn),
		done:     duration <= 0,
	}
}

// Update advances the tween by dt and returns the current domain and whether
// the tween has finished.
func (t *DomainTween) Update(dt time.Duration) (geom.Domain, bool) {
	if t.done {
		return t.to, true
	}
	p, finished := t.progress.Update(float32(dt.Seconds()))
	if finished {
		t.done = true
		return t.to, true
	}
	f := float64(p)
	return geom.Domain{
		Lo: t.from.Lo + (t.to.Lo-t.from.Lo)*f,
		Hi: t.from.Hi + (t.to.Hi-t.from.Hi)*f,
	}, false
}

// Done reports whether the tween reached its target.
func (t *DomainTween) Done() bool { return t.done }

// Target returns the domain the tween ends at.
func (t *DomainTween) Target() geom.Domain { return t.to }
