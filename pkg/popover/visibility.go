package popover

import (
	"time"

	"github.com/go-drift/charts/pkg/animation"
)

// DefaultGrace is how long a popover stays up after its content goes away.
const DefaultGrace = 120 * time.Millisecond

// Visibility decides whether the popover is shown. It shows immediately and
// hides only after the content has been absent for the grace period, so a
// pointer crossing the gap between two points does not flicker the overlay.
//
// The zero value uses DefaultGrace and the system clock.
type Visibility struct {
	Grace time.Duration
	Clock animation.Clock

	visible bool
	hideAt  time.Time
}

func (v *Visibility) now() time.Time {
	if v.Clock == nil {
		return animation.SystemClock.Now()
	}
	return v.Clock.Now()
}

// Update records whether there is content to show and returns whether the
// popover is visible.
func (v *Visibility) Update(hasContent bool) bool {
	if hasContent {
		v.visible = true
		v.hideAt = time.Time{}
		return true
	}
	if !v.visible {
		return false
	}
	now := v.now()
	if v.hideAt.IsZero() {
		grace := v.Grace
		if grace == 0 {
			grace = DefaultGrace
		}
		v.hideAt = now.Add(grace)
	}
	if !now.Before(v.hideAt) {
		v.visible = false
		v.hideAt = time.Time{}
	}
	return v.visible
}

// Visible reports the last decision of Update.
func (v *Visibility) Visible() bool {
	return v.visible
}

// Pending reports whether a hide is scheduled.
func (v *Visibility) Pending() bool {
	return !v.hideAt.IsZero()
}
