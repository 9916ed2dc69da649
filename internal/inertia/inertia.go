// Package inertia implements the Inertia Engine (spec.md §4.6): the
// momentum coast that continues scrolling after lift-off, decaying
// exponentially until it crosses a stop threshold.
package inertia

import (
	"math"

	"github.com/jason5545/trackpal/internal/contact"
)

const (
	decelerationRate  = 0.998 // applied once per elapsed millisecond
	minVelocity       = 2.0   // Tick's stop threshold, once coasting
	startThreshold    = 20.0  // Start's higher gate, spec.md §4.6
	velocityScale     = 20.0
	historyWindowSecs = 0.1
)

// History is a bounded velocity-sample window that keeps the samples within
// the last 100ms and averages them (spec.md §4.6). The engine does not use
// it: at lift-off it averages its own session velocity history (at most five
// samples) instead.
type History struct {
	samples []contact.VelocitySample
}

// Record appends a velocity sample, dropping any older than
// historyWindowSecs relative to the newest sample's time.
func (h *History) Record(s contact.VelocitySample) {
	h.samples = append(h.samples, s)
	cutoff := s.Time - historyWindowSecs
	i := 0
	for i < len(h.samples) && h.samples[i].Time < cutoff {
		i++
	}
	h.samples = h.samples[i:]
}

// Reset clears the history.
func (h *History) Reset() {
	h.samples = nil
}

// AverageVelocity returns the mean VX/VY of the retained window, or (0,0)
// if empty.
func (h *History) AverageVelocity() (vx, vy float64) {
	if len(h.samples) == 0 {
		return 0, 0
	}
	var sumX, sumY float64
	for _, s := range h.samples {
		sumX += s.VX
		sumY += s.VY
	}
	n := float64(len(h.samples))
	return sumX / n, sumY / n
}

// Coast is one momentum-scroll session, started at lift-off from a scroll
// zone with the averaged release velocity.
type Coast struct {
	vx, vy     float64
	horizontal bool
	accX, accY float64
	active     bool
	began      bool
}

// Start begins a coast session for zone, scaling the release velocity per
// spec.md §4.6 (×20 for vertical zones, ×20×1.6 for horizontal zones
// matching the Scroll Emitter's aspect compensation). The vertical velocity
// is negated, matching the Scroll Emitter's natural-scroll inversion so the
// coast continues in the direction of the scroll. Returns false (no
// coast started) unless the scaled speed exceeds startThreshold — a
// materially higher bar than minVelocity, which only governs when an
// already-started coast should stop in Tick.
func (c *Coast) Start(zone contact.Zone, vx, vy float64) bool {
	c.horizontal = zone.IsHorizontalScrollZone()
	scale := velocityScale
	if c.horizontal {
		c.vx = vx * scale * 1.6
		c.vy = 0
	} else {
		c.vx = 0
		c.vy = -vy * scale
	}
	c.accX, c.accY = 0, 0
	c.began = false

	speed := math.Sqrt(c.vx*c.vx + c.vy*c.vy)
	if speed <= startThreshold {
		c.active = false
		return false
	}
	c.active = true
	return true
}

// Active reports whether a coast session is currently in progress.
func (c *Coast) Active() bool { return c.active }

// Cancel stops any in-progress coast, used when a new touch session begins
// or the Finger-Count Arbiter reports a single-to-multi transition.
func (c *Coast) Cancel() {
	c.active = false
	c.vx, c.vy = 0, 0
}

// Tick advances the coast by dtMillis elapsed milliseconds, applying
// exponential decay (decelerationRate^dtMillis) and returning the
// whole-pixel scroll event to emit this frame, or ok=false if the coast
// is not active or produced a zero delta this frame. The one zero-delta
// event it returns is the momentum-ended event of a stopping coast that
// already posted its Began event.
func (c *Coast) Tick(dtMillis float64) (contact.ScrollEvent, bool) {
	if !c.active {
		return contact.ScrollEvent{}, false
	}

	dx := c.vx * dtMillis / 1000
	dy := c.vy * dtMillis / 1000

	factor := math.Pow(decelerationRate, dtMillis)
	c.vx *= factor
	c.vy *= factor

	ix, iy := c.extractIntegerDelta(dx, dy)

	speed := math.Sqrt(c.vx*c.vx + c.vy*c.vy)
	stopping := speed < minVelocity
	if stopping {
		c.active = false
	}

	if ix == 0 && iy == 0 {
		if !stopping {
			return contact.ScrollEvent{}, false
		}
		if !c.began {
			return contact.ScrollEvent{}, false
		}
		ev := contact.NewScrollEvent(0, 0, contact.PhaseEnded, true)
		ev.IsMomentum = true
		return ev, true
	}

	phase := contact.PhaseChanged
	if !c.began {
		phase = contact.PhaseBegan
		c.began = true
	}
	if stopping {
		phase = contact.PhaseEnded
	}
	ev := contact.NewScrollEvent(ix, iy, phase, true)
	ev.IsMomentum = true
	return ev, true
}

// extractIntegerDelta mirrors the Scroll Emitter's sub-pixel accumulator
// (and the teacher's extractIntegerDelta in coast.go): fold fractional
// movement into a running accumulator and emit only the whole-pixel part.
func (c *Coast) extractIntegerDelta(dx, dy float64) (int, int) {
	c.accX += dx
	c.accY += dy
	ix, iy := int(c.accX), int(c.accY)
	c.accX -= float64(ix)
	c.accY -= float64(iy)
	return ix, iy
}
