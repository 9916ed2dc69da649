// Package scrollemit implements the Scroll Emitter (spec.md §4.5):
// acceleration-curve shaping and the sub-pixel accumulator that turns
// continuous delta input into whole-pixel synthesized scroll events.
package scrollemit

import (
	"math"

	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

// Shape applies cfg's configured acceleration curve to a raw magnitude in
// [0,1] (spec.md §4.5): linear is the identity, quadratic/cubic are power
// curves, ease is a smoothstep.
func Shape(magnitude float64, curve config.AccelerationCurve) float64 {
	m := clamp01(magnitude)
	switch curve {
	case config.CurveQuadratic:
		return m * m
	case config.CurveCubic:
		return m * m * m
	case config.CurveEase:
		return m * m * (3 - 2*m)
	default:
		return m
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Accumulator holds the sub-pixel remainder across successive deltas,
// mirroring the teacher's extractIntegerDelta pattern in coast.go: fold the
// fractional delta into a running accumulator, extract the integer part for
// emission, and keep the remainder for next time so fractional movement is
// never silently dropped.
type Accumulator struct {
	accX, accY float64
	began      bool
}

// Extract folds (dx, dy) into the accumulator and returns the whole-pixel
// integer delta to emit this frame.
func (a *Accumulator) Extract(dx, dy float64) (int, int) {
	a.accX += dx
	a.accY += dy
	ix, iy := int(a.accX), int(a.accY)
	a.accX -= float64(ix)
	a.accY -= float64(iy)
	return ix, iy
}

// Reset clears the accumulator's fractional remainder and began flag. The
// engine does not call it; it starts each session with a fresh zero-value
// Accumulator.
func (a *Accumulator) Reset() {
	a.accX, a.accY = 0, 0
	a.began = false
}

// Emit computes one scroll-wheel event for an on-axis delta sample in the
// given zone, applying the natural-scroll sign convention, the 1.6× aspect
// compensation on horizontal zones, the configured multiplier and
// acceleration curve (spec.md §4.5):
//
//	vertical:   acc.y += -adjusted.y * multiplier * 100
//	horizontal: acc.x +=  adjusted.x * multiplier * 100 * 1.6
//
// It returns ok=false when the resulting integer delta is (0,0) and no
// event should be posted this frame.
func (a *Accumulator) Emit(delta contact.Delta, zone contact.Zone, cfg config.Config) (contact.ScrollEvent, bool) {
	phase := contact.PhaseChanged
	if !a.began {
		phase = contact.PhaseBegan
		a.began = true
	}

	var dx, dy float64
	if zone.IsHorizontalScrollZone() {
		magnitude := math.Abs(delta.DX)
		shaped := Shape(magnitude, cfg.AccelerationCurve) * sign(delta.DX)
		dx = shaped * cfg.ScrollMultiplier * 100 * 1.6
	} else {
		magnitude := math.Abs(delta.DY)
		shaped := Shape(magnitude, cfg.AccelerationCurve) * sign(delta.DY)
		dy = -shaped * cfg.ScrollMultiplier * 100
	}

	ix, iy := a.Extract(dx, dy)
	if ix == 0 && iy == 0 {
		return contact.ScrollEvent{}, false
	}
	return contact.NewScrollEvent(ix, iy, phase, true), true
}

// EndSession returns the zero-delta "ended" event that must close out a
// scroll session whose phase ever reached Began (spec.md §4.5), or ok=false
// if the session never began and no closing event is needed.
func (a *Accumulator) EndSession() (contact.ScrollEvent, bool) {
	if !a.began {
		return contact.ScrollEvent{}, false
	}
	a.began = false
	return contact.NewScrollEvent(0, 0, contact.PhaseEnded, true), true
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
