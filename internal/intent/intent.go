// Package intent implements the Intent Evaluator (spec.md §4.4): the
// Bayesian confidence accumulator at the heart of the Touch Intent Engine,
// deciding per touch whether the user intends to scroll.
package intent

import (
	"math"

	"github.com/jason5545/trackpal/internal/adaptive"
	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
	"github.com/jason5545/trackpal/internal/zonemap"
)

// Decision is the per-frame outcome of feeding the evaluator a delta.
type Decision int

const (
	NeedMoreFrames Decision = iota
	Activated
	Rejected
)

func (d Decision) String() string {
	switch d {
	case Activated:
		return "activated"
	case Rejected:
		return "rejected"
	default:
		return "needMoreFrames"
	}
}

const (
	aspectCompensation  = 1.6
	deadZone            = 0.05
	upBoostScale        = 0.275
	downBoostScale      = 0.25
	minUpdate           = -0.20
	evidenceFloor       = 0.0005
	activationFloor     = 0.80
	minActivationMovement = 0.003
	cornerHorizontalBias  = 1.5
	hardRejectOffAxisFrames = 3
	hardRejectRatioFrames   = 2
	hardRejectRatioFloor    = 0.35
	hardRejectOffAxisMult   = 1.5
	rejectFloor             = 0.20
	activationMaxFrames     = 8
	thresholdFloor          = 0.67
	thresholdBase           = 0.75
)

// Evaluation is the activation-pending state of a single touch session's
// Intent Evaluator run. Create one with New on the first valid frame of a
// touch that lands in a scroll zone or corner zone.
type Evaluation struct {
	zone         contact.Zone
	originalZone contact.Zone
	startX, startY float64
	confidence   float64

	discardedFirst bool
	framesSeen     int

	deltas    []contact.Delta
	densities []float64

	// Last-fed-sample snapshot, for the Session Recorder's activation_data
	// record (spec.md §3); updated on every call to evaluate whose delta
	// clears evidenceFloor (smaller deltas leave it unchanged).
	lastOnAxisRatio  float64
	lastOnAxisSpeed  float64
	lastOffAxisSpeed float64
	lastDensity      float64
}

// New starts a fresh evaluation for a touch landing in zone at (x, y),
// with confidence initialized to the zone prior (spec.md §4.4:
// 0.50 + 0.35*depth).
func New(zone contact.Zone, x, y float64, cfg config.Config) *Evaluation {
	return &Evaluation{
		zone:         zone,
		originalZone: zone,
		startX:       x,
		startY:       y,
		confidence:   zonePrior(zone, x, y, cfg),
	}
}

func zonePrior(zone contact.Zone, x, y float64, cfg config.Config) float64 {
	depth := zonemap.Depth(x, y, zone, cfg)
	return 0.50 + 0.35*depth
}

// Zone returns the evaluation's current zone (may differ from the
// original zone after a corner promotion).
func (e *Evaluation) Zone() contact.Zone { return e.zone }

// OriginalZone returns the zone the touch actually started in, before any
// corner promotion.
func (e *Evaluation) OriginalZone() contact.Zone { return e.originalZone }

// Confidence returns the current confidence in [0, 1].
func (e *Evaluation) Confidence() float64 { return e.confidence }

// OnAxisRatio returns the on-axis ratio of the last sample fed to evaluate.
func (e *Evaluation) OnAxisRatio() float64 { return e.lastOnAxisRatio }

// OnAxisSpeed returns the on-axis speed of the last sample fed to evaluate.
func (e *Evaluation) OnAxisSpeed() float64 { return e.lastOnAxisSpeed }

// OffAxisSpeed returns the off-axis speed of the last sample fed to evaluate.
func (e *Evaluation) OffAxisSpeed() float64 { return e.lastOffAxisSpeed }

// Density returns the density of the last sample fed to evaluate.
func (e *Evaluation) Density() float64 { return e.lastDensity }

// BufferedDeltas returns the deltas buffered so far (post first-delta
// discard), for ramp-up flush on activation and adaptive learning.
func (e *Evaluation) BufferedDeltas() []contact.Delta { return append([]contact.Delta(nil), e.deltas...) }

// BufferedDensities mirrors BufferedDeltas for the density of each frame.
func (e *Evaluation) BufferedDensities() []float64 { return append([]float64(nil), e.densities...) }

// Feed processes one subsequent frame's delta, density, and latest
// velocity sample, returning the evaluator's decision.
//
// The first delta fed to a fresh Evaluation is always discarded (spec.md
// §4.4: "the initial contact frame is noisy at sensor edges") and does not
// count toward activation_max_frames or the hard-rejection frame counters.
func (e *Evaluation) Feed(delta contact.Delta, density float64, vel contact.VelocitySample, cfg config.Config, learner *adaptive.Learner) Decision {
	if !e.discardedFirst {
		e.discardedFirst = true
		return NeedMoreFrames
	}

	e.deltas = append(e.deltas, delta)
	e.densities = append(e.densities, density)
	e.framesSeen++

	if e.zone.IsCorner() {
		if d, promoted := e.tryPromote(cfg); promoted {
			// Promotion re-initializes confidence and continues
			// evaluation using the delta that triggered it, counted as
			// frame 1 of the new, promoted-zone evaluation.
			e.framesSeen = 1
		} else if !d {
			return Rejected
		} else {
			return NeedMoreFrames
		}
	}

	return e.evaluate(delta, density, vel, cfg, learner)
}

// tryPromote checks corner-promotion movement and, if the threshold is
// exceeded, promotes to an adjacent edge. Returns (validDecisionExists,
// promoted): when the movement threshold has not yet been exceeded, it
// returns (true, false) meaning "keep waiting". When the movement exceeds
// the threshold but no adjacent edge is configured active, it returns
// (false, false) meaning "reject now". When promotion succeeds, it
// returns (true, true).
func (e *Evaluation) tryPromote(cfg config.Config) (keepWaitingOrOK bool, promoted bool) {
	var total float64
	var sumDX, sumDY float64
	for _, d := range e.deltas {
		total += math.Abs(d.DX) + math.Abs(d.DY)
		sumDX += d.DX
		sumDY += d.DY
	}
	if total <= minActivationMovement {
		return true, false
	}

	horizEdge, vertEdge := e.zone.AdjacentEdges()
	horizActive := zonemap.IsZoneActive(horizEdge, cfg)
	vertActive := zonemap.IsZoneActive(vertEdge, cfg)
	if !horizActive && !vertActive {
		return false, false
	}

	horizDominant := math.Abs(sumDX)*cornerHorizontalBias >= math.Abs(sumDY)
	var target contact.Zone
	switch {
	case horizDominant && horizActive:
		target = horizEdge
	case !horizDominant && vertActive:
		target = vertEdge
	case horizActive:
		target = horizEdge
	case vertActive:
		target = vertEdge
	default:
		return false, false
	}

	e.zone = target
	e.confidence = zonePrior(target, e.startX, e.startY, cfg)
	// The delta that triggered this promotion already earned its
	// confidence credit via the evaluate() call Feed makes right after
	// tryPromote returns; keep it in the cleared buffer so it also
	// participates in the ramp-up flush and OnAxisRatios() on activation,
	// instead of being silently discarded.
	triggerDelta := e.deltas[len(e.deltas)-1]
	triggerDensity := e.densities[len(e.densities)-1]
	e.deltas = []contact.Delta{triggerDelta}
	e.densities = []float64{triggerDensity}
	return true, true
}

func (e *Evaluation) evaluate(delta contact.Delta, density float64, vel contact.VelocitySample, cfg config.Config, learner *adaptive.Learner) Decision {
	axis := axisFor(e.zone)

	absDx := math.Abs(delta.DX) * aspectCompensation
	absDy := math.Abs(delta.DY)
	total := absDx + absDy

	if total < evidenceFloor {
		if e.confidence >= activationFloor {
			return Activated
		}
		return NeedMoreFrames
	}

	var onAxisRatio float64
	if e.zone.IsHorizontalScrollZone() {
		onAxisRatio = absDx / total
	} else {
		onAxisRatio = absDy / total
	}

	center := learner.DirectionCenter(axis)
	deviation := onAxisRatio - center
	var directionBoost float64
	switch {
	case math.Abs(deviation) <= deadZone:
		directionBoost = 0
	case deviation > 0:
		directionBoost = (deviation - deadZone) / (1 - center - deadZone) * upBoostScale
	default:
		directionBoost = (deviation + deadZone) / (center - deadZone) * downBoostScale
	}

	onAxisSpeed, offAxisSpeed := axisSpeeds(e.zone, vel)
	velocityBoost := velocityBoostFor(onAxisSpeed)

	e.lastOnAxisRatio = onAxisRatio
	e.lastOnAxisSpeed = onAxisSpeed
	e.lastOffAxisSpeed = offAxisSpeed
	e.lastDensity = density

	qualityWeight := clampf((density-0.02)/0.08, 0, 1)*0.7 + 0.3

	update := (directionBoost + velocityBoost) * qualityWeight
	if update < minUpdate {
		update = minUpdate
	}
	e.confidence = clampf(e.confidence+update, 0, 1)

	if e.zone.IsHorizontalScrollZone() {
		if offAxisSpeed > hardRejectOffAxisMult*onAxisSpeed && e.framesSeen <= hardRejectOffAxisFrames {
			return Rejected
		}
		if onAxisRatio < hardRejectRatioFloor && e.framesSeen >= hardRejectRatioFrames {
			return Rejected
		}
	}

	effectiveThreshold := math.Max(thresholdBase-learner.RetryBonus(axis), thresholdFloor)
	switch {
	case e.confidence >= effectiveThreshold:
		return Activated
	case e.confidence <= rejectFloor:
		return Rejected
	case e.framesSeen >= activationMaxFrames:
		return Rejected
	default:
		return NeedMoreFrames
	}
}

func axisFor(zone contact.Zone) adaptive.Axis {
	if zone.IsHorizontalScrollZone() {
		return adaptive.Horizontal
	}
	return adaptive.Vertical
}

func axisSpeeds(zone contact.Zone, vel contact.VelocitySample) (onAxis, offAxis float64) {
	if zone.IsHorizontalScrollZone() {
		return math.Abs(vel.VX), math.Abs(vel.VY)
	}
	return math.Abs(vel.VY), math.Abs(vel.VX)
}

func velocityBoostFor(onAxisSpeed float64) float64 {
	switch {
	case onAxisSpeed > 0.30:
		return 0.10
	case onAxisSpeed > 0.15:
		return 0.05
	case onAxisSpeed > 0.05:
		return 0.02
	default:
		return 0.00
	}
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// OnAxisRatios recomputes the on-axis ratio of every buffered delta under
// the evaluation's current (possibly promoted) zone, for feeding the
// Adaptive Learner on a successful activation (spec.md §4.8).
func (e *Evaluation) OnAxisRatios() []float64 {
	ratios := make([]float64, 0, len(e.deltas))
	horizontal := e.zone.IsHorizontalScrollZone()
	for _, d := range e.deltas {
		absDx := math.Abs(d.DX) * aspectCompensation
		absDy := math.Abs(d.DY)
		total := absDx + absDy
		if total < evidenceFloor {
			continue
		}
		if horizontal {
			ratios = append(ratios, absDx/total)
		} else {
			ratios = append(ratios, absDy/total)
		}
	}
	return ratios
}

// RampFlushScale returns the linear ramp scale factor applied to buffered
// delta i of n on activation flush: (i+1)/(n+1) (spec.md §4.4).
func RampFlushScale(i, n int) float64 {
	return float64(i+1) / float64(n+1)
}
