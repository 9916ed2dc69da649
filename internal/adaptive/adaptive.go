// Package adaptive implements the Adaptive Learner (spec.md §4.8): two
// EMAs of learned on-axis ratio centers and two retry-bonus counters,
// persisted across runs.
package adaptive

import (
	"time"

	"github.com/jason5545/trackpal/internal/config"
)

// Axis distinguishes the horizontal and vertical scroll-zone learning
// tracks.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

const (
	emaAlpha          = 0.02
	ringTarget        = 5
	retryBonusDecay   = 0.995
	missRetryWindow   = 2 * time.Second
	counterHalvingSum = 1000
	retryBonusRate    = 0.10
	maxRetryBonus     = 0.08
)

type axisState struct {
	directionCenter float64
	retryCount      int
	missCount       int
	retryBonus      float64
	ratioRing       []float64
	lastMissTime    time.Time
	hasLastMiss     bool
}

// Learner holds the two per-axis EMA/retry tracks.
type Learner struct {
	h, v axisState
}

// New returns a Learner with spec.md §3 defaults (centers at 0.50, zero
// counters and bonuses).
func New() *Learner {
	return &Learner{
		h: axisState{directionCenter: 0.50},
		v: axisState{directionCenter: 0.50},
	}
}

// FromPersisted restores a Learner from on-disk state, already clamped by
// the caller (internal/config's Persisted.Clamp).
func FromPersisted(p config.Persisted) *Learner {
	l := New()
	l.h.directionCenter = p.AdaptiveDirCenterH
	l.v.directionCenter = p.AdaptiveDirCenterV
	l.h.retryCount = p.AdaptiveRetryCountH
	l.v.retryCount = p.AdaptiveRetryCountV
	l.h.missCount = p.AdaptiveMissCountH
	l.v.missCount = p.AdaptiveMissCountV
	l.h.retryBonus = p.AdaptiveRetryBonusH
	l.v.retryBonus = p.AdaptiveRetryBonusV
	return l
}

// ToPersisted writes the Learner's current state into a Persisted struct's
// adaptive fields (leaving every other field as passed in p).
func (l *Learner) ToPersisted(p config.Persisted) config.Persisted {
	p.AdaptiveDirCenterH = l.h.directionCenter
	p.AdaptiveDirCenterV = l.v.directionCenter
	p.AdaptiveRetryCountH = l.h.retryCount
	p.AdaptiveRetryCountV = l.v.retryCount
	p.AdaptiveMissCountH = l.h.missCount
	p.AdaptiveMissCountV = l.v.missCount
	p.AdaptiveRetryBonusH = l.h.retryBonus
	p.AdaptiveRetryBonusV = l.v.retryBonus
	return p
}

func (l *Learner) state(axis Axis) *axisState {
	if axis == Horizontal {
		return &l.h
	}
	return &l.v
}

// DirectionCenter returns the learned on-axis ratio center for axis.
func (l *Learner) DirectionCenter(axis Axis) float64 {
	return l.state(axis).directionCenter
}

// RetryBonus returns the current retry bonus for axis, in [0, 0.08].
func (l *Learner) RetryBonus(axis Axis) float64 {
	return l.state(axis).retryBonus
}

// RecordSuccess feeds the on-axis ratios of every buffered delta from a
// successful activation into axis's ring; once the ring has >= 5 samples,
// it applies an EMA (alpha=0.02) to the learned direction center, clamps
// to [0.40, 0.55], and clears the ring. It also decays the retry bonus by
// 0.995 (spec.md §4.8).
func (l *Learner) RecordSuccess(axis Axis, onAxisRatios []float64) {
	s := l.state(axis)
	s.ratioRing = append(s.ratioRing, onAxisRatios...)
	if len(s.ratioRing) >= ringTarget {
		mean := meanOf(s.ratioRing)
		s.directionCenter = s.directionCenter + emaAlpha*(mean-s.directionCenter)
		s.directionCenter = clamp(s.directionCenter, 0.40, 0.55)
		s.ratioRing = nil
	}
	s.retryBonus *= retryBonusDecay
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// RecordFailure stamps a miss (rejection or timeout) for axis at time
// `now`, incrementing its miss count and halving both counters once their
// sum exceeds 1000 (spec.md §4.8).
func (l *Learner) RecordFailure(axis Axis, now time.Time) {
	s := l.state(axis)
	s.missCount++
	s.lastMissTime = now
	s.hasLastMiss = true
	l.halveIfOverflowing(s)
}

// RecordSessionStart evaluates a new scroll-zone session start against the
// last miss of the same axis category: within 2 seconds of a miss it
// increments retry count, and if retryCount+missCount >= 5 and
// retryCount/total > 0.30, updates the retry bonus to
// min(rate*0.10, 0.08) where rate = retryCount/total (spec.md §4.8).
func (l *Learner) RecordSessionStart(axis Axis, now time.Time) {
	s := l.state(axis)
	if !s.hasLastMiss || now.Sub(s.lastMissTime) > missRetryWindow {
		return
	}
	s.retryCount++
	l.halveIfOverflowing(s)

	total := s.retryCount + s.missCount
	if total == 0 {
		return
	}
	rate := float64(s.retryCount) / float64(total)
	if total >= 5 && rate > 0.30 {
		bonus := rate * retryBonusRate
		if bonus > maxRetryBonus {
			bonus = maxRetryBonus
		}
		s.retryBonus = bonus
	}
}

func (l *Learner) halveIfOverflowing(s *axisState) {
	if s.retryCount+s.missCount > counterHalvingSum {
		s.retryCount /= 2
		s.missCount /= 2
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
