// Package arbiter implements the Finger-Count Arbiter (spec.md §4.3): it
// tracks single vs. multi-finger gesture mode across frames and debounces
// the tail of a system multi-finger gesture before single-finger
// processing resumes.
package arbiter

import "time"

// GestureMode is the tracked finger-count state.
type GestureMode int

const (
	Idle GestureMode = iota
	SingleFinger
	MultiFinger
)

func (m GestureMode) String() string {
	switch m {
	case SingleFinger:
		return "single"
	case MultiFinger:
		return "multi"
	default:
		return "idle"
	}
}

// DebounceWindow is the minimum time after a multi-to-single transition
// before single-finger frames are processed again (spec.md §4.3: 150 ms).
const DebounceWindow = 150 * time.Millisecond

// Transition is the effect a finger-count change has on an in-progress
// scroll session, reported so the caller (the Intent Evaluator / Engine)
// can react without the arbiter needing to know about sessions itself.
type Transition int

const (
	NoTransition Transition = iota
	// CancelScroll fires on a 1 -> >1 transition: cancel active scrolling
	// (emit scroll-phase end if began, stop inertia, clear session).
	CancelScroll
)

// Arbiter tracks gesture mode and the multi-to-single transition time.
type Arbiter struct {
	mode                    GestureMode
	multiToSingleTransition time.Time
	hasTransition           bool
}

// New returns an Arbiter in the Idle state.
func New() *Arbiter {
	return &Arbiter{}
}

// Mode returns the current gesture mode.
func (a *Arbiter) Mode() GestureMode {
	return a.mode
}

// Observe updates gesture mode from a raw finger count and the frame's
// timestamp (used as the debounce clock basis), returning any transition
// effect the caller must react to.
func (a *Arbiter) Observe(fingerCount int, now time.Time) Transition {
	prev := a.mode

	switch {
	case fingerCount == 0:
		a.mode = Idle
	case fingerCount == 1:
		if prev == MultiFinger {
			a.multiToSingleTransition = now
			a.hasTransition = true
		}
		a.mode = SingleFinger
	default: // > 1
		a.mode = MultiFinger
	}

	if prev == SingleFinger && a.mode == MultiFinger {
		return CancelScroll
	}
	return NoTransition
}

// ShouldProcessSingleFingerTouch reports whether a single-finger touch
// frame at time `now` should be processed, per spec.md §4.3: false when
// mode is MultiFinger, or when mode is SingleFinger and less than
// DebounceWindow has elapsed since a multi-to-single transition.
func (a *Arbiter) ShouldProcessSingleFingerTouch(now time.Time) bool {
	if a.mode == MultiFinger {
		return false
	}
	if a.mode == SingleFinger && a.hasTransition {
		if now.Sub(a.multiToSingleTransition) < DebounceWindow {
			return false
		}
	}
	return true
}
