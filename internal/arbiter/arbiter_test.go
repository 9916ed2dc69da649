package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveBasicTransitions(t *testing.T) {
	a := New()
	base := time.Unix(0, 0)

	assert.Equal(t, Idle, a.Mode())

	a.Observe(1, base)
	assert.Equal(t, SingleFinger, a.Mode())

	tr := a.Observe(2, base.Add(10*time.Millisecond))
	assert.Equal(t, MultiFinger, a.Mode())
	assert.Equal(t, CancelScroll, tr, "single -> multi must cancel scrolling")

	tr = a.Observe(1, base.Add(20*time.Millisecond))
	assert.Equal(t, SingleFinger, a.Mode())
	assert.Equal(t, NoTransition, tr, "multi -> single itself is not a cancel transition")

	a.Observe(0, base.Add(30*time.Millisecond))
	assert.Equal(t, Idle, a.Mode())
}

func TestDebounceAfterMultiToSingle(t *testing.T) {
	a := New()
	base := time.Unix(0, 0)

	// Two-finger frames for 300ms.
	a.Observe(2, base)
	a.Observe(2, base.Add(100*time.Millisecond))
	a.Observe(2, base.Add(300*time.Millisecond))

	// Single-finger frame right at the transition (t=0.30s).
	a.Observe(1, base.Add(300*time.Millisecond))

	// A frame 50ms later (within the 150ms debounce window) must not process.
	assert.False(t, a.ShouldProcessSingleFingerTouch(base.Add(350*time.Millisecond)))

	// A frame at t=0.45s (150ms after the transition) begins processing normally.
	assert.True(t, a.ShouldProcessSingleFingerTouch(base.Add(450*time.Millisecond)))
}

func TestShouldProcessFalseDuringMultiFinger(t *testing.T) {
	a := New()
	now := time.Unix(0, 0)
	a.Observe(2, now)
	assert.False(t, a.ShouldProcessSingleFingerTouch(now))
}

func TestShouldProcessTrueWithoutPriorTransition(t *testing.T) {
	a := New()
	now := time.Unix(0, 0)
	a.Observe(1, now)
	assert.True(t, a.ShouldProcessSingleFingerTouch(now))
}
