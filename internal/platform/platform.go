// Package platform declares the capability interfaces the Engine drives
// and the real macOS backend (internal/platform/darwin) and the in-memory
// test double both implement. Separating these from internal/engine lets
// the entire Touch Intent Engine run, and be tested, without any cgo or
// real trackpad hardware.
package platform

import (
	"time"

	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

// TouchSource delivers raw contact frames from the multitouch hardware
// (or a fake), mirroring spec.md §6's raw multitouch callback contract.
type TouchSource interface {
	// Start begins delivering frames to onFrame, invoked from an
	// arbitrary goroutine, until Stop is called.
	Start(onFrame func(frames []contact.Frame, timestamp float64, fingerCount int)) error
	Stop()
}

// EventSink posts synthesized scroll events and cursor/click actions to
// the host OS.
type EventSink interface {
	PostScroll(ev contact.ScrollEvent)
	PostMiddleClick()
}

// EventInterceptor is the platform-side half of the Event Interceptor
// (spec.md §4.7): it owns the real event tap and consults a Decider for
// each observed event.
type EventInterceptor interface {
	Start(decide func(contact.InterceptedEvent) contact.InterceptDecision) error
	Stop()
	// SetActiveInZone records whether a synthesized scroll session is
	// active. The tap callback does not read this value; it decides through
	// the function passed to Start.
	SetActiveInZone(active bool)
}

// FrameClock drives periodic inertia ticks at the host's display refresh
// rate (or a fake ticker in tests).
type FrameClock interface {
	Start(onTick func(dt time.Duration)) error
	Stop()
}

// ConfigStore persists the Configuration and Adaptive Learner state across
// runs.
type ConfigStore interface {
	Load() (config.Persisted, error)
	Save(config.Persisted) error
}

// CornerActionInvoker triggers an OS-level gesture action for a corner tap
// (spec.md §3's corner_actions map).
type CornerActionInvoker interface {
	Invoke(action config.CornerAction) error
}
