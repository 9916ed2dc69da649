// Package interceptor implements the Event Interceptor (spec.md §4.7): the
// pure decision of whether a raw native scroll or mouse-moved event,
// observed at the HID insertion point, should be dropped because the
// engine is actively driving its own synthesized scroll in a zone.
package interceptor

import "github.com/jason5545/trackpal/internal/contact"

// Interceptor holds the single piece of cross-thread state the decision
// depends on: whether a synthesized scroll session is currently active in
// a zone. The real platform event tap reads this via an atomic snapshot
// (spec.md §3's is_actively_scrolling_in_zone); tests set it directly.
type Interceptor struct {
	activeInZone bool
}

// SetActiveInZone updates whether the engine is actively driving a
// synthesized scroll session. The Engine's decide callback builds a fresh
// Interceptor for each observed event and sets this from its atomic
// snapshot before calling Decide.
func (i *Interceptor) SetActiveInZone(active bool) {
	i.activeInZone = active
}

// ActiveInZone reports the interceptor's current state.
func (i *Interceptor) ActiveInZone() bool { return i.activeInZone }

// Decide returns the Pass/Drop verdict for one observed event (spec.md
// §4.7):
//
//   - a native scroll event is dropped while a session is active, unless it
//     carries TrackPal's own tag (our synthesized events must pass through
//     untouched);
//   - a native mouse-move event is always dropped while a session is
//     active, since the driver's own cursor-follow events would otherwise
//     fight the real pointer.
func (i *Interceptor) Decide(ev contact.InterceptedEvent) contact.InterceptDecision {
	if !i.activeInZone {
		return contact.Pass
	}
	if ev.IsScroll {
		if ev.UserDataTag == contact.TrackPalTag {
			return contact.Pass
		}
		return contact.Drop
	}
	if ev.IsMouseMove {
		return contact.Drop
	}
	return contact.Pass
}
