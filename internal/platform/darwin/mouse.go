//go:build darwin

package darwin

/*
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices

#include <stdbool.h>
#include <stdint.h>
#include <CoreGraphics/CoreGraphics.h>

static inline void trackpalTagEvent(CGEventRef event, uint32_t tag) {
	CGEventSetIntegerValueField(event, kCGEventSourceUserData, (int64_t)tag);
}

static inline void trackpalPostScroll(int32_t lineDY, int32_t lineDX, int32_t pixelDY, int32_t pixelDX, uint32_t tag) {
	CGEventRef event = CGEventCreateScrollWheelEvent(NULL, kCGScrollEventUnitPixel, 2, pixelDY, pixelDX);
	if (event == NULL) {
		return;
	}
	CGEventSetIntegerValueField(event, kCGScrollWheelEventDeltaAxis1, lineDY);
	CGEventSetIntegerValueField(event, kCGScrollWheelEventDeltaAxis2, lineDX);
	CGEventSetIntegerValueField(event, kCGScrollWheelEventPointDeltaAxis1, pixelDY);
	CGEventSetIntegerValueField(event, kCGScrollWheelEventPointDeltaAxis2, pixelDX);
	trackpalTagEvent(event, tag);
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
}

static inline void trackpalPostMiddleClick(uint32_t tag) {
	CGEventRef ev = CGEventCreate(NULL);
	CGPoint loc = CGPointZero;
	if (ev != NULL) {
		loc = CGEventGetLocation(ev);
		CFRelease(ev);
	}

	CGEventRef down = CGEventCreateMouseEvent(NULL, kCGEventOtherMouseDown, loc, kCGMouseButtonCenter);
	CGEventRef up = CGEventCreateMouseEvent(NULL, kCGEventOtherMouseUp, loc, kCGMouseButtonCenter);
	if (down != NULL) {
		trackpalTagEvent(down, tag);
		CGEventPost(kCGHIDEventTap, down);
		CFRelease(down);
	}
	if (up != NULL) {
		trackpalTagEvent(up, tag);
		CGEventPost(kCGHIDEventTap, up);
		CFRelease(up);
	}
}

static inline void trackpalPostKeyCombo(uint16_t keycode, bool control, bool option, bool command) {
	CGEventSourceRef src = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);
	CGEventRef down = CGEventCreateKeyboardEvent(src, keycode, true);
	CGEventRef up = CGEventCreateKeyboardEvent(src, keycode, false);
	CGEventFlags flags = 0;
	if (control) flags |= kCGEventFlagMaskControl;
	if (option)  flags |= kCGEventFlagMaskAlternate;
	if (command) flags |= kCGEventFlagMaskCommand;
	if (down != NULL) {
		if (flags != 0) CGEventSetFlags(down, flags);
		CGEventPost(kCGHIDEventTap, down);
		CFRelease(down);
	}
	if (up != NULL) {
		if (flags != 0) CGEventSetFlags(up, flags);
		CGEventPost(kCGHIDEventTap, up);
		CFRelease(up);
	}
	if (src != NULL) CFRelease(src);
}
*/
import "C"

import (
	"fmt"

	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

// EventSink posts synthesized scroll and middle-click events through
// CGEventPost, tagged with contact.TrackPalTag so the EventInterceptor
// recognizes and never suppresses TrackPal's own output (spec.md §4.5/§4.6).
type EventSink struct{}

func (EventSink) PostScroll(ev contact.ScrollEvent) {
	C.trackpalPostScroll(
		C.int32_t(ev.LineDY), C.int32_t(ev.LineDX),
		C.int32_t(ev.PixelDY), C.int32_t(ev.PixelDX),
		C.uint32_t(ev.UserDataTag),
	)
}

func (EventSink) PostMiddleClick() {
	C.trackpalPostMiddleClick(C.uint32_t(contact.TrackPalTag))
}

// CornerActionInvoker triggers an OS-level gesture for a corner tap by
// synthesizing the keyboard shortcut macOS binds to that gesture by default.
// Users who rebind these shortcuts in System Settings must rebind them to
// match; TrackPal does not attempt to invoke the gestures directly since
// there is no public, stable API for them.
type CornerActionInvoker struct{}

// Virtual keycodes for the US ANSI layout, matching the kVK_* constants
// from Carbon's HIToolbox (not linked here to avoid the Carbon dependency
// for four integers).
const (
	kVKF3  = 0x63 // Mission Control
	kVKF9  = 0x65 // Application windows (App Exposé)
	kVKF11 = 0x67 // Show Desktop
	kVKF4  = 0x76 // Launchpad (Touch Bar Macs rebind this; best effort)
)

func (CornerActionInvoker) Invoke(action config.CornerAction) error {
	switch action {
	case config.ActionNone:
		return nil
	case config.ActionMissionControl:
		C.trackpalPostKeyCombo(kVKF3, false, false, false)
	case config.ActionAppWindows:
		C.trackpalPostKeyCombo(kVKF9, false, false, false)
	case config.ActionShowDesktop:
		C.trackpalPostKeyCombo(kVKF11, false, false, false)
	case config.ActionLaunchpad:
		C.trackpalPostKeyCombo(kVKF4, false, false, false)
	case config.ActionNotificationCenter:
		// No stable default keyboard shortcut; fall back to nothing rather
		// than guess at a binding that is likely already reassigned.
		return fmt.Errorf("darwin: notification center corner action has no synthesizable shortcut")
	case config.ActionRightClick:
		postRightClick()
	default:
		return fmt.Errorf("darwin: unknown corner action %v", action)
	}
	return nil
}

func postRightClick() {
	ev := C.CGEventCreate(0)
	var loc C.CGPoint
	if ev != 0 {
		loc = C.CGEventGetLocation(ev)
		C.CFRelease(C.CFTypeRef(ev))
	}
	down := C.CGEventCreateMouseEvent(0, C.kCGEventRightMouseDown, loc, C.kCGMouseButtonRight)
	up := C.CGEventCreateMouseEvent(0, C.kCGEventRightMouseUp, loc, C.kCGMouseButtonRight)
	if down != 0 {
		C.trackpalTagEvent(down, C.uint32_t(contact.TrackPalTag))
		C.CGEventPost(C.kCGHIDEventTap, down)
		C.CFRelease(C.CFTypeRef(down))
	}
	if up != 0 {
		C.trackpalTagEvent(up, C.uint32_t(contact.TrackPalTag))
		C.CGEventPost(C.kCGHIDEventTap, up)
		C.CFRelease(C.CFTypeRef(up))
	}
}
