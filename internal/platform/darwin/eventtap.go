//go:build darwin

package darwin

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation

#include <stdbool.h>
#include <stdint.h>
#include <CoreGraphics/CoreGraphics.h>

extern CGEventRef goEventTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static inline CFMachPortRef trackpalCreateTap(CGEventMask mask) {
	return CGEventTapCreate(kCGSessionEventTap, kCGHeadInsertEventTap, kCGEventTapOptionDefault,
		mask, (CGEventTapCallBack)goEventTapCallback, NULL);
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/jason5545/trackpal/internal/contact"
)

// EventInterceptor taps scroll-wheel and mouse-moved events system-wide so
// the Engine can drop or rewrite events that collide with a synthesized
// scroll session (spec.md §4.7). Only one tap may be active per process;
// the CGEventTapCallBack has no Go-visible user-data slot so the bridge
// dispatches to a single package-level instance.
type EventInterceptor struct {
	mu         sync.Mutex
	machPort   C.CFMachPortRef
	runSource  C.CFRunLoopSourceRef
	runLoop    C.CFRunLoopRef
	stopCh     chan struct{}
	doneCh     chan struct{}
	activeZone bool
	decide     func(contact.InterceptedEvent) contact.InterceptDecision
}

var activeTap struct {
	mu sync.RWMutex
	ei *EventInterceptor
}

// Start installs the event tap and runs its CFRunLoop on a dedicated,
// OS-thread-locked goroutine, mirroring the teacher's pattern of never
// running CFRunLoopRun on a goroutine the Go scheduler may migrate.
func (e *EventInterceptor) Start(decide func(contact.InterceptedEvent) contact.InterceptDecision) error {
	e.mu.Lock()
	e.decide = decide
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.mu.Unlock()

	mask := C.CGEventMask(1<<C.kCGEventScrollWheel | 1<<C.kCGEventMouseMoved)
	port := C.trackpalCreateTap(mask)
	if port == 0 {
		return fmt.Errorf("darwin: CGEventTapCreate failed (accessibility permission missing?)")
	}

	e.mu.Lock()
	e.machPort = port
	e.mu.Unlock()

	activeTap.mu.Lock()
	activeTap.ei = e
	activeTap.mu.Unlock()

	ready := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		src := C.CFMachPortCreateRunLoopSource(0, port, 0)
		loop := C.CFRunLoopGetCurrent()
		C.CFRunLoopAddSource(loop, src, C.kCFRunLoopCommonModes)
		C.CGEventTapEnable(port, C.true)

		e.mu.Lock()
		e.runSource = src
		e.runLoop = loop
		e.mu.Unlock()
		close(ready)

		C.CFRunLoopRun()
		close(e.doneCh)
	}()
	<-ready
	return nil
}

// Stop tears down the run loop and releases the tap.
func (e *EventInterceptor) Stop() {
	e.mu.Lock()
	loop := e.runLoop
	port := e.machPort
	done := e.doneCh
	e.mu.Unlock()
	if loop == 0 {
		return
	}

	C.CGEventTapEnable(port, C.false)
	C.CFRunLoopStop(loop)
	if done != nil {
		<-done
	}
	C.CFMachPortInvalidate(port)
	C.CFRelease(C.CFTypeRef(port))

	activeTap.mu.Lock()
	if activeTap.ei == e {
		activeTap.ei = nil
	}
	activeTap.mu.Unlock()
}

// SetActiveInZone records the active-in-zone flag on the tap. The tap
// callback does not read it and no accessor exposes it; decisions go
// through the decide function passed to Start.
func (e *EventInterceptor) SetActiveInZone(active bool) {
	e.mu.Lock()
	e.activeZone = active
	e.mu.Unlock()
}

//export goEventTapCallback
func goEventTapCallback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	_ = proxy
	_ = refcon

	activeTap.mu.RLock()
	e := activeTap.ei
	activeTap.mu.RUnlock()
	if e == nil {
		return event
	}

	if eventType == C.kCGEventTapDisabledByTimeout || eventType == C.kCGEventTapDisabledByUserInput {
		e.mu.Lock()
		port := e.machPort
		e.mu.Unlock()
		C.CGEventTapEnable(port, C.true)
		return event
	}

	e.mu.Lock()
	decide := e.decide
	e.mu.Unlock()
	if decide == nil {
		return event
	}

	tag := C.CGEventGetIntegerValueField(event, C.kCGEventSourceUserData)
	ev := contact.InterceptedEvent{
		IsScroll:    eventType == C.kCGEventScrollWheel,
		IsMouseMove: eventType == C.kCGEventMouseMoved,
		UserDataTag: uint32(tag),
	}

	if decide(ev) == contact.Drop {
		return 0
	}
	return event
}
