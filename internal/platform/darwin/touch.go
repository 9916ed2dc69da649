//go:build darwin

// Package darwin is the real macOS backend for five of the six
// internal/platform capability interfaces (the config store is
// config.FileStore): MultitouchSupport for raw contact frames and
// device hot-plug polling, CoreGraphics for the event tap and synthesized
// events.
package darwin

/*
#cgo LDFLAGS: -F/System/Library/PrivateFrameworks -framework MultitouchSupport -framework CoreFoundation

#include <stdint.h>
#include <CoreFoundation/CoreFoundation.h>

typedef void *MTDeviceRef;

// MultitouchSupport.framework is a private framework with no public header;
// this layout is the one the open-source trackpad-gesture community has
// reverse engineered and relied on for years (e.g. the various "Fingers"-
// style utilities). Field names are descriptive, not Apple's.
typedef struct {
	float x, y;
} MTPointF;

typedef struct {
	MTPointF position;
	MTPointF velocity;
} MTReadoutF;

typedef struct {
	int32_t frame;
	double timestamp;
	int32_t identifier;
	int32_t state;
	int32_t foo1, foo2;
	MTReadoutF normalized;
	float size;
	int32_t foo3;
	float angle;
	float majorAxis;
	float minorAxis;
	MTReadoutF mm;
	int32_t foo4[2];
	float density;
} MTTouch;

typedef int (*MTContactCallback)(MTDeviceRef, MTTouch *, int32_t, double, int32_t);

extern MTDeviceRef MTDeviceCreateDefault(void);
extern CFMutableArrayRef MTDeviceCreateList(void);
extern void MTRegisterContactFrameCallback(MTDeviceRef, MTContactCallback);
extern void MTUnregisterContactFrameCallback(MTDeviceRef, MTContactCallback);
extern void MTDeviceStart(MTDeviceRef, int32_t);
extern void MTDeviceStop(MTDeviceRef);

extern int goMTContactCallback(MTDeviceRef, MTTouch *, int32_t, double, int32_t);

static inline void trackpalRegister(MTDeviceRef dev) {
	MTRegisterContactFrameCallback(dev, (MTContactCallback)goMTContactCallback);
	MTDeviceStart(dev, 0);
}

static inline void trackpalUnregister(MTDeviceRef dev) {
	MTUnregisterContactFrameCallback(dev, (MTContactCallback)goMTContactCallback);
	MTDeviceStop(dev);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/jason5545/trackpal/internal/contact"
)

// touchStateTouching is the MultitouchSupport frame state for an actively
// contacting finger (as opposed to hover/start/break transients).
const touchStateTouching = 4

// deviceRefreshInterval is how often TouchSource re-scans for attached
// multitouch devices. The teacher diffs device sets from IOKit hot-plug
// notifications; TrackPal polls instead, trading a little disconnect
// latency for not needing a second missing-header cgo bridge (device.h is
// absent from this teacher's captured sources, same gap as multitouch.h).
const deviceRefreshInterval = 2 * time.Second

// TouchSource delivers raw contact frames from MultitouchSupport.framework.
// Only one TouchSource may be active at a time per process: the framework's
// callback has no user-data slot, so the bridge dispatches to a single
// package-level instance (mirrors the teacher's single global *App).
type TouchSource struct {
	mu      sync.Mutex
	devices map[C.MTDeviceRef]struct{}
	onFrame func(frames []contact.Frame, timestamp float64, fingerCount int)
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var activeSource struct {
	mu sync.RWMutex
	ts *TouchSource
}

// Start registers onFrame, registers every currently attached multitouch
// device, and begins polling for hot-plug changes.
func (t *TouchSource) Start(onFrame func(frames []contact.Frame, timestamp float64, fingerCount int)) error {
	t.mu.Lock()
	t.onFrame = onFrame
	t.devices = make(map[C.MTDeviceRef]struct{})
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	stopCh := t.stopCh
	doneCh := t.doneCh
	t.mu.Unlock()

	if err := t.refreshDevices(); err != nil {
		return err
	}

	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	activeSource.mu.Lock()
	activeSource.ts = t
	activeSource.mu.Unlock()

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(deviceRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = t.refreshDevices()
			case <-stopCh:
				return
			}
		}
	}()
	return nil
}

// refreshDevices re-enumerates attached devices and registers the callback
// on any that are new, mirroring the teacher's RefreshDevices diff.
func (t *TouchSource) refreshDevices() error {
	list := C.MTDeviceCreateList()
	if list == 0 {
		return fmt.Errorf("darwin: MTDeviceCreateList returned nil")
	}
	defer C.CFRelease(C.CFTypeRef(list))

	count := C.CFArrayGetCount(C.CFArrayRef(list))
	current := make(map[C.MTDeviceRef]struct{}, count)
	for i := C.CFIndex(0); i < count; i++ {
		dev := C.MTDeviceRef(C.CFArrayGetValueAtIndex(C.CFArrayRef(list), i))
		current[dev] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for dev := range current {
		if _, known := t.devices[dev]; !known {
			C.trackpalRegister(dev)
		}
	}
	for dev := range t.devices {
		if _, stillPresent := current[dev]; !stillPresent {
			C.trackpalUnregister(dev)
		}
	}
	t.devices = current
	return nil
}

// Stop unregisters every device callback and halts the hot-plug poll.
func (t *TouchSource) Stop() {
	t.mu.Lock()
	devices := t.devices
	stopCh := t.stopCh
	doneCh := t.doneCh
	t.devices = nil
	t.started = false
	t.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	for dev := range devices {
		C.trackpalUnregister(dev)
	}

	activeSource.mu.Lock()
	if activeSource.ts == t {
		activeSource.ts = nil
	}
	activeSource.mu.Unlock()
}

func (t *TouchSource) deliver(data *C.MTTouch, count int, timestamp float64) {
	t.mu.Lock()
	onFrame := t.onFrame
	t.mu.Unlock()
	if onFrame == nil {
		return
	}

	raw := unsafe.Slice(data, count)
	frames := make([]contact.Frame, 0, count)
	active := 0
	for _, f := range raw {
		if int(f.state) != touchStateTouching {
			continue
		}
		active++
		frames = append(frames, contact.Frame{
			X:           float64(f.normalized.position.x),
			Y:           float64(f.normalized.position.y),
			State:       contact.StateMove1,
			Density:     float64(f.density),
			MajorAxis:   float64(f.majorAxis),
			MinorAxis:   float64(f.minorAxis),
			Timestamp:   timestamp,
			FingerCount: active,
		})
	}
	onFrame(frames, timestamp, active)
}

//export goMTContactCallback
func goMTContactCallback(device C.MTDeviceRef, data *C.MTTouch, dataNum C.int32_t, timestamp C.double, frame C.int32_t) C.int {
	_, _ = device, frame
	activeSource.mu.RLock()
	ts := activeSource.ts
	activeSource.mu.RUnlock()
	if ts != nil {
		ts.deliver(data, int(dataNum), float64(timestamp))
	}
	return 0
}
