package platform

import (
	"time"

	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

// FakeTouchSource is a pure-Go TouchSource driven by test code instead of
// real multitouch hardware.
type FakeTouchSource struct {
	onFrame func(frames []contact.Frame, timestamp float64, fingerCount int)
	running bool
}

func (f *FakeTouchSource) Start(onFrame func(frames []contact.Frame, timestamp float64, fingerCount int)) error {
	f.onFrame = onFrame
	f.running = true
	return nil
}

func (f *FakeTouchSource) Stop() { f.running = false }

// Feed delivers one frame batch to the registered callback, as the real
// multitouch driver's worker thread would.
func (f *FakeTouchSource) Feed(frames []contact.Frame, timestamp float64, fingerCount int) {
	if f.running && f.onFrame != nil {
		f.onFrame(frames, timestamp, fingerCount)
	}
}

// FakeEventSink is a pure-Go EventSink that records every posted event for
// assertions.
type FakeEventSink struct {
	PostedScrolls    []contact.ScrollEvent
	MiddleClickCount int
}

func (f *FakeEventSink) PostScroll(ev contact.ScrollEvent) {
	f.PostedScrolls = append(f.PostedScrolls, ev)
}

func (f *FakeEventSink) PostMiddleClick() { f.MiddleClickCount++ }

// FakeEventInterceptor is a pure-Go EventInterceptor driven by test code
// feeding synthetic native events instead of a real CGEventTap.
type FakeEventInterceptor struct {
	decide       func(contact.InterceptedEvent) contact.InterceptDecision
	ActiveInZone bool
}

func (f *FakeEventInterceptor) Start(decide func(contact.InterceptedEvent) contact.InterceptDecision) error {
	f.decide = decide
	return nil
}

func (f *FakeEventInterceptor) Stop() { f.decide = nil }

func (f *FakeEventInterceptor) SetActiveInZone(active bool) { f.ActiveInZone = active }

// Observe runs ev through the registered decision function, as the real
// event tap callback would for a native event.
func (f *FakeEventInterceptor) Observe(ev contact.InterceptedEvent) contact.InterceptDecision {
	if f.decide == nil {
		return contact.Pass
	}
	return f.decide(ev)
}

// FakeFrameClock is a pure-Go FrameClock driven by test code instead of a
// real display link.
type FakeFrameClock struct {
	onTick  func(dt time.Duration)
	running bool
}

func (f *FakeFrameClock) Start(onTick func(dt time.Duration)) error {
	f.onTick = onTick
	f.running = true
	return nil
}

func (f *FakeFrameClock) Stop() { f.running = false }

// Tick drives one frame-clock tick, as the real display-link callback
// would.
func (f *FakeFrameClock) Tick(dt time.Duration) {
	if f.running && f.onTick != nil {
		f.onTick(dt)
	}
}

// FakeConfigStore is an in-memory ConfigStore for tests.
type FakeConfigStore struct {
	Persisted config.Persisted
}

// NewFakeConfigStore returns a FakeConfigStore seeded with default
// persisted state.
func NewFakeConfigStore() *FakeConfigStore {
	return &FakeConfigStore{Persisted: config.DefaultPersisted()}
}

func (f *FakeConfigStore) Load() (config.Persisted, error) { return f.Persisted, nil }

func (f *FakeConfigStore) Save(p config.Persisted) error {
	f.Persisted = p
	return nil
}

// FakeCornerInvoker is a pure-Go CornerActionInvoker that records every
// invoked action for assertions.
type FakeCornerInvoker struct {
	Invoked []config.CornerAction
}

func (f *FakeCornerInvoker) Invoke(action config.CornerAction) error {
	f.Invoked = append(f.Invoked, action)
	return nil
}
