package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason5545/trackpal/internal/adaptive"
	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
	"github.com/jason5545/trackpal/internal/platform"
)

type harness struct {
	eng     *Engine
	source  *platform.FakeTouchSource
	sink    *platform.FakeEventSink
	tap     *platform.FakeEventInterceptor
	clock   *platform.FakeFrameClock
	store   *platform.FakeConfigStore
	invoker *platform.FakeCornerInvoker
}

func newHarness(t *testing.T, cfg config.Config) *harness {
	t.Helper()
	h := &harness{
		source:  &platform.FakeTouchSource{},
		sink:    &platform.FakeEventSink{},
		tap:     &platform.FakeEventInterceptor{},
		clock:   &platform.FakeFrameClock{},
		store:   platform.NewFakeConfigStore(),
		invoker: &platform.FakeCornerInvoker{},
	}
	h.eng = New(zerolog.Nop(), cfg, adaptive.New(), h.source, h.sink, h.tap, h.clock, h.store, h.invoker)
	require.NoError(t, h.eng.Start())
	t.Cleanup(h.eng.Stop)
	return h
}

// feed sends one touch frame through the fake source and blocks until the
// engine's main queue has drained it, since onTouchFrame enqueues its work
// asynchronously.
func (h *harness) feed(f contact.Frame, ts float64, fingerCount int) {
	h.source.Feed([]contact.Frame{f}, ts, fingerCount)
	h.sync()
}

// sync round-trips a no-op task through the main queue to wait for prior
// enqueued work to finish processing.
func (h *harness) sync() {
	done := make(chan struct{})
	h.eng.enqueue(func() { close(done) })
	<-done
}

func TestEngineActivatesVerticalScrollOnRightEdgeAndPostsScrollEvents(t *testing.T) {
	cfg := config.Default()
	h := newHarness(t, cfg)

	x, y := 0.97, 0.5
	ts := 0.0
	h.feed(contact.Frame{X: x, Y: y, State: contact.StateStart, Density: 0.06, MajorAxis: 5, MinorAxis: 5, Timestamp: ts}, ts, 1)

	for i := 0; i < 15; i++ {
		x += 0.0005
		y += 0.01
		ts += 0.016
		h.feed(contact.Frame{X: x, Y: y, State: contact.StateMove1, Density: 0.06, MajorAxis: 5, MinorAxis: 5, Timestamp: ts}, ts, 1)
		if len(h.sink.PostedScrolls) > 0 {
			break
		}
	}

	require.NotEmpty(t, h.sink.PostedScrolls)
	assert.Equal(t, contact.PhaseBegan, h.sink.PostedScrolls[0].Phase)
	assert.True(t, h.eng.isActivelyScrollingInZone.Load())
}

func TestEngineCornerTapInvokesConfiguredAction(t *testing.T) {
	cfg := config.Default()
	cfg.CornerTriggerEnabled = true
	cfg.CornerActions[config.CornerBottomRight] = config.ActionMissionControl
	h := newHarness(t, cfg)

	ts := 0.0
	h.feed(contact.Frame{X: 0.97, Y: 0.03, State: contact.StateStart, Density: 0.06, MajorAxis: 5, MinorAxis: 5, Timestamp: ts}, ts, 1)
	ts += 0.01
	h.feed(contact.Frame{X: 0.97, Y: 0.03, State: contact.StateMove1, Density: 0.06, MajorAxis: 5, MinorAxis: 5, Timestamp: ts}, ts, 1)
	ts += 0.01
	h.feed(contact.Frame{X: 0.0, Y: 0.0, State: contact.StateReleased, Density: 0, Timestamp: ts}, ts, 0)

	require.Len(t, h.invoker.Invoked, 1)
	assert.Equal(t, config.ActionMissionControl, h.invoker.Invoked[0])
	assert.Empty(t, h.sink.PostedScrolls)
}

func TestEngineMiddleClickZoneFiresOnQuickRelease(t *testing.T) {
	cfg := config.Default()
	cfg.MiddleClickEnabled = true
	h := newHarness(t, cfg)

	ts := 0.0
	h.feed(contact.Frame{X: 0.5, Y: 0.95, State: contact.StateStart, Density: 0.06, MajorAxis: 5, MinorAxis: 5, Timestamp: ts}, ts, 1)
	ts += 0.01
	h.feed(contact.Frame{X: 0.0, Y: 0.0, State: contact.StateReleased, Density: 0, Timestamp: ts}, ts, 0)

	assert.Equal(t, 1, h.sink.MiddleClickCount)
}

func TestEngineMultiFingerCancelsActiveScrollSession(t *testing.T) {
	cfg := config.Default()
	h := newHarness(t, cfg)

	x, y := 0.97, 0.5
	ts := 0.0
	h.feed(contact.Frame{X: x, Y: y, State: contact.StateStart, Density: 0.06, MajorAxis: 5, MinorAxis: 5, Timestamp: ts}, ts, 1)
	for i := 0; i < 15; i++ {
		x += 0.0005
		y += 0.01
		ts += 0.016
		h.feed(contact.Frame{X: x, Y: y, State: contact.StateMove1, Density: 0.06, MajorAxis: 5, MinorAxis: 5, Timestamp: ts}, ts, 1)
		if len(h.sink.PostedScrolls) > 0 {
			break
		}
	}
	require.NotEmpty(t, h.sink.PostedScrolls)
	require.True(t, h.eng.isActivelyScrollingInZone.Load())

	h.source.Feed(nil, ts+0.016, 2)
	h.sync()

	assert.False(t, h.eng.isActivelyScrollingInZone.Load())
}

func TestEnginePersistsAdaptiveStateOnStop(t *testing.T) {
	cfg := config.Default()
	h := newHarness(t, cfg)

	h.eng.Stop()

	p, err := h.store.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPersisted().AdaptiveDirCenterH, p.AdaptiveDirCenterH)
}

func TestEngineDecideDropsForeignScrollWhileActive(t *testing.T) {
	cfg := config.Default()
	h := newHarness(t, cfg)
	h.eng.isActivelyScrollingInZone.Store(true)

	decision := h.tap.Observe(contact.InterceptedEvent{IsScroll: true})
	assert.Equal(t, contact.Drop, decision)

	decision = h.tap.Observe(contact.InterceptedEvent{IsScroll: true, UserDataTag: contact.TrackPalTag})
	assert.Equal(t, contact.Pass, decision)
}
