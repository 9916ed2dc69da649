// Package engine wires the Touch Classifier, Zone Map, Finger-Count
// Arbiter, Intent Evaluator, Scroll Emitter, Inertia Engine, Event
// Interceptor, Adaptive Learner, and Session Recorder into the Touch
// Intent Engine (spec.md §2): the stateful pipeline from raw contact
// frames to synthesized scroll/click events.
package engine

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jason5545/trackpal/internal/adaptive"
	"github.com/jason5545/trackpal/internal/arbiter"
	"github.com/jason5545/trackpal/internal/classifier"
	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
	"github.com/jason5545/trackpal/internal/inertia"
	"github.com/jason5545/trackpal/internal/intent"
	"github.com/jason5545/trackpal/internal/interceptor"
	"github.com/jason5545/trackpal/internal/platform"
	"github.com/jason5545/trackpal/internal/recorder"
	"github.com/jason5545/trackpal/internal/scrollemit"
	"github.com/jason5545/trackpal/internal/zonemap"
)

const persistEveryNEvents = 20

// session is the main-queue-only mutable state of the single in-progress
// touch (spec.md §3's "Touch session"). Every field here is read and
// written exclusively from the Engine's main-queue goroutine.
type session struct {
	active             bool
	zone               contact.Zone
	originalZone       contact.Zone
	startX, startY     float64
	lastX, lastY       float64
	lastTime           float64
	velHistory         []contact.VelocitySample
	eval               *intent.Evaluation
	activated          bool
	activationSnapshot recorder.ActivationData
	scrollAcc          scrollemit.Accumulator
	scrollPhaseBegan   bool
	recorderSession    recorder.Session
}

// Engine is the Touch Intent Engine. Zero value is not usable; build one
// with New.
type Engine struct {
	log zerolog.Logger

	source     platform.TouchSource
	sink       platform.EventSink
	tap        platform.EventInterceptor
	clock      platform.FrameClock
	store      platform.ConfigStore
	invoker    platform.CornerActionInvoker

	cfg     config.Config
	learner *adaptive.Learner

	arb     *arbiter.Arbiter
	classif classifier.Counters
	history *recorder.History
	coast   inertia.Coast

	sess session

	// isActivelyScrollingInZone and fingerCountSnapshot are the two pieces
	// of cross-thread state (spec.md §5); both are plain atomics, the
	// narrowest primitive that satisfies the "get/set accessors, hold
	// briefly" rule. Producer B (the event-tap callback) reads
	// isActivelyScrollingInZone without entering the main queue;
	// fingerCountSnapshot is written by producer A on every callback and
	// nothing in the engine reads it.
	isActivelyScrollingInZone atomic.Bool
	fingerCountSnapshot       atomic.Int32

	tasks  chan func()
	stopCh chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	learningEvents int
}

// New builds an Engine from its capabilities and initial configuration.
// Call Start to begin processing.
func New(
	log zerolog.Logger,
	cfg config.Config,
	learner *adaptive.Learner,
	source platform.TouchSource,
	sink platform.EventSink,
	tap platform.EventInterceptor,
	clock platform.FrameClock,
	store platform.ConfigStore,
	invoker platform.CornerActionInvoker,
) *Engine {
	return &Engine{
		log:     log,
		source:  source,
		sink:    sink,
		tap:     tap,
		clock:   clock,
		store:   store,
		invoker: invoker,
		cfg:     cfg,
		learner: learner,
		arb:     arbiter.New(),
		history: recorder.NewHistory(),
		tasks:   make(chan func(), 64),
		stopCh:  make(chan struct{}),
	}
}

// Start begins the engine's main-queue goroutine and attaches every
// capability's callback, mirroring the teacher's Open()/Run() split.
func (e *Engine) Start() error {
	e.wg.Add(1)
	go e.runMainQueue()

	if err := e.tap.Start(e.decide); err != nil {
		return err
	}
	if err := e.clock.Start(e.onClockTick); err != nil {
		e.tap.Stop()
		return err
	}
	if err := e.source.Start(e.onTouchFrame); err != nil {
		e.clock.Stop()
		e.tap.Stop()
		return err
	}
	return nil
}

// Stop tears down every capability and the main queue, flushing adaptive
// state to the config store (spec.md §4.8: "persist ... at teardown").
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.source.Stop()
		e.clock.Stop()
		e.tap.Stop()
		close(e.stopCh)
		e.wg.Wait()
		e.persistAdaptive()
	})
}

func (e *Engine) runMainQueue() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		case task := <-e.tasks:
			task()
		}
	}
}

// enqueue posts a task to the main queue, processed FIFO (spec.md §5).
func (e *Engine) enqueue(task func()) {
	select {
	case e.tasks <- task:
	case <-e.stopCh:
	}
}

// onTouchFrame is Producer A's callback (spec.md §5): invoked on an
// arbitrary worker thread, it extracts primitive fields and enqueues a
// main-queue task without retaining the frame slice across the handoff.
func (e *Engine) onTouchFrame(frames []contact.Frame, timestamp float64, fingerCount int) {
	e.fingerCountSnapshot.Store(int32(fingerCount))
	batch := append([]contact.Frame(nil), frames...)
	e.enqueue(func() {
		e.processFrameBatch(batch, timestamp, fingerCount)
	})
}

// onClockTick is the frame-clock callback (spec.md §5): it enqueues an
// inertia step and returns immediately.
func (e *Engine) onClockTick(dt time.Duration) {
	e.enqueue(func() {
		e.tickInertia(dt)
	})
}

// decide is Producer B's synchronous event-tap decision (spec.md §4.7,
// §5): it must never enter the main queue, so it only reads the Engine's
// isActivelyScrollingInZone atomic and passes it to internal/interceptor's
// pure decision function.
func (e *Engine) decide(ev contact.InterceptedEvent) contact.InterceptDecision {
	var i interceptor.Interceptor
	i.SetActiveInZone(e.isActivelyScrollingInZone.Load())
	return i.Decide(ev)
}

func (e *Engine) processFrameBatch(frames []contact.Frame, timestamp float64, fingerCount int) {
	now := time.Unix(0, int64(timestamp*float64(time.Second)))
	transition := e.arb.Observe(fingerCount, now)
	if transition == arbiter.CancelScroll {
		e.resetTracking(true)
	}

	if fingerCount == 0 {
		// Synthetic "all released" pseudo-frame: liftoff.
		e.handleLiftoff(timestamp)
		return
	}
	if fingerCount != 1 {
		return
	}
	if !e.arb.ShouldProcessSingleFingerTouch(now) {
		return
	}

	for _, f := range frames {
		e.processFrame(f, timestamp)
	}
}

func (e *Engine) processFrame(f contact.Frame, timestamp float64) {
	v := e.classif.Record(f, e.cfg)
	if v != classifier.Valid {
		if e.sess.active {
			e.resetTracking(false)
		}
		return
	}

	if f.State.IsLiftoff() {
		e.handleLiftoff(timestamp)
		return
	}

	if !e.sess.active {
		e.maybeStartSession(f, timestamp)
		return
	}

	e.advanceSession(f, timestamp)
}

func (e *Engine) maybeStartSession(f contact.Frame, timestamp float64) {
	// A new touch pre-empts any coast still running from the last one.
	e.coast.Cancel()
	zone := zonemap.Lookup(f.X, f.Y, e.cfg)
	if zone == contact.ZoneCenter || zone == contact.ZoneNone {
		return
	}

	e.sess = session{
		active:       true,
		zone:         zone,
		originalZone: zone,
		startX:       f.X,
		startY:       f.Y,
		lastX:        f.X,
		lastY:        f.Y,
		lastTime:     f.Timestamp,
	}

	if zone == contact.ZoneMiddleClick {
		// The middle-click zone is a tap target, not scroll-evaluated: it
		// fires on lift-off in handleLiftoff. No Intent Evaluator session
		// runs. Corner zones, by contrast, do run the evaluator below (for
		// corner promotion) and fire their tap action on lift-off only if
		// the touch never activated.
		return
	}
	now := time.Unix(0, int64(timestamp*float64(time.Second)))
	e.learner.RecordSessionStart(axisFor(zone), now)

	e.sess.eval = intent.New(zone, f.X, f.Y, e.cfg)
	e.sess.recorderSession.Begin(zone, f.Timestamp)
	e.isActivelyScrollingInZone.Store(true)
}

func (e *Engine) advanceSession(f contact.Frame, timestamp float64) {
	dx, dy := f.X-e.sess.lastX, f.Y-e.sess.lastY
	dt := f.Timestamp - e.sess.lastTime
	e.sess.lastX, e.sess.lastY = f.X, f.Y
	e.sess.lastTime = f.Timestamp

	var vx, vy float64
	if dt > 0 {
		vx, vy = dx/dt, dy/dt
	}
	vel := contact.VelocitySample{VX: vx, VY: vy, Time: f.Timestamp}
	e.sess.velHistory = append(e.sess.velHistory, vel)
	if len(e.sess.velHistory) > 5 {
		e.sess.velHistory = e.sess.velHistory[len(e.sess.velHistory)-5:]
	}
	e.sess.recorderSession.Update(contact.Delta{DX: dx, DY: dy}, math.Hypot(vx, vy))

	if e.sess.zone == contact.ZoneMiddleClick {
		// No Bayesian evaluation for a tap target. handleLiftoff posts
		// the middle click whenever the session never activated; movement
		// during the touch, however large, does not cancel the tap.
		return
	}

	if e.sess.activated {
		// Past activation, spec.md §4.4 says "begin normal scroll
		// emission": every subsequent delta goes straight to the Scroll
		// Emitter, never back through the Bayesian evaluator — Feed's
		// buffered-delta list only grows and is only meant to be flushed
		// once, at the moment of activation.
		e.emitScroll(contact.Delta{DX: dx, DY: dy}, e.sess.zone)
		return
	}

	if e.sess.eval == nil {
		return
	}

	decision := e.sess.eval.Feed(contact.Delta{DX: dx, DY: dy}, f.Density, vel, e.cfg, e.learner)
	switch decision {
	case intent.Activated:
		e.activate(f.Timestamp)
	case intent.Rejected:
		e.rejectActivation(f.Timestamp)
	case intent.NeedMoreFrames:
		// keep accumulating
	}
}

func (e *Engine) activate(timestamp float64) {
	zone := e.sess.eval.Zone()
	e.sess.zone = zone
	deltas := e.sess.eval.BufferedDeltas()
	n := len(deltas)
	for i, d := range deltas {
		scale := intent.RampFlushScale(i, n)
		e.emitScroll(contact.Delta{DX: d.DX * scale, DY: d.DY * scale}, zone)
	}
	e.learner.RecordSuccess(axisFor(zone), e.sess.eval.OnAxisRatios())
	e.sess.activationSnapshot = recorder.ActivationData{
		OnAxisRatio:  e.sess.eval.OnAxisRatio(),
		OffAxisSpeed: e.sess.eval.OffAxisSpeed(),
		OnAxisSpeed:  e.sess.eval.OnAxisSpeed(),
		Density:      e.sess.eval.Density(),
		Confidence:   e.sess.eval.Confidence(),
	}
	e.sess.activated = true
	e.sess.eval = nil
	e.learnerPersistTick()
}

func (e *Engine) rejectActivation(timestamp float64) {
	e.learner.RecordFailure(axisFor(e.sess.zone), time.Unix(0, int64(timestamp*float64(time.Second))))
	if e.sess.originalZone.IsCorner() {
		e.sess.zone = e.sess.originalZone
	} else {
		e.sess.zone = contact.ZoneCenter
	}
	e.isActivelyScrollingInZone.Store(false)
	e.sess.eval = nil
}

func (e *Engine) emitScroll(d contact.Delta, zone contact.Zone) {
	ev, ok := e.sess.scrollAcc.Emit(d, zone, e.cfg)
	if !ok {
		return
	}
	e.sess.scrollPhaseBegan = true
	e.sink.PostScroll(ev)
}

func (e *Engine) handleLiftoff(timestamp float64) {
	if !e.sess.active {
		return
	}
	wasTap := !e.sess.activated
	middleClickZone := e.sess.zone == contact.ZoneMiddleClick
	cornerZone := e.sess.originalZone.IsCorner() && e.sess.zone == e.sess.originalZone

	if middleClickZone && wasTap {
		e.sink.PostMiddleClick()
	} else if cornerZone && wasTap {
		if action, ok := e.cfg.CornerActions[cornerOf(e.sess.originalZone)]; ok && action != config.ActionNone {
			_ = e.invoker.Invoke(action)
		}
	}

	if e.sess.scrollPhaseBegan {
		if ev, ok := e.sess.scrollAcc.EndSession(); ok {
			e.sink.PostScroll(ev)
		}
		e.maybeStartInertia(timestamp)
	}

	e.resetTracking(false)
}

func (e *Engine) maybeStartInertia(timestamp float64) {
	avgVx, avgVy := averageVelocity(e.sess.velHistory)
	e.coast.Start(e.sess.zone, avgVx*e.cfg.ScrollMultiplier, avgVy*e.cfg.ScrollMultiplier)
}

func (e *Engine) tickInertia(dt time.Duration) {
	if !e.coast.Active() {
		return
	}
	ev, ok := e.coast.Tick(float64(dt.Milliseconds()))
	if ok {
		e.sink.PostScroll(ev)
	}
}

// resetTracking clears the in-progress session (spec.md §5's invariant on
// is_actively_scrolling_in_zone), posting the zero-delta ended event if a
// Began scroll event was posted and not yet ended, closing its Session
// Recorder record and cancelling any coast in progress on a multi-finger
// pre-empt.
func (e *Engine) resetTracking(cancelled bool) {
	if e.sess.scrollPhaseBegan {
		if ev, ok := e.sess.scrollAcc.EndSession(); ok {
			e.sink.PostScroll(ev)
		}
	}
	if e.sess.active && (e.sess.eval != nil || e.sess.activated) {
		data := e.sess.activationSnapshot
		if e.sess.eval != nil {
			data = recorder.ActivationData{
				OnAxisRatio:  e.sess.eval.OnAxisRatio(),
				OffAxisSpeed: e.sess.eval.OffAxisSpeed(),
				OnAxisSpeed:  e.sess.eval.OnAxisSpeed(),
				Density:      e.sess.eval.Density(),
				Confidence:   e.sess.eval.Confidence(),
			}
		}
		r := e.sess.recorderSession.Finish(e.sess.lastTime, cancelled, data)
		e.history.Push(r)
	}
	if cancelled {
		e.coast.Cancel()
	}
	e.isActivelyScrollingInZone.Store(false)
	e.sess = session{}
}

func (e *Engine) learnerPersistTick() {
	e.learningEvents++
	if e.learningEvents < persistEveryNEvents {
		return
	}
	e.learningEvents = 0
	e.persistAdaptive()
}

func (e *Engine) persistAdaptive() {
	p, err := e.store.Load()
	if err != nil {
		e.log.Warn().Err(err).Msg("engine: load persisted state before adaptive save")
		p = config.DefaultPersisted()
	}
	p = e.learner.ToPersisted(p)
	if err := e.store.Save(p); err != nil {
		e.log.Warn().Err(err).Msg("engine: persist adaptive state")
	}
}

func axisFor(zone contact.Zone) adaptive.Axis {
	if zone.IsHorizontalScrollZone() {
		return adaptive.Horizontal
	}
	return adaptive.Vertical
}

func cornerOf(zone contact.Zone) config.Corner {
	switch zone {
	case contact.ZoneTopLeftCorner:
		return config.CornerTopLeft
	case contact.ZoneTopRightCorner:
		return config.CornerTopRight
	case contact.ZoneBottomLeftCorner:
		return config.CornerBottomLeft
	default:
		return config.CornerBottomRight
	}
}

func averageVelocity(samples []contact.VelocitySample) (vx, vy float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sumX, sumY float64
	for _, s := range samples {
		sumX += s.VX
		sumY += s.VY
	}
	n := float64(len(samples))
	return sumX / n, sumY / n
}
