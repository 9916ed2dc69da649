// Package recorder implements the Session Recorder (spec.md §4.9): a
// per-session distance/velocity/direction-change tally, a bounded 50-entry
// history, and advisory per-zone false-activation threshold learning.
package recorder

import (
	"math"

	"github.com/jason5545/trackpal/internal/contact"
)

const historyCapacity = 50

const (
	falseActivationMaxDuration = 0.3
	falseActivationMaxDistance = 0.05
)

// ActivationData snapshots the Intent Evaluator's state at the moment of
// activation, carried into the session record for later threshold learning.
type ActivationData struct {
	OnAxisRatio  float64
	OffAxisSpeed float64
	OnAxisSpeed  float64
	Density      float64
	Confidence   float64
}

// Record is one completed scroll session's learning-relevant summary
// (spec.md §3's scroll_session_record).
type Record struct {
	Zone           contact.Zone
	StartTime      float64
	EndTime        float64
	TotalDistance  float64
	MaxVelocity    float64
	DirectionChanges int
	WasCancelled   bool
	Activation     ActivationData
}

// IsFalseActivation reports whether r meets spec.md §4.9's false-activation
// criteria: short, short-distance, and not a deliberate cancellation.
func (r Record) IsFalseActivation() bool {
	duration := r.EndTime - r.StartTime
	return duration < falseActivationMaxDuration &&
		r.TotalDistance < falseActivationMaxDistance &&
		!r.WasCancelled
}

// Thresholds are one zone's learned, advisory false-activation thresholds
// (spec.md §3's false_activation_thresholds map entry).
type Thresholds struct {
	MinDuration    float64
	MinDistance    float64
	MinOnAxisRatio float64
	MaxOffAxisRatio float64
	SampleCount    int
}

// DefaultThresholds seeds a zone's thresholds before any learning has
// occurred.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinDuration:     0.3,
		MinDistance:     0.05,
		MinOnAxisRatio:  0.35,
		MaxOffAxisRatio: 1.5,
		SampleCount:     0,
	}
}

// Session accumulates live statistics for the in-progress scroll session
// between activation and reset_tracking.
type Session struct {
	zone       contact.Zone
	startTime  float64
	lastDelta  contact.Delta
	hasLastDelta bool

	totalDistance    float64
	maxVelocity      float64
	directionChanges int
}

// Begin starts tracking a new session in zone, activated at startTime.
func (s *Session) Begin(zone contact.Zone, startTime float64) {
	*s = Session{zone: zone, startTime: startTime}
}

// Update folds one post-activation delta and its instantaneous speed into
// the running tally (spec.md §4.9): total_distance += |delta|, max_velocity
// is the running max of |v|, and direction_changes increments when
// consecutive deltas have a negative dot product.
func (s *Session) Update(delta contact.Delta, speed float64) {
	s.totalDistance += math.Hypot(delta.DX, delta.DY)
	if speed > s.maxVelocity {
		s.maxVelocity = speed
	}
	if s.hasLastDelta {
		dot := s.lastDelta.DX*delta.DX + s.lastDelta.DY*delta.DY
		if dot < 0 {
			s.directionChanges++
		}
	}
	s.lastDelta = delta
	s.hasLastDelta = true
}

// Finish closes the session at endTime, producing its Record.
func (s *Session) Finish(endTime float64, wasCancelled bool, activation ActivationData) Record {
	return Record{
		Zone:             s.zone,
		StartTime:        s.startTime,
		EndTime:          endTime,
		TotalDistance:    s.totalDistance,
		MaxVelocity:      s.maxVelocity,
		DirectionChanges: s.directionChanges,
		WasCancelled:     wasCancelled,
		Activation:       activation,
	}
}

// History is the bounded, append-only (oldest-evicted) record history plus
// per-zone learned thresholds.
type History struct {
	records    []Record
	thresholds map[contact.Zone]Thresholds
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{thresholds: make(map[contact.Zone]Thresholds)}
}

// Records returns the retained history, oldest first.
func (h *History) Records() []Record { return append([]Record(nil), h.records...) }

// Thresholds returns zone's current learned thresholds, seeding them with
// DefaultThresholds on first access.
func (h *History) Thresholds(zone contact.Zone) Thresholds {
	t, ok := h.thresholds[zone]
	if !ok {
		t = DefaultThresholds()
	}
	return t
}

// Push appends r to the bounded history, evicting the oldest entry past
// historyCapacity, and applies r's per-zone threshold update.
func (h *History) Push(r Record) {
	h.records = append(h.records, r)
	if len(h.records) > historyCapacity {
		h.records = h.records[len(h.records)-historyCapacity:]
	}
	h.learn(r)
}

// learn applies spec.md §4.9's per-zone threshold update from r, with
// alpha = min(sample_count/100, 0.1).
func (h *History) learn(r Record) {
	t := h.Thresholds(r.Zone)
	alpha := math.Min(float64(t.SampleCount)/100, 0.1)

	if r.IsFalseActivation() {
		t.MinDuration *= 1 + alpha*0.1
		t.MinDistance *= 1 + alpha*0.1
		t.MinOnAxisRatio = math.Min(t.MinOnAxisRatio*(1+alpha*0.05), 0.5)
	} else {
		t.MinDuration = math.Max(t.MinDuration*(1-alpha*0.02), 0.2)
		t.MinDistance = math.Max(t.MinDistance*(1-alpha*0.02), 0.03)
		t.MinOnAxisRatio = math.Max(t.MinOnAxisRatio*(1-alpha*0.02), 0.3)
	}
	t.SampleCount++
	h.thresholds[r.Zone] = t
}
