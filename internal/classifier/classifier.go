// Package classifier implements the Touch Classifier (spec.md §4.1): a
// pure, stateless per-frame filter for plausibility (finger vs. palm vs.
// hover).
package classifier

import (
	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

// Verdict is the classifier's per-frame result.
type Verdict int

const (
	Valid Verdict = iota
	TooLight
	TooLarge
)

func (v Verdict) String() string {
	switch v {
	case TooLight:
		return "tooLight"
	case TooLarge:
		return "tooLarge"
	default:
		return "valid"
	}
}

// Classify returns the plausibility verdict for a single contact frame.
// Lift-off states bypass classification because density falls to zero on
// release (spec.md §4.1).
func Classify(f contact.Frame, cfg config.Config) Verdict {
	if f.State.IsLiftoff() {
		return Valid
	}
	if cfg.FilterLightTouches && f.Density < cfg.LightTouchDensityThreshold {
		return TooLight
	}
	if cfg.FilterLargeTouches &&
		(f.MajorAxis > cfg.LargeTouchMajorAxisThreshold || f.MinorAxis > cfg.LargeTouchMinorAxisThreshold) {
		return TooLarge
	}
	return Valid
}

// Counters accumulates per-verdict counts for diagnostics (spec.md §4.1:
// "verdict counters are kept for diagnostics"). The classifier itself has
// no state; Counters is an optional side observer callers may keep.
type Counters struct {
	Valid, TooLight, TooLarge int
}

// Record classifies f and tallies the verdict into c.
func (c *Counters) Record(f contact.Frame, cfg config.Config) Verdict {
	v := Classify(f, cfg)
	switch v {
	case TooLight:
		c.TooLight++
	case TooLarge:
		c.TooLarge++
	default:
		c.Valid++
	}
	return v
}
