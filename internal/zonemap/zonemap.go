// Package zonemap implements the Zone Map (spec.md §4.2): a pure,
// deterministic function from a normalized trackpad position and the
// active Configuration to a Zone label.
package zonemap

import (
	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

// Lookup evaluates the zone for (x, y) under cfg. Evaluation order (first
// match wins) follows spec.md §4.2 exactly:
//  1. corner zones (if corner triggers enabled)
//  2. middle-click zone (if enabled), on the side opposite the horizontal
//     scroll band
//  3. left/right edge (per vertical edge mode)
//  4. top/bottom edge (per horizontal position)
//  5. center
func Lookup(x, y float64, cfg config.Config) contact.Zone {
	if cfg.CornerTriggerEnabled {
		if z, ok := cornerZone(x, y, cfg.CornerTriggerZoneSize); ok {
			return z
		}
	}
	if cfg.MiddleClickEnabled && inMiddleClickZone(x, y, cfg) {
		return contact.ZoneMiddleClick
	}
	if x < cfg.EdgeZoneWidth && (cfg.VerticalEdgeMode == config.VerticalLeft || cfg.VerticalEdgeMode == config.VerticalBoth) {
		return contact.ZoneLeftEdge
	}
	if x > 1-cfg.EdgeZoneWidth && (cfg.VerticalEdgeMode == config.VerticalRight || cfg.VerticalEdgeMode == config.VerticalBoth) {
		return contact.ZoneRightEdge
	}
	if cfg.HorizontalPosition == config.HorizontalBottom && y < cfg.HorizontalZoneHeight {
		return contact.ZoneBottomEdge
	}
	if cfg.HorizontalPosition == config.HorizontalTop && y > 1-cfg.HorizontalZoneHeight {
		return contact.ZoneTopEdge
	}
	return contact.ZoneCenter
}

func cornerZone(x, y, size float64) (contact.Zone, bool) {
	switch {
	case x < size && y > 1-size:
		return contact.ZoneTopLeftCorner, true
	case x > 1-size && y > 1-size:
		return contact.ZoneTopRightCorner, true
	case x < size && y < size:
		return contact.ZoneBottomLeftCorner, true
	case x > 1-size && y < size:
		return contact.ZoneBottomRightCorner, true
	default:
		return contact.ZoneNone, false
	}
}

// inMiddleClickZone reports whether (x, y) falls in the central rectangle
// on the side opposite the horizontal scroll band. If the horizontal band
// is at the bottom, the middle-click rectangle sits at the top, and vice
// versa.
func inMiddleClickZone(x, y float64, cfg config.Config) bool {
	halfW := cfg.MiddleClickZoneWidth / 2
	if x < 0.5-halfW || x > 0.5+halfW {
		return false
	}
	h := cfg.MiddleClickZoneHeight
	if cfg.HorizontalPosition == config.HorizontalBottom {
		return y > 1-h
	}
	return y < h
}

// Depth measures how far inside its zone a position lies, in [0,1], used
// by the Intent Evaluator's zone prior (spec.md §4.4). For an edge zone, 0
// means at the zone's entry line and 1 means at the trackpad's outer edge;
// for a corner zone, 1 means at the corner's apex.
func Depth(x, y float64, z contact.Zone, cfg config.Config) float64 {
	switch z {
	case contact.ZoneLeftEdge:
		return clamp01(1 - x/cfg.EdgeZoneWidth)
	case contact.ZoneRightEdge:
		return clamp01((x - (1 - cfg.EdgeZoneWidth)) / cfg.EdgeZoneWidth)
	case contact.ZoneBottomEdge:
		return clamp01(1 - y/cfg.HorizontalZoneHeight)
	case contact.ZoneTopEdge:
		return clamp01((y - (1 - cfg.HorizontalZoneHeight)) / cfg.HorizontalZoneHeight)
	case contact.ZoneTopLeftCorner, contact.ZoneTopRightCorner, contact.ZoneBottomLeftCorner, contact.ZoneBottomRightCorner:
		return cornerDepth(x, y, z, cfg.CornerTriggerZoneSize)
	default:
		return 0
	}
}

func cornerDepth(x, y float64, z contact.Zone, size float64) float64 {
	var dx, dy float64
	switch z {
	case contact.ZoneTopLeftCorner:
		dx, dy = x, 1-y
	case contact.ZoneTopRightCorner:
		dx, dy = 1-x, 1-y
	case contact.ZoneBottomLeftCorner:
		dx, dy = x, y
	case contact.ZoneBottomRightCorner:
		dx, dy = 1-x, y
	}
	// Depth is how close to the corner's apex (0,0 in the corner's local
	// frame) the touch started, inverted so apex == deepest.
	d := 1 - (dx+dy)/(2*size)
	return clamp01(d)
}

// IsZoneActive reports whether edge zone z is reachable under cfg's
// vertical-edge-mode / horizontal-position settings. Used by corner
// promotion (spec.md §4.4) to decide whether a corner's adjacent edge is a
// valid promotion target.
func IsZoneActive(z contact.Zone, cfg config.Config) bool {
	switch z {
	case contact.ZoneLeftEdge:
		return cfg.VerticalEdgeMode == config.VerticalLeft || cfg.VerticalEdgeMode == config.VerticalBoth
	case contact.ZoneRightEdge:
		return cfg.VerticalEdgeMode == config.VerticalRight || cfg.VerticalEdgeMode == config.VerticalBoth
	case contact.ZoneBottomEdge:
		return cfg.HorizontalPosition == config.HorizontalBottom
	case contact.ZoneTopEdge:
		return cfg.HorizontalPosition == config.HorizontalTop
	default:
		return false
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
