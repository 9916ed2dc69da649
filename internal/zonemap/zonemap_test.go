package zonemap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

func TestLookupDefaultConfig(t *testing.T) {
	cfg := config.Default() // vertical=Right, horizontal=Bottom

	cases := []struct {
		name string
		x, y float64
		want contact.Zone
	}{
		{"right edge", 0.95, 0.5, contact.ZoneRightEdge},
		{"left edge not active in right-only mode", 0.05, 0.5, contact.ZoneCenter},
		{"bottom edge", 0.5, 0.05, contact.ZoneBottomEdge},
		{"top edge inactive in bottom mode", 0.5, 0.95, contact.ZoneCenter},
		{"center", 0.5, 0.5, contact.ZoneCenter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Lookup(tc.x, tc.y, cfg))
		})
	}
}

func TestLookupBothVerticalEdges(t *testing.T) {
	cfg := config.Default()
	cfg.VerticalEdgeMode = config.VerticalBoth

	assert.Equal(t, contact.ZoneLeftEdge, Lookup(0.05, 0.5, cfg))
	assert.Equal(t, contact.ZoneRightEdge, Lookup(0.95, 0.5, cfg))
}

func TestLookupCornersTakePriority(t *testing.T) {
	cfg := config.Default()
	cfg.CornerTriggerEnabled = true
	cfg.CornerTriggerZoneSize = 0.15

	assert.Equal(t, contact.ZoneBottomRightCorner, Lookup(0.97, 0.03, cfg))
	assert.Equal(t, contact.ZoneTopLeftCorner, Lookup(0.03, 0.97, cfg))
	assert.Equal(t, contact.ZoneBottomLeftCorner, Lookup(0.03, 0.03, cfg))
	assert.Equal(t, contact.ZoneTopRightCorner, Lookup(0.97, 0.97, cfg))
}

func TestLookupMiddleClickOppositeHorizontalBand(t *testing.T) {
	cfg := config.Default() // horizontal band at bottom
	cfg.MiddleClickEnabled = true

	// Middle-click rectangle sits opposite the horizontal band: at top.
	assert.Equal(t, contact.ZoneMiddleClick, Lookup(0.5, 0.95, cfg))
	// Not in the band region at the bottom, which stays the scroll edge.
	assert.Equal(t, contact.ZoneBottomEdge, Lookup(0.5, 0.05, cfg))
}

func TestLookupCornerBeatsMiddleClick(t *testing.T) {
	cfg := config.Default()
	cfg.CornerTriggerEnabled = true
	cfg.MiddleClickEnabled = true
	cfg.CornerTriggerZoneSize = 0.15
	// Widen the middle-click rectangle to the full width so it overlaps the
	// top corners.
	cfg.MiddleClickZoneWidth = 1.0

	// Top area overlapping both a corner and the middle-click band: corner wins.
	assert.Equal(t, contact.ZoneTopLeftCorner, Lookup(0.02, 0.98, cfg))
}

func TestLookupIsTotalAndDeterministic(t *testing.T) {
	cfg := config.Default()
	for _, x := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		for _, y := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
			z1 := Lookup(x, y, cfg)
			z2 := Lookup(x, y, cfg)
			assert.Equal(t, z1, z2, "must be deterministic for (%v,%v)", x, y)
		}
	}
}

func TestDepthEdges(t *testing.T) {
	cfg := config.Default()
	// At the trackpad's outer edge, depth is maximal.
	assert.InDelta(t, 1.0, Depth(1.0, 0.5, contact.ZoneRightEdge, cfg), 1e-9)
	// At the zone's entry boundary, depth is 0.
	assert.InDelta(t, 0.0, Depth(1-cfg.EdgeZoneWidth, 0.5, contact.ZoneRightEdge, cfg), 1e-9)
}
