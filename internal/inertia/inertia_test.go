package inertia

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jason5545/trackpal/internal/contact"
)

func TestHistoryDropsSamplesOutsideWindow(t *testing.T) {
	var h History
	h.Record(contact.VelocitySample{VX: 1, VY: 0, Time: 0.0})
	h.Record(contact.VelocitySample{VX: 2, VY: 0, Time: 0.05})
	h.Record(contact.VelocitySample{VX: 3, VY: 0, Time: 0.25})

	vx, _ := h.AverageVelocity()
	assert.Equal(t, 3.0, vx, "only the sample within the 100ms window of the newest sample should remain")
}

func TestHistoryAverageVelocityEmpty(t *testing.T) {
	var h History
	vx, vy := h.AverageVelocity()
	assert.Equal(t, 0.0, vx)
	assert.Equal(t, 0.0, vy)
}

func TestCoastStartBelowMinVelocityDoesNotActivate(t *testing.T) {
	var c Coast
	ok := c.Start(contact.ZoneRightEdge, 0, 0.01)
	assert.False(t, ok)
	assert.False(t, c.Active())
}

func TestCoastStartVerticalScalesVelocity(t *testing.T) {
	var c Coast
	ok := c.Start(contact.ZoneRightEdge, 0, 1.5)
	assert.True(t, ok)
	assert.True(t, c.Active())
}

func TestCoastStartAtStartThresholdDoesNotActivate(t *testing.T) {
	var c Coast
	ok := c.Start(contact.ZoneRightEdge, 0, 1.0)
	assert.False(t, ok, "scaled speed exactly at startThreshold must not start a coast")
	assert.False(t, c.Active())
}

func TestCoastStartHorizontalAppliesAspectCompensation(t *testing.T) {
	var vert, horiz Coast
	vert.Start(contact.ZoneRightEdge, 0, 0.5)
	horiz.Start(contact.ZoneBottomEdge, 0.5, 0)
	// The vertical coast velocity is inverted (natural scroll), so compare
	// magnitudes.
	assert.Greater(t, horiz.vx, -vert.vy, "horizontal coast applies an extra 1.6x over the equivalent vertical speed")
}

func TestCoastTickDecaysAndEventuallyStops(t *testing.T) {
	var c Coast
	c.Start(contact.ZoneRightEdge, 0, 2.0)

	sawBegan := false
	sawEnded := false
	for i := 0; i < 5000 && c.Active(); i++ {
		ev, ok := c.Tick(16)
		if !ok {
			continue
		}
		if ev.Phase == contact.PhaseBegan {
			sawBegan = true
		}
		if ev.Phase == contact.PhaseEnded {
			sawEnded = true
		}
	}
	assert.True(t, sawBegan)
	assert.True(t, sawEnded)
	assert.False(t, c.Active())
}

func TestCoastCancelStopsImmediately(t *testing.T) {
	var c Coast
	c.Start(contact.ZoneRightEdge, 0, 5.0)
	assert.True(t, c.Active())
	c.Cancel()
	assert.False(t, c.Active())
	_, ok := c.Tick(16)
	assert.False(t, ok)
}
