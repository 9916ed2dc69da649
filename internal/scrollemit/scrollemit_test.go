package scrollemit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

func TestShapeLinearIsIdentity(t *testing.T) {
	assert.Equal(t, 0.5, Shape(0.5, config.CurveLinear))
}

func TestShapeQuadraticAndCubicCompressSmallMagnitudes(t *testing.T) {
	assert.Less(t, Shape(0.5, config.CurveQuadratic), 0.5)
	assert.Less(t, Shape(0.5, config.CurveCubic), Shape(0.5, config.CurveQuadratic))
}

func TestShapeEaseIsSmoothstep(t *testing.T) {
	assert.InDelta(t, 0.5, Shape(0.5, config.CurveEase), 1e-9)
	assert.Less(t, Shape(0.25, config.CurveEase), 0.25)
}

func TestAccumulatorExtractKeepsFractionalRemainder(t *testing.T) {
	var acc Accumulator
	ix, iy := acc.Extract(0.6, 0.3)
	assert.Equal(t, 0, ix)
	assert.Equal(t, 0, iy)

	ix, iy = acc.Extract(0.6, 0.3)
	assert.Equal(t, 1, ix)
	assert.Equal(t, 0, iy)

	ix, iy = acc.Extract(0.6, 0.3)
	assert.Equal(t, 0, ix)
	assert.Equal(t, 0, iy)

	ix, iy = acc.Extract(0.6, 0.3)
	assert.Equal(t, 1, ix)
	assert.Equal(t, 1, iy)
}

func TestEmitVerticalNaturalScrollInvertsSign(t *testing.T) {
	cfg := config.Default()
	var acc Accumulator
	ev, ok := acc.Emit(contact.Delta{DX: 0, DY: 0.05}, contact.ZoneRightEdge, cfg)
	assert.True(t, ok)
	assert.Negative(t, ev.PixelDY, "positive trackpad dy should invert to negative screen-scroll dy")
	assert.Equal(t, contact.PhaseBegan, ev.Phase)
	assert.Equal(t, contact.TrackPalTag, ev.UserDataTag)
}

func TestEmitHorizontalAppliesAspectCompensation(t *testing.T) {
	cfg := config.Default()
	var vertAcc, horizAcc Accumulator
	vEv, _ := vertAcc.Emit(contact.Delta{DY: 0.02}, contact.ZoneRightEdge, cfg)
	hEv, _ := horizAcc.Emit(contact.Delta{DX: 0.02}, contact.ZoneBottomEdge, cfg)
	assert.Greater(t, abs(hEv.PixelDX), abs(vEv.PixelDY), "horizontal zone applies an extra 1.6x over vertical")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestEmitSecondCallIsChangedPhase(t *testing.T) {
	cfg := config.Default()
	var acc Accumulator
	acc.Emit(contact.Delta{DY: 0.05}, contact.ZoneRightEdge, cfg)
	ev, ok := acc.Emit(contact.Delta{DY: 0.05}, contact.ZoneRightEdge, cfg)
	assert.True(t, ok)
	assert.Equal(t, contact.PhaseChanged, ev.Phase)
}

func TestEndSessionEmitsZeroDeltaOnlyIfBegan(t *testing.T) {
	var fresh Accumulator
	_, ok := fresh.EndSession()
	assert.False(t, ok)

	cfg := config.Default()
	var acc Accumulator
	acc.Emit(contact.Delta{DY: 0.05}, contact.ZoneRightEdge, cfg)
	ev, ok := acc.EndSession()
	assert.True(t, ok)
	assert.Equal(t, 0, ev.PixelDX)
	assert.Equal(t, 0, ev.PixelDY)
	assert.Equal(t, contact.PhaseEnded, ev.Phase)

	_, ok = acc.EndSession()
	assert.False(t, ok, "EndSession should only fire once per session")
}
