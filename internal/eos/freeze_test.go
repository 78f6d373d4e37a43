package eos

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pureWaterEOS(t *testing.T, pMaxMPa float64, pSteps int) *EOS {
	t.Helper()
	c := NewCache(quietLogger())
	e, err := c.OceanEOS(OceanSpec{
		Comp: PureWater,
		P:    Range{Min: 0.1, Max: pMaxMPa, Steps: pSteps},
		T:    Range{Min: 240, Max: 290, Steps: 201},
	})
	require.NoError(t, err)
	return e
}

func TestFindFreezePressureIceI(t *testing.T) {
	e := pureWaterEOS(t, 300, 601)

	// The pure-water ice Ih liquidus passes 270 K near 69.7 MPa.
	pb, err := FindFreezePressure(e, IceIh, 270, FreezeOpts{
		PLow: 0.1, PHigh: 300, Res: 0.5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 69.7, pb, 2.5)

	// The nudge lands the result on the liquid side of the boundary.
	assert.Equal(t, Liquid, e.PhaseAt(pb, 270))
	assert.Equal(t, IceIh, e.PhaseAt(pb-3, 270))
}

func TestFindFreezePressureBoundarySide(t *testing.T) {
	e := pureWaterEOS(t, 300, 601)

	// The root must be resolved well below the nudge step even at coarse
	// resolution, or the returned pressure can land on the solid side and
	// poison the first ocean layer downstream.
	for _, tb := range []float64{265, 267, 269, 270, 271, 272} {
		pb, err := FindFreezePressure(e, IceIh, tb, FreezeOpts{
			PLow: 0.1, PHigh: 300, Res: 2,
		})
		require.NoError(t, err, "tb=%v", tb)
		assert.Equal(t, Liquid, e.PhaseAt(pb, tb), "tb=%v pb=%v", tb, pb)
		assert.Equal(t, IceIh, e.PhaseAt(pb-3, tb), "tb=%v pb=%v", tb, pb)
	}
}

func TestFindFreezePressureUnderplate(t *testing.T) {
	e := pureWaterEOS(t, 700, 701)

	// At 255 K the column runs ice Ih, then liquid, then ice III; the
	// underplate objective finds where the ocean refreezes from below.
	pb, err := FindFreezePressure(e, IceIh, 255, FreezeOpts{
		PLow: 0.1, PHigh: 700, Res: 0.5, Underplate: UnderplateOn,
	})
	require.NoError(t, err)
	assert.InDelta(t, 317.6, pb, 3)
	assert.Equal(t, IceIII, e.PhaseAt(pb+2, 255))
}

func TestFindFreezePressureUnderplateMissing(t *testing.T) {
	e := pureWaterEOS(t, 300, 601)

	// At 270 K nothing denser than ice Ih appears below the ocean.
	_, err := FindFreezePressure(e, IceIh, 270, FreezeOpts{
		PLow: 0.1, PHigh: 300, Res: 0.5, Underplate: UnderplateOn,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoUnderplatePressure))
}

func TestFindFreezePressureLenient(t *testing.T) {
	e := pureWaterEOS(t, 300, 601)

	// 285 K is liquid across the whole bracket: no boundary to find.
	pb, err := FindFreezePressure(e, IceIh, 285, FreezeOpts{
		PLow: 0.1, PHigh: 300, Res: 0.5, Lenient: true,
	})
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(pb))

	_, err = FindFreezePressure(e, IceIh, 285, FreezeOpts{
		PLow: 0.1, PHigh: 300, Res: 0.5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFreezePressure))
}

func TestFindFreezeTemperature(t *testing.T) {
	e := pureWaterEOS(t, 300, 601)

	// Ice Ih at 69.7 MPa melts near 270 K.
	tm, err := FindFreezeTemperature(e, 69.7, 260, MeltOpts{})
	require.NoError(t, err)
	assert.InDelta(t, 270.0, tm, 0.6)
	assert.Equal(t, Liquid, e.PhaseAt(69.7, tm), "nudge lands on the liquid side")
	assert.Equal(t, IceIh, e.PhaseAt(69.7, tm-1))

	// Already liquid and no boundary above within the window.
	_, err = FindFreezeTemperature(e, 10, 285, MeltOpts{Range: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFreezeTemperature))
}

func TestClathDissocPressure(t *testing.T) {
	// Lower branch, below the 273 K branch point.
	p, err := ClathDissocPressure(262, 300)
	require.NoError(t, err)
	assert.InDelta(t, 1.291, p, 0.01)

	// Upper branch.
	p, err = ClathDissocPressure(280, 300)
	require.NoError(t, err)
	assert.InDelta(t, 5.906, p, 0.01)

	// Dissociation temperature out of reach of the curve.
	_, err = ClathDissocPressure(400, 300)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFreezePressure))
}

func TestBisect(t *testing.T) {
	f := func(x float64) float64 { return x - 3 }

	root, ok := bisect(f, 0, 10, 1e-9)
	require.True(t, ok)
	assert.InDelta(t, 3, root, 1e-8)

	_, ok = bisect(f, 4, 10, 1e-9)
	assert.False(t, ok, "bracket without a sign change")

	root, ok = bisect(f, 3, 10, 1e-9)
	require.True(t, ok)
	assert.Equal(t, 3.0, root, "exact endpoint root returns immediately")
}
