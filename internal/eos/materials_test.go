package eos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeltTempContinuity(t *testing.T) {
	// The piecewise melting curve must join at the triple points.
	for _, p := range []float64{pIhIII, pIIIV, pVVI} {
		below := MeltTemp(p-1e-9, 0)
		above := MeltTemp(p+1e-9, 0)
		assert.InDelta(t, below, above, 0.05, "at %g MPa", p)
	}
}

func TestMeltTempAnchors(t *testing.T) {
	assert.InDelta(t, 273.15, MeltTemp(0, 0), 1e-9)
	assert.InDelta(t, 251.15, MeltTemp(pIhIII, 0), 0.01)
	assert.InDelta(t, 256.16, MeltTemp(pIIIV, 0), 0.01)
	assert.InDelta(t, 273.31, MeltTemp(pVVI, 0), 0.01)
}

func TestMeltTempSalinityDepression(t *testing.T) {
	for _, p := range []float64{1, 100, 400, 800} {
		pure := MeltTemp(p, 0)
		salty := MeltTemp(p, 100)
		assert.InDelta(t, 2.5, pure-salty, 1e-9, "at %g MPa", p)
	}
}

func TestStablePhase(t *testing.T) {
	tests := []struct {
		p, tK float64
		want  Phase
	}{
		{50, 280, Liquid},
		{50, 260, IceIh},
		{300, 260, Liquid},
		{300, 245, IceIII},
		{500, 260, IceV},
		{500, 275, Liquid},
		{700, 260, IceVI},
		{900, 280, IceVI},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, stablePhase(tc.p, tc.tK, 0),
			"at (%g MPa, %g K)", tc.p, tc.tK)
	}
}

func TestLiquidProperties(t *testing.T) {
	// Salt and pressure raise density, warmth lowers it.
	assert.Greater(t, liquidRho(10, 280, 100), liquidRho(10, 280, 0))
	assert.Greater(t, liquidRho(200, 280, 0), liquidRho(10, 280, 0))
	assert.Greater(t, liquidRho(10, 270, 0), liquidRho(10, 290, 0))
	assert.InDelta(t, 1000, liquidRho(0, 277, 0), 1e-9)

	// Expansivity stays positive even in the cold suppressed corner.
	assert.GreaterOrEqual(t, liquidAlpha(800, 230), 1e-5)
	assert.Greater(t, liquidAlpha(10, 300), liquidAlpha(10, 260))

	assert.Greater(t, liquidCp(280, 0), liquidCp(280, 100))
	assert.Greater(t, liquidKTherm(300), liquidKTherm(260))
}

func TestSolidProperties(t *testing.T) {
	// Polymorph densities rank by pressure stability field.
	assert.Less(t, solidRho(IceIh, 0, 250), solidRho(IceIII, 0, 250))
	assert.Less(t, solidRho(IceIII, 0, 250), solidRho(IceV, 0, 250))
	assert.Less(t, solidRho(IceV, 0, 250), solidRho(IceVI, 0, 250))

	// Ice Ih floats on its own melt.
	assert.Less(t, solidRho(IceIh, 10, 260), liquidRho(10, 262, 0))

	// Clathrate runs warmer Cp and much lower conductivity than ice Ih.
	assert.Greater(t, solidCp(Clathrate, 250), solidCp(IceIh, 250))
	assert.Less(t, solidKTherm(Clathrate, 5, 250), solidKTherm(IceIh, 5, 250))

	// Ice Ih conductivity falls with temperature.
	assert.Greater(t, solidKTherm(IceIh, 5, 120), solidKTherm(IceIh, 5, 260))
}

func TestClathrateStabilityField(t *testing.T) {
	assert.True(t, clathStable(2, 260))
	assert.False(t, clathStable(2, 272))
	assert.True(t, clathStable(10, 280))
	assert.False(t, clathStable(10, 290))

	// The two dissociation branches meet at the branch-point pressure.
	lo := clathDissocLower(pClathBranch)
	hi := clathDissocUpper(pClathBranch)
	assert.InDelta(t, lo, hi, 1e-9)
	assert.InDelta(t, 273.0, lo, 1e-9)
}

func TestPhaseSolid(t *testing.T) {
	assert.Equal(t, "liquid", Liquid.String())
	assert.Equal(t, "ice Ih", IceIh.String())
	assert.Equal(t, "phase(7)", Phase(7).String())

	assert.False(t, Liquid.Solid())
	assert.True(t, IceIh.Solid())
	assert.True(t, Clathrate.Solid())
	assert.False(t, Silicate.Solid())
	assert.False(t, Iron.Solid())
}
