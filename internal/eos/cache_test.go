package eos

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func oceanSpec() OceanSpec {
	return OceanSpec{
		Comp: MgSO4, WPpt: 100, ElecModel: "Vance2018",
		P: Range{Min: 0.1, Max: 350, Steps: 200},
		T: Range{Min: 220, Max: 330, Steps: 120},
	}
}

func TestCacheReusesIdenticalRequest(t *testing.T) {
	c := NewCache(quietLogger())
	a, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)
	b, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, a.ID(), b.ID())

	entries, hits, rebuilds := c.Stats()
	assert.Equal(t, 1, entries)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 0, rebuilds)
}

func TestCacheReusesContainedRange(t *testing.T) {
	c := NewCache(quietLogger())
	wide, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)

	narrow := oceanSpec()
	narrow.P = Range{Min: 10, Max: 200, Steps: 100}
	narrow.T = Range{Min: 240, Max: 300, Steps: 60}
	got, err := c.OceanEOS(narrow)
	require.NoError(t, err)
	assert.Same(t, wide, got)
}

func TestCacheWidensUnderSameLabel(t *testing.T) {
	c := NewCache(quietLogger())
	first, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)

	wider := oceanSpec()
	wider.P.Max = 500
	got, err := c.OceanEOS(wider)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), got.ID())

	_, pMax, _, _ := got.Bounds()
	assert.GreaterOrEqual(t, pMax, 500.0)

	entries, _, rebuilds := c.Stats()
	assert.Equal(t, 1, entries, "union rebuild replaces, never duplicates")
	assert.Equal(t, 1, rebuilds)

	// The widened surface now covers the original request.
	again, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)
	assert.Same(t, got, again)
}

func TestCacheFailedBuildLeavesEntriesUntouched(t *testing.T) {
	c := NewCache(quietLogger())
	_, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)

	bad := oceanSpec()
	bad.Comp = Ammonia
	_, err = c.OceanEOS(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedComposition))

	invalid := oceanSpec()
	invalid.WPpt = 50 // fresh cache label so the bad range reaches the builder
	invalid.P = Range{Min: 100, Max: 10, Steps: 50}
	_, err = c.OceanEOS(invalid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRange))

	entries, _, _ := c.Stats()
	assert.Equal(t, 1, entries)
}

func TestCacheReset(t *testing.T) {
	c := NewCache(quietLogger())
	first, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)
	c.Reset()
	second, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.ID(), second.ID(), "identical request digests match across resets")
}

func TestIceEOSQueries(t *testing.T) {
	c := NewCache(quietLogger())
	ice, err := c.IceEOS(IceSpec{
		Phase: IceIh,
		P:     Range{Min: 0.1, Max: 40, Steps: 60},
		T:     Range{Min: 100, Max: 280, Steps: 80},
	})
	require.NoError(t, err)

	rho, err := ice.Density(10, 250)
	require.NoError(t, err)
	assert.InDelta(t, 918, rho, 5)

	porous, err := c.IceEOS(IceSpec{
		Phase:    IceIh,
		P:        Range{Min: 0.1, Max: 40, Steps: 60},
		T:        Range{Min: 100, Max: 280, Steps: 80},
		Porosity: 0.2,
	})
	require.NoError(t, err)
	assert.NotSame(t, ice, porous, "porosity is part of the cache label")
	rhoPor, err := porous.Density(10, 250)
	require.NoError(t, err)
	assert.InDelta(t, rho*0.8, rhoPor, 1e-6)

	_, err = c.IceEOS(IceSpec{
		Phase: Silicate,
		P:     Range{Min: 0.1, Max: 40, Steps: 60},
		T:     Range{Min: 100, Max: 280, Steps: 80},
	})
	assert.True(t, errors.Is(err, ErrUnsupportedComposition))
}

func TestOceanEOSPhysicalTrends(t *testing.T) {
	c := NewCache(quietLogger())
	e, err := c.OceanEOS(oceanSpec())
	require.NoError(t, err)

	// Density increases with pressure at fixed temperature.
	lo, err := e.Density(10, 300)
	require.NoError(t, err)
	hi, err := e.Density(200, 300)
	require.NoError(t, err)
	assert.Greater(t, hi, lo)

	// Phase classification across the melting curve.
	assert.Equal(t, Liquid, e.PhaseAt(10, 300))
	assert.Equal(t, IceIh, e.PhaseAt(10, 250))
	assert.Equal(t, Liquid, e.PhaseAt(340, 300))
	assert.Equal(t, IceIII, e.PhaseAt(340, 230))

	// Out-of-range queries fail without extrapolation.
	_, err = e.Density(400, 300)
	assert.Error(t, err)

	loose := oceanSpec()
	loose.ElecModel = "none"
	loose.Extrapolate = true
	le, err := c.OceanEOS(loose)
	require.NoError(t, err)
	_, err = le.Density(400, 300)
	assert.NoError(t, err)
}

func TestFromGridRoundTrip(t *testing.T) {
	p := []float64{1, 2, 3, 4, 5}
	tt := []float64{250, 260, 270, 280}
	g := newGrid(p, tt)
	for i := range p {
		for j := range tt {
			g.Rho[i][j] = 1000 + p[i]
			g.Cp[i][j] = 4000
			g.Alpha[i][j] = 1e-4
			g.KTherm[i][j] = 0.6
			g.Phase[i][j] = int(Liquid)
		}
	}
	e, err := FromGrid("table:test", g, false)
	require.NoError(t, err)
	rho, err := e.Density(2.5, 265)
	require.NoError(t, err)
	assert.InDelta(t, 1002.5, rho, 1e-9)
	assert.Equal(t, Liquid, e.PhaseAt(3, 270))
}

func TestConditionAxes(t *testing.T) {
	p, tt := conditionAxes([]float64{0, 10}, []float64{200, 210, 220, 230, 240})
	assert.Len(t, p, 6, "short axes stretch to triple count")
	assert.Len(t, tt, 5)

	p, tt = conditionAxes([]float64{0, 1, 2, 3, 4}, []float64{1, 2, 3, 4, 5})
	assert.Len(t, p, 5)
	require.Len(t, tt, 6, "square grids grow one near-duplicate sample")
	assert.InDelta(t, 5*1.00001, tt[5], 1e-12)
}
