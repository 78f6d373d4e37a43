package eos

import (
	"fmt"

	"github.com/icyworlds/interior/internal/interp"
)

// Grid holds raw tabulated material properties on a rectangular (P, T)
// sample grid, one row per pressure sample. This is the handoff format
// from external table loaders; the built-in builders synthesize it from
// closed-form parameterizations.
type Grid struct {
	P      []float64
	T      []float64
	Rho    [][]float64
	Cp     [][]float64
	Alpha  [][]float64
	KTherm [][]float64
	Phase  [][]int
}

func newGrid(p, t []float64) *Grid {
	g := &Grid{P: p, T: t}
	g.Rho = alloc(len(p), len(t))
	g.Cp = alloc(len(p), len(t))
	g.Alpha = alloc(len(p), len(t))
	g.KTherm = alloc(len(p), len(t))
	g.Phase = make([][]int, len(p))
	for i := range g.Phase {
		g.Phase[i] = make([]int, len(t))
	}
	return g
}

func alloc(n, m int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, m)
	}
	return out
}

func (g *Grid) validate() error {
	if len(g.P) < 2 || len(g.T) < 2 {
		return fmt.Errorf("grid needs at least 2 samples per axis, got %dx%d", len(g.P), len(g.T))
	}
	for _, tab := range [][][]float64{g.Rho, g.Cp, g.Alpha, g.KTherm} {
		if len(tab) != len(g.P) {
			return fmt.Errorf("property table rows (%d) do not match pressure samples (%d)", len(tab), len(g.P))
		}
	}
	return nil
}

// conditionAxes prepares request axes for interpolant construction.
// Bicubic-style surfaces need at least 4 samples per axis, so short axes
// are stretched to triple their count. Equal-length axes get one extra
// near-duplicate temperature sample so square grids stay unambiguous for
// gridded-table consumers.
func conditionAxes(p, t []float64) ([]float64, []float64) {
	if len(p) <= 3 {
		p = interp.Resample(p, len(p)*3)
	}
	if len(t) <= 3 {
		t = interp.Resample(t, len(t)*3)
	}
	if len(p) == len(t) {
		t = append(append([]float64{}, t...), t[len(t)-1]*1.00001)
	}
	return p, t
}
