package eos

import (
	"fmt"

	"github.com/icyworlds/interior/internal/interp"
	"go.trai.ch/zerr"
)

// EOS is an immutable queryable material-property surface over a sampled
// (P, T) window. Pressure is in MPa, temperature in K throughout.
type EOS struct {
	Label    string
	Comp     Composition
	WPpt     float64
	IcePhase Phase // set for single-phase ice surfaces

	desc   descriptor
	id     uint64
	rho    *interp.Bivariate
	cp     *interp.Bivariate
	alpha  *interp.Bivariate
	kTherm *interp.Bivariate
	phase  *interp.Nearest
}

// OceanSpec requests a liquid-solution EOS.
type OceanSpec struct {
	Comp        Composition
	WPpt        float64 // solute mass in g/kg
	P           Range
	T           Range
	ElecModel   string // electrical-conductivity model tag, part of cache identity
	Extrapolate bool
}

func (s OceanSpec) label() string {
	return fmt.Sprintf("ocean:%s:w%.2f:%s", s.Comp, s.WPpt, s.ElecModel)
}

// IceSpec requests a single-phase solid EOS.
type IceSpec struct {
	Phase       Phase
	P           Range
	T           Range
	Porosity    float64 // pore volume fraction folded into density
	Extrapolate bool
}

func (s IceSpec) label() string {
	return fmt.Sprintf("ice:%s:phi%.3f", s.Phase, s.Porosity)
}

func buildOcean(spec OceanSpec) (*EOS, error) {
	if err := spec.P.validate(); err != nil {
		return nil, zerr.Wrap(err, "ocean pressure range")
	}
	if err := spec.T.validate(); err != nil {
		return nil, zerr.Wrap(err, "ocean temperature range")
	}
	build, err := lookupBuilder(spec.Comp)
	if err != nil {
		return nil, err
	}
	p, t := conditionAxes(spec.P.Samples(), spec.T.Samples())
	g, err := build(p, t, spec.WPpt)
	if err != nil {
		return nil, err
	}
	e, err := fromGrid(spec.label(), g, spec.Extrapolate)
	if err != nil {
		return nil, err
	}
	e.Comp = spec.Comp
	e.WPpt = spec.WPpt
	e.desc = descriptor{p: spec.P, t: spec.T}
	e.id = e.desc.digest()
	return e, nil
}

func buildIceEOS(spec IceSpec) (*EOS, error) {
	if err := spec.P.validate(); err != nil {
		return nil, zerr.Wrap(err, "ice pressure range")
	}
	if err := spec.T.validate(); err != nil {
		return nil, zerr.Wrap(err, "ice temperature range")
	}
	if _, ok := solidRho0[spec.Phase]; !ok {
		return nil, zerr.With(zerr.Wrap(ErrUnsupportedComposition, "no solid property law"), "phase", spec.Phase.String())
	}
	p, t := conditionAxes(spec.P.Samples(), spec.T.Samples())
	g, err := buildIce(p, t, spec.Phase, spec.Porosity)
	if err != nil {
		return nil, err
	}
	e, err := fromGrid(spec.label(), g, spec.Extrapolate)
	if err != nil {
		return nil, err
	}
	e.IcePhase = spec.Phase
	e.desc = descriptor{p: spec.P, t: spec.T}
	e.id = e.desc.digest()
	return e, nil
}

// FromGrid wraps an externally loaded property table as an EOS. The grid
// axes must already be conditioned by the loader.
func FromGrid(label string, g *Grid, extrapolate bool) (*EOS, error) {
	e, err := fromGrid(label, g, extrapolate)
	if err != nil {
		return nil, err
	}
	e.desc = descriptor{
		p: Range{Min: g.P[0], Max: g.P[len(g.P)-1], Steps: len(g.P)},
		t: Range{Min: g.T[0], Max: g.T[len(g.T)-1], Steps: len(g.T)},
	}
	e.id = e.desc.digest()
	return e, nil
}

func fromGrid(label string, g *Grid, extrapolate bool) (*EOS, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	e := &EOS{Label: label}
	var err error
	if e.rho, err = interp.NewBivariate(g.P, g.T, g.Rho, extrapolate); err != nil {
		return nil, zerr.Wrap(err, "density interpolant")
	}
	if e.cp, err = interp.NewBivariate(g.P, g.T, g.Cp, extrapolate); err != nil {
		return nil, zerr.Wrap(err, "heat capacity interpolant")
	}
	if e.alpha, err = interp.NewBivariate(g.P, g.T, g.Alpha, extrapolate); err != nil {
		return nil, zerr.Wrap(err, "expansivity interpolant")
	}
	if e.kTherm, err = interp.NewBivariate(g.P, g.T, g.KTherm, extrapolate); err != nil {
		return nil, zerr.Wrap(err, "conductivity interpolant")
	}
	if e.phase, err = interp.NewNearest(g.P, g.T, g.Phase); err != nil {
		return nil, zerr.Wrap(err, "phase classifier")
	}
	return e, nil
}

// Density returns rho in kg/m^3 at (P, T).
func (e *EOS) Density(pMPa, tK float64) (float64, error) {
	return e.rho.At(pMPa, tK)
}

// HeatCapacity returns Cp in J/(kg K) at (P, T).
func (e *EOS) HeatCapacity(pMPa, tK float64) (float64, error) {
	return e.cp.At(pMPa, tK)
}

// Expansivity returns the thermal expansivity in 1/K at (P, T).
func (e *EOS) Expansivity(pMPa, tK float64) (float64, error) {
	return e.alpha.At(pMPa, tK)
}

// Conductivity returns the thermal conductivity in W/(m K) at (P, T).
func (e *EOS) Conductivity(pMPa, tK float64) (float64, error) {
	return e.kTherm.At(pMPa, tK)
}

// PhaseAt classifies (P, T) by the nearest phase sample.
func (e *EOS) PhaseAt(pMPa, tK float64) Phase {
	return Phase(e.phase.At(pMPa, tK))
}

// Bounds reports the valid query window as (Pmin, Pmax, Tmin, Tmax).
func (e *EOS) Bounds() (float64, float64, float64, float64) {
	return e.rho.Bounds()
}

// ID is the xxhash digest of the sampled-range descriptor, stable across
// rebuilds of an identical request.
func (e *EOS) ID() uint64 { return e.id }
