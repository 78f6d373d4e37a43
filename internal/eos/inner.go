package eos

import (
	"fmt"

	"go.trai.ch/zerr"
)

// InnerSpec requests a silicate or core EOS. The built-in builder uses a
// linear-compressibility parameterization about a reference density;
// callers with tabulated mantle or alloy data use FromGrid instead and
// register the result through the same cache label space.
type InnerSpec struct {
	Name        string // table or mineralogy label, part of cache identity
	Phase       Phase  // Silicate or Iron
	RhoRefKgM3  float64
	BulkModMPa  float64
	CpJkgK      float64
	AlphaPerK   float64
	KThermWmK   float64
	P           Range
	T           Range
	Extrapolate bool
}

func (s InnerSpec) label() string {
	return fmt.Sprintf("inner:%s:%s:rho%.0f", s.Phase, s.Name, s.RhoRefKgM3)
}

// InnerEOS returns a silicate/core EOS with the standard cache policy.
func (c *Cache) InnerEOS(spec InnerSpec) (*EOS, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return getOrBuild(c, spec.label(), descriptor{p: spec.P, t: spec.T},
		func(p, t Range) (*EOS, error) {
			s := spec
			s.P, s.T = p, t
			return buildInner(s)
		})
}

func buildInner(spec InnerSpec) (*EOS, error) {
	if err := spec.P.validate(); err != nil {
		return nil, zerr.Wrap(err, "inner pressure range")
	}
	if err := spec.T.validate(); err != nil {
		return nil, zerr.Wrap(err, "inner temperature range")
	}
	if spec.Phase != Silicate && spec.Phase != Iron {
		return nil, zerr.With(zerr.Wrap(ErrUnsupportedComposition, "inner layers are silicate or iron"),
			"phase", spec.Phase.String())
	}
	if spec.RhoRefKgM3 <= 0 || spec.BulkModMPa <= 0 {
		err := zerr.Wrap(ErrInvalidRange, "reference density and bulk modulus must be positive")
		err = zerr.With(err, "rho_ref", spec.RhoRefKgM3)
		return nil, zerr.With(err, "bulk_mod", spec.BulkModMPa)
	}
	p, t := conditionAxes(spec.P.Samples(), spec.T.Samples())
	g := newGrid(p, t)
	for i, pv := range p {
		for j, tv := range t {
			g.Phase[i][j] = int(spec.Phase)
			g.Rho[i][j] = spec.RhoRefKgM3 * (1 + pv/spec.BulkModMPa) * (1 - spec.AlphaPerK*(tv-300))
			g.Cp[i][j] = spec.CpJkgK
			g.Alpha[i][j] = spec.AlphaPerK
			g.KTherm[i][j] = spec.KThermWmK
		}
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
