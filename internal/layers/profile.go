package layers

import (
	"fmt"

	"github.com/icyworlds/interior/internal/eos"
)

// GravConst is the Newtonian gravitational constant in SI units.
const GravConst = 6.674e-11

// Profile is the radial layer stack of one body model, indexed from the
// surface (0) toward the center. All slices share one length. Radius is
// strictly decreasing; pressure, depth, and cumulative mass above are
// non-decreasing.
type Profile struct {
	R      []float64 // layer top radius, m
	Z      []float64 // layer top depth, m
	P      []float64 // pressure, MPa
	T      []float64 // temperature, K
	Rho    []float64 // density, kg/m^3
	Cp     []float64 // heat capacity, J/(kg K)
	Alpha  []float64 // thermal expansivity, 1/K
	KTherm []float64 // thermal conductivity, W/(m K)
	G      []float64 // gravity, m/s^2
	Phi    []float64 // porosity fraction
	MLayer []float64 // shell mass, kg
	Phase  []eos.Phase

	// Region boundary indices, each one past the last layer of its region.
	NClath     int
	NIbottom   int
	NIIIBottom int
	NSurfIce   int
	NHydro     int // set by interior matching
	NSil       int
	NCore      int
	NTotal     int

	// Transition pressures located by the boundary solver.
	PbClathMPa float64
	PbIMPa     float64
	PbIIIMPa   float64
	PbVMPa     float64
	PbMPa      float64 // bottom of the surface ice shell

	QFromMantleW float64 // heat flow entering the hydrosphere from below

	// NonEquilibrium marks a merged profile whose temperature decreases
	// somewhere with depth: internal heating inconsistent with the heat
	// flux into the ocean. The profile is still usable.
	NonEquilibrium bool
}

// NewProfile allocates a zeroed n-layer profile.
func NewProfile(n int) *Profile {
	return &Profile{
		R:      make([]float64, n),
		Z:      make([]float64, n),
		P:      make([]float64, n),
		T:      make([]float64, n),
		Rho:    make([]float64, n),
		Cp:     make([]float64, n),
		Alpha:  make([]float64, n),
		KTherm: make([]float64, n),
		G:      make([]float64, n),
		Phi:    make([]float64, n),
		MLayer: make([]float64, n),
		Phase:  make([]eos.Phase, n),
	}
}

// Len is the number of populated layers.
func (p *Profile) Len() int { return len(p.R) }

// MassAbove is the total shell mass above layer i.
func (p *Profile) MassAbove(i int) float64 {
	var m float64
	for j := 0; j < i; j++ {
		m += p.MLayer[j]
	}
	return m
}

// TotalMass sums every layer shell mass.
func (p *Profile) TotalMass() float64 {
	return p.MassAbove(len(p.MLayer))
}

// Validate checks the structural invariants of a completed profile.
func (p *Profile) Validate() error {
	for i := 1; i < p.Len(); i++ {
		if p.R[i] >= p.R[i-1] {
			return fmt.Errorf("radius not strictly decreasing at layer %d: %g >= %g", i, p.R[i], p.R[i-1])
		}
		if p.Z[i] < p.Z[i-1] {
			return fmt.Errorf("depth decreasing at layer %d", i)
		}
		if p.P[i] < p.P[i-1] {
			return fmt.Errorf("pressure decreasing at layer %d", i)
		}
	}
	return nil
}

// truncate shortens every slice to n layers.
func (p *Profile) truncate(n int) {
	p.R = p.R[:n]
	p.Z = p.Z[:n]
	p.P = p.P[:n]
	p.T = p.T[:n]
	p.Rho = p.Rho[:n]
	p.Cp = p.Cp[:n]
	p.Alpha = p.Alpha[:n]
	p.KTherm = p.KTherm[:n]
	p.G = p.G[:n]
	p.Phi = p.Phi[:n]
	p.MLayer = p.MLayer[:n]
	p.Phase = p.Phase[:n]
}

// hydrostep advances depth, radius, shell mass, and gravity at layer i
// from layer i-1 given the already-assigned pressure, density, and the
// running mass above. Shell mass conservation: the shell volume between
// consecutive radii carries the prior layer's density.
func (p *Profile) hydrostep(i int, surfaceR, bodyM float64, mAbove *float64) {
	const fourThirdsPi = 4.0 / 3.0 * 3.141592653589793
	p.Z[i] = p.Z[i-1] + (p.P[i]-p.P[i-1])*1e6/p.G[i-1]/p.Rho[i-1]
	p.R[i] = surfaceR - p.Z[i]
	p.MLayer[i-1] = fourThirdsPi * p.Rho[i-1] * (p.R[i-1]*p.R[i-1]*p.R[i-1] - p.R[i]*p.R[i]*p.R[i])
	*mAbove += p.MLayer[i-1]
	mBelow := bodyM - *mAbove
	p.G[i] = GravConst * mBelow / (p.R[i] * p.R[i])
}
