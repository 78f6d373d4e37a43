package moi

import (
	"math"

	"github.com/icyworlds/interior/internal/eos"
	"github.com/icyworlds/interior/internal/layers"
	"github.com/icyworlds/interior/internal/thermal"
	"go.trai.ch/zerr"
)

const (
	fourThirdsPi   = 4.0 / 3.0 * math.Pi
	eightFifteenPi = 8.0 / 15.0 * math.Pi
)

// stack is one propagated interior region, ordered like the hydrosphere
// arrays with index 0 at the region top. Nodes are evenly spaced in
// radius; MCum[k] is the total mass above node k including everything
// above the region.
type stack struct {
	R, P, T, Rho, Cp, Alpha, KTherm, G []float64
	MLayer                             []float64
	MCum                               []float64
	QW                                 []float64 // total heat flow through each node, W
}

// propagate integrates an interior region from rTop down to rBot in n
// equal radius steps, querying e for material state and stepping
// temperature with the conductive shell solution. Temperatures are capped
// at tMax to keep queries inside the EOS surface. A non-nil stop is
// evaluated at every node; when it fires the stack is truncated at that
// node and stopped is true. Once the cumulative mass passes bodyM,
// gravity is pinned to zero so the integration stays finite down to the
// center.
func propagate(e *eos.EOS, n int, rTop, rBot, pTop, tTop, gTop, mAboveTop, qTopW, qRadWkg, hTidalWm3, tMax, bodyM float64, stop func(r, mCum float64) bool) (*stack, bool, error) {
	if n < 1 || rTop <= rBot {
		err := zerr.Wrap(eos.ErrInvalidRange, "bad propagation geometry")
		err = zerr.With(err, "r_top_m", rTop)
		err = zerr.With(err, "r_bot_m", rBot)
		return nil, false, zerr.With(err, "steps", n)
	}
	st := &stack{
		R: make([]float64, n+1), P: make([]float64, n+1), T: make([]float64, n+1),
		Rho: make([]float64, n+1), Cp: make([]float64, n+1), Alpha: make([]float64, n+1),
		KTherm: make([]float64, n+1), G: make([]float64, n+1),
		MLayer: make([]float64, n+1), MCum: make([]float64, n+1), QW: make([]float64, n+1),
	}
	dr := (rTop - rBot) / float64(n)
	st.R[0], st.P[0], st.T[0], st.G[0] = rTop, pTop, tTop, gTop
	st.MCum[0], st.QW[0] = mAboveTop, qTopW

	for k := 0; k <= n; k++ {
		t := math.Min(st.T[k], tMax)
		var err error
		if st.Rho[k], err = e.Density(st.P[k], t); err != nil {
			return nil, false, zerr.Wrap(err, "interior density")
		}
		if st.Cp[k], err = e.HeatCapacity(st.P[k], t); err != nil {
			return nil, false, zerr.Wrap(err, "interior heat capacity")
		}
		if st.Alpha[k], err = e.Expansivity(st.P[k], t); err != nil {
			return nil, false, zerr.Wrap(err, "interior expansivity")
		}
		if st.KTherm[k], err = e.Conductivity(st.P[k], t); err != nil {
			return nil, false, zerr.Wrap(err, "interior conductivity")
		}
		if stop != nil && stop(st.R[k], st.MCum[k]) {
			st.truncate(k + 1)
			return st, true, nil
		}
		if k == n {
			break
		}

		r := st.R[k]
		rNext := r - dr
		if rNext < 0 {
			rNext = 0
		}
		st.R[k+1] = rNext
		st.MLayer[k] = fourThirdsPi * st.Rho[k] * (r*r*r - rNext*rNext*rNext)
		st.MCum[k+1] = st.MCum[k] + st.MLayer[k]
		mBelow := bodyM - st.MCum[k+1]
		if mBelow < 0 || rNext == 0 {
			st.G[k+1] = 0
		} else {
			st.G[k+1] = layers.GravConst * mBelow / (rNext * rNext)
		}
		st.P[k+1] = st.P[k] + st.Rho[k]*st.G[k]*dr*1e-6

		if rNext > 0 {
			qFlux := st.QW[k] / (4 * math.Pi * r * r)
			tBot, qBotFlux := thermal.ConductiveTemperature(st.T[k], r, rNext,
				st.KTherm[k], st.Rho[k], qRadWkg, hTidalWm3, qFlux)
			st.T[k+1] = math.Min(tBot, tMax)
			st.QW[k+1] = qBotFlux * 4 * math.Pi * rNext * rNext
		} else {
			st.T[k+1] = st.T[k]
			st.QW[k+1] = 0
		}
	}
	return st, false, nil
}

func (st *stack) truncate(n int) {
	st.R, st.P, st.T = st.R[:n], st.P[:n], st.T[:n]
	st.Rho, st.Cp, st.Alpha, st.KTherm = st.Rho[:n], st.Cp[:n], st.Alpha[:n], st.KTherm[:n]
	st.G, st.MLayer, st.MCum, st.QW = st.G[:n], st.MLayer[:n], st.MCum[:n], st.QW[:n]
}

// moment is the moment-of-inertia contribution of shells 0..j-1, summed
// with each shell carrying its top node's density.
func (st *stack) moment(j int) float64 {
	var c float64
	for k := 0; k < j; k++ {
		c += eightFifteenPi * st.Rho[k] * (pow5(st.R[k]) - pow5(st.R[k+1]))
	}
	return c
}

func pow5(x float64) float64 { return x * x * x * x * x }
