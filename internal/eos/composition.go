package eos

import (
	"sync"

	"go.trai.ch/zerr"
)

// Composition tags a supported ocean solute model. Each carries its own
// grid builder; dispatching on the tag replaces string matching so that
// unsupported values surface as ErrUnsupportedComposition from a single
// place instead of scattered string checks.
type Composition int

const (
	PureWater Composition = iota
	Seawater
	MgSO4
	Ammonia
	Rocksalt
)

func (c Composition) String() string {
	switch c {
	case PureWater:
		return "PureWater"
	case Seawater:
		return "Seawater"
	case MgSO4:
		return "MgSO4"
	case Ammonia:
		return "NH3"
	case Rocksalt:
		return "NaCl"
	}
	return "custom"
}

// CompositionFromString resolves a configuration-file composition name.
func CompositionFromString(s string) (Composition, error) {
	switch s {
	case "PureWater", "":
		return PureWater, nil
	case "Seawater":
		return Seawater, nil
	case "MgSO4":
		return MgSO4, nil
	case "NH3":
		return Ammonia, nil
	case "NaCl":
		return Rocksalt, nil
	}
	return 0, zerr.With(zerr.Wrap(ErrUnsupportedComposition, "unknown composition name"), "composition", s)
}

// oceanBuilder fills a property grid for one solution chemistry over the
// conditioned sample axes.
type oceanBuilder func(p, t []float64, wPpt float64) (*Grid, error)

var (
	builderMu     sync.RWMutex
	oceanBuilders = map[Composition]oceanBuilder{
		PureWater: buildAqueous,
		Seawater:  buildAqueous,
		MgSO4:     buildAqueous,
		Ammonia: func(p, t []float64, wPpt float64) (*Grid, error) {
			return nil, zerr.With(zerr.Wrap(ErrUnsupportedComposition, "no property builder"), "composition", "NH3")
		},
		Rocksalt: func(p, t []float64, wPpt float64) (*Grid, error) {
			return nil, zerr.With(zerr.Wrap(ErrUnsupportedComposition, "no property builder"), "composition", "NaCl")
		},
	}
)

// RegisterComposition installs a builder for a custom composition tag,
// typically backed by an externally loaded property table.
func RegisterComposition(c Composition, build func(p, t []float64, wPpt float64) (*Grid, error)) {
	builderMu.Lock()
	defer builderMu.Unlock()
	oceanBuilders[c] = build
}

func lookupBuilder(c Composition) (oceanBuilder, error) {
	builderMu.RLock()
	defer builderMu.RUnlock()
	b, ok := oceanBuilders[c]
	if !ok {
		return nil, zerr.With(zerr.Wrap(ErrUnsupportedComposition, "no registered builder"), "composition", c.String())
	}
	return b, nil
}

// buildAqueous synthesizes the aqueous-solution grid shared by the water
// based chemistries; salinity enters through the property laws.
func buildAqueous(p, t []float64, wPpt float64) (*Grid, error) {
	g := newGrid(p, t)
	for i, pv := range p {
		for j, tv := range t {
			ph := stablePhase(pv, tv, wPpt)
			g.Phase[i][j] = int(ph)
			if ph == Liquid {
				g.Rho[i][j] = liquidRho(pv, tv, wPpt)
				g.Cp[i][j] = liquidCp(tv, wPpt)
				g.Alpha[i][j] = liquidAlpha(pv, tv)
				g.KTherm[i][j] = liquidKTherm(tv)
			} else {
				g.Rho[i][j] = solidRho(ph, pv, tv)
				g.Cp[i][j] = solidCp(ph, tv)
				g.Alpha[i][j] = solidAlpha(tv)
				g.KTherm[i][j] = solidKTherm(ph, pv, tv)
			}
		}
	}
	return g, nil
}

// buildIce synthesizes a single-phase ice grid. The phase table still
// distinguishes liquid from solid so freeze solvers can bracket the
// melting curve, and clathrate grids use the dissociation field instead.
func buildIce(p, t []float64, phase Phase, porosity float64) (*Grid, error) {
	g := newGrid(p, t)
	for i, pv := range p {
		for j, tv := range t {
			stable := tv <= MeltTemp(pv, 0)
			if phase == Clathrate {
				stable = clathStable(pv, tv)
			}
			if stable {
				g.Phase[i][j] = int(phase)
			} else {
				g.Phase[i][j] = int(Liquid)
			}
			g.Rho[i][j] = solidRho(phase, pv, tv) * (1 - porosity)
			g.Cp[i][j] = solidCp(phase, tv)
			g.Alpha[i][j] = solidAlpha(tv)
			g.KTherm[i][j] = solidKTherm(phase, pv, tv)
		}
	}
	return g, nil
}
