// Package moi searches silicate and core configurations beneath a
// completed hydrosphere for the radius split reproducing the measured
// moment-of-inertia factor.
package moi

import (
	"log/slog"
	"math"

	"github.com/icyworlds/interior/internal/body"
	"github.com/icyworlds/interior/internal/eos"
	"github.com/icyworlds/interior/internal/layers"
	"go.trai.ch/zerr"
)

var (
	// ErrNoMoIMatch means candidates exist but none falls inside the
	// measured C/MR^2 uncertainty band.
	ErrNoMoIMatch = zerr.New("no interior candidate within the moment of inertia band")
	// ErrMassExceeded means every candidate was filtered for mass
	// inconsistency, leaving nothing to select from.
	ErrMassExceeded = zerr.New("every interior candidate is mass-inconsistent")
)

// Match summarizes a successful interior search. The radius ranges cover
// every candidate inside the uncertainty band, not just the selected
// best; the band generally admits a continuum of qualifying splits.
type Match struct {
	CMR2       float64
	IHydro     int     // hydrosphere index of the silicate top
	RSilM      float64 // selected silicate outer radius
	RCoreM     float64 // selected core radius, 0 without a core
	RhoSilKgM3 float64 // silicate density of the selected candidate

	NMatched                         int
	RSilMeanM, RSilMinM, RSilMaxM    float64
	RCoreMeanM, RCoreMinM, RCoreMaxM float64
}

type candidate struct {
	i      int // hydrosphere index of the silicate top
	jCore  int // silicate stack node index of the core top (EOS mode)
	cmr2   float64
	rSil   float64
	rCore  float64
	rhoSil float64
}

// Matcher runs the interior search against one body configuration.
type Matcher struct {
	cfg   *body.Config
	cache *eos.Cache
	log   *slog.Logger
}

func NewMatcher(cfg *body.Config, cache *eos.Cache, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{cfg: cfg, cache: cache, log: log}
}

// Run dispatches to the mode selected by the configuration and returns
// the merged whole-body profile with the match summary.
func (m *Matcher) Run(hydro *layers.Profile) (*layers.Profile, *Match, error) {
	if m.cfg.Do.ConstantInnerDensity {
		return m.MatchConstantDensity(hydro)
	}
	return m.MatchWithEOS(hydro)
}

// hydroMoments returns, per hydrosphere index i, the moment-of-inertia
// contribution of all hydrosphere shells above layer i.
func hydroMoments(h *layers.Profile) []float64 {
	c := make([]float64, h.Len())
	for i := 1; i < h.Len(); i++ {
		c[i] = c[i-1] + eightFifteenPi*h.Rho[i-1]*(pow5(h.R[i-1])-pow5(h.R[i]))
	}
	return c
}

// MatchConstantDensity treats silicate and core as uniform-density
// regions. For each candidate silicate top the core radius follows in
// closed form from total-mass conservation; without a core the silicate
// density itself is solved for.
func (m *Matcher) MatchConstantDensity(hydro *layers.Profile) (*layers.Profile, *Match, error) {
	cfg := m.cfg
	bodyM, bodyR := cfg.Bulk.MassKg, cfg.Bulk.RadiusM
	cAbove := hydroMoments(hydro)
	rhoCore := cfg.Core.MixedDensity()

	var cands []candidate
	exceeded := 0
	for i := cfg.Steps.ISilStart; i < hydro.Len(); i++ {
		rSil := hydro.R[i]
		mRem := bodyM - hydro.MassAbove(i)
		if mRem <= 0 {
			exceeded++
			continue
		}
		if cfg.Core.FeCore {
			rhoSil := cfg.Sil.RhoConstKgM3
			cube := (mRem/fourThirdsPi - rhoSil*rSil*rSil*rSil) / (rhoCore - rhoSil)
			if cube < 0 {
				// A coreless mantle of this size already overshoots the
				// remaining mass.
				exceeded++
				continue
			}
			rCore := math.Cbrt(cube)
			if rCore >= rSil {
				continue
			}
			c := cAbove[i] + eightFifteenPi*(rhoSil*(pow5(rSil)-pow5(rCore))+rhoCore*pow5(rCore))
			cands = append(cands, candidate{
				i: i, cmr2: c / (bodyM * bodyR * bodyR),
				rSil: rSil, rCore: rCore, rhoSil: rhoSil,
			})
		} else {
			rhoSil := mRem / (fourThirdsPi * rSil * rSil * rSil)
			c := cAbove[i] + eightFifteenPi*rhoSil*pow5(rSil)
			cands = append(cands, candidate{
				i: i, cmr2: c / (bodyM * bodyR * bodyR),
				rSil: rSil, rhoSil: rhoSil,
			})
		}
	}
	if len(cands) == 0 {
		err := zerr.With(zerr.Wrap(ErrMassExceeded, "no interior candidate survives"), "filtered", exceeded)
		return nil, nil, zerr.With(err, "mode", "constant-density")
	}
	best, match, err := selectBest(cands, cfg.Bulk.CMeasured, cfg.Bulk.CUncertainty)
	if err != nil {
		return nil, nil, err
	}
	m.log.Info("interior matched",
		"mode", "constant-density", "cmr2", match.CMR2,
		"r_sil_m", match.RSilM, "r_core_m", match.RCoreM, "in_band", match.NMatched)

	merged, err := m.assembleConstant(hydro, best, rhoCore)
	if err != nil {
		return nil, nil, err
	}
	return merged, match, nil
}

// MatchWithEOS propagates the silicate EOS from every candidate boundary
// and, with a core enabled, selects the core top by first-undershoot: the
// outermost silicate node at which adding a mixed-density core no longer
// exceeds the body mass. Each surviving candidate then propagates the
// core EOS to the center, so the candidate's mass and moment come from
// the same interior the assembled profile carries.
func (m *Matcher) MatchWithEOS(hydro *layers.Profile) (*layers.Profile, *Match, error) {
	cfg := m.cfg
	bodyM, bodyR := cfg.Bulk.MassKg, cfg.Bulk.RadiusM
	cAbove := hydroMoments(hydro)
	rhoCore := cfg.Core.MixedDensity()
	n := cfg.Steps.NSilMax

	silEOS, err := m.silicateEOS(cfg.Sil.RhoRefKgM3, cfg.Sil.BulkModMPa, cfg.Do.ExtrapInner)
	if err != nil {
		return nil, nil, err
	}
	var coreEOS *eos.EOS
	if cfg.Core.FeCore {
		coreEOS, err = m.coreEOS(rhoCore, cfg.Do.ExtrapInner)
		if err != nil {
			return nil, nil, err
		}
	}

	stop := m.undershootStop(rhoCore)

	var cands []candidate
	exceeded := 0
	for i := cfg.Steps.ISilStart; i < hydro.Len(); i++ {
		if cfg.Core.FeCore {
			st, stopped, err := propagate(silEOS, n, hydro.R[i], 0,
				hydro.P[i], hydro.T[i], hydro.G[i], hydro.MassAbove(i),
				hydro.QFromMantleW, cfg.Sil.QRadWkg, cfg.Sil.HTidalWm3, cfg.Sil.TMaxK, bodyM, stop)
			if err != nil {
				m.log.Debug("silicate propagation left the EOS surface, skipping candidate",
					"i_hydro", i, "err", err)
				continue
			}
			if !stopped {
				exceeded++
				continue
			}
			j := len(st.R) - 1
			rCore := st.R[j]
			core, _, err := propagate(coreEOS, cfg.Steps.NCore, rCore, 0,
				st.P[j], st.T[j], st.G[j], st.MCum[j],
				st.QW[j], 0, 0, cfg.Core.TMaxK, bodyM, nil)
			if err != nil {
				m.log.Debug("core propagation left the EOS surface, skipping candidate",
					"i_hydro", i, "err", err)
				continue
			}
			nc := len(core.R) - 1
			total := core.MCum[nc]
			if total > bodyM*(1+cfg.Tol.MassMatchFrac) {
				exceeded++
				continue
			}
			if total < bodyM*(1-cfg.Tol.MassMatchFrac) {
				continue
			}
			c := cAbove[i] + st.moment(j) + core.moment(nc)
			cands = append(cands, candidate{
				i: i, jCore: j, cmr2: c / (bodyM * bodyR * bodyR),
				rSil: hydro.R[i], rCore: rCore, rhoSil: st.Rho[0],
			})
		} else {
			st, _, err := propagate(silEOS, n, hydro.R[i], 0,
				hydro.P[i], hydro.T[i], hydro.G[i], hydro.MassAbove(i),
				hydro.QFromMantleW, cfg.Sil.QRadWkg, cfg.Sil.HTidalWm3, cfg.Sil.TMaxK, bodyM, nil)
			if err != nil {
				m.log.Debug("silicate propagation left the EOS surface, skipping candidate",
					"i_hydro", i, "err", err)
				continue
			}
			total := st.MCum[n]
			if total > bodyM*(1+cfg.Tol.MassMatchFrac) {
				exceeded++
				continue
			}
			if total < bodyM*(1-cfg.Tol.MassMatchFrac) {
				continue
			}
			c := cAbove[i] + st.moment(n)
			cands = append(cands, candidate{
				i: i, jCore: n, cmr2: c / (bodyM * bodyR * bodyR),
				rSil: hydro.R[i], rhoSil: st.Rho[0],
			})
		}
	}
	if len(cands) == 0 {
		werr := zerr.With(zerr.Wrap(ErrMassExceeded, "no interior candidate survives"), "filtered", exceeded)
		return nil, nil, zerr.With(werr, "mode", "eos")
	}
	best, match, err := selectBest(cands, cfg.Bulk.CMeasured, cfg.Bulk.CUncertainty)
	if err != nil {
		return nil, nil, err
	}
	m.log.Info("interior matched",
		"mode", "eos", "cmr2", match.CMR2,
		"r_sil_m", match.RSilM, "r_core_m", match.RCoreM, "in_band", match.NMatched)

	merged, err := m.assembleEOS(hydro, best, silEOS)
	if err != nil {
		return nil, nil, err
	}
	return merged, match, nil
}

// undershootStop is the first-undershoot core selection as a propagation
// stop: silicate integration halts at the outermost node where a
// mixed-density core fits under the remaining mass. The minimum plausible
// density bounds the maximum admissible core radius. Checking during
// propagation keeps the integration away from the small-radius gravity
// singularity of an under-dense trial interior.
func (m *Matcher) undershootStop(rhoCore float64) func(r, mCum float64) bool {
	bodyM := m.cfg.Bulk.MassKg
	rhoMin := m.cfg.Core.RhoMinKgM3
	return func(r, mCum float64) bool {
		remaining := bodyM - mCum
		if remaining <= 0 {
			return false
		}
		coreVol := fourThirdsPi * r * r * r
		return rhoMin*coreVol <= remaining && rhoCore*coreVol <= remaining
	}
}

// selectBest applies the uncertainty-band filter and the nearest-to
// measured tie-break, and accumulates the qualifying radius ranges.
func selectBest(cands []candidate, measured, uncertainty float64) (candidate, *Match, error) {
	var inBand []candidate
	for _, c := range cands {
		if math.Abs(c.cmr2-measured) <= uncertainty {
			inBand = append(inBand, c)
		}
	}
	if len(inBand) == 0 {
		err := zerr.Wrap(ErrNoMoIMatch, "uncertainty band filtered every candidate")
		err = zerr.With(err, "candidates", len(cands))
		err = zerr.With(err, "measured", measured)
		return candidate{}, nil, zerr.With(err, "uncertainty", uncertainty)
	}
	best := inBand[0]
	match := &Match{
		NMatched:  len(inBand),
		RSilMinM:  math.Inf(1),
		RCoreMinM: math.Inf(1),
	}
	for _, c := range inBand {
		if math.Abs(c.cmr2-measured) < math.Abs(best.cmr2-measured) {
			best = c
		}
		match.RSilMeanM += c.rSil / float64(len(inBand))
		match.RCoreMeanM += c.rCore / float64(len(inBand))
		match.RSilMinM = math.Min(match.RSilMinM, c.rSil)
		match.RSilMaxM = math.Max(match.RSilMaxM, c.rSil)
		match.RCoreMinM = math.Min(match.RCoreMinM, c.rCore)
		match.RCoreMaxM = math.Max(match.RCoreMaxM, c.rCore)
	}
	match.CMR2 = best.cmr2
	match.IHydro = best.i
	match.RSilM = best.rSil
	match.RCoreM = best.rCore
	match.RhoSilKgM3 = best.rhoSil
	return best, match, nil
}

func (m *Matcher) silicateEOS(rhoRef, bulkMod float64, extrap bool) (*eos.EOS, error) {
	cfg := m.cfg
	e, err := m.cache.InnerEOS(eos.InnerSpec{
		Name:        cfg.Name,
		Phase:       eos.Silicate,
		RhoRefKgM3:  rhoRef,
		BulkModMPa:  bulkMod,
		CpJkgK:      cfg.Sil.CpJkgK,
		AlphaPerK:   cfg.Sil.AlphaPerK,
		KThermWmK:   cfg.Sil.KThermWmK,
		P:           eos.Range{Min: 0, Max: cfg.Sil.PMaxMPa, Steps: 60},
		T:           eos.Range{Min: cfg.Bulk.TsurfK, Max: cfg.Sil.TMaxK, Steps: 40},
		Extrapolate: extrap,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "building silicate EOS")
	}
	return e, nil
}

func (m *Matcher) coreEOS(rhoRef float64, extrap bool) (*eos.EOS, error) {
	cfg := m.cfg
	e, err := m.cache.InnerEOS(eos.InnerSpec{
		Name:        cfg.Name,
		Phase:       eos.Iron,
		RhoRefKgM3:  rhoRef,
		BulkModMPa:  cfg.Core.BulkModMPa,
		CpJkgK:      cfg.Core.CpJkgK,
		AlphaPerK:   cfg.Core.AlphaPerK,
		KThermWmK:   cfg.Core.KThermWmK,
		P:           eos.Range{Min: 0, Max: cfg.Core.PMaxMPa, Steps: 60},
		T:           eos.Range{Min: cfg.Bulk.TsurfK, Max: cfg.Core.TMaxK, Steps: 40},
		Extrapolate: extrap,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "building core EOS")
	}
	return e, nil
}

// assembleConstant materializes the selected constant-density candidate
// into layer arrays. Uniform density is expressed as a degenerate EOS
// surface so the same propagation path serves both modes.
func (m *Matcher) assembleConstant(hydro *layers.Profile, best candidate, rhoCore float64) (*layers.Profile, error) {
	cfg := m.cfg
	const rigidMPa = 1e9 // bulk modulus high enough to pin the density

	silEOS, err := m.cache.InnerEOS(eos.InnerSpec{
		Name: cfg.Name + "-const", Phase: eos.Silicate,
		RhoRefKgM3: best.rhoSil, BulkModMPa: rigidMPa,
		CpJkgK: cfg.Sil.CpJkgK, KThermWmK: cfg.Sil.KThermWmK,
		P: eos.Range{Min: 0, Max: cfg.Sil.PMaxMPa, Steps: 40},
		T: eos.Range{Min: cfg.Bulk.TsurfK, Max: cfg.Sil.TMaxK, Steps: 20},
		Extrapolate: true,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "constant-density silicate EOS")
	}

	i := best.i
	rBot := best.rCore
	sil, _, err := propagate(silEOS, cfg.Steps.NSilMax, hydro.R[i], rBot,
		hydro.P[i], hydro.T[i], hydro.G[i], hydro.MassAbove(i),
		hydro.QFromMantleW, cfg.Sil.QRadWkg, cfg.Sil.HTidalWm3, cfg.Sil.TMaxK, cfg.Bulk.MassKg, nil)
	if err != nil {
		return nil, err
	}

	var core *stack
	if best.rCore > 0 {
		coreEOS, err := m.cache.InnerEOS(eos.InnerSpec{
			Name: cfg.Name + "-const", Phase: eos.Iron,
			RhoRefKgM3: rhoCore, BulkModMPa: rigidMPa,
			CpJkgK: cfg.Core.CpJkgK, KThermWmK: cfg.Core.KThermWmK,
			P: eos.Range{Min: 0, Max: cfg.Core.PMaxMPa, Steps: 40},
			T: eos.Range{Min: cfg.Bulk.TsurfK, Max: cfg.Core.TMaxK, Steps: 20},
			Extrapolate: true,
		})
		if err != nil {
			return nil, zerr.Wrap(err, "constant-density core EOS")
		}
		j := len(sil.R) - 1
		core, _, err = propagate(coreEOS, cfg.Steps.NCore, best.rCore, 0,
			sil.P[j], sil.T[j], sil.G[j], sil.MCum[j],
			sil.QW[j], 0, 0, cfg.Core.TMaxK, cfg.Bulk.MassKg, nil)
		if err != nil {
			return nil, err
		}
	}
	return m.merge(hydro, i, sil, len(sil.R)-1, core), nil
}

// assembleEOS re-propagates the selected candidate and materializes the
// silicate region down to the core top plus the core itself.
func (m *Matcher) assembleEOS(hydro *layers.Profile, best candidate, silEOS *eos.EOS) (*layers.Profile, error) {
	cfg := m.cfg
	i := best.i
	var stop func(r, mCum float64) bool
	if cfg.Core.FeCore {
		stop = m.undershootStop(cfg.Core.MixedDensity())
	}
	sil, _, err := propagate(silEOS, cfg.Steps.NSilMax, hydro.R[i], 0,
		hydro.P[i], hydro.T[i], hydro.G[i], hydro.MassAbove(i),
		hydro.QFromMantleW, cfg.Sil.QRadWkg, cfg.Sil.HTidalWm3, cfg.Sil.TMaxK, cfg.Bulk.MassKg, stop)
	if err != nil {
		return nil, err
	}

	var core *stack
	if cfg.Core.FeCore && best.rCore > 0 {
		coreEOS, err := m.coreEOS(cfg.Core.MixedDensity(), cfg.Do.ExtrapInner)
		if err != nil {
			return nil, err
		}
		j := len(sil.R) - 1
		core, _, err = propagate(coreEOS, cfg.Steps.NCore, best.rCore, 0,
			sil.P[j], sil.T[j], sil.G[j], sil.MCum[j],
			sil.QW[j], 0, 0, cfg.Core.TMaxK, cfg.Bulk.MassKg, nil)
		if err != nil {
			return nil, err
		}
	}
	return m.merge(hydro, i, sil, len(sil.R)-1, core), nil
}

// merge joins hydrosphere layers above the silicate top, silicate stack
// nodes 0..jSil, and the core stack (skipping its top node, which shares
// the silicate bottom radius) into one whole-body profile.
func (m *Matcher) merge(hydro *layers.Profile, iSil int, sil *stack, jSil int, core *stack) *layers.Profile {
	nCore := 0
	if core != nil {
		nCore = len(core.R) - 1
	}
	total := iSil + (jSil + 1) + nCore
	p := layers.NewProfile(total)

	rSurf := hydro.R[0]
	copyAt := func(k int, r, pr, t, rho, cp, alpha, kt, g, ml float64, phase eos.Phase) {
		p.R[k], p.P[k], p.T[k] = r, pr, t
		p.Z[k] = rSurf - r
		p.Rho[k], p.Cp[k], p.Alpha[k], p.KTherm[k] = rho, cp, alpha, kt
		p.G[k], p.MLayer[k] = g, ml
		p.Phase[k] = phase
	}
	for k := 0; k < iSil; k++ {
		copyAt(k, hydro.R[k], hydro.P[k], hydro.T[k], hydro.Rho[k], hydro.Cp[k],
			hydro.Alpha[k], hydro.KTherm[k], hydro.G[k], hydro.MLayer[k], hydro.Phase[k])
		p.Phi[k] = hydro.Phi[k]
	}
	for j := 0; j <= jSil; j++ {
		ml := sil.MLayer[j]
		if j == jSil && core != nil {
			ml = 0
		}
		copyAt(iSil+j, sil.R[j], sil.P[j], sil.T[j], sil.Rho[j], sil.Cp[j],
			sil.Alpha[j], sil.KTherm[j], sil.G[j], ml, eos.Silicate)
	}
	if core != nil {
		base := iSil + jSil + 1
		// The silicate bottom node carries the first core shell's mass.
		p.MLayer[base-1] = core.MLayer[0]
		for j := 1; j < len(core.R); j++ {
			copyAt(base+j-1, core.R[j], core.P[j], core.T[j], core.Rho[j], core.Cp[j],
				core.Alpha[j], core.KTherm[j], core.G[j], core.MLayer[j], eos.Iron)
		}
	}

	p.NClath, p.NIbottom, p.NIIIBottom = hydro.NClath, hydro.NIbottom, hydro.NIIIBottom
	p.NSurfIce, p.NHydro = hydro.NSurfIce, iSil
	p.NSil = iSil + jSil + 1
	p.NCore = total
	p.NTotal = total
	p.PbClathMPa, p.PbIMPa, p.PbIIIMPa = hydro.PbClathMPa, hydro.PbIMPa, hydro.PbIIIMPa
	p.PbVMPa, p.PbMPa = hydro.PbVMPa, hydro.PbMPa
	p.QFromMantleW = hydro.QFromMantleW

	for k := 1; k < total; k++ {
		if p.T[k] < p.T[k-1] {
			p.NonEquilibrium = true
			m.log.Warn("temperature decreases with depth, marking profile non-equilibrium",
				"layer", k, "t_above_K", p.T[k-1], "t_K", p.T[k])
			break
		}
	}
	return p
}
