package layers

import (
	"log/slog"
	"math"

	"github.com/icyworlds/interior/internal/body"
	"github.com/icyworlds/interior/internal/convect"
	"github.com/icyworlds/interior/internal/eos"
	"go.trai.ch/zerr"
)

// ErrPhaseAssignment means the first ocean layer is not liquid: the ice
// shell step accounting upstream is inconsistent with the phase diagram.
// This is fatal for the evaluation.
var ErrPhaseAssignment = zerr.New("first ocean layer is not liquid")

// ConvectionModel supplies the convective-lid correction for an ice
// shell. The default is convect.Model; tests substitute fixed responses.
type ConvectionModel interface {
	Convect(ice *eos.EOS, tTop, rTop, kTop, tBot, zb, gTop, pMid float64, phase eos.Phase) (convect.Result, error)
}

// Integrator walks the hydrosphere from the surface toward the center:
// optional clathrate lid, conductive ice I with a convective correction,
// optional ice III/V underplates, then the adiabatic ocean.
type Integrator struct {
	cfg   *body.Config
	cache *eos.Cache
	conv  ConvectionModel
	log   *slog.Logger
}

func NewIntegrator(cfg *body.Config, cache *eos.Cache, conv ConvectionModel, log *slog.Logger) *Integrator {
	if log == nil {
		log = slog.Default()
	}
	if conv == nil {
		conv = convect.New(cfg.Tol.RaCrit, log)
	}
	return &Integrator{cfg: cfg, cache: cache, conv: conv, log: log}
}

// Hydrosphere builds the ice and ocean layers of the profile. Silicate
// and core layers are appended afterwards by the interior matcher.
func (it *Integrator) Hydrosphere() (*Profile, error) {
	cfg := it.cfg
	comp, err := eos.CompositionFromString(cfg.Ocean.Comp)
	if err != nil {
		return nil, err
	}
	ocean, err := it.cache.OceanEOS(eos.OceanSpec{
		Comp:        comp,
		WPpt:        cfg.Ocean.WPpt,
		ElecModel:   cfg.Ocean.ElecModel,
		P:           eos.Range{Min: cfg.Bulk.PsurfMPa, Max: cfg.Ocean.PHydroMaxMPa, Steps: cfg.Steps.NOcean},
		T:           eos.Range{Min: cfg.Ocean.THydroMinK, Max: cfg.Ocean.THydroMaxK, Steps: 120},
		Extrapolate: cfg.Do.ExtrapOcean,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "building ocean EOS")
	}

	nClath := 0
	if cfg.Do.Clathrate {
		nClath = cfg.Steps.NClath
	}
	nIII, nV := 0, 0
	if cfg.Do.BottomIceIII || cfg.Do.BottomIceV {
		nIII = cfg.Steps.NIceIII
	}
	if cfg.Do.BottomIceV {
		nV = cfg.Steps.NIceV
	}

	p := NewProfile(nClath + cfg.Steps.NIceI + nIII + nV + cfg.Steps.NOcean + 1)
	p.NClath = nClath
	p.NIbottom = nClath + cfg.Steps.NIceI
	p.NIIIBottom = p.NIbottom + nIII
	p.NSurfIce = p.NIIIBottom + nV

	// Surface boundary layer.
	p.R[0] = cfg.Bulk.RadiusM
	p.G[0] = cfg.SurfaceGravity()
	p.T[0] = cfg.Bulk.TsurfK
	p.P[0] = cfg.Bulk.PsurfMPa

	p.PbIMPa, err = eos.FindFreezePressure(ocean, eos.IceIh, cfg.Bulk.TbK, eos.FreezeOpts{
		PLow:  cfg.Tol.FreezeLowerMPa,
		PHigh: cfg.Tol.FreezeUpperMPa,
		Res:   cfg.Tol.FreezeResMPa,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "locating ice I melting pressure")
	}
	it.log.Debug("ice I bottom pressure located", "pb_MPa", p.PbIMPa, "tb_K", cfg.Bulk.TbK)

	if cfg.Do.Clathrate && nClath > 0 {
		if err := it.clathrateLid(p); err != nil {
			return nil, err
		}
	} else {
		p.PbClathMPa = cfg.Bulk.PsurfMPa
	}

	iceIh, err := it.iceEOS(eos.IceIh, cfg.Bulk.PsurfMPa, p.PbIMPa, cfg.Bulk.TsurfK, cfg.Bulk.TbK)
	if err != nil {
		return nil, err
	}
	if err := it.conductiveShell(p, iceIh, p.NClath, p.NIbottom, p.PbClathMPa, p.PbIMPa, p.T[p.NClath], cfg.Bulk.TbK, eos.IceIh); err != nil {
		return nil, err
	}

	if !cfg.Do.NoIceConvection {
		if err := it.convectWithRetry(p, iceIh, p.NClath, p.NIbottom, cfg.Bulk.TbK, eos.IceIh); err != nil {
			return nil, err
		}
	} else {
		// Surface heat flux from the conductive profile; assumes no
		// tidal heating in the shell.
		qSurf := (p.T[1] - cfg.Bulk.TsurfK) / (cfg.Bulk.RadiusM - p.R[1]) * p.KTherm[0]
		p.QFromMantleW = qSurf * 4 * math.Pi * cfg.Bulk.RadiusM * cfg.Bulk.RadiusM
	}

	switch {
	case cfg.Do.BottomIceV:
		if err := it.underplate(p, ocean, eos.IceIII, cfg.Bulk.TbIIIK, p.NIbottom, p.NIIIBottom); err != nil {
			return nil, err
		}
		if err := it.underplate(p, ocean, eos.IceV, cfg.Bulk.TbVK, p.NIIIBottom, p.NSurfIce); err != nil {
			return nil, err
		}
		p.PbMPa = p.PbVMPa
	case cfg.Do.BottomIceIII:
		if err := it.underplate(p, ocean, eos.IceIII, cfg.Bulk.TbIIIK, p.NIbottom, p.NIIIBottom); err != nil {
			return nil, err
		}
		p.PbMPa = p.PbIIIMPa
	default:
		p.PbMPa = p.PbIMPa
	}

	if err := it.oceanLayers(p, ocean); err != nil {
		return nil, err
	}
	return p, nil
}

// iceEOS fetches a cached single-phase ice surface spanning the shell's
// pressure and temperature window with margin for solver probing.
func (it *Integrator) iceEOS(phase eos.Phase, pLow, pHigh, tLow, tHigh float64) (*eos.EOS, error) {
	cfg := it.cfg
	porosity := 0.0
	if cfg.Do.PorousIce {
		porosity = cfg.Ocean.PorosityIce
	}
	if tLow > tHigh {
		tLow, tHigh = tHigh, tLow
	}
	e, err := it.cache.IceEOS(eos.IceSpec{
		Phase:       phase,
		P:           eos.Range{Min: pLow, Max: pHigh * 1.05, Steps: 80},
		T:           eos.Range{Min: tLow - 5, Max: tHigh + 15, Steps: 60},
		Porosity:    porosity,
		Extrapolate: cfg.Do.ExtrapIce,
	})
	if err != nil {
		return nil, zerr.Wrap(err, "building "+phase.String()+" EOS")
	}
	return e, nil
}

// clathrateLid fills the insulating clathrate layers between the surface
// and the dissociation pressure matching the assumed lid bottom
// temperature.
func (it *Integrator) clathrateLid(p *Profile) error {
	cfg := it.cfg
	pb, err := eos.ClathDissocPressure(cfg.Bulk.TbClathK, cfg.Ocean.PHydroMaxMPa)
	if err != nil {
		return zerr.Wrap(err, "clathrate lid bottom pressure")
	}
	p.PbClathMPa = pb
	clath, err := it.iceEOS(eos.Clathrate, cfg.Bulk.PsurfMPa, pb, cfg.Bulk.TsurfK, cfg.Bulk.TbClathK)
	if err != nil {
		return err
	}
	return it.conductiveShell(p, clath, 0, p.NClath, cfg.Bulk.PsurfMPa, pb, cfg.Bulk.TsurfK, cfg.Bulk.TbClathK, eos.Clathrate)
}

// conductiveShell assigns a linear pressure grid and melting-anchored
// conductive temperature profile between layers iTop and iBot, queries
// the shell EOS for material properties, and integrates the hydrostatic
// structure. The layer at iBot carries the transition-state values so the
// next region starts from them.
func (it *Integrator) conductiveShell(p *Profile, ice *eos.EOS, iTop, iBot int, pTop, pBot, tTop, tBot float64, phase eos.Phase) error {
	cfg := it.cfg
	n := iBot - iTop
	for k := 0; k <= n; k++ {
		frac := float64(k) / float64(n)
		// Conductive profile anchored to the melting temperature at the
		// shell base: T = Tb^f * Ttop^(1-f) with f the fractional pressure
		// through the shell.
		p.P[iTop+k] = pTop + (pBot-pTop)*frac
		p.T[iTop+k] = math.Pow(tBot, frac) * math.Pow(tTop, 1-frac)
	}
	for k := iTop; k < iBot; k++ {
		if err := queryState(p, ice, k); err != nil {
			return zerr.Wrap(err, phase.String()+" shell properties")
		}
		p.Phase[k] = phase
		if cfg.Do.PorousIce {
			p.Phi[k] = cfg.Ocean.PorosityIce
		}
	}
	mAbove := p.MassAbove(iTop)
	for i := iTop + 1; i <= iBot; i++ {
		p.hydrostep(i, cfg.Bulk.RadiusM, cfg.Bulk.MassKg, &mAbove)
	}
	return nil
}

func queryState(p *Profile, e *eos.EOS, i int) error {
	var err error
	if p.Rho[i], err = e.Density(p.P[i], p.T[i]); err != nil {
		return err
	}
	if p.Cp[i], err = e.HeatCapacity(p.P[i], p.T[i]); err != nil {
		return err
	}
	if p.Alpha[i], err = e.Expansivity(p.P[i], p.T[i]); err != nil {
		return err
	}
	p.KTherm[i], err = e.Conductivity(p.P[i], p.T[i])
	return err
}

// convectWithRetry applies the convective correction to the shell between
// iTop and iBot and repeats it exactly once if the shell bottom depth
// moved by more than the configured fraction. The bounded retry keeps the
// profile near self-consistency without an open-ended fixed-point loop.
func (it *Integrator) convectWithRetry(p *Profile, ice *eos.EOS, iTop, iBot int, tBot float64, phase eos.Phase) error {
	zbOld := p.Z[iBot]
	if err := it.convectShell(p, ice, iTop, iBot, tBot, phase); err != nil {
		return err
	}
	if math.Abs(p.Z[iBot]-zbOld)/p.Z[iBot] > it.cfg.Tol.ZbChangeFrac {
		it.log.Debug("shell bottom moved past tolerance, re-running convection",
			"phase", phase.String(), "old_m", zbOld, "new_m", p.Z[iBot])
		return it.convectShell(p, ice, iTop, iBot, tBot, phase)
	}
	return nil
}

// convectShell replaces the conductive temperature profile of a shell
// with the stagnant-lid structure (conductive lid, well-mixed interior,
// basal boundary layer) when the Rayleigh number is super-critical, then
// re-evaluates properties and hydrostatic structure.
func (it *Integrator) convectShell(p *Profile, ice *eos.EOS, iTop, iBot int, tBot float64, phase eos.Phase) error {
	cfg := it.cfg
	zTop := p.Z[iTop]
	zb := p.Z[iBot] - zTop
	tTop := p.T[iTop]
	pMid := (p.P[iTop] + p.P[iBot]) / 2

	res, err := it.conv.Convect(ice, tTop, p.R[iTop], p.KTherm[iTop], tBot, zb, p.G[iTop], pMid, phase)
	if err != nil {
		return zerr.Wrap(err, "convection model")
	}
	p.QFromMantleW = res.QBot * 4 * math.Pi * p.R[iBot] * p.R[iBot]
	if res.LidThick >= zb {
		// Sub-critical: the whole shell stays conductive.
		return nil
	}

	for i := iTop; i <= iBot; i++ {
		zRel := p.Z[i] - zTop
		switch {
		case zRel < res.LidThick:
			p.T[i] = tTop + (res.TConv-tTop)*zRel/res.LidThick
		case zRel > zb-res.TBLThick:
			p.T[i] = res.TConv + (tBot-res.TConv)*(zRel-(zb-res.TBLThick))/res.TBLThick
		default:
			p.T[i] = res.TConv
		}
	}
	for i := iTop; i < iBot; i++ {
		if err := queryState(p, ice, i); err != nil {
			return zerr.Wrap(err, "post-convection properties")
		}
	}
	mAbove := p.MassAbove(iTop)
	for i := iTop + 1; i <= iBot; i++ {
		p.hydrostep(i, cfg.Bulk.RadiusM, cfg.Bulk.MassKg, &mAbove)
	}
	return nil
}

// underplate fills a high-pressure ice region between the ice shell above
// and the ocean below, anchored at its own assumed bottom temperature.
func (it *Integrator) underplate(p *Profile, ocean *eos.EOS, phase eos.Phase, tb float64, iTop, iBot int) error {
	cfg := it.cfg
	pb, err := eos.FindFreezePressure(ocean, phase, tb, eos.FreezeOpts{
		PLow:       p.P[iTop],
		PHigh:      cfg.Ocean.PHydroMaxMPa,
		Res:        cfg.Tol.FreezeResMPa,
		Underplate: eos.UnderplateOff,
	})
	if err != nil {
		return zerr.Wrap(err, "locating "+phase.String()+" underplate bottom pressure")
	}
	if pb < p.P[iTop] {
		return zerr.New(phase.String() + " bottom pressure is above the shell base: underplate bottom temperature set too high")
	}
	switch phase {
	case eos.IceIII:
		p.PbIIIMPa = pb
	case eos.IceV:
		p.PbVMPa = pb
	}

	ice, err := it.iceEOS(phase, p.P[iTop], pb, p.T[iTop], tb)
	if err != nil {
		return err
	}
	if err := it.conductiveShell(p, ice, iTop, iBot, p.P[iTop], pb, p.T[iTop], tb, phase); err != nil {
		return err
	}
	if !cfg.Do.NoIceConvection {
		return it.convectWithRetry(p, ice, iTop, iBot, tb, phase)
	}
	return nil
}

// oceanLayers steps from the ice shell base at a fixed pressure increment
// to the configured maximum. Liquid layers follow the adiabat; layers the
// classifier marks as high-pressure ice are pinned to the local melting
// curve, modeling two-phase convective mixing.
func (it *Integrator) oceanLayers(p *Profile, ocean *eos.EOS) error {
	cfg := it.cfg
	deltaP := cfg.OceanDeltaP()
	i0 := p.NSurfIce

	nOcean := 0
	for pk := p.PbMPa; pk < cfg.Ocean.PHydroMaxMPa && nOcean < cfg.Steps.NOcean; pk += deltaP {
		nOcean++
	}

	t := p.T[i0] // shell base temperature carries into the first ocean layer
	if cfg.Do.BottomIceIII || cfg.Do.BottomIceV {
		// A high-pressure underplate sits on the rising branch of its
		// liquidus, so the shell base temperature itself classifies on
		// the ice side of the boundary. The ocean top beneath it sits on
		// the melting curve.
		if ocean.PhaseAt(p.PbMPa, t) != eos.Liquid {
			tm, err := eos.FindFreezeTemperature(ocean, p.PbMPa, t, eos.MeltOpts{
				Range: cfg.Tol.MeltRangeK,
				Res:   cfg.Tol.MeltResK,
			})
			if err != nil {
				return zerr.Wrap(err, "melting temperature below the underplate")
			}
			t = tm
		}
	}
	for k := 0; k < nOcean; k++ {
		i := i0 + k
		pk := p.PbMPa + float64(k)*deltaP
		p.P[i] = pk
		p.T[i] = t
		ph := ocean.PhaseAt(pk, t)
		p.Phase[i] = ph

		if k == 0 && ph != eos.Liquid {
			err := zerr.Wrap(ErrPhaseAssignment, "ocean top classification")
			err = zerr.With(err, "p_MPa", pk)
			err = zerr.With(err, "t_K", t)
			return zerr.With(err, "phase", ph.String())
		}

		if ph == eos.Liquid {
			if err := queryState(p, ocean, i); err != nil {
				return zerr.Wrap(err, "ocean layer properties")
			}
			t += p.Alpha[i] * t / p.Cp[i] / p.Rho[i] * deltaP * 1e6
		} else {
			hpIce, err := it.iceEOS(ph, p.PbMPa, cfg.Ocean.PHydroMaxMPa, cfg.Ocean.THydroMinK, cfg.Ocean.THydroMaxK)
			if err != nil {
				return err
			}
			if err := queryState(p, hpIce, i); err != nil {
				return zerr.Wrap(err, "high-pressure ice properties")
			}
			t, err = eos.FindFreezeTemperature(ocean, pk, t, eos.MeltOpts{
				Range: cfg.Tol.MeltRangeK,
				Res:   cfg.Tol.MeltResK,
			})
			if err != nil {
				return zerr.Wrap(err, "melting curve in ocean")
			}
		}
	}

	mAbove := p.MassAbove(i0)
	for i := i0 + 1; i < i0+nOcean; i++ {
		p.hydrostep(i, cfg.Bulk.RadiusM, cfg.Bulk.MassKg, &mAbove)
	}
	p.truncate(i0 + nOcean)
	return nil
}
