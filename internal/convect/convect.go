// Package convect implements the Deschamps & Sotin (2001) scaling-law
// model for stagnant-lid convection in an ice shell. The parameterization
// was derived in Cartesian geometry with no internal heating, so it is an
// approximation for thick or tidally heated shells.
package convect

import (
	"log/slog"
	"math"

	"github.com/icyworlds/interior/internal/eos"
	"go.trai.ch/zerr"
)

const gasConstant = 8.314462 // J/(mol K)

// Scaling constants fit by Deschamps & Sotin (2000) in Cartesian geometry.
const (
	c1 = 1.43
	c2 = -0.03
)

// Creep activation energy in kJ/mol and melting-point viscosity in Pa s
// per ice phase tag.
var (
	eAct = map[eos.Phase]float64{
		eos.IceIh:  60,
		eos.IceII:  77,
		eos.IceIII: 127,
		eos.IceV:   136,
		eos.IceVI:  110,
	}
	etaMelt = map[eos.Phase]float64{
		eos.IceIh:  1e14,
		eos.IceII:  1e18,
		eos.IceIII: 5e12,
		eos.IceV:   5e14,
		eos.IceVI:  5e14,
	}
	// Conductive heat-flux fit constants used when the shell does not
	// convect, per phase tag.
	dCond = map[eos.Phase]float64{
		eos.IceIh:  632,
		eos.IceII:  418,
		eos.IceIII: 242,
		eos.IceV:   328,
		eos.IceVI:  183,
	}
)

// Result carries the convective state of an ice shell.
type Result struct {
	TConv    float64 // well-mixed interior temperature, K
	EtaConv  float64 // interior viscosity, Pa s
	LidThick float64 // stagnant conductive lid thickness, m
	TBLThick float64 // basal thermal boundary layer thickness, m
	QBot     float64 // heat flux entering the shell bottom, W/m^2
	Rayleigh float64
}

// Model evaluates shell convection against a critical Rayleigh number.
type Model struct {
	RaCrit float64
	Log    *slog.Logger
}

func New(raCrit float64, log *slog.Logger) *Model {
	if log == nil {
		log = slog.Default()
	}
	return &Model{RaCrit: raCrit, Log: log}
}

// Convect evaluates the scaling laws for a shell of phase-tagged ice with
// top temperature tTop at radius rTop, bottom (melting) temperature tBot,
// thickness zb, and mid-shell pressure pMid. Ice properties at the
// convective interior temperature come from ice. When the Rayleigh number
// is sub-critical the returned lid and boundary-layer thicknesses span the
// whole shell, forcing the caller to keep a conductive profile.
func (m *Model) Convect(ice *eos.EOS, tTop, rTop, kTop, tBot, zb, gTop, pMid float64, phase eos.Phase) (Result, error) {
	ea, ok := eAct[phase]
	if !ok {
		return Result{}, zerr.New("no creep parameters for phase " + phase.String())
	}
	a := ea * 1e3 / gasConstant / tBot
	b := ea * 1e3 / 2 / gasConstant / c1
	c := c2 * (tBot - tTop)

	tConv := b * (math.Sqrt(1+2/b*(tBot-c)) - 1)
	etaConv := etaMelt[phase] * math.Exp(a*(tBot/tConv-1))

	alphaMid, err := ice.Expansivity(pMid, tConv)
	if err != nil {
		return Result{}, zerr.Wrap(err, "mid-shell expansivity")
	}
	rhoMid, err := ice.Density(pMid, tConv)
	if err != nil {
		return Result{}, zerr.Wrap(err, "mid-shell density")
	}
	cpMid, err := ice.HeatCapacity(pMid, tConv)
	if err != nil {
		return Result{}, zerr.Wrap(err, "mid-shell heat capacity")
	}
	kMid, err := ice.Conductivity(pMid, tConv)
	if err != nil {
		return Result{}, zerr.Wrap(err, "mid-shell conductivity")
	}

	ra := alphaMid * cpMid * rhoMid * rhoMid * gTop * (tBot - tTop) * zb * zb * zb / etaConv / kMid
	// Boundary-layer Rayleigh number from the Deschamps & Sotin (2000)
	// parameterization.
	raDelta := 0.28 * math.Pow(ra, 0.21)
	tbl := math.Cbrt(etaConv * kMid * raDelta /
		alphaMid / cpMid / rhoMid / rhoMid / gTop / (tBot - tConv))
	qBot := kMid * (tBot - tConv) / tbl
	qTop := (rTop - zb) * (rTop - zb) / rTop / rTop * qBot
	lid := kTop * (tConv - tTop) / qTop

	res := Result{TConv: tConv, EtaConv: etaConv, LidThick: lid, TBLThick: tbl, QBot: qBot, Rayleigh: ra}

	if ra < m.RaCrit {
		m.Log.Info("sub-critical Rayleigh number, shell stays conductive",
			"rayleigh", ra, "critical", m.RaCrit, "phase", phase.String())
		res.QBot = dCond[phase] * math.Log(tBot/tTop) / zb
		res.LidThick = zb
		res.TBLThick = zb
	}
	return res, nil
}
