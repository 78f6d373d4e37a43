package eos

import (
	"math"

	"go.trai.ch/zerr"
)

// UnderplateMode selects which phase-shift objective the freeze-pressure
// search uses. Auto tries the underplate objective first and falls back
// to the plain one; that ordering mirrors the legacy search policy and is
// a policy choice, not a physical necessity.
type UnderplateMode int

const (
	UnderplateAuto UnderplateMode = iota
	UnderplateOn
	UnderplateOff
)

// FreezeOpts configures FindFreezePressure. The bracket must straddle
// exactly one phase boundary of the classifier.
type FreezeOpts struct {
	PLow       float64 // bracket lower bound, MPa
	PHigh      float64 // bracket upper bound, MPa
	Res        float64 // pressure resolution, MPa
	Underplate UnderplateMode
	Lenient    bool // return NaN instead of an error when no boundary is found
}

// phaseShiftObjective is the scalar objective whose sign flips across a
// phase boundary at fixed temperature. The plain form crosses where the
// classifier moves to a lower-valued phase (ice to liquid); the
// underplate form crosses where it moves to a higher-valued one (ice I to
// a high-pressure polymorph).
type phaseShiftObjective struct {
	eos        *EOS
	topPhase   Phase
	tK         float64
	underplate bool
}

func (o phaseShiftObjective) at(pMPa float64) float64 {
	d := float64(o.topPhase - o.eos.PhaseAt(pMPa, o.tK))
	if o.underplate {
		return 0.5 + d
	}
	return 0.5 - d
}

// FindFreezePressure returns the pressure at which the classifier leaves
// topPhase along the fixed-temperature line tbK, nudged a fifth of a
// resolution step past the boundary so the result lands on the far side.
func FindFreezePressure(e *EOS, topPhase Phase, tbK float64, opts FreezeOpts) (float64, error) {
	if opts.Res <= 0 {
		opts.Res = 0.1
	}
	obj := phaseShiftObjective{eos: e, topPhase: topPhase, tK: tbK}

	// The classifier is a step function, so the bisection converges onto
	// the discontinuity; resolve it far below Res so the Res/5 nudge is
	// guaranteed to clear the boundary.
	tol := opts.Res * 1e-3

	tryUnderplate := opts.Underplate != UnderplateOff
	if tryUnderplate {
		obj.underplate = true
		if root, ok := bisect(obj.at, opts.PLow, opts.PHigh, tol); ok {
			return root + opts.Res/5, nil
		}
		if opts.Underplate == UnderplateOn {
			err := zerr.Wrap(ErrNoUnderplatePressure, "no boundary crossing in bracket")
			err = zerr.With(err, "tb_K", tbK)
			err = zerr.With(err, "top_phase", topPhase.String())
			return freezeFail(opts.Lenient, err)
		}
	}
	obj.underplate = false
	if root, ok := bisect(obj.at, opts.PLow, opts.PHigh, tol); ok {
		return root + opts.Res/5, nil
	}
	err := zerr.Wrap(ErrNoFreezePressure, "no boundary crossing in bracket")
	err = zerr.With(err, "tb_K", tbK)
	err = zerr.With(err, "top_phase", topPhase.String())
	err = zerr.With(err, "p_high_MPa", opts.PHigh)
	return freezeFail(opts.Lenient, err)
}

// MeltOpts configures FindFreezeTemperature.
type MeltOpts struct {
	Range float64 // search window above the query temperature, K
	Res   float64 // temperature resolution, K
}

// FindFreezeTemperature returns the next higher-temperature phase
// boundary at fixed pressure, i.e. the local melting temperature of the
// phase found at (P, T).
func FindFreezeTemperature(e *EOS, pMPa, tK float64, opts MeltOpts) (float64, error) {
	if opts.Range <= 0 {
		opts.Range = 50
	}
	if opts.Res <= 0 {
		opts.Res = 0.05
	}
	topPhase := e.PhaseAt(pMPa, tK)
	f := func(t float64) float64 {
		return 0.5 - float64(topPhase-e.PhaseAt(pMPa, t))
	}
	root, ok := bisect(f, tK, tK+opts.Range, opts.Res*1e-3)
	if !ok {
		err := zerr.Wrap(ErrNoFreezeTemperature, "no melting point in window")
		err = zerr.With(err, "p_MPa", pMPa)
		err = zerr.With(err, "t_K", tK)
		err = zerr.With(err, "range_K", opts.Range)
		return math.NaN(), err
	}
	return root + opts.Res/5, nil
}

// ClathDissocPressure returns the clathrate lid bottom pressure
// consistent with lid bottom temperature tbK, from the dissociation
// curve branch containing tbK.
func ClathDissocPressure(tbK float64, pMaxMPa float64) (float64, error) {
	var f func(float64) float64
	var lo, hi float64
	if tbK < 273 {
		f = func(p float64) float64 { return tbK - clathDissocLower(p) }
		lo, hi = 1e-4, pClathBranch
	} else {
		f = func(p float64) float64 { return tbK - clathDissocUpper(p) }
		lo, hi = pClathBranch, pMaxMPa
	}
	root, ok := bisect(f, lo, hi, 1e-4)
	if !ok {
		err := zerr.Wrap(ErrNoFreezePressure, "clathrate dissociation curve out of range")
		return math.NaN(), zerr.With(err, "tb_K", tbK)
	}
	return root, nil
}

func freezeFail(lenient bool, err error) (float64, error) {
	if lenient {
		return math.NaN(), nil
	}
	return math.NaN(), err
}

// bisect finds a sign change of f inside [lo, hi] to within tol. The
// bracket endpoints must differ in sign; a bracket with no crossing
// reports ok=false rather than iterating forever.
func bisect(f func(float64) float64, lo, hi, tol float64) (float64, bool) {
	flo := f(lo)
	fhi := f(hi)
	if flo == 0 {
		return lo, true
	}
	if fhi == 0 {
		return hi, true
	}
	if flo*fhi > 0 {
		return 0, false
	}
	for hi-lo > tol {
		mid := 0.5 * (lo + hi)
		fm := f(mid)
		if fm == 0 {
			return mid, true
		}
		if flo*fm < 0 {
			hi = mid
		} else {
			lo = mid
			flo = fm
		}
	}
	return 0.5 * (lo + hi), true
}
