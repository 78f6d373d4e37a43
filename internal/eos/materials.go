package eos

import (
	"math"

	"github.com/icyworlds/interior/internal/thermal"
)

// Triple-point pressures separating the stable ice polymorphs along the
// melting curve, in MPa.
const (
	pIhIII = 209.9
	pIIIV  = 350.1
	pVVI   = 632.4
)

// MeltTemp is the melting temperature of the water-ice system at pressure
// pMPa for a solution carrying wPpt grams of solute per kg. The pure-water
// curve is a piecewise fit to the Ih/III/V/VI melting lines; dissolved
// salts depress it linearly.
func MeltTemp(pMPa, wPpt float64) float64 {
	var tm float64
	switch {
	case pMPa < pIhIII:
		// Ice Ih liquidus falls from 273.15 K at 0.1 MPa to 251.15 K at
		// the Ih/III triple point.
		tm = 273.15 - 0.0155*pMPa - 4.26e-4*pMPa*pMPa
	case pMPa < pIIIV:
		tm = 251.15 + (pMPa-pIhIII)*(256.16-251.15)/(pIIIV-pIhIII)
	case pMPa < pVVI:
		tm = 256.16 + (pMPa-pIIIV)*(273.31-256.16)/(pVVI-pIIIV)
	default:
		tm = 273.31 + 0.052*(pMPa-pVVI)
	}
	return tm - 0.025*wPpt
}

// stablePhase classifies (P, T) for an aqueous system: liquid above the
// melting curve, otherwise the polymorph stable at that pressure.
func stablePhase(pMPa, tK, wPpt float64) Phase {
	if tK > MeltTemp(pMPa, wPpt) {
		return Liquid
	}
	switch {
	case pMPa < pIhIII:
		return IceIh
	case pMPa < pIIIV:
		return IceIII
	case pMPa < pVVI:
		return IceV
	default:
		return IceVI
	}
}

// Liquid solution properties. The density law combines a salinity offset
// with linear compressibility about the 2.2 GPa bulk modulus of water and
// thermal expansion about the density maximum.
func liquidRho(pMPa, tK, wPpt float64) float64 {
	const bulkModMPa = 2200
	rho0 := 1000.0 + 0.80*wPpt
	return rho0 * (1 + pMPa/bulkModMPa) * (1 - 2.1e-4*(tK-277.0))
}

func liquidCp(tK, wPpt float64) float64 {
	return 4180 - 0.9*wPpt - 0.3*(tK-273.15)
}

func liquidAlpha(pMPa, tK float64) float64 {
	// Expansivity grows away from the density-maximum temperature and is
	// suppressed with pressure; floored to keep adiabats well-posed.
	a := 1.0e-4 + 2.2e-6*(tK-250.0) - 3.0e-8*pMPa
	if a < 1e-5 {
		a = 1e-5
	}
	return a
}

func liquidKTherm(tK float64) float64 {
	return 0.55 + 1.6e-3*(tK-250.0)
}

// Zero-pressure densities of the solid phases in kg/m^3.
var solidRho0 = map[Phase]float64{
	IceIh:     917,
	IceII:     1170,
	IceIII:    1140,
	IceV:      1230,
	IceVI:     1310,
	Clathrate: 930,
}

func solidRho(phase Phase, pMPa, tK float64) float64 {
	const bulkModMPa = 9000
	return solidRho0[phase] * (1 + pMPa/bulkModMPa) * (1 - 1.56e-4*(tK-250.0))
}

func solidCp(phase Phase, tK float64) float64 {
	if phase == Clathrate {
		// Clathrate hydrates run slightly above ice Ih.
		return 7.6*tK + 80
	}
	return 7.49 * tK
}

func solidAlpha(tK float64) float64 {
	return 1.56e-4 * tK / 250.0
}

func solidKTherm(phase Phase, pMPa, tK float64) float64 {
	if phase == Clathrate {
		// Clathrates are strong thermal insulators compared to ice Ih.
		return 0.5
	}
	k, err := thermal.CondIsobaric(tK, int(phase))
	if err != nil {
		k, _ = thermal.CondIsothermal(pMPa, int(IceVI))
	}
	return k
}

// Clathrate dissociation curve, lower and upper branches meeting at
// 2.567 MPa / 273 K. Used for the optional clathrate lid bottom pressure.
const pClathBranch = 2.567

func clathDissocLower(pMPa float64) float64 {
	return 273.0 + 16.0*math.Log(pMPa/pClathBranch)
}

func clathDissocUpper(pMPa float64) float64 {
	return 273.0 + 8.4*math.Log(pMPa/pClathBranch)
}

// clathStable reports whether methane clathrate is stable at (P, T),
// after the Sloan (1998) stability field.
func clathStable(pMPa, tK float64) bool {
	if pMPa < pClathBranch {
		return tK < clathDissocLower(pMPa)
	}
	return tK < clathDissocUpper(pMPa)
}
