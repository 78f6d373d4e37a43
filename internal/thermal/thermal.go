// Package thermal provides closed-form thermal laws for conductive
// planetary shells: the spherical steady-conduction profile step and
// published ice conductivity and silicate solidus parameterizations.
package thermal

import (
	"fmt"
	"math"
)

// ConductiveTemperature steps a purely conductive spherical shell from
// its top radius to its bottom radius. The profile follows the steady
// conduction solution T = -rho*H/6/k * r^2 + c1/r + c2 with internal
// heating from radiogenic (W/kg) and tidal (W/m^3) sources, parameterized
// by the heat flux leaving the top of the shell. Returns the bottom
// temperature and the heat flux entering the bottom.
func ConductiveTemperature(tTop, rTop, rBot, kTherm, rho, qRad, hTidal, qTop float64) (float64, float64) {
	qTot := qRad + hTidal/rho
	c1 := qTop*rTop*rTop/kTherm - rho*qTot/3/kTherm*rTop*rTop*rTop
	tBot := tTop + rho*qTot/6/kTherm*(rTop*rTop-rBot*rBot) + c1*(1/rBot-1/rTop)
	qBot := rho*qTot/3*rBot + kTherm/rBot/rBot*c1
	return tBot, qBot
}

// Andersson & Inaba (2005) fit coefficients per ice phase, isobaric form
// k = D * T^-X. Indexed by phase tag; II uses index 2, III index 3, V
// index 5, VI index 6.
var condIsobaric = map[int][2]float64{
	1: {630, 0.995},
	2: {695, 1.097},
	3: {93.2, 0.822},
	5: {38.0, 0.612},
	6: {50.9, 0.612},
}

// CondIsobaric is the thermal conductivity of an ice phase at fixed
// pressure as a function of temperature, after Andersson & Inaba (2005).
func CondIsobaric(tK float64, phase int) (float64, error) {
	c, ok := condIsobaric[phase]
	if !ok {
		return 0, fmt.Errorf("no isobaric conductivity fit for ice phase %d", phase)
	}
	return c[0] * math.Pow(tK, -c[1]), nil
}

var condIsothermal = map[int][2]float64{
	1: {1.60, -0.44},
	2: {1.25, 0.2},
	3: {-0.02, 0.2},
	5: {0.16, 0.2},
	6: {0.37, 0.16},
}

// CondIsothermal is the thermal conductivity of an ice phase at fixed
// temperature as a function of pressure, after Andersson & Inaba (2005).
// The 1e-3 factor converts the fit's 1/GPa units.
func CondIsothermal(pMPa float64, phase int) (float64, error) {
	c, ok := condIsothermal[phase]
	if !ok {
		return 0, fmt.Errorf("no isothermal conductivity fit for ice phase %d", phase)
	}
	return math.Exp(c[0] + c[1]*pMPa*1e-3), nil
}

// CondMelinder2007 is the thermal conductivity of ice Ih near the melting
// temperature after Melinder (2007).
func CondMelinder2007(tK, tMeltK float64) float64 {
	const (
		k0   = 2.21   // W/(m K) at the melting temperature
		dkdT = -0.012 // W/(m K^2)
	)
	return k0 + dkdT*(tK-tMeltK)
}

// SolidusHirschmann2000 is the silicate solidus temperature
// parameterization of Hirschmann (2000).
func SolidusHirschmann2000(pMPa float64) float64 {
	const (
		a  = -5.104
		b  = 132.899
		c  = 1120.661
		t0 = 273.15
	)
	pGPa := pMPa * 1e-3
	return a*pGPa*pGPa + b*pGPa + c + t0
}
