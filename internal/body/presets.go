package body

// Presets carry ready-to-run configurations for well-studied bodies.
// Values follow published bulk constraints; the europa preset matches the
// Galileo-era C/MR^2 of 0.346 +/- 0.005.
var Presets = map[string]func() *Config{
	"europa":    Europa,
	"europa-hp": EuropaColdHP,
}

// Europa is a salty-ocean configuration with an iron core and
// constant-density interior matching.
func Europa() *Config {
	cfg := DefaultConfig()
	cfg.Name = "Europa"
	cfg.Bulk = BulkConfig{
		RadiusM:      1.561e6,
		MassKg:       4.80e22,
		TsurfK:       110,
		PsurfMPa:     0.1,
		TbK:          269.8,
		TbIIIK:       253.0,
		TbVK:         258.0,
		TbClathK:     262.0,
		CMeasured:    0.346,
		CUncertainty: 0.005,
	}
	cfg.Ocean = OceanConfig{
		Comp:         "MgSO4",
		WPpt:         100,
		ElecModel:    "Vance2018",
		PHydroMaxMPa: 350,
		THydroMaxK:   330,
		THydroMinK:   220,
	}
	cfg.Sil = SilConfig{
		RhoConstKgM3: 3539,
		RhoRefKgM3:   3300,
		BulkModMPa:   1.3e5,
		KThermWmK:    4,
		CpJkgK:       1200,
		AlphaPerK:    2.4e-5,
		QRadWkg:      5.33e-12,
		HTidalWm3:    0,
		PMaxMPa:      9000,
		TMaxK:        2000,
	}
	cfg.Core = CoreConfig{
		FeCore:     true,
		RhoFeKgM3:  8000,
		RhoFeSKgM3: 5150,
		XFeS:       0.55,
		RhoMinKgM3: 5150,
		BulkModMPa: 1.6e5,
		KThermWmK:  30,
		CpJkgK:     800,
		AlphaPerK:  1.2e-5,
		PMaxMPa:    2e4,
		TMaxK:      2500,
	}
	cfg.Steps = StepsConfig{
		NIceI:     200,
		NIceIII:   50,
		NIceV:     50,
		NOcean:    350,
		NSilMax:   500,
		NCore:     10,
		ISilStart: 1,
	}
	cfg.Do.ConstantInnerDensity = true
	return cfg
}

// EuropaColdHP is the cold-shell variant with ice III/V underplating and
// EOS-consistent interior matching.
func EuropaColdHP() *Config {
	cfg := Europa()
	cfg.Name = "Europa (cold, HP ices)"
	cfg.Bulk.TbK = 252.0
	cfg.Do.BottomIceIII = true
	cfg.Do.ConstantInnerDensity = false
	return cfg
}
