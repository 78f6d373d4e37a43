// Package body holds the per-body configuration record: bulk observables,
// hydrosphere and interior assumptions, layer step counts, and run
// toggles. Values are yaml round-trippable so sweep drivers can persist
// variants.
package body

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFreezeLowerMPa = 5.0
	DefaultFreezeUpperMPa = 300.0
	DefaultFreezeResMPa   = 0.1
	DefaultMeltRangeK     = 50.0
	DefaultMeltResK       = 0.05
	DefaultRaCrit         = 1e5
)

type Config struct {
	Name  string      `yaml:"name"`
	Bulk  BulkConfig  `yaml:"bulk"`
	Ocean OceanConfig `yaml:"ocean"`
	Sil   SilConfig   `yaml:"silicate"`
	Core  CoreConfig  `yaml:"core"`
	Steps StepsConfig `yaml:"steps"`
	Do    Toggles     `yaml:"do"`
	Tol   Tolerances  `yaml:"tolerances"`
}

// BulkConfig carries the measured bulk observables and the assumed
// boundary temperatures of the model.
type BulkConfig struct {
	RadiusM      float64 `yaml:"radius_m"`
	MassKg       float64 `yaml:"mass_kg"`
	TsurfK       float64 `yaml:"tsurf_k"`
	PsurfMPa     float64 `yaml:"psurf_mpa"`
	TbK          float64 `yaml:"tb_k"`      // assumed ice I bottom (melting) temperature
	TbIIIK       float64 `yaml:"tbiii_k"`   // ice III underplate bottom temperature
	TbVK         float64 `yaml:"tbv_k"`     // ice V underplate bottom temperature
	TbClathK     float64 `yaml:"tbclath_k"` // clathrate lid bottom temperature
	CMeasured    float64 `yaml:"c_measured"`
	CUncertainty float64 `yaml:"c_uncertainty"`
}

type OceanConfig struct {
	Comp         string  `yaml:"comp"`
	WPpt         float64 `yaml:"w_ppt"`
	ElecModel    string  `yaml:"elec_model"`
	PHydroMaxMPa float64 `yaml:"p_hydro_max_mpa"`
	THydroMaxK   float64 `yaml:"t_hydro_max_k"`
	THydroMinK   float64 `yaml:"t_hydro_min_k"`
	PorosityIce  float64 `yaml:"porosity_ice"`
}

type SilConfig struct {
	RhoConstKgM3 float64 `yaml:"rho_const_kgm3"` // constant-density mode mantle density
	RhoRefKgM3   float64 `yaml:"rho_ref_kgm3"`   // EOS reference density
	BulkModMPa   float64 `yaml:"bulk_mod_mpa"`
	KThermWmK    float64 `yaml:"ktherm_wmk"`
	CpJkgK       float64 `yaml:"cp_jkgk"`
	AlphaPerK    float64 `yaml:"alpha_perk"`
	QRadWkg      float64 `yaml:"qrad_wkg"`
	HTidalWm3    float64 `yaml:"htidal_wm3"`
	PMaxMPa      float64 `yaml:"p_max_mpa"`
	TMaxK        float64 `yaml:"t_max_k"`
}

type CoreConfig struct {
	FeCore       bool    `yaml:"fe_core"`
	RhoFeKgM3    float64 `yaml:"rho_fe_kgm3"`
	RhoFeSKgM3   float64 `yaml:"rho_fes_kgm3"`
	XFeS         float64 `yaml:"x_fes"`
	RhoMinKgM3   float64 `yaml:"rho_min_kgm3"` // minimum plausible density bounding max core size
	BulkModMPa   float64 `yaml:"bulk_mod_mpa"`
	KThermWmK    float64 `yaml:"ktherm_wmk"`
	CpJkgK       float64 `yaml:"cp_jkgk"`
	AlphaPerK    float64 `yaml:"alpha_perk"`
	PMaxMPa      float64 `yaml:"p_max_mpa"`
	TMaxK        float64 `yaml:"t_max_k"`
}

type StepsConfig struct {
	NClath    int `yaml:"n_clath"`
	NIceI     int `yaml:"n_ice_i"`
	NIceIII   int `yaml:"n_ice_iii"`
	NIceV     int `yaml:"n_ice_v"`
	NOcean    int `yaml:"n_ocean"`
	NSilMax   int `yaml:"n_sil_max"`
	NCore     int `yaml:"n_core"`
	ISilStart int `yaml:"i_sil_start"` // first hydrosphere index eligible as a mantle top
}

type Toggles struct {
	Clathrate            bool `yaml:"clathrate"`
	NoIceConvection      bool `yaml:"no_ice_convection"`
	BottomIceIII         bool `yaml:"bottom_ice_iii"`
	BottomIceV           bool `yaml:"bottom_ice_v"`
	ConstantInnerDensity bool `yaml:"constant_inner_density"`
	PorousIce            bool `yaml:"porous_ice"`
	ExtrapOcean          bool `yaml:"extrap_ocean"`
	ExtrapIce            bool `yaml:"extrap_ice"`
	ExtrapInner          bool `yaml:"extrap_inner"`
}

type Tolerances struct {
	FreezeLowerMPa  float64 `yaml:"freeze_lower_mpa"`
	FreezeUpperMPa  float64 `yaml:"freeze_upper_mpa"`
	FreezeResMPa    float64 `yaml:"freeze_res_mpa"`
	MeltRangeK      float64 `yaml:"melt_range_k"`
	MeltResK        float64 `yaml:"melt_res_k"`
	ZbChangeFrac    float64 `yaml:"zb_change_frac"` // re-run convection when the shell bottom moves more than this
	RaCrit          float64 `yaml:"ra_crit"`
	MassMatchFrac   float64 `yaml:"mass_match_frac"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "unnamed",
		Bulk: BulkConfig{
			TsurfK:   110,
			PsurfMPa: 0.1,
		},
		Ocean: OceanConfig{
			Comp:         "PureWater",
			PHydroMaxMPa: 300,
			THydroMaxK:   320,
			THydroMinK:   220,
		},
		Steps: StepsConfig{
			NClath:    0,
			NIceI:     200,
			NIceIII:   50,
			NIceV:     50,
			NOcean:    350,
			NSilMax:   500,
			NCore:     10,
			ISilStart: 1,
		},
		Tol: Tolerances{
			FreezeLowerMPa: DefaultFreezeLowerMPa,
			FreezeUpperMPa: DefaultFreezeUpperMPa,
			FreezeResMPa:   DefaultFreezeResMPa,
			MeltRangeK:     DefaultMeltRangeK,
			MeltResK:       DefaultMeltResK,
			ZbChangeFrac:   0.05,
			RaCrit:         DefaultRaCrit,
			MassMatchFrac:  0.05,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Bulk.RadiusM <= 0 || c.Bulk.MassKg <= 0 {
		return fmt.Errorf("bulk radius and mass must be positive")
	}
	if c.Bulk.TbK <= c.Bulk.TsurfK {
		return fmt.Errorf("bottom temperature %.1f K must exceed surface temperature %.1f K",
			c.Bulk.TbK, c.Bulk.TsurfK)
	}
	if c.Ocean.PHydroMaxMPa <= c.Bulk.PsurfMPa {
		return fmt.Errorf("hydrosphere max pressure must exceed surface pressure")
	}
	if c.Steps.NIceI < 2 || c.Steps.NOcean < 1 {
		return fmt.Errorf("ice and ocean step counts too small: %d, %d", c.Steps.NIceI, c.Steps.NOcean)
	}
	if c.Steps.ISilStart < 1 {
		return fmt.Errorf("i_sil_start must be at least 1")
	}
	return nil
}

// SurfaceGravity is g at the body surface from the bulk observables.
func (c *Config) SurfaceGravity() float64 {
	const G = 6.674e-11
	return G * c.Bulk.MassKg / (c.Bulk.RadiusM * c.Bulk.RadiusM)
}

// OceanDeltaP is the fixed ocean pressure step implied by the step count.
func (c *Config) OceanDeltaP() float64 {
	return (c.Ocean.PHydroMaxMPa - c.Bulk.PsurfMPa) / float64(c.Steps.NOcean)
}

// MixedDensity is the volume-additive density of the Fe/FeS core mix.
func (cc *CoreConfig) MixedDensity() float64 {
	if cc.XFeS <= 0 {
		return cc.RhoFeKgM3
	}
	return 1 / (cc.XFeS/cc.RhoFeSKgM3 + (1-cc.XFeS)/cc.RhoFeKgM3)
}
