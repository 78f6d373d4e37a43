package body

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := Europa()
	cfg.Do.Clathrate = true
	cfg.Bulk.TbClathK = 261.5

	path := filepath.Join(t.TempDir(), "europa.yaml")
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadAppliesDefaults(t *testing.T) {
	// A minimal file inherits defaults for everything it omits.
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	minimal := `
name: test-body
bulk:
  radius_m: 1.0e6
  mass_kg: 1.0e22
  tb_k: 260
`
	require.NoError(t, writeFile(path, minimal))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-body", cfg.Name)
	assert.Equal(t, 110.0, cfg.Bulk.TsurfK)
	assert.Equal(t, "PureWater", cfg.Ocean.Comp)
	assert.Equal(t, 350, cfg.Steps.NOcean)
	assert.Equal(t, DefaultRaCrit, cfg.Tol.RaCrit)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing mass", "name: x\nbulk:\n  radius_m: 1.0e6\n  tb_k: 260\n"},
		{"cold bottom", "name: x\nbulk:\n  radius_m: 1.0e6\n  mass_kg: 1.0e22\n  tb_k: 100\n"},
		{"bad steps", "name: x\nbulk:\n  radius_m: 1.0e6\n  mass_kg: 1.0e22\n  tb_k: 260\nsteps:\n  n_ice_i: 1\n"},
		{"not yaml", "{{{"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, writeFile(path, tc.yaml))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSurfaceGravity(t *testing.T) {
	cfg := Europa()
	assert.InDelta(t, 1.315, cfg.SurfaceGravity(), 0.01)
}

func TestOceanDeltaP(t *testing.T) {
	cfg := Europa()
	assert.InDelta(t, (350.0-0.1)/350.0, cfg.OceanDeltaP(), 1e-12)
}

func TestMixedDensity(t *testing.T) {
	cc := CoreConfig{RhoFeKgM3: 8000, RhoFeSKgM3: 5150, XFeS: 0.55}
	// Volume-additive mixing lands between the end members.
	got := cc.MixedDensity()
	assert.InDelta(t, 6133, got, 5)

	cc.XFeS = 0
	assert.Equal(t, 8000.0, cc.MixedDensity())
}

func TestPresets(t *testing.T) {
	for name, mk := range Presets {
		t.Run(name, func(t *testing.T) {
			cfg := mk()
			assert.NoError(t, cfg.Validate())
		})
	}

	hp := EuropaColdHP()
	assert.True(t, hp.Do.BottomIceIII)
	assert.False(t, hp.Do.ConstantInnerDensity)
	assert.Less(t, hp.Bulk.TbK, Europa().Bulk.TbK)
	assert.Less(t, hp.Bulk.TbK, hp.Bulk.TbIIIK,
		"underplated shells freeze colder than the ice III bottom")
}
