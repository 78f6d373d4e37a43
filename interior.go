// Package interior models the internal structure of icy ocean worlds.
// It builds a radial layer profile from the surface inward: conductive
// (optionally convecting) ice shell, adiabatic ocean with high-pressure
// ice, then a silicate mantle and iron core sized to reproduce the
// measured moment-of-inertia factor.
package interior

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/icyworlds/interior/internal/body"
	"github.com/icyworlds/interior/internal/export"
	"github.com/icyworlds/interior/internal/layers"
	"github.com/icyworlds/interior/internal/moi"
	"github.com/icyworlds/interior/internal/sweep"
)

// Re-exported model types. Config is the yaml-round-trippable body
// description; Profile the radial layer stack; Match the
// moment-of-inertia search summary.
type (
	Config  = body.Config
	Profile = layers.Profile
	Match   = moi.Match
	Result  = sweep.Result
)

// DefaultConfig returns a configuration with only the body-independent
// fields filled; bulk radius, mass, and temperatures must be set.
func DefaultConfig() *Config { return body.DefaultConfig() }

// LoadConfig reads and validates a yaml configuration file.
func LoadConfig(path string) (*Config, error) { return body.Load(path) }

// SaveConfig writes a configuration back to disk.
func SaveConfig(path string, cfg *Config) error { return body.Save(path, cfg) }

// Presets lists the built-in body configurations.
func Presets() []string {
	names := make([]string, 0, len(body.Presets))
	for name := range body.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of a built-in configuration.
func Preset(name string) (*Config, error) {
	mk, ok := body.Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown body preset %q (have %v)", name, Presets())
	}
	return mk(), nil
}

// Evaluate runs one full model evaluation: hydrosphere integration
// followed by interior matching.
func Evaluate(cfg *Config, log *slog.Logger) (*Result, error) {
	return sweep.Evaluate(cfg, nil, log)
}

// EvaluateAll evaluates a batch of configurations on up to workers
// goroutines. Per-configuration failures are reported in the matching
// Result rather than aborting the batch.
func EvaluateAll(ctx context.Context, cfgs []*Config, workers int, log *slog.Logger) ([]*Result, error) {
	return sweep.Run(ctx, cfgs, workers, log)
}

// WriteProfile serializes an evaluated profile as indented JSON.
func WriteProfile(w io.Writer, res *Result) error {
	return export.WriteJSON(w, res.Name, res.Profile, res.Match)
}

// ExportProfile writes an evaluated profile to a JSON file.
func ExportProfile(path string, res *Result) error {
	return export.ExportJSON(path, res.Name, res.Profile, res.Match)
}
