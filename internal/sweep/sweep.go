// Package sweep evaluates body configurations, singly or as a parallel
// batch over configuration variants.
package sweep

import (
	"context"
	"log/slog"

	"github.com/icyworlds/interior/internal/body"
	"github.com/icyworlds/interior/internal/eos"
	"github.com/icyworlds/interior/internal/layers"
	"github.com/icyworlds/interior/internal/moi"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one body-model evaluation. Err is set when the
// evaluation failed; a failed evaluation never aborts the rest of a
// batch.
type Result struct {
	Name    string
	Profile *layers.Profile
	Match   *moi.Match
	Err     error
}

// Evaluate runs one full evaluation with a fresh cache.
func Evaluate(cfg *body.Config, conv layers.ConvectionModel, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	return EvaluateWithCache(cfg, eos.NewCache(log), conv, log)
}

// EvaluateWithCache runs hydrosphere integration followed by interior
// matching against the given cache. Callers reusing one cache across
// evaluations must serialize them; the batch runner instead gives each
// evaluation its own cache.
func EvaluateWithCache(cfg *body.Config, cache *eos.Cache, conv layers.ConvectionModel, log *slog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, zerr.Wrap(err, "configuration")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("body", cfg.Name)

	hydro, err := layers.NewIntegrator(cfg, cache, conv, log).Hydrosphere()
	if err != nil {
		return nil, zerr.Wrap(err, "hydrosphere integration")
	}
	log.Info("hydrosphere complete",
		"layers", hydro.Len(), "pb_MPa", hydro.PbMPa, "pb_i_MPa", hydro.PbIMPa)

	merged, match, err := moi.NewMatcher(cfg, cache, log).Run(hydro)
	if err != nil {
		return nil, zerr.Wrap(err, "interior matching")
	}
	if err := merged.Validate(); err != nil {
		return nil, zerr.Wrap(err, "merged profile")
	}
	return &Result{Name: cfg.Name, Profile: merged, Match: match}, nil
}

// Run evaluates a batch of configurations on up to workers goroutines.
// Each evaluation gets its own cache, so no locking is shared across
// workers. Per-evaluation failures land in the matching Result; Run only
// returns an error when the context is cancelled.
func Run(ctx context.Context, cfgs []*body.Config, workers int, log *slog.Logger) ([]*Result, error) {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	results := make([]*Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Evaluate(cfg, nil, log)
			if err != nil {
				log.Error("evaluation failed", "body", cfg.Name, "err", err)
				results[i] = &Result{Name: cfg.Name, Err: err}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
