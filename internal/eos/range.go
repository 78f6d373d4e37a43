package eos

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// Range describes one sampled axis of an EOS request: bounds plus sample
// count, from which the mean step follows.
type Range struct {
	Min   float64
	Max   float64
	Steps int
}

func (r Range) validate() error {
	if r.Max <= r.Min {
		err := zerr.Wrap(ErrInvalidRange, "max must exceed min")
		err = zerr.With(err, "min", r.Min)
		return zerr.With(err, "max", r.Max)
	}
	if r.Steps < 2 {
		return zerr.With(zerr.Wrap(ErrInvalidRange, "need at least two samples"), "steps", r.Steps)
	}
	return nil
}

// Step is the mean sample spacing.
func (r Range) Step() float64 {
	return (r.Max - r.Min) / float64(r.Steps-1)
}

// Samples materializes the linearly spaced axis.
func (r Range) Samples() []float64 {
	out := make([]float64, r.Steps)
	for i := range out {
		out[i] = r.Min + r.Step()*float64(i)
	}
	out[r.Steps-1] = r.Max
	return out
}

// Contains reports whether o lies fully inside r's bounds.
func (r Range) Contains(o Range) bool {
	return o.Min >= r.Min && o.Max <= r.Max
}

// Union spans both ranges, keeping the finer mean step.
func (r Range) Union(o Range) Range {
	min := math.Min(r.Min, o.Min)
	max := math.Max(r.Max, o.Max)
	step := math.Min(r.Step(), o.Step())
	steps := int(math.Round((max-min)/step)) + 1
	if steps < 2 {
		steps = 2
	}
	return Range{Min: min, Max: max, Steps: steps}
}

// descriptor is the normalized cache identity of a request: min, max and
// mean step of both axes, digested with xxhash.
type descriptor struct {
	p Range
	t Range
}

func (d descriptor) digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, v := range []float64{d.p.Min, d.p.Max, d.p.Step(), d.t.Min, d.t.Max, d.t.Step()} {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (d descriptor) contains(o descriptor) bool {
	return d.p.Contains(o.p) && d.t.Contains(o.t)
}

func (d descriptor) union(o descriptor) descriptor {
	return descriptor{p: d.p.Union(o.p), t: d.t.Union(o.t)}
}
