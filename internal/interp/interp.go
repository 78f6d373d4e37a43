package interp

import (
	"fmt"
	"math"
	"sort"
)

// Bivariate is a rectangular-grid interpolant over two ascending sample axes.
// Values are stored row-major with one row per x sample.
type Bivariate struct {
	xs          []float64
	ys          []float64
	vals        [][]float64
	extrapolate bool
}

func NewBivariate(xs, ys []float64, vals [][]float64, extrapolate bool) (*Bivariate, error) {
	if len(xs) < 2 || len(ys) < 2 {
		return nil, fmt.Errorf("need at least 2 samples per axis, got %dx%d", len(xs), len(ys))
	}
	if !sort.Float64sAreSorted(xs) || !sort.Float64sAreSorted(ys) {
		return nil, fmt.Errorf("sample axes must be ascending")
	}
	if len(vals) != len(xs) {
		return nil, fmt.Errorf("value rows (%d) do not match x samples (%d)", len(vals), len(xs))
	}
	for i, row := range vals {
		if len(row) != len(ys) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(ys))
		}
	}
	return &Bivariate{xs: xs, ys: ys, vals: vals, extrapolate: extrapolate}, nil
}

// Bounds reports the sampled domain as (xmin, xmax, ymin, ymax).
func (b *Bivariate) Bounds() (float64, float64, float64, float64) {
	return b.xs[0], b.xs[len(b.xs)-1], b.ys[0], b.ys[len(b.ys)-1]
}

// At evaluates the surface by bilinear interpolation within the cell
// containing (x, y). Out-of-domain queries clamp when extrapolation is
// enabled and fail otherwise.
func (b *Bivariate) At(x, y float64) (float64, error) {
	if !b.inDomain(x, y) {
		if !b.extrapolate {
			return math.NaN(), fmt.Errorf("query (%g, %g) outside sampled domain [%g, %g]x[%g, %g]",
				x, y, b.xs[0], b.xs[len(b.xs)-1], b.ys[0], b.ys[len(b.ys)-1])
		}
		x = clamp(x, b.xs[0], b.xs[len(b.xs)-1])
		y = clamp(y, b.ys[0], b.ys[len(b.ys)-1])
	}

	i := cellIndex(b.xs, x)
	j := cellIndex(b.ys, y)

	x0, x1 := b.xs[i], b.xs[i+1]
	y0, y1 := b.ys[j], b.ys[j+1]
	tx := (x - x0) / (x1 - x0)
	ty := (y - y0) / (y1 - y0)

	v00 := b.vals[i][j]
	v10 := b.vals[i+1][j]
	v01 := b.vals[i][j+1]
	v11 := b.vals[i+1][j+1]

	v := v00*(1-tx)*(1-ty) + v10*tx*(1-ty) + v01*(1-tx)*ty + v11*tx*ty
	return v, nil
}

func (b *Bivariate) inDomain(x, y float64) bool {
	return x >= b.xs[0] && x <= b.xs[len(b.xs)-1] &&
		y >= b.ys[0] && y <= b.ys[len(b.ys)-1]
}

// Nearest classifies (x, y) by the value at the closest grid sample.
// Queries are clamped to the grid, so classification never fails; this
// mirrors how discrete phase grids are meant to be used near boundaries.
type Nearest struct {
	xs   []float64
	ys   []float64
	vals [][]int
}

func NewNearest(xs, ys []float64, vals [][]int) (*Nearest, error) {
	if len(xs) == 0 || len(ys) == 0 {
		return nil, fmt.Errorf("empty sample axis")
	}
	if len(vals) != len(xs) {
		return nil, fmt.Errorf("value rows (%d) do not match x samples (%d)", len(vals), len(xs))
	}
	for i, row := range vals {
		if len(row) != len(ys) {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(ys))
		}
	}
	return &Nearest{xs: xs, ys: ys, vals: vals}, nil
}

func (n *Nearest) At(x, y float64) int {
	return n.vals[nearestIndex(n.xs, x)][nearestIndex(n.ys, y)]
}

// Resample stretches samples onto a linearly spaced axis of count points
// spanning the same range.
func Resample(samples []float64, count int) []float64 {
	out := make([]float64, count)
	lo := samples[0]
	hi := samples[len(samples)-1]
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(count-1)
	}
	return out
}

func cellIndex(axis []float64, v float64) int {
	i := sort.SearchFloat64s(axis, v)
	if i > 0 {
		i--
	}
	if i > len(axis)-2 {
		i = len(axis) - 2
	}
	return i
}

func nearestIndex(axis []float64, v float64) int {
	i := sort.SearchFloat64s(axis, v)
	if i == 0 {
		return 0
	}
	if i >= len(axis) {
		return len(axis) - 1
	}
	if v-axis[i-1] <= axis[i]-v {
		return i - 1
	}
	return i
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
