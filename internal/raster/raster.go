package raster

import (
	"fmt"
	"math"
)

// Raster is a single band of float samples laid out row-major on Grid.
// Pixels with Valid[i] == false are no-data and are skipped by every reduction.
type Raster struct {
	Grid
	Values []float64
	Valid  []bool
}

// New wraps values on grid. NaN and Inf samples become no-data.
func New(grid Grid, values []float64) (*Raster, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}
	if len(values) != grid.Len() {
		return nil, fmt.Errorf("raster has %d values, grid %dx%d needs %d", len(values), grid.Cols, grid.Rows, grid.Len())
	}
	valid := make([]bool, len(values))
	for i, v := range values {
		valid[i] = !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return &Raster{Grid: grid, Values: values, Valid: valid}, nil
}

// NewWithNoData is New with an additional sentinel value treated as no-data.
func NewWithNoData(grid Grid, values []float64, noData float64) (*Raster, error) {
	r, err := New(grid, values)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if v == noData {
			r.Valid[i] = false
		}
	}
	return r, nil
}

// Filled returns a raster of the given size where every pixel holds value.
func Filled(grid Grid, value float64) (*Raster, error) {
	values := make([]float64, grid.Len())
	for i := range values {
		values[i] = value
	}
	return New(grid, values)
}

func (r *Raster) At(x, y int) (float64, bool) {
	if !r.InBounds(x, y) {
		return 0, false
	}
	i := r.Index(x, y)
	return r.Values[i], r.Valid[i]
}

func (r *Raster) ValidCount() int {
	n := 0
	for _, ok := range r.Valid {
		if ok {
			n++
		}
	}
	return n
}

// Lt binarizes the raster: true where value < threshold. No-data stays no-data.
func (r *Raster) Lt(threshold float64) *Mask {
	m := &Mask{
		Grid:  r.Grid,
		Bits:  make([]bool, len(r.Values)),
		Valid: make([]bool, len(r.Values)),
	}
	for i, v := range r.Values {
		m.Valid[i] = r.Valid[i]
		m.Bits[i] = r.Valid[i] && v < threshold
	}
	return m
}

// UpdateMask returns a copy where pixels that are false or no-data in m become no-data.
func (r *Raster) UpdateMask(m *Mask) *Raster {
	out := r.Clone()
	for i := range out.Valid {
		out.Valid[i] = out.Valid[i] && m.Valid[i] && m.Bits[i]
	}
	return out
}

// Clip keeps only the pixels whose centre lies inside region.
func (r *Raster) Clip(region *Mask) *Raster {
	if region == nil {
		return r.Clone()
	}
	return r.UpdateMask(region)
}

// Add returns a copy with delta added to every valid sample.
func (r *Raster) Add(delta float64) *Raster {
	out := r.Clone()
	for i := range out.Values {
		if out.Valid[i] {
			out.Values[i] += delta
		}
	}
	return out
}

// MinMax returns the extremes of the valid samples, or ok == false when there are none.
func (r *Raster) MinMax() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, v := range r.Values {
		if !r.Valid[i] {
			continue
		}
		ok = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

func (r *Raster) Clone() *Raster {
	out := &Raster{
		Grid:   r.Grid,
		Values: make([]float64, len(r.Values)),
		Valid:  make([]bool, len(r.Valid)),
	}
	copy(out.Values, r.Values)
	copy(out.Valid, r.Valid)
	return out
}
