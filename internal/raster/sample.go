package raster

import "github.com/paulmach/orb"

// SampleFirst returns the raster value at p. When scale is coarser than the
// grid, the first valid pixel of the scale-sized block holding p is used.
// ok is false outside the raster or when no valid pixel is found.
func SampleFirst(r *Raster, p orb.Point, scale float64) (float64, bool) {
	i, ok := firstValid(r.Grid, r.Valid, p, scale)
	if !ok {
		return 0, false
	}
	return r.Values[i], true
}

// SampleMask is SampleFirst for masks, reporting a masked pixel as false.
func SampleMask(m *Mask, p orb.Point, scale float64) (bool, bool) {
	i, ok := firstValid(m.Grid, m.Valid, p, scale)
	if !ok {
		return false, false
	}
	return m.Bits[i], true
}

func firstValid(g Grid, valid []bool, p orb.Point, scale float64) (int, bool) {
	x, y, in := g.PixelAt(p)
	if !in {
		return 0, false
	}

	stride := g.Stride(scale)
	x0, y0 := (x/stride)*stride, (y/stride)*stride
	if stride == 1 {
		x0, y0 = x, y
	}
	for by := y0; by < y0+stride && by < g.Rows; by++ {
		for bx := x0; bx < x0+stride && bx < g.Cols; bx++ {
			if i := g.Index(bx, by); valid[i] {
				return i, true
			}
		}
	}
	return 0, false
}

// Resample reads r at the centre of every pixel of grid, nearest neighbour.
// Pixels of grid that fall outside r are no-data.
func Resample(r *Raster, grid Grid) (*Raster, error) {
	if r.CRS != "" && grid.CRS != "" && r.CRS != grid.CRS {
		return nil, &CoregistrationError{Field: "crs", A: r.CRS, B: grid.CRS}
	}
	out := &Raster{
		Grid:   grid,
		Values: make([]float64, grid.Len()),
		Valid:  make([]bool, grid.Len()),
	}
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			sx, sy, ok := r.PixelAt(grid.PixelCenter(x, y))
			if !ok {
				continue
			}
			i, j := grid.Index(x, y), r.Index(sx, sy)
			out.Values[i], out.Valid[i] = r.Values[j], r.Valid[j]
		}
	}
	return out, nil
}
