// Package edge restricts a SAR scene to the neighbourhood of long land/water
// boundaries, so the backscatter histogram of the remaining pixels is
// closer to bimodal.
package edge

import (
	"math"

	"github.com/Vibencrypt/COD492/internal/raster"
)

// Canny returns the gradient magnitude at edge pixels and 0 elsewhere.
// The input is smoothed with a Gaussian of the given sigma, differentiated
// with Sobel, thinned by non-maximum suppression and linked by hysteresis
// between threshold/2 and threshold.
func Canny(r *raster.Raster, threshold, sigma float64) *raster.Raster {
	smooth := gaussian(r, sigma)
	mag, dir := sobel(smooth)
	thin := suppress(r.Grid, mag, dir)
	edges := hysteresis(r.Grid, thin, threshold/2, threshold)

	out := &raster.Raster{
		Grid:   r.Grid,
		Values: make([]float64, len(r.Values)),
		Valid:  make([]bool, len(r.Valid)),
	}
	copy(out.Valid, r.Valid)
	for i, e := range edges {
		if e && r.Valid[i] {
			out.Values[i] = thin[i]
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	reach := int(math.Ceil(3 * sigma))
	k := make([]float64, 2*reach+1)
	for i := range k {
		d := float64(i - reach)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
	}
	return k
}

// gaussian is a separable blur over valid pixels only, renormalized at
// borders and around no-data.
func gaussian(r *raster.Raster, sigma float64) *raster.Raster {
	k := gaussianKernel(sigma)
	reach := len(k) / 2
	tmp := r.Clone()
	out := r.Clone()

	pass := func(src, dst *raster.Raster, dx, dy int) {
		for y := 0; y < src.Rows; y++ {
			for x := 0; x < src.Cols; x++ {
				i := src.Index(x, y)
				if !src.Valid[i] {
					continue
				}
				sum, weight := 0.0, 0.0
				for j, w := range k {
					off := j - reach
					if v, ok := src.At(x+off*dx, y+off*dy); ok {
						sum += w * v
						weight += w
					}
				}
				dst.Values[i] = sum / weight
			}
		}
	}
	pass(r, tmp, 1, 0)
	pass(tmp, out, 0, 1)
	return out
}

// sobel returns magnitude and direction. Neighbours off the grid or without
// data take the centre value.
func sobel(r *raster.Raster) ([]float64, []float64) {
	mag := make([]float64, len(r.Values))
	dir := make([]float64, len(r.Values))
	for y := 0; y < r.Rows; y++ {
		for x := 0; x < r.Cols; x++ {
			i := r.Index(x, y)
			if !r.Valid[i] {
				continue
			}
			c := r.Values[i]
			at := func(dx, dy int) float64 {
				if v, ok := r.At(x+dx, y+dy); ok {
					return v
				}
				return c
			}
			gx := (at(1, -1) + 2*at(1, 0) + at(1, 1)) - (at(-1, -1) + 2*at(-1, 0) + at(-1, 1))
			gy := (at(-1, 1) + 2*at(0, 1) + at(1, 1)) - (at(-1, -1) + 2*at(0, -1) + at(1, -1))
			mag[i] = math.Hypot(gx, gy)
			dir[i] = math.Atan2(gy, gx)
		}
	}
	return mag, dir
}

// suppress keeps pixels that are a local maximum across the edge. Ties go
// to the first pixel along the gradient so plateaus stay one pixel wide.
func suppress(grid raster.Grid, mag, dir []float64) []float64 {
	out := make([]float64, len(mag))
	at := func(x, y int) float64 {
		if !grid.InBounds(x, y) {
			return 0
		}
		return mag[grid.Index(x, y)]
	}
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			i := grid.Index(x, y)
			m := mag[i]
			if m == 0 {
				continue
			}
			dx, dy := direction(dir[i])
			if m > at(x-dx, y-dy) && m >= at(x+dx, y+dy) {
				out[i] = m
			}
		}
	}
	return out
}

// direction quantizes a gradient angle to one of four neighbour steps.
func direction(theta float64) (int, int) {
	deg := theta * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	switch {
	case deg < 22.5 || deg >= 157.5:
		return 1, 0
	case deg < 67.5:
		return 1, 1
	case deg < 112.5:
		return 0, 1
	default:
		return -1, 1
	}
}

func hysteresis(grid raster.Grid, mag []float64, low, high float64) []bool {
	edges := make([]bool, len(mag))
	stack := make([]int, 0, 64)
	for i, m := range mag {
		if m >= high && m > 0 {
			edges[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%grid.Cols, i/grid.Cols
		for _, o := range neighbours8 {
			nx, ny := x+o[0], y+o[1]
			if !grid.InBounds(nx, ny) {
				continue
			}
			j := grid.Index(nx, ny)
			if !edges[j] && mag[j] >= low && mag[j] > 0 {
				edges[j] = true
				stack = append(stack, j)
			}
		}
	}
	return edges
}

var neighbours8 = [][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

var neighbours4 = [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
