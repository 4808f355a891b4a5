package raster

import (
	"math"
	"sort"
)

// Offset is one cell of a neighbourhood kernel relative to its centre.
type Offset struct {
	DX, DY int
}

// CircleKernel returns the cells within radius pixels of the centre, centre included.
func CircleKernel(radius float64) []Offset {
	reach := int(math.Floor(radius))
	kernel := make([]Offset, 0, (2*reach+1)*(2*reach+1))
	for dy := -reach; dy <= reach; dy++ {
		for dx := -reach; dx <= reach; dx++ {
			if float64(dx*dx+dy*dy) <= radius*radius {
				kernel = append(kernel, Offset{DX: dx, DY: dy})
			}
		}
	}
	return kernel
}

// FocalMedian replaces each valid pixel with the median of the valid pixels
// in a circle of radius pixels around it. Used as a speckle filter.
func FocalMedian(r *Raster, radius float64) *Raster {
	kernel := CircleKernel(radius)
	out := r.Clone()
	window := make([]float64, 0, len(kernel))
	for y := 0; y < r.Rows; y++ {
		for x := 0; x < r.Cols; x++ {
			i := r.Index(x, y)
			if !r.Valid[i] {
				continue
			}
			window = neighbours(r, x, y, kernel, window[:0])
			sort.Float64s(window)
			n := len(window)
			if n%2 == 1 {
				out.Values[i] = window[n/2]
			} else {
				out.Values[i] = (window[n/2-1] + window[n/2]) / 2
			}
		}
	}
	return out
}

// FocalMean replaces each valid pixel with the mean of the valid pixels
// within radius pixels of it. Each row of the circle is read from running
// row sums, so the cost grows with the radius and not with its square.
func FocalMean(r *Raster, radius float64) *Raster {
	spans := circleSpans(radius)
	reach := len(spans) / 2

	// sums and counts hold, per row, the running totals of the valid pixels
	// left of each column: row y, column x is at y*(Cols+1)+x.
	stride := r.Cols + 1
	sums := make([]float64, stride*r.Rows)
	counts := make([]int32, stride*r.Rows)
	for y := 0; y < r.Rows; y++ {
		base := y * stride
		for x := 0; x < r.Cols; x++ {
			i := r.Index(x, y)
			sums[base+x+1] = sums[base+x]
			counts[base+x+1] = counts[base+x]
			if r.Valid[i] {
				sums[base+x+1] += r.Values[i]
				counts[base+x+1]++
			}
		}
	}

	out := r.Clone()
	for y := 0; y < r.Rows; y++ {
		for x := 0; x < r.Cols; x++ {
			i := r.Index(x, y)
			if !r.Valid[i] {
				continue
			}
			sum, n := 0.0, int32(0)
			for dy := -reach; dy <= reach; dy++ {
				row := y + dy
				if row < 0 || row >= r.Rows {
					continue
				}
				x0 := max(x-spans[dy+reach], 0)
				x1 := min(x+spans[dy+reach], r.Cols-1)
				base := row * stride
				sum += sums[base+x1+1] - sums[base+x0]
				n += counts[base+x1+1] - counts[base+x0]
			}
			out.Values[i] = sum / float64(n)
		}
	}
	return out
}

// circleSpans returns, for every row offset of a circle of radius pixels,
// the largest column offset still inside it. Index reach is the centre row.
func circleSpans(radius float64) []int {
	reach := int(math.Floor(radius))
	r2 := radius * radius
	spans := make([]int, 2*reach+1)
	for dy := -reach; dy <= reach; dy++ {
		w := int(math.Sqrt(r2 - float64(dy*dy)))
		for float64((w+1)*(w+1)+dy*dy) <= r2 {
			w++
		}
		for w > 0 && float64(w*w+dy*dy) > r2 {
			w--
		}
		spans[dy+reach] = w
	}
	return spans
}

func neighbours(r *Raster, x, y int, kernel []Offset, dst []float64) []float64 {
	for _, o := range kernel {
		if v, ok := r.At(x+o.DX, y+o.DY); ok {
			dst = append(dst, v)
		}
	}
	return dst
}
