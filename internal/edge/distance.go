package edge

import (
	"math"

	"github.com/Vibencrypt/COD492/internal/raster"
)

const far = 1e20

// DistanceTransform returns, for every pixel, the Euclidean distance in
// pixels to the nearest valid true pixel of m. Without any such pixel every
// distance is +Inf.
//
// Exact two-pass transform from Felzenszwalb & Huttenlocher,
// "Distance Transforms of Sampled Functions" (2012).
func DistanceTransform(m *raster.Mask) *raster.Raster {
	cols, rows := m.Cols, m.Rows
	f := make([]float64, m.Len())
	for i := range f {
		if m.Bits[i] && m.Valid[i] {
			f[i] = 0
		} else {
			f[i] = far
		}
	}

	n := max(cols, rows)
	line := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			line[y] = f[y*cols+x]
		}
		transform1D(line[:rows], d[:rows], v, z)
		for y := 0; y < rows; y++ {
			f[y*cols+x] = d[y]
		}
	}
	for y := 0; y < rows; y++ {
		copy(line, f[y*cols:(y+1)*cols])
		transform1D(line[:cols], d[:cols], v, z)
		copy(f[y*cols:(y+1)*cols], d[:cols])
	}

	out := &raster.Raster{
		Grid:   m.Grid,
		Values: make([]float64, len(f)),
		Valid:  make([]bool, len(f)),
	}
	for i, sq := range f {
		out.Valid[i] = true
		if sq >= far/2 {
			out.Values[i] = math.Inf(1)
			continue
		}
		out.Values[i] = math.Sqrt(sq)
	}
	return out
}

// transform1D computes the squared distance transform of the sampled function f into d.
func transform1D(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = math.Inf(-1)
	z[1] = math.Inf(1)
	for q := 1; q < n; q++ {
		s := intersection(f, q, v[k])
		for s <= z[k] {
			k--
			s = intersection(f, q, v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

func intersection(f []float64, q, p int) float64 {
	fq, fp := float64(q), float64(p)
	return ((f[q] + fq*fq) - (f[p] + fp*fp)) / (2*fq - 2*fp)
}
