package edge

import "github.com/Vibencrypt/COD492/internal/raster"

// ConnectedPixelCount labels each valid pixel with the size of the connected
// region of equal-valued valid pixels it belongs to. Sizes saturate at maxSize.
func ConnectedPixelCount(r *raster.Raster, maxSize int, eightConnected bool) *raster.Raster {
	steps := neighbours4
	if eightConnected {
		steps = neighbours8
	}

	out := &raster.Raster{
		Grid:   r.Grid,
		Values: make([]float64, len(r.Values)),
		Valid:  make([]bool, len(r.Valid)),
	}
	copy(out.Valid, r.Valid)

	seen := make([]bool, len(r.Values))
	var component []int
	for start := range r.Values {
		if seen[start] || !r.Valid[start] {
			continue
		}

		value := r.Values[start]
		component = append(component[:0], start)
		seen[start] = true
		for head := 0; head < len(component); head++ {
			i := component[head]
			x, y := i%r.Cols, i/r.Cols
			for _, o := range steps {
				nx, ny := x+o[0], y+o[1]
				if !r.InBounds(nx, ny) {
					continue
				}
				j := r.Index(nx, ny)
				if seen[j] || !r.Valid[j] || r.Values[j] != value {
					continue
				}
				seen[j] = true
				component = append(component, j)
			}
		}

		size := len(component)
		if maxSize > 0 && size > maxSize {
			size = maxSize
		}
		for _, i := range component {
			out.Values[i] = float64(size)
		}
	}
	return out
}
