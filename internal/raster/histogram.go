package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/Vibencrypt/COD492/internal/otsu"
)

var ErrInvalidHistogramParams = errors.New("invalid histogram parameters")

// HistogramParams fixes the bucket layout of ReduceHistogram.
type HistogramParams struct {
	Bins     int     `json:"bins"`
	BinWidth float64 `json:"binWidth"`
}

func (p HistogramParams) Validate() error {
	if p.Bins < 1 {
		return fmt.Errorf("%w: bins must be positive, got %d", ErrInvalidHistogramParams, p.Bins)
	}
	if !(p.BinWidth > 0) || math.IsInf(p.BinWidth, 0) {
		return fmt.Errorf("%w: bin width must be positive, got %g", ErrInvalidHistogramParams, p.BinWidth)
	}
	return nil
}

// ReduceHistogram buckets the valid samples of r inside region into p.Bins
// buckets of width p.BinWidth starting at the smallest sample. Values beyond
// the last bucket fall into it. Each bucket's mean is the mean of its samples,
// or its centre when empty.
//
// scale is the sampling distance in CRS units; the raster is read every
// Stride(scale) pixels. A nil region covers the whole raster.
// No samples yields an empty histogram, which has no threshold.
func ReduceHistogram(r *Raster, region *Mask, scale float64, p HistogramParams) (otsu.Histogram, error) {
	if err := p.Validate(); err != nil {
		return otsu.Histogram{}, err
	}
	if region != nil {
		if err := CheckCoregistered(r.Grid, region.Grid); err != nil {
			return otsu.Histogram{}, fmt.Errorf("region mask: %w", err)
		}
	}

	samples := sample(r, region, r.Stride(scale))
	if len(samples) == 0 {
		return otsu.Histogram{}, nil
	}

	origin := math.Inf(1)
	for _, v := range samples {
		origin = math.Min(origin, v)
	}

	counts := make([]uint64, p.Bins)
	sums := make([]float64, p.Bins)
	for _, v := range samples {
		i := int(math.Floor((v - origin) / p.BinWidth))
		if i >= p.Bins {
			i = p.Bins - 1
		}
		if i < 0 {
			i = 0
		}
		counts[i]++
		sums[i] += v
	}

	means := make([]float64, p.Bins)
	for i := range means {
		if counts[i] == 0 {
			means[i] = origin + (float64(i)+0.5)*p.BinWidth
			continue
		}
		means[i] = sums[i] / float64(counts[i])
	}

	h, err := otsu.NewHistogram(means, counts)
	if err != nil {
		return otsu.Histogram{}, fmt.Errorf("building histogram: %w", err)
	}
	return h, nil
}

func sample(r *Raster, region *Mask, stride int) []float64 {
	offset := stride / 2
	samples := make([]float64, 0, r.Len()/(stride*stride)+1)
	for y := offset; y < r.Rows; y += stride {
		for x := offset; x < r.Cols; x += stride {
			i := r.Index(x, y)
			if !r.Valid[i] {
				continue
			}
			if region != nil && !(region.Valid[i] && region.Bits[i]) {
				continue
			}
			samples = append(samples, r.Values[i])
		}
	}
	return samples
}
