package otsu

import (
	"fmt"
	"math"
)

// Bin is one histogram bucket: the mean intensity of the bucket and how many pixels fell in it.
type Bin struct {
	Mean  float64 `json:"mean"`
	Count uint64  `json:"count"`
}

// Histogram is an ordered sequence of bins with strictly increasing means.
type Histogram struct {
	Bins []Bin `json:"bins"`
}

func NewHistogram(means []float64, counts []uint64) (Histogram, error) {
	if len(means) != len(counts) {
		return Histogram{}, fmt.Errorf("histogram has %d means but %d counts", len(means), len(counts))
	}
	bins := make([]Bin, len(means))
	for i := range means {
		bins[i] = Bin{Mean: means[i], Count: counts[i]}
	}
	h := Histogram{Bins: bins}
	if err := h.Validate(); err != nil {
		return Histogram{}, err
	}
	return h, nil
}

// Validate checks the ordering invariant. It does not check for degeneracy,
// ComputeThreshold reports that separately.
func (h Histogram) Validate() error {
	for i, b := range h.Bins {
		if math.IsNaN(b.Mean) || math.IsInf(b.Mean, 0) {
			return fmt.Errorf("bin %d has a non-finite mean", i)
		}
		if i > 0 && b.Mean <= h.Bins[i-1].Mean {
			return fmt.Errorf("bin means must be strictly increasing: bin %d (%g) follows %g", i, b.Mean, h.Bins[i-1].Mean)
		}
	}
	return nil
}

func (h Histogram) Len() int {
	return len(h.Bins)
}

func (h Histogram) Total() uint64 {
	var total uint64
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

// NonEmpty returns how many bins carry at least one pixel.
func (h Histogram) NonEmpty() int {
	n := 0
	for _, b := range h.Bins {
		if b.Count > 0 {
			n++
		}
	}
	return n
}

// Scale multiplies every count by factor.
func (h Histogram) Scale(factor uint64) Histogram {
	bins := make([]Bin, len(h.Bins))
	for i, b := range h.Bins {
		bins[i] = Bin{Mean: b.Mean, Count: b.Count * factor}
	}
	return Histogram{Bins: bins}
}

func (h Histogram) Means() []float64 {
	means := make([]float64, len(h.Bins))
	for i, b := range h.Bins {
		means[i] = b.Mean
	}
	return means
}
