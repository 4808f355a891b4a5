// Package otsu selects the threshold that maximizes between-class variance
// over a one-dimensional intensity histogram.
// https://en.wikipedia.org/wiki/Otsu%27s_method
package otsu

import "math"

// tieTolerance is the relative difference under which two variance scores are
// considered equal. Mirror-image histograms produce scores that differ only by
// rounding, and those must still resolve to the larger bin mean.
const tieTolerance = 1e-12

// Score is the between-class variance of one split. Split k puts bins [0,k) in
// class A and bins [k,n) in class B. Valid is false when one class is empty.
type Score struct {
	Split    int
	Variance float64
	Valid    bool
}

// Scores computes the between-class variance for every split k in 1..n-1.
func Scores(h Histogram) ([]Score, error) {
	n := h.Len()
	total := h.Total()
	if n < 2 || total == 0 {
		return nil, &DegenerateHistogramError{Bins: n, Total: total, NonEmpty: h.NonEmpty()}
	}

	totalF := float64(total)
	var weightedSum float64
	for _, b := range h.Bins {
		weightedSum += b.Mean * float64(b.Count)
	}
	globalMean := weightedSum / totalF

	scores := make([]Score, 0, n-1)
	var countA uint64
	var sumA float64
	for k := 1; k < n; k++ {
		countA += h.Bins[k-1].Count
		sumA += h.Bins[k-1].Mean * float64(h.Bins[k-1].Count)
		countB := total - countA
		if countA == 0 || countB == 0 {
			scores = append(scores, Score{Split: k})
			continue
		}

		cA, cB := float64(countA), float64(countB)
		meanA := sumA / cA
		meanB := (weightedSum - cA*meanA) / cB
		variance := cA*(meanA-globalMean)*(meanA-globalMean) + cB*(meanB-globalMean)*(meanB-globalMean)
		scores = append(scores, Score{Split: k, Variance: variance, Valid: true})
	}
	return scores, nil
}

// ComputeThreshold returns the bin mean at the boundary of the split with the
// largest between-class variance: pixels below it form class A. Among equal
// scores the largest split, and therefore the largest bin mean, wins.
func ComputeThreshold(h Histogram) (float64, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	scores, err := Scores(h)
	if err != nil {
		return 0, err
	}

	best := -1
	bestVariance := 0.0
	for _, s := range scores {
		if !s.Valid {
			continue
		}
		if best < 0 || s.Variance > bestVariance || sameScore(s.Variance, bestVariance) {
			best = s.Split
			bestVariance = math.Max(bestVariance, s.Variance)
		}
	}
	if best < 0 {
		return 0, &DegenerateHistogramError{Bins: h.Len(), Total: h.Total(), NonEmpty: h.NonEmpty()}
	}
	return h.Bins[best].Mean, nil
}

func sameScore(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b) <= tieTolerance*scale
}
