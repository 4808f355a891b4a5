package ui

import (
	"fmt"
	"sort"
	"time"

	"github.com/Vibencrypt/COD492/internal/dataset"
	"github.com/Vibencrypt/COD492/internal/delivery"
	"github.com/Vibencrypt/COD492/internal/flood"
)

func PrintFloodRun(run *delivery.FloodRun) {
	res := run.Result
	fmt.Printf("%s\nRun %s%s\n", ColorGreen, run.RunID, ColorReset)
	fmt.Printf("%sPre-event threshold:  %.2f dB%s%s\n", ColorGreen, res.PreThreshold, borrowed(res.PreBorrowed), ColorReset)
	fmt.Printf("%sPost-event threshold: %.2f dB%s%s\n", ColorGreen, res.PostThreshold, borrowed(res.PostBorrowed), ColorReset)
	fmt.Printf("%sFlooded: %d pixels (%.2f km²)%s\n", ColorGreen, res.FloodedPixels, res.FloodedArea()/1e6, ColorReset)
	PrintSuccess(fmt.Sprintf("Results located at: %s", run.Dir))
}

func borrowed(b bool) string {
	if b {
		return " (borrowed from the paired scene)"
	}
	return ""
}

// PrintThreshold prints the threshold of a scene and its best top splits.
func PrintThreshold(st *delivery.SceneThreshold, top int) {
	fmt.Printf("%sSamples: %d in %d non-empty bins%s\n", ColorGreen, st.Histogram.Total(), st.Histogram.NonEmpty(), ColorReset)
	fmt.Printf("%sThreshold: %.2f dB, %d water pixels%s\n", ColorGreen, st.Threshold, st.Water, ColorReset)

	ranked := make([]int, 0, len(st.Scores))
	for i, s := range st.Scores {
		if s.Valid {
			ranked = append(ranked, i)
		}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return st.Scores[ranked[a]].Variance > st.Scores[ranked[b]].Variance
	})
	if len(ranked) > top {
		ranked = ranked[:top]
	}

	fmt.Printf("%s\nBest splits:%s\n", ColorBlue, ColorReset)
	for _, i := range ranked {
		s := st.Scores[i]
		fmt.Printf("%s  split %3d at %7.2f dB  variance %.4g%s\n", ColorBlue, s.Split, st.Histogram.Bins[s.Split].Mean, s.Variance, ColorReset)
	}
}

func PrintProgression(steps []flood.Step, frames []string) {
	fmt.Printf("%s\n%-12s %10s %10s %12s%s\n", ColorGreen, "date", "flooded", "new", "cumulative", ColorReset)
	for _, s := range steps {
		fmt.Printf("%s%-12s %10d %10d %12d%s\n", ColorGreen, s.Date.Format(time.DateOnly), s.Result.FloodedPixels, s.NewPixels, s.Cumulative.Count(), ColorReset)
	}
	if len(frames) > 0 {
		PrintSuccess(fmt.Sprintf("%d frames written, first at: %s", len(frames), frames[0]))
	}
}

// PrintDatasetSummary prints how many samples fell in each class.
func PrintDatasetSummary(samples []dataset.Sample) {
	counts := make(map[int]int)
	for _, s := range samples {
		counts[s.Label]++
	}
	fmt.Printf("%s\nDataset summary:%s\n", ColorGreen, ColorReset)
	fmt.Printf("%s  flooded:     %d%s\n", ColorGreen, counts[1], ColorReset)
	fmt.Printf("%s  not flooded: %d%s\n", ColorGreen, counts[0], ColorReset)
	fmt.Printf("%s  total:       %d%s\n", ColorGreen, len(samples), ColorReset)
}

func PrintEvaluation(rows []delivery.EvaluationRow) {
	fmt.Printf("%s\n%-36s %9s %9s %9s %9s%s\n", ColorGreen, "model", "accuracy", "precision", "recall", "f1", ColorReset)
	for _, r := range rows {
		fmt.Printf("%s%-36s %9.4f %9.4f %9.4f %9.4f%s\n", ColorGreen, r.Model, r.Accuracy, r.Precision, r.Recall, r.F1, ColorReset)
	}
}

func PrintSusceptibility(run *delivery.SusceptibilityRun) {
	fmt.Printf("%s\nRun %s, %s%s\n", ColorGreen, run.RunID, run.Model.Config, ColorReset)
	share := 0.0
	if run.Cells > 0 {
		share = 100 * float64(run.Susceptible) / float64(run.Cells)
	}
	fmt.Printf("%sFlood prone: %d of %d cells (%.1f%%)%s\n", ColorGreen, run.Susceptible, run.Cells, share, ColorReset)
	PrintSuccess(fmt.Sprintf("Results located at: %s", run.Dir))
}
