package ml

import "fmt"

// Confusion counts binary outcomes with 1 as the positive (flooded) class.
type Confusion struct {
	TP, FP, TN, FN int
}

type Metrics struct {
	Confusion
	Accuracy  float64 `csv:"accuracy"`
	Precision float64 `csv:"precision"`
	Recall    float64 `csv:"recall"`
	F1        float64 `csv:"f1"`
}

// Evaluate compares predictions with the reference labels. Ratios with an
// empty denominator are reported as 0.
func Evaluate(actual, predicted []int) (Metrics, error) {
	if len(actual) != len(predicted) {
		return Metrics{}, fmt.Errorf("got %d predictions for %d labels", len(predicted), len(actual))
	}
	if len(actual) == 0 {
		return Metrics{}, fmt.Errorf("nothing to evaluate")
	}

	var c Confusion
	for i, a := range actual {
		p := predicted[i]
		switch {
		case a == 1 && p == 1:
			c.TP++
		case a != 1 && p == 1:
			c.FP++
		case a == 1 && p != 1:
			c.FN++
		default:
			c.TN++
		}
	}

	m := Metrics{Confusion: c}
	m.Accuracy = ratio(c.TP+c.TN, len(actual))
	m.Precision = ratio(c.TP, c.TP+c.FP)
	m.Recall = ratio(c.TP, c.TP+c.FN)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
