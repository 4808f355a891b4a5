package dataset

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/Vibencrypt/COD492/internal/ml"
)

// SplitByRatio shuffles each label class with seed and puts trainingRatio
// percent of it in the training set, so both sets keep the class balance.
func SplitByRatio(samples []Sample, trainingRatio int, seed int64) ([]Sample, []Sample, error) {
	if trainingRatio <= 0 || trainingRatio >= 100 {
		return nil, nil, fmt.Errorf("training ratio must be between 1 and 99, got %d", trainingRatio)
	}

	groups := make(map[int][]Sample)
	for _, s := range samples {
		groups[s.Label] = append(groups[s.Label], s)
	}
	labels := make([]int, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	rng := rand.New(rand.NewSource(seed))
	var training, validation []Sample
	for _, label := range labels {
		group := groups[label]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		cut := len(group) * trainingRatio / 100
		training = append(training, group[:cut]...)
		validation = append(validation, group[cut:]...)
	}
	return training, validation, nil
}

// Columns turns samples into the column table sent to the classifier.
func Columns(samples []Sample) ml.Columns {
	cols := ml.Columns{LabelColumn: make([]float64, len(samples))}
	for _, name := range FeatureColumns {
		cols[name] = make([]float64, len(samples))
	}
	for i, s := range samples {
		cols[LabelColumn][i] = float64(s.Label)
		for name, v := range s.features() {
			cols[name][i] = v
		}
	}
	return cols
}

func Labels(samples []Sample) []int {
	labels := make([]int, len(samples))
	for i, s := range samples {
		labels[i] = s.Label
	}
	return labels
}
