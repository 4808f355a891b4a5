package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Vibencrypt/COD492/internal/dataset"
	"github.com/Vibencrypt/COD492/internal/logger"
	"github.com/Vibencrypt/COD492/internal/ml"
	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
)

// Classifier trains and applies models. *ml.Client implements it.
type Classifier interface {
	Train(ctx context.Context, features ml.Columns, labelColumn string, inputColumns []string, cfg ml.ModelConfig) (ml.Model, error)
	Predict(ctx context.Context, model ml.Model, features ml.Columns, inputColumns []string) ([]int, error)
}

type EvaluateRequest struct {
	DatasetPath   string
	TrainingRatio int
	Seed          int64
	Configs       []ml.ModelConfig
}

// EvaluationRow is the validation score of one model configuration.
type EvaluationRow struct {
	Model     string  `csv:"model"`
	Trees     int     `csv:"trees"`
	Training  int     `csv:"training_rows"`
	Validated int     `csv:"validation_rows"`
	TP        int     `csv:"tp"`
	FP        int     `csv:"fp"`
	TN        int     `csv:"tn"`
	FN        int     `csv:"fn"`
	Accuracy  float64 `csv:"accuracy"`
	Precision float64 `csv:"precision"`
	Recall    float64 `csv:"recall"`
	F1        float64 `csv:"f1"`
}

// TreeSweep returns random forest configurations for each tree count.
func TreeSweep(trees []int, seed int64) []ml.ModelConfig {
	configs := make([]ml.ModelConfig, 0, len(trees))
	for _, n := range trees {
		configs = append(configs, ml.ModelConfig{Kind: ml.RandomForest, Trees: n, Seed: seed})
	}
	return configs
}

// SVMConfig returns an RBF support vector machine configuration.
func SVMConfig(gamma, cost float64, seed int64) ml.ModelConfig {
	return ml.ModelConfig{Kind: ml.SVM, Kernel: "rbf", Gamma: gamma, Cost: cost, Seed: seed}
}

// ModelConfigs builds the configurations compared for a classifier kind:
// one forest per tree count for "rf", a single RBF machine for "svm".
func ModelConfigs(kind string, trees []int, gamma, cost float64, seed int64) ([]ml.ModelConfig, error) {
	switch ml.Kind(kind) {
	case ml.RandomForest:
		if len(trees) == 0 {
			return nil, fmt.Errorf("no tree count given")
		}
		return TreeSweep(trees, seed), nil
	case ml.SVM:
		if !(gamma > 0) || !(cost > 0) {
			return nil, fmt.Errorf("svm gamma and cost must be positive, got %g and %g", gamma, cost)
		}
		return []ml.ModelConfig{SVMConfig(gamma, cost, seed)}, nil
	}
	return nil, fmt.Errorf("unknown classifier %q, expected rf or svm", kind)
}

// EvaluateClassifier splits the dataset, trains every configuration on the
// training part and scores its predictions on the rest.
func EvaluateClassifier(ctx context.Context, classifier Classifier, req EvaluateRequest) ([]EvaluationRow, error) {
	log := logger.New("delivery")

	samples, err := dataset.Load(req.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty dataset file given")
	}
	if len(req.Configs) == 0 {
		return nil, fmt.Errorf("no model configuration to evaluate")
	}

	training, validation, err := dataset.SplitByRatio(samples, req.TrainingRatio, req.Seed)
	if err != nil {
		return nil, err
	}
	if len(training) == 0 || len(validation) == 0 {
		return nil, fmt.Errorf("split left %d training and %d validation rows", len(training), len(validation))
	}
	log.Info().Int("training", len(training)).Int("validation", len(validation)).Msg("dataset split")

	trainCols := dataset.Columns(training)
	validCols := dataset.Columns(validation)
	actual := dataset.Labels(validation)

	rows := make([]EvaluationRow, 0, len(req.Configs))
	for _, cfg := range req.Configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		model, err := classifier.Train(ctx, trainCols, dataset.LabelColumn, dataset.FeatureColumns, cfg)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", cfg, err)
		}
		predicted, err := classifier.Predict(ctx, model, validCols, dataset.FeatureColumns)
		if err != nil {
			return nil, fmt.Errorf("predict %s: %w", cfg, err)
		}
		m, err := ml.Evaluate(actual, predicted)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", cfg, err)
		}

		rows = append(rows, EvaluationRow{
			Model:     cfg.String(),
			Trees:     cfg.Trees,
			Training:  len(training),
			Validated: len(validation),
			TP:        m.TP,
			FP:        m.FP,
			TN:        m.TN,
			FN:        m.FN,
			Accuracy:  m.Accuracy,
			Precision: m.Precision,
			Recall:    m.Recall,
			F1:        m.F1,
		})
		log.Info().Str("model", cfg.String()).Float64("accuracy", m.Accuracy).Float64("f1", m.F1).Msg("model evaluated")
	}
	return rows, nil
}

// SaveEvaluation writes rows to $ROOT_PATH/data/result/evaluation and returns the path.
func SaveEvaluation(rows []EvaluationRow, datasetPath string) (string, error) {
	dir := filepath.Join(properties.RootPath(), "data", "result", "evaluation")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create evaluation folder: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(datasetPath), filepath.Ext(datasetPath))
	filePath := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", base, uuid.NewString()[:8]))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create evaluation file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("failed to write evaluation: %w", err)
	}
	return filePath, nil
}
