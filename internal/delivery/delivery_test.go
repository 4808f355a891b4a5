package delivery

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vibencrypt/COD492/internal/dataset"
	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/Vibencrypt/COD492/internal/ml"
	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDetector(t *testing.T) {
	p := properties.DefaultPipeline()
	p.Adjustment = -1.5
	p.SpeckleRadius = 1

	d := NewDetector(p, flood.BorrowPairedThreshold, false)
	assert.Equal(t, p.Histogram, d.Histogram)
	assert.Equal(t, -1.5, d.Adjustment)
	assert.Equal(t, 1.0, d.SpeckleRadius)
	assert.Equal(t, flood.BorrowPairedThreshold, d.OnDegenerate)
	assert.Nil(t, d.EdgeGuide)

	d = NewDetector(p, flood.PropagateDegenerate, true)
	require.NotNil(t, d.EdgeGuide)
	assert.Equal(t, p.Edge, *d.EdgeGuide)
}

func TestWindow(t *testing.T) {
	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	from, to := window(start, 12)
	assert.Equal(t, start, from)
	assert.Equal(t, time.Date(2024, 8, 12, 23, 59, 59, 0, time.UTC), to)

	_, to = window(start, 0)
	assert.Equal(t, time.Date(2024, 8, 1, 23, 59, 59, 0, time.UTC), to)
}

func TestWeatherSource_SnapsAndSummarises(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	var gotLat, gotLon float64
	src := newWeatherSource(start, end)
	src.fetch = func(_ context.Context, lat, lon float64, s, e time.Time, retries int) (weather.HistoricalWeather, error) {
		gotLat, gotLon = lat, lon
		assert.Equal(t, start, s)
		assert.Equal(t, end, e)
		assert.Equal(t, 10, retries)
		return weather.HistoricalWeather{
			start:                  {Precipitation: 12, Rain: 10, ET0: 3},
			start.AddDate(0, 0, 1): {Precipitation: 40, Rain: 38, ET0: 2},
		}, nil
	}

	summary, err := src.Summary(context.Background(), 26.54, 86.93)
	require.NoError(t, err)
	assert.InDelta(t, 26.5, gotLat, 1e-9)
	assert.InDelta(t, 86.9, gotLon, 1e-9)
	assert.Equal(t, weather.Summary{PrecipitationTotal: 52, PrecipitationMax: 40, RainTotal: 48, ET0Total: 5}, summary)

	src.fetch = func(context.Context, float64, float64, time.Time, time.Time, int) (weather.HistoricalWeather, error) {
		return nil, errors.New("archive down")
	}
	_, err = src.Summary(context.Background(), 26.5, 86.9)
	assert.Error(t, err)
}

func TestThresholdRaster(t *testing.T) {
	grid := raster.Grid{Cols: 20, Rows: 1, OriginX: 500000, OriginY: 2900000, PixelWidth: 10, PixelHeight: -10}
	values := make([]float64, 20)
	for i := range values {
		values[i] = -5
		if i < 10 {
			values[i] = -20
		}
	}
	scene, err := raster.New(grid, values)
	require.NoError(t, err)

	p := properties.DefaultPipeline()
	p.Adjustment = -1
	res, err := thresholdRaster(context.Background(), NewDetector(p, flood.PropagateDegenerate, false), scene, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, -6.0, res.Threshold)
	assert.Equal(t, 10, res.Water)
	assert.Len(t, res.Scores, len(res.Histogram.Bins)-1)
	assert.Equal(t, uint64(20), res.Histogram.Total())
}

type fakeClassifier struct {
	trained   []ml.ModelConfig
	batches   []int
	failTrees int
}

func (f *fakeClassifier) Train(_ context.Context, features ml.Columns, label string, inputs []string, cfg ml.ModelConfig) (ml.Model, error) {
	f.trained = append(f.trained, cfg)
	if label != dataset.LabelColumn || len(inputs) != len(dataset.FeatureColumns) {
		return ml.Model{}, errors.New("unexpected columns")
	}
	return ml.Model{ID: cfg.String(), Config: cfg}, nil
}

// Predict labels every low-lying row as flooded.
func (f *fakeClassifier) Predict(_ context.Context, model ml.Model, features ml.Columns, _ []string) ([]int, error) {
	if f.failTrees > 0 && model.Config.Trees == f.failTrees {
		return nil, errors.New("sidecar unavailable")
	}
	f.batches = append(f.batches, features.Rows())
	labels := make([]int, features.Rows())
	for i, e := range features["elevation"] {
		if e < 60 {
			labels[i] = 1
		}
	}
	return labels, nil
}

func writeDataset(t *testing.T) string {
	t.Helper()
	var samples []dataset.Sample
	for i := 0; i < 20; i++ {
		s := dataset.Sample{ID: i, Elevation: 80}
		if i%2 == 0 {
			s.Label = 1
			s.Elevation = 50
		}
		samples = append(samples, s)
	}
	path := filepath.Join(t.TempDir(), "kosi.csv")
	require.NoError(t, dataset.Save(samples, path))
	return path
}

func TestEvaluateClassifier(t *testing.T) {
	classifier := &fakeClassifier{}
	rows, err := EvaluateClassifier(context.Background(), classifier, EvaluateRequest{
		DatasetPath:   writeDataset(t),
		TrainingRatio: 50,
		Seed:          1,
		Configs:       TreeSweep([]int{10, 100}, 1),
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, classifier.trained, 2)

	for _, row := range rows {
		assert.Equal(t, 10, row.Training)
		assert.Equal(t, 10, row.Validated)
		assert.Equal(t, 5, row.TP)
		assert.Equal(t, 5, row.TN)
		assert.Equal(t, 1.0, row.Accuracy)
		assert.Equal(t, 1.0, row.F1)
	}
	assert.Equal(t, "rf(trees=100)", rows[1].Model)
	assert.Equal(t, 100, rows[1].Trees)
}

func TestEvaluateClassifier_Errors(t *testing.T) {
	path := writeDataset(t)

	_, err := EvaluateClassifier(context.Background(), &fakeClassifier{failTrees: 10}, EvaluateRequest{
		DatasetPath: path, TrainingRatio: 50, Configs: TreeSweep([]int{10}, 1),
	})
	assert.ErrorContains(t, err, "sidecar unavailable")

	_, err = EvaluateClassifier(context.Background(), &fakeClassifier{}, EvaluateRequest{
		DatasetPath: path, TrainingRatio: 50,
	})
	assert.Error(t, err)

	_, err = EvaluateClassifier(context.Background(), &fakeClassifier{}, EvaluateRequest{
		DatasetPath: path, TrainingRatio: 50, Configs: []ml.ModelConfig{{Kind: ml.RandomForest}},
	})
	assert.Error(t, err)

	_, err = EvaluateClassifier(context.Background(), &fakeClassifier{}, EvaluateRequest{
		DatasetPath: filepath.Join(t.TempDir(), "missing.csv"), TrainingRatio: 50, Configs: TreeSweep([]int{10}, 1),
	})
	assert.Error(t, err)
}

func TestSaveEvaluation(t *testing.T) {
	t.Setenv("ROOT_PATH", t.TempDir())

	path, err := SaveEvaluation([]EvaluationRow{{Model: "rf(trees=10)", Trees: 10, Accuracy: 0.9}}, "/data/datasets/kosi_run.csv")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, filepath.Base(path), "kosi_run_")
}

func TestModelConfigs(t *testing.T) {
	configs, err := ModelConfigs("rf", []int{10, 50}, 0, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, TreeSweep([]int{10, 50}, 3), configs)

	configs, err = ModelConfigs("svm", nil, ml.DefaultGamma, ml.DefaultCost, 3)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, ml.ModelConfig{Kind: ml.SVM, Kernel: "rbf", Gamma: 0.5, Cost: 10, Seed: 3}, configs[0])
	require.NoError(t, configs[0].Validate())

	for _, tt := range []struct {
		kind        string
		trees       []int
		gamma, cost float64
	}{
		{"rf", nil, 0, 0},
		{"svm", nil, 0, 10},
		{"svm", nil, 0.5, -1},
		{"knn", []int{10}, 0.5, 10},
	} {
		_, err := ModelConfigs(tt.kind, tt.trees, tt.gamma, tt.cost, 1)
		assert.Error(t, err, "%s gamma=%g cost=%g", tt.kind, tt.gamma, tt.cost)
	}
}

func TestEvaluateClassifier_SVM(t *testing.T) {
	classifier := &fakeClassifier{}
	configs, err := ModelConfigs("svm", nil, ml.DefaultGamma, ml.DefaultCost, 1)
	require.NoError(t, err)

	rows, err := EvaluateClassifier(context.Background(), classifier, EvaluateRequest{
		DatasetPath:   writeDataset(t),
		TrainingRatio: 50,
		Seed:          1,
		Configs:       configs,
	})
	require.NoError(t, err)

	require.Len(t, classifier.trained, 1)
	assert.Equal(t, ml.SVM, classifier.trained[0].Kind)
	assert.Equal(t, "rbf", classifier.trained[0].Kernel)
	assert.Equal(t, 0.5, classifier.trained[0].Gamma)
	assert.Equal(t, 10.0, classifier.trained[0].Cost)
	require.Len(t, rows, 1)
	assert.Equal(t, "svm(kernel=rbf, gamma=0.5, cost=10)", rows[0].Model)
	assert.Zero(t, rows[0].Trees)
	assert.Equal(t, 1.0, rows[0].Accuracy)
}

func TestTrainOnDataset(t *testing.T) {
	classifier := &fakeClassifier{}
	model, err := trainOnDataset(context.Background(), classifier, writeDataset(t), SVMConfig(0.5, 10, 1))
	require.NoError(t, err)
	assert.Equal(t, ml.SVM, model.Config.Kind)
	assert.Len(t, classifier.trained, 1)

	_, err = trainOnDataset(context.Background(), classifier, writeDataset(t), ml.ModelConfig{Kind: ml.SVM})
	assert.Error(t, err)
	_, err = trainOnDataset(context.Background(), classifier, filepath.Join(t.TempDir(), "missing.csv"), SVMConfig(0.5, 10, 1))
	assert.Error(t, err)
}

func TestClassifyCells(t *testing.T) {
	old := predictBatchSize
	predictBatchSize = 2
	t.Cleanup(func() { predictBatchSize = old })

	grid := raster.Grid{Cols: 3, Rows: 2, OriginX: 500000, OriginY: 2900000, PixelWidth: 300, PixelHeight: -300}
	cells := []dataset.Sample{
		{ID: 0, Elevation: 50},
		{ID: 1, Elevation: 90},
		{ID: 4, Elevation: 55},
	}

	classifier := &fakeClassifier{}
	m, err := classifyCells(context.Background(), classifier, ml.Model{Config: SVMConfig(0.5, 10, 1)}, grid, cells)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1}, classifier.batches)
	assert.Equal(t, []bool{true, true, false, false, true, false}, m.Valid)
	assert.Equal(t, []bool{true, false, false, false, true, false}, m.Bits)
	assert.Equal(t, 2, m.Count())

	_, err = classifyCells(context.Background(), classifier, ml.Model{}, grid, []dataset.Sample{{ID: 6}})
	assert.Error(t, err)
}

func TestSlopeValidity(t *testing.T) {
	demGrid := raster.Grid{Cols: 4, Rows: 3, OriginX: 500000, OriginY: 2900000, PixelWidth: 30, PixelHeight: -30, CRS: "EPSG:32645"}
	values := make([]float64, demGrid.Len())
	for y := 0; y < demGrid.Rows; y++ {
		for x := 0; x < demGrid.Cols; x++ {
			if x >= 2 {
				values[demGrid.Index(x, y)] = 30 * float64(x-1) // 45 degrees
			}
		}
	}
	values[demGrid.Index(0, 2)] = math.NaN()
	dem, err := raster.New(demGrid, values)
	require.NoError(t, err)

	sceneGrid := raster.Grid{Cols: 12, Rows: 9, OriginX: 500000, OriginY: 2900000, PixelWidth: 10, PixelHeight: -10, CRS: "EPSG:32645"}
	valid, err := slopeValidity(dem, sceneGrid, 5)
	require.NoError(t, err)
	require.NoError(t, raster.CheckCoregistered(sceneGrid, valid.Grid))

	flat, ok := valid.At(0, 0)
	assert.True(t, ok)
	assert.True(t, flat)
	steep, ok := valid.At(10, 0)
	assert.True(t, ok)
	assert.False(t, steep)
	_, ok = valid.At(0, 8)
	assert.False(t, ok, "no elevation")
}
