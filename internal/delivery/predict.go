package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Vibencrypt/COD492/internal/dataset"
	"github.com/Vibencrypt/COD492/internal/logger"
	"github.com/Vibencrypt/COD492/internal/ml"
	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/sentinel"
	"github.com/Vibencrypt/COD492/internal/terrain"
	"github.com/Vibencrypt/COD492/output"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// predictBatchSize bounds the rows sent in one Predict call.
var predictBatchSize = 20000

// PredictRequest trains one model on a dataset and classifies the region with it.
type PredictRequest struct {
	Region      string
	RegionID    string
	DatasetPath string
	Config      ml.ModelConfig
	// Date starts the DEM window and ends the weather history.
	Date        time.Time
	WindowDays  int
	WeatherDays int
	LargeTPI    float64
	SmallTPI    float64
	// CellSize is the map resolution in metres.
	CellSize float64
}

func (r PredictRequest) withDefaults() PredictRequest {
	d := DatasetRequest{WeatherDays: r.WeatherDays, LargeTPI: r.LargeTPI, SmallTPI: r.SmallTPI}.withDefaults()
	r.WeatherDays, r.LargeTPI, r.SmallTPI = d.WeatherDays, d.LargeTPI, d.SmallTPI
	if r.CellSize == 0 {
		r.CellSize = 300
	}
	return r
}

// SusceptibilityRun is a classified region and where the map was written.
type SusceptibilityRun struct {
	RunID       string
	Dir         string
	Model       ml.Model
	Map         *raster.Mask
	Cells       int
	Susceptible int
}

// PredictSusceptibility trains req.Config on the whole dataset, samples the
// terrain and weather features over a grid covering the region and writes
// the predicted flood susceptibility as an image and a GeoTIFF.
func PredictSusceptibility(ctx context.Context, classifier Classifier, req PredictRequest) (*SusceptibilityRun, error) {
	log := logger.New("delivery")
	req = req.withDefaults()

	model, err := trainOnDataset(ctx, classifier, req.DatasetPath, req.Config)
	if err != nil {
		return nil, err
	}

	reg, err := loadRegion(req.Region, req.RegionID)
	if err != nil {
		return nil, err
	}
	dem, err := reg.scene(ctx, sentinel.DEM, req.Date, req.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("dem: %w", err)
	}
	features, err := terrain.Derive(dem, req.LargeTPI, req.SmallTPI)
	if err != nil {
		return nil, err
	}

	locator, err := sentinel.NewLocator(dem.Grid, reg.epsg)
	if err != nil {
		return nil, err
	}
	defer locator.Close()

	grid := dem.Grid.Coarsen(dem.Grid.Stride(req.CellSize))
	_, end := window(req.Date, req.WindowDays)
	cells, err := dataset.GridSamples(ctx, dataset.GridParams{
		Grid:    grid,
		Region:  reg.projected,
		Terrain: features,
		Weather: newWeatherSource(req.Date.AddDate(0, 0, -req.WeatherDays), end),
		Locate: func(p orb.Point) (float64, float64, error) {
			return locator.PointLatLon(p)
		},
	})
	if err != nil {
		return nil, err
	}

	susceptibility, err := classifyCells(ctx, classifier, model, grid, cells)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	dir, err := output.ResultDir(req.Region, runID)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s flood susceptibility, %s", req.Region, model.Config)
	if err := output.CreateSusceptibilityImage(susceptibility, title, filepath.Join(dir, "susceptibility.png")); err != nil {
		return nil, err
	}
	if err := output.WriteMaskGeoTIFF(susceptibility, filepath.Join(dir, "susceptibility.tif")); err != nil {
		return nil, err
	}

	run := &SusceptibilityRun{
		RunID:       runID,
		Dir:         dir,
		Model:       model,
		Map:         susceptibility,
		Cells:       len(cells),
		Susceptible: susceptibility.Count(),
	}
	log.Info().
		Str("run_id", runID).
		Str("model", model.Config.String()).
		Int("cells", run.Cells).
		Int("susceptible", run.Susceptible).
		Msg("susceptibility map written")
	return run, nil
}

// trainOnDataset fits cfg on every row of the dataset file.
func trainOnDataset(ctx context.Context, classifier Classifier, path string, cfg ml.ModelConfig) (ml.Model, error) {
	if err := cfg.Validate(); err != nil {
		return ml.Model{}, err
	}
	samples, err := dataset.Load(path)
	if err != nil {
		return ml.Model{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(samples) == 0 {
		return ml.Model{}, fmt.Errorf("empty dataset file given")
	}
	model, err := classifier.Train(ctx, dataset.Columns(samples), dataset.LabelColumn, dataset.FeatureColumns, cfg)
	if err != nil {
		return ml.Model{}, fmt.Errorf("train %s: %w", cfg, err)
	}
	return model, nil
}

// classifyCells predicts every sampled cell and writes the labels onto grid.
// Cells that were not sampled stay no-data.
func classifyCells(ctx context.Context, classifier Classifier, model ml.Model, grid raster.Grid, cells []dataset.Sample) (*raster.Mask, error) {
	m := raster.NewMask(grid)
	for i := range m.Valid {
		m.Valid[i] = false
	}

	for start := 0; start < len(cells); start += predictBatchSize {
		end := min(start+predictBatchSize, len(cells))
		batch := cells[start:end]
		labels, err := classifier.Predict(ctx, model, dataset.Columns(batch), dataset.FeatureColumns)
		if err != nil {
			return nil, fmt.Errorf("predict cells %d-%d: %w", start, end, err)
		}
		if len(labels) != len(batch) {
			return nil, fmt.Errorf("got %d labels for %d cells", len(labels), len(batch))
		}
		for i, s := range batch {
			if s.ID < 0 || s.ID >= grid.Len() {
				return nil, fmt.Errorf("cell %d is outside the %dx%d grid", s.ID, grid.Cols, grid.Rows)
			}
			m.Valid[s.ID] = true
			m.Bits[s.ID] = labels[i] == 1
		}
	}
	return m, nil
}
