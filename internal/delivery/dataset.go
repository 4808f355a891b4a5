package delivery

import (
	"context"
	"fmt"

	"github.com/Vibencrypt/COD492/internal/dataset"
	"github.com/Vibencrypt/COD492/internal/logger"
	"github.com/Vibencrypt/COD492/internal/sentinel"
	"github.com/Vibencrypt/COD492/internal/terrain"
	"github.com/paulmach/orb"
)

// DatasetRequest samples a susceptibility table from one flood event.
type DatasetRequest struct {
	FloodRequest
	Points int
	Seed   int64
	// WeatherDays of precipitation history before the post-event window are summarised.
	WeatherDays int
	LargeTPI    float64
	SmallTPI    float64
}

func (r DatasetRequest) withDefaults() DatasetRequest {
	if r.WeatherDays == 0 {
		r.WeatherDays = 90
	}
	if r.LargeTPI == 0 {
		r.LargeTPI = 5000
	}
	if r.SmallTPI == 0 {
		r.SmallTPI = 500
	}
	return r
}

// CreateSusceptibilityDataset maps the flood, derives terrain features from
// the DEM and writes the labelled sample table. It returns the CSV path.
func CreateSusceptibilityDataset(ctx context.Context, req DatasetRequest) (string, []dataset.Sample, error) {
	log := logger.New("delivery")
	req = req.withDefaults()

	run, err := DetectFlood(ctx, req.FloodRequest)
	if err != nil {
		return "", nil, err
	}

	reg, err := loadRegion(req.Region, req.RegionID)
	if err != nil {
		return "", nil, err
	}
	dem, err := reg.scene(ctx, sentinel.DEM, req.PostStart, req.WindowDays)
	if err != nil {
		return "", nil, fmt.Errorf("dem: %w", err)
	}
	features, err := terrain.Derive(dem, req.LargeTPI, req.SmallTPI)
	if err != nil {
		return "", nil, err
	}

	locator, err := sentinel.NewLocator(dem.Grid, reg.epsg)
	if err != nil {
		return "", nil, err
	}
	defer locator.Close()

	_, postEnd := window(req.PostStart, req.WindowDays)
	samples, err := dataset.Build(ctx, dataset.BuildParams{
		Region:     run.Region,
		Points:     req.Points,
		Seed:       req.Seed,
		Extent:     run.Result.Extent,
		LabelScale: sentinel.DEM.Resolution,
		Terrain:    features,
		Weather:    newWeatherSource(req.PostStart.AddDate(0, 0, -req.WeatherDays), postEnd),
		Locate: func(p orb.Point) (float64, float64, error) {
			return locator.PointLatLon(p)
		},
	})
	if err != nil {
		return "", nil, err
	}

	filePath := dataset.BuildFilePath(req.Region, run.RunID)
	if err := dataset.Save(samples, filePath); err != nil {
		return "", nil, err
	}
	log.Info().Int("samples", len(samples)).Str("file", filePath).Msg("dataset created")
	return filePath, samples, nil
}
