package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/terrain"
	"github.com/Vibencrypt/COD492/internal/weather"
	"github.com/gammazero/workerpool"
	"github.com/paulmach/orb"
	"github.com/schollz/progressbar/v3"
)

// WeatherSource summarises the precipitation history at a location.
type WeatherSource interface {
	Summary(ctx context.Context, latitude, longitude float64) (weather.Summary, error)
}

// Locator converts a projected point to WGS84 latitude and longitude.
type Locator func(p orb.Point) (lat, lon float64, err error)

type BuildParams struct {
	// Region is the sampling area in the rasters' CRS.
	Region orb.Geometry
	Points int
	Seed   int64
	// Extent labels each point; pixels outside it or without data label 0.
	Extent     *raster.Mask
	LabelScale float64
	Terrain    *terrain.Features
	Weather    WeatherSource
	Locate     Locator
	Workers    int
}

// Build samples labels and features at random points inside the region.
// Points without terrain data are skipped.
func Build(ctx context.Context, p BuildParams) ([]Sample, error) {
	points, err := RandomPoints(p.Region, p.Points, p.Seed)
	if err != nil {
		return nil, err
	}

	samples, err := collect(ctx, p.Workers, "Sampling points", len(points), func(i int) (Sample, bool, error) {
		s, ok, err := sampleFeatures(ctx, p.Terrain, p.Weather, p.Locate, i, points[i])
		if err != nil || !ok {
			return s, ok, err
		}
		if flooded, ok := raster.SampleMask(p.Extent, points[i], p.LabelScale); ok && flooded {
			s.Label = 1
		}
		return s, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error while building dataset: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no point of %d had terrain data", len(points))
	}
	return samples, nil
}

// collect runs sample for every index on a worker pool and returns the kept
// samples ordered by ID. The first error stops the collection.
func collect(ctx context.Context, workers int, description string, n int, sample func(i int) (Sample, bool, error)) ([]Sample, error) {
	if workers < 1 {
		workers = 16
	}

	var (
		mu          sync.Mutex
		samples     = make([]Sample, 0, n)
		progressBar = progressbar.Default(int64(n), description)
		createdAt   = time.Now().UTC()
	)

	wp := workerpool.New(workers)
	errChan := make(chan error, 1)
	var stopProcessing sync.Once

	for i := 0; i < n; i++ {
		wp.Submit(func() {
			if ctx.Err() != nil {
				stopProcessing.Do(func() { errChan <- ctx.Err() })
				return
			}
			s, ok, err := sample(i)
			if err != nil {
				stopProcessing.Do(func() { errChan <- err })
				return
			}

			mu.Lock()
			if ok {
				s.CreatedAt = createdAt
				samples = append(samples, s)
			}
			progressBar.Add(1)
			mu.Unlock()
		})
	}

	go func() {
		wp.StopWait()
		close(errChan)
	}()

	if err := <-errChan; err != nil {
		return nil, err
	}
	progressBar.Finish()

	sort.Slice(samples, func(i, j int) bool { return samples[i].ID < samples[j].ID })
	return samples, nil
}

// sampleFeatures reads the terrain and weather features at point. ok is
// false when a terrain raster has no data there.
func sampleFeatures(ctx context.Context, f *terrain.Features, w WeatherSource, locate Locator, id int, point orb.Point) (Sample, bool, error) {
	s := Sample{ID: id, X: point.X(), Y: point.Y()}

	features := []struct {
		r   *raster.Raster
		dst *float64
	}{
		{f.Elevation, &s.Elevation},
		{f.Slope, &s.Slope},
		{f.TPILarge, &s.TPILarge},
		{f.TPISmall, &s.TPISmall},
	}
	for _, feature := range features {
		v, ok := raster.SampleFirst(feature.r, point, 0)
		if !ok {
			return Sample{}, false, nil
		}
		*feature.dst = v
	}

	s.Longitude, s.Latitude = point.X(), point.Y()
	if locate != nil {
		lat, lon, err := locate(point)
		if err != nil {
			return Sample{}, false, fmt.Errorf("point %d: %w", id, err)
		}
		s.Latitude, s.Longitude = lat, lon
	}

	if w != nil {
		summary, err := w.Summary(ctx, s.Latitude, s.Longitude)
		if err != nil {
			return Sample{}, false, fmt.Errorf("point %d weather: %w", id, err)
		}
		s.Summary = summary
	}
	return s, true, nil
}
