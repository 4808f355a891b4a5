package dataset

import (
	"context"
	"fmt"
	"sync"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/terrain"
	"github.com/Vibencrypt/COD492/internal/weather"
	"github.com/paulmach/orb"
)

// GridParams selects the cells of a susceptibility map.
type GridParams struct {
	// Grid is the map grid, usually a coarsened DEM grid.
	Grid    raster.Grid
	Region  orb.Geometry
	Terrain *terrain.Features
	Weather WeatherSource
	Locate  Locator
	Workers int
}

// GridSamples reads the model features at the centre of every cell of
// p.Grid inside the region. Sample.ID is the cell index in p.Grid. Cells
// without terrain data are left out.
func GridSamples(ctx context.Context, p GridParams) ([]Sample, error) {
	inside := raster.RegionMask(p.Grid, p.Region)
	cells := make([]int, 0, inside.Count())
	for i, b := range inside.Bits {
		if b && inside.Valid[i] {
			cells = append(cells, i)
		}
	}
	if len(cells) == 0 {
		return nil, ErrEmptyRegion
	}

	var w WeatherSource
	if p.Weather != nil {
		w = &snappedWeather{source: p.Weather, summaries: make(map[[2]float64]weather.Summary)}
	}

	samples, err := collect(ctx, p.Workers, "Sampling cells", len(cells), func(i int) (Sample, bool, error) {
		cell := cells[i]
		center := p.Grid.PixelCenter(cell%p.Grid.Cols, cell/p.Grid.Cols)
		return sampleFeatures(ctx, p.Terrain, w, p.Locate, cell, center)
	})
	if err != nil {
		return nil, fmt.Errorf("error while sampling cells: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no cell of %d had terrain data", len(cells))
	}
	return samples, nil
}

// snappedWeather asks source once per weather grid cell.
type snappedWeather struct {
	source    WeatherSource
	mu        sync.Mutex
	summaries map[[2]float64]weather.Summary
}

func (w *snappedWeather) Summary(ctx context.Context, latitude, longitude float64) (weather.Summary, error) {
	lat, lon := weather.SnapToGrid(latitude, longitude)
	key := [2]float64{lat, lon}

	w.mu.Lock()
	s, ok := w.summaries[key]
	w.mu.Unlock()
	if ok {
		return s, nil
	}

	s, err := w.source.Summary(ctx, lat, lon)
	if err != nil {
		return weather.Summary{}, err
	}
	w.mu.Lock()
	w.summaries[key] = s
	w.mu.Unlock()
	return s, nil
}
