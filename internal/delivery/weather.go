package delivery

import (
	"context"
	"time"

	"github.com/Vibencrypt/COD492/internal/weather"
)

type fetchFunc func(ctx context.Context, latitude, longitude float64, start, end time.Time, retries int) (weather.HistoricalWeather, error)

// weatherSource summarises the precipitation over a fixed period. Points are
// snapped to the archive grid so neighbours share a request.
type weatherSource struct {
	start, end time.Time
	retries    int
	fetch      fetchFunc
}

func newWeatherSource(start, end time.Time) *weatherSource {
	return &weatherSource{start: start, end: end, retries: 10, fetch: weather.FetchWeather}
}

func (w *weatherSource) Summary(ctx context.Context, latitude, longitude float64) (weather.Summary, error) {
	lat, lon := weather.SnapToGrid(latitude, longitude)
	history, err := w.fetch(ctx, lat, lon, w.start, w.end, w.retries)
	if err != nil {
		return weather.Summary{}, err
	}
	return history.Summary(), nil
}
