package weather

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vibencrypt/COD492/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const archiveBody = `{
  "daily": {
    "time": ["2024-08-01", "2024-08-02", "2024-08-03"],
    "precipitation_sum": [12.5, null, 40.1],
    "rain_sum": [12.0, 0.0, 39.0],
    "et0_fao_evapotranspiration": [3.1, 3.3, 2.0]
  }
}`

func fakeArchive(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	oldURL, oldDelay, oldCache := archiveURL, retryDelay, weatherCache
	archiveURL, retryDelay = srv.URL, time.Millisecond
	weatherCache = cache.NewFileCacheAt[HistoricalWeather](t.TempDir())
	t.Cleanup(func() { archiveURL, retryDelay, weatherCache = oldURL, oldDelay, oldCache })
}

func TestFetchWeather(t *testing.T) {
	var calls atomic.Int32
	fakeArchive(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "26.500000", r.URL.Query().Get("latitude"))
		assert.Equal(t, "precipitation_sum,rain_sum,et0_fao_evapotranspiration", r.URL.Query().Get("daily"))
		io.WriteString(w, archiveBody)
	})

	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC)
	history, err := FetchWeather(context.Background(), 26.5, 86.9, start, end, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 12.5, history[start].Precipitation)
	assert.Zero(t, history[start.AddDate(0, 0, 1)].Precipitation)

	s := history.Summary()
	assert.InDelta(t, 52.6, s.PrecipitationTotal, 1e-9)
	assert.Equal(t, 40.1, s.PrecipitationMax)
	assert.InDelta(t, 51, s.RainTotal, 1e-9)
	assert.InDelta(t, 8.4, s.ET0Total, 1e-9)

	again, err := FetchWeather(context.Background(), 26.5, 86.9, start, end, 3)
	require.NoError(t, err)
	assert.Equal(t, history, again)
	assert.Equal(t, int32(1), calls.Load(), "second call must be served from cache")
}

func TestFetchWeather_Retries(t *testing.T) {
	var calls atomic.Int32
	fakeArchive(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, archiveBody)
	})

	_, err := FetchWeather(context.Background(), 26.5, 86.9, time.Now(), time.Now(), 3)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchWeather_GivesUp(t *testing.T) {
	fakeArchive(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := FetchWeather(context.Background(), 26.5, 86.9, time.Now(), time.Now(), 2)
	assert.ErrorContains(t, err, "after 2 attempts")
}

func TestSnapToGrid(t *testing.T) {
	lat, lon := SnapToGrid(26.5349, 86.9651)
	assert.InDelta(t, 26.5, lat, 1e-9)
	assert.InDelta(t, 87.0, lon, 1e-9)
}
