package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/Vibencrypt/COD492/internal/cache"
	"github.com/Vibencrypt/COD492/internal/logger"
)

var (
	archiveURL = "https://archive-api.open-meteo.com/v1/archive"
	retryDelay = 10 * time.Second
	httpClient = &http.Client{Timeout: 60 * time.Second}
)

type DailyData struct {
	Time          []string   `json:"time"`
	Precipitation []*float64 `json:"precipitation_sum"`
	Rain          []*float64 `json:"rain_sum"`
	ET0           []*float64 `json:"et0_fao_evapotranspiration"`
}

type WeatherResponse struct {
	Daily DailyData `json:"daily"`
}

type Weather struct {
	Precipitation float64 `json:"precipitation"`
	Rain          float64 `json:"rain"`
	ET0           float64 `json:"et0"`
}

type HistoricalWeather map[time.Time]Weather

// Summary aggregates a precipitation history into susceptibility features (mm).
type Summary struct {
	PrecipitationTotal float64 `csv:"precipitation_total"`
	PrecipitationMax   float64 `csv:"precipitation_max_daily"`
	RainTotal          float64 `csv:"rain_total"`
	ET0Total           float64 `csv:"et0_total"`
}

func (h HistoricalWeather) Summary() Summary {
	var s Summary
	for _, w := range h {
		s.PrecipitationTotal += w.Precipitation
		s.PrecipitationMax = math.Max(s.PrecipitationMax, w.Precipitation)
		s.RainTotal += w.Rain
		s.ET0Total += w.ET0
	}
	return s
}

// SnapToGrid rounds a coordinate to the archive's 0.1 degree cells so that
// nearby points share one request and one cache entry.
func SnapToGrid(latitude, longitude float64) (float64, float64) {
	return math.Round(latitude*10) / 10, math.Round(longitude*10) / 10
}

var weatherCache cache.CacheService[HistoricalWeather] = cache.NewFileCache[HistoricalWeather]("weather")

// FetchWeather returns the daily history at a point, served from the file cache when possible.
func FetchWeather(ctx context.Context, latitude, longitude float64, startDate, endDate time.Time, retries int) (HistoricalWeather, error) {
	log := logger.New("weather")

	cacheKey := weatherCache.GenerateKey(
		fmt.Sprintf("%f", latitude), fmt.Sprintf("%f", longitude),
		startDate.Format(time.DateOnly), endDate.Format(time.DateOnly),
	)
	if cached, ok := weatherCache.Get(cacheKey); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", latitude))
	params.Set("longitude", fmt.Sprintf("%f", longitude))
	params.Set("start_date", startDate.Format(time.DateOnly))
	params.Set("end_date", endDate.Format(time.DateOnly))
	params.Set("daily", "precipitation_sum,rain_sum,et0_fao_evapotranspiration")
	params.Set("timezone", "Asia/Kathmandu")

	for attempt := 1; attempt <= retries; attempt++ {
		weatherData, err := get(ctx, archiveURL+"?"+params.Encode())
		if err == nil {
			dataParsed, err := parse(weatherData)
			if err != nil {
				return nil, err
			}
			if err := weatherCache.Set(cacheKey, dataParsed); err != nil {
				log.Warn().Err(err).Msg("failed to cache weather")
			}
			return dataParsed, nil
		}

		log.Warn().Err(err).Int("attempt", attempt).Int("retries", retries).Msg("failed to retrieve weather, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to retrieve data after %d attempts", retries)
}

func get(ctx context.Context, u string) (*WeatherResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var weatherData WeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&weatherData); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &weatherData, nil
}

func parse(weatherData *WeatherResponse) (HistoricalWeather, error) {
	daily := weatherData.Daily
	dataParsed := HistoricalWeather{}
	for i, date := range daily.Time {
		parsedDate, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		dataParsed[parsedDate] = Weather{
			Precipitation: valueAt(daily.Precipitation, i),
			Rain:          valueAt(daily.Rain, i),
			ET0:           valueAt(daily.ET0, i),
		}
	}
	return dataParsed, nil
}

// valueAt treats missing days (null in the archive) as zero.
func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
