package properties

import (
	"os"

	"github.com/Vibencrypt/COD492/internal/edge"
	"github.com/Vibencrypt/COD492/internal/raster"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

func LogLevel() string {
	return os.Getenv("LOG_LEVEL")
}

func CopernicusClientIDs() string {
	return os.Getenv("COPERNICUS_CLIENT_ID")
}

func CopernicusClientSecrets() string {
	return os.Getenv("COPERNICUS_CLIENT_SECRET")
}

func CopernicusTokenURL() string {
	return getOrDefault("COPERNICUS_TOKEN_URL", "https://identity.dataspace.copernicus.eu/auth/realms/CDSE/protocol/openid-connect/token")
}

func CopernicusProcessURL() string {
	return getOrDefault("COPERNICUS_PROCESS_URL", "https://sh.dataspace.copernicus.eu/api/v1/process")
}

func ClassifierAddr() string {
	return getOrDefault("CLASSIFIER_ADDR", "localhost:50051")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}

func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}

func getOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type Color struct {
	R, G, B uint8
}

var ColorMap = map[string]Color{
	"flooded":         {220, 20, 60},
	"flooded_earlier": {255, 160, 122},
	"water":           {30, 144, 255},
	"land":            {235, 235, 220},
	"no_data":         {0, 0, 0},
	"permanent":       {0, 0, 139},
	"susceptible":     {255, 140, 0},
}

// Pipeline holds the tuned parameters of a flood run over the Kosi basin.
type Pipeline struct {
	Histogram  raster.HistogramParams `json:"histogram"`
	Scale      float64                `json:"scale"`
	Adjustment float64                `json:"adjustment"`
	Edge       edge.Params            `json:"edge"`
	// SpeckleRadius is the focal median radius in pixels; 0 disables the filter.
	SpeckleRadius float64 `json:"speckleRadius"`
}

func DefaultPipeline() Pipeline {
	return Pipeline{
		Histogram:  raster.HistogramParams{Bins: 255, BinWidth: 0.1},
		Scale:      10,
		Adjustment: 0,
		Edge:       edge.DefaultParams(),
	}
}
