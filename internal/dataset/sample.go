package dataset

import (
	"time"

	"github.com/Vibencrypt/COD492/internal/weather"
)

// Sample is one row of the flood susceptibility training table.
type Sample struct {
	ID        int     `csv:"id"`
	Latitude  float64 `csv:"latitude"`
	Longitude float64 `csv:"longitude"`
	X         float64 `csv:"x"`
	Y         float64 `csv:"y"`
	// Label is 1 when the point fell inside the mapped flood extent.
	Label     int     `csv:"label"`
	Elevation float64 `csv:"elevation"`
	Slope     float64 `csv:"slope"`
	TPILarge  float64 `csv:"tpi_5000m"`
	TPISmall  float64 `csv:"tpi_500m"`
	weather.Summary
	CreatedAt time.Time `csv:"created_at"`
}

const LabelColumn = "label"

// FeatureColumns are the classifier inputs, in table order.
var FeatureColumns = []string{
	"elevation", "slope", "tpi_5000m", "tpi_500m",
	"precipitation_total", "precipitation_max_daily", "rain_total", "et0_total",
}

func (s Sample) features() map[string]float64 {
	return map[string]float64{
		"elevation":               s.Elevation,
		"slope":                   s.Slope,
		"tpi_5000m":               s.TPILarge,
		"tpi_500m":                s.TPISmall,
		"precipitation_total":     s.PrecipitationTotal,
		"precipitation_max_daily": s.PrecipitationMax,
		"rain_total":              s.RainTotal,
		"et0_total":               s.ET0Total,
	}
}
