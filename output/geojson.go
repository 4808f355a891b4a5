package output

import (
	"fmt"
	"os"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Locator converts a pixel position to WGS84 latitude and longitude.
type Locator func(x, y int) (lat, lon float64, err error)

// FloodedPoints returns one GeoJSON point per set pixel of extent, at the
// pixel centre.
func FloodedPoints(extent *raster.Mask, locate Locator) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for y := 0; y < extent.Rows; y++ {
		for x := 0; x < extent.Cols; x++ {
			if set, valid := extent.At(x, y); !set || !valid {
				continue
			}
			lat, lon, err := locate(x, y)
			if err != nil {
				return nil, fmt.Errorf("pixel %d,%d: %w", x, y, err)
			}
			f := geojson.NewFeature(orb.Point{lon, lat})
			f.Properties["x"] = x
			f.Properties["y"] = y
			fc.Append(f)
		}
	}
	return fc, nil
}

func CreateFloodGeoJSON(extent *raster.Mask, locate Locator, outputPath string) error {
	fc, err := FloodedPoints(extent, locate)
	if err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("error encoding GeoJSON: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("error creating GeoJSON file: %w", err)
	}
	return nil
}
