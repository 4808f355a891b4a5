// Package terrain derives susceptibility features from a DEM.
package terrain

import (
	"fmt"
	"math"

	"github.com/Vibencrypt/COD492/internal/raster"
)

// Slope returns the slope in degrees using Horn's 3x3 gradient. Neighbours
// that are off the grid or without data take the centre elevation.
func Slope(dem *raster.Raster) *raster.Raster {
	out := dem.Clone()
	dx := math.Abs(dem.PixelWidth)
	dy := math.Abs(dem.PixelHeight)
	for y := 0; y < dem.Rows; y++ {
		for x := 0; x < dem.Cols; x++ {
			i := dem.Index(x, y)
			if !dem.Valid[i] {
				continue
			}
			c := dem.Values[i]
			z := func(ox, oy int) float64 {
				if v, ok := dem.At(x+ox, y+oy); ok {
					return v
				}
				return c
			}
			gx := ((z(1, -1) + 2*z(1, 0) + z(1, 1)) - (z(-1, -1) + 2*z(-1, 0) + z(-1, 1))) / (8 * dx)
			gy := ((z(-1, 1) + 2*z(0, 1) + z(1, 1)) - (z(-1, -1) + 2*z(0, -1) + z(1, -1))) / (8 * dy)
			out.Values[i] = math.Atan(math.Hypot(gx, gy)) * 180 / math.Pi
		}
	}
	return out
}

// TPI is the topographic position index: elevation minus the mean elevation
// within radiusMeters. Positive on ridges, negative in valleys.
func TPI(dem *raster.Raster, radiusMeters float64) (*raster.Raster, error) {
	if !(radiusMeters > 0) {
		return nil, fmt.Errorf("tpi radius must be positive, got %g", radiusMeters)
	}
	radius := radiusMeters / dem.NominalScale()
	if radius < 1 {
		return nil, fmt.Errorf("tpi radius %gm is smaller than one pixel (%gm)", radiusMeters, dem.NominalScale())
	}

	mean := raster.FocalMean(dem, radius)
	out := dem.Clone()
	for i := range out.Values {
		if out.Valid[i] {
			out.Values[i] -= mean.Values[i]
		}
	}
	return out, nil
}

// Features bundles the terrain rasters sampled for each training point.
type Features struct {
	Elevation *raster.Raster
	Slope     *raster.Raster
	TPILarge  *raster.Raster
	TPISmall  *raster.Raster
}

// Derive computes every terrain feature, with TPI at the two given radii.
func Derive(dem *raster.Raster, largeRadius, smallRadius float64) (*Features, error) {
	large, err := TPI(dem, largeRadius)
	if err != nil {
		return nil, fmt.Errorf("large tpi: %w", err)
	}
	small, err := TPI(dem, smallRadius)
	if err != nil {
		return nil, fmt.Errorf("small tpi: %w", err)
	}
	return &Features{
		Elevation: dem,
		Slope:     Slope(dem),
		TPILarge:  large,
		TPISmall:  small,
	}, nil
}
