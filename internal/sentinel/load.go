package sentinel

import (
	"fmt"
	"strconv"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/utils"
	"github.com/airbusgeo/godal"
)

func openDataset(path string) (*godal.Dataset, error) {
	godal.RegisterAll()
	return godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
}

// LoadRaster reads band 1 of a GeoTIFF. No-data and NaN samples become invalid pixels.
func LoadRaster(path string) (*raster.Raster, error) {
	var (
		r      *raster.Raster
		gdlErr error
	)
	utils.ExecuteWithMutex(func() {
		r, gdlErr = loadRaster(path)
	})
	return r, gdlErr
}

func loadRaster(path string) (*raster.Raster, error) {
	ds, err := openDataset(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	structure := ds.Structure()
	width, height := structure.SizeX, structure.SizeY

	geoTransform, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	grid, err := raster.GridFromGeoTransform(width, height, geoTransform, ds.Projection())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("%s has no raster band", path)
	}
	band := bands[0]
	data := make([]float64, width*height)
	if err := band.Read(0, 0, data, width, height); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %w", err)
	}

	if noData, ok := band.NoData(); ok {
		return raster.NewWithNoData(grid, data, noData)
	}
	return raster.New(grid, data)
}

// warpToGrid reprojects src onto grid (in EPSG epsg) and writes the result to dst.
func warpToGrid(src, dst string, grid raster.Grid, epsg int) error {
	var warpErr error
	utils.ExecuteWithMutex(func() {
		ds, err := openDataset(src)
		if err != nil {
			warpErr = fmt.Errorf("failed to open %s: %w", src, err)
			return
		}
		defer ds.Close()

		bound := grid.Bound()
		f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
		out, err := ds.Warp(dst, []string{
			"-of", "GTiff",
			"-t_srs", fmt.Sprintf("EPSG:%d", epsg),
			"-te", f(bound.Min.X()), f(bound.Min.Y()), f(bound.Max.X()), f(bound.Max.Y()),
			"-ts", strconv.Itoa(grid.Cols), strconv.Itoa(grid.Rows),
			"-r", "bilinear",
			"-dstnodata", "nan",
			"-overwrite",
		})
		if err != nil {
			warpErr = fmt.Errorf("failed to warp %s: %w", src, err)
			return
		}
		warpErr = out.Close()
	})
	return warpErr
}
