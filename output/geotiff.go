package output

import (
	"fmt"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/utils"
	"github.com/airbusgeo/godal"
)

// MaskNoData is the byte written for invalid mask pixels.
const MaskNoData = 255

// WriteMaskGeoTIFF writes m as a single band Byte GeoTIFF: 1 where set, 0
// where clear and MaskNoData where invalid.
func WriteMaskGeoTIFF(m *raster.Mask, outputPath string) error {
	data := make([]uint8, m.Len())
	for i := range data {
		switch {
		case !m.Valid[i]:
			data[i] = MaskNoData
		case m.Bits[i]:
			data[i] = 1
		}
	}

	var writeErr error
	utils.ExecuteWithMutex(func() {
		writeErr = writeByteTIFF(outputPath, m.Grid, data)
	})
	return writeErr
}

func writeByteTIFF(outputPath string, grid raster.Grid, data []uint8) error {
	godal.RegisterAll()
	ds, err := godal.Create(godal.GTiff, outputPath, 1, godal.Byte, grid.Cols, grid.Rows,
		godal.CreationOption("COMPRESS=DEFLATE", "TILED=YES"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputPath, err)
	}

	if err := ds.SetGeoTransform(grid.GeoTransform()); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set GeoTransform: %w", err)
	}
	if grid.CRS != "" {
		sr, err := godal.NewSpatialRef(grid.CRS)
		if err != nil {
			ds.Close()
			return fmt.Errorf("invalid CRS %q: %w", grid.CRS, err)
		}
		defer sr.Close()
		if err := ds.SetSpatialRef(sr); err != nil {
			ds.Close()
			return fmt.Errorf("failed to set projection: %w", err)
		}
	}

	band := ds.Bands()[0]
	if err := band.SetNoData(MaskNoData); err != nil {
		ds.Close()
		return fmt.Errorf("failed to set no-data: %w", err)
	}
	if err := band.Write(0, 0, data, grid.Cols, grid.Rows); err != nil {
		ds.Close()
		return fmt.Errorf("failed to write mask: %w", err)
	}
	return ds.Close()
}
