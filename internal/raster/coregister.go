package raster

import (
	"errors"
	"fmt"
	"math"
)

var ErrNotCoregistered = errors.New("rasters are not co-registered")

// CoregistrationError reports which part of two grids disagrees.
type CoregistrationError struct {
	Field string
	A, B  string
}

func (e *CoregistrationError) Error() string {
	return fmt.Sprintf("rasters are not co-registered: %s differs (%s vs %s)", e.Field, e.A, e.B)
}

func (e *CoregistrationError) Is(target error) bool {
	return target == ErrNotCoregistered
}

const coregistrationTolerance = 1e-9

// CheckCoregistered fails unless both grids share size, origin, resolution and CRS.
// An empty CRS on either side is treated as unknown and not compared.
func CheckCoregistered(a, b Grid) error {
	if a.Cols != b.Cols || a.Rows != b.Rows {
		return &CoregistrationError{Field: "size", A: fmt.Sprintf("%dx%d", a.Cols, a.Rows), B: fmt.Sprintf("%dx%d", b.Cols, b.Rows)}
	}
	if !closeTo(a.PixelWidth, b.PixelWidth) || !closeTo(a.PixelHeight, b.PixelHeight) {
		return &CoregistrationError{
			Field: "resolution",
			A:     fmt.Sprintf("%gx%g", a.PixelWidth, a.PixelHeight),
			B:     fmt.Sprintf("%gx%g", b.PixelWidth, b.PixelHeight),
		}
	}
	if !closeTo(a.OriginX, b.OriginX) || !closeTo(a.OriginY, b.OriginY) {
		return &CoregistrationError{
			Field: "extent",
			A:     fmt.Sprintf("(%g, %g)", a.OriginX, a.OriginY),
			B:     fmt.Sprintf("(%g, %g)", b.OriginX, b.OriginY),
		}
	}
	if a.CRS != "" && b.CRS != "" && a.CRS != b.CRS {
		return &CoregistrationError{Field: "crs", A: a.CRS, B: b.CRS}
	}
	return nil
}

func closeTo(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= coregistrationTolerance*scale
}
