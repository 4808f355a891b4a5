// Package raster holds the in-memory single-band raster model and the
// reductions the flood pipeline needs: masks, histograms, point samples and
// neighbourhood filters.
package raster

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Grid places a Cols x Rows pixel array on the ground. It follows the GDAL
// north-up GeoTransform: PixelHeight is negative when rows run southwards.
type Grid struct {
	Cols        int
	Rows        int
	OriginX     float64
	OriginY     float64
	PixelWidth  float64
	PixelHeight float64
	CRS         string
}

func GridFromGeoTransform(cols, rows int, gt [6]float64, crs string) (Grid, error) {
	if gt[2] != 0 || gt[4] != 0 {
		return Grid{}, fmt.Errorf("rotated geotransforms are not supported: %v", gt)
	}
	g := Grid{
		Cols:        cols,
		Rows:        rows,
		OriginX:     gt[0],
		PixelWidth:  gt[1],
		OriginY:     gt[3],
		PixelHeight: gt[5],
		CRS:         crs,
	}
	if err := g.validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

func (g Grid) validate() error {
	if g.Cols <= 0 || g.Rows <= 0 {
		return fmt.Errorf("grid size must be positive, got %dx%d", g.Cols, g.Rows)
	}
	if g.PixelWidth == 0 || g.PixelHeight == 0 {
		return fmt.Errorf("grid pixel size must be non-zero, got %gx%g", g.PixelWidth, g.PixelHeight)
	}
	return nil
}

func (g Grid) GeoTransform() [6]float64 {
	return [6]float64{g.OriginX, g.PixelWidth, 0, g.OriginY, 0, g.PixelHeight}
}

func (g Grid) Len() int {
	return g.Cols * g.Rows
}

func (g Grid) Index(x, y int) int {
	return y*g.Cols + x
}

func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Cols && y >= 0 && y < g.Rows
}

// NominalScale is the ground-sample distance of one pixel in CRS units.
func (g Grid) NominalScale() float64 {
	return math.Abs(g.PixelWidth)
}

// PixelCenter converts pixel coordinates to the CRS coordinates of the pixel centre.
func (g Grid) PixelCenter(x, y int) orb.Point {
	return orb.Point{
		g.OriginX + g.PixelWidth*(float64(x)+0.5),
		g.OriginY + g.PixelHeight*(float64(y)+0.5),
	}
}

// PixelAt returns the pixel that contains p.
func (g Grid) PixelAt(p orb.Point) (int, int, bool) {
	x := int(math.Floor((p.X() - g.OriginX) / g.PixelWidth))
	y := int(math.Floor((p.Y() - g.OriginY) / g.PixelHeight))
	return x, y, g.InBounds(x, y)
}

func (g Grid) Bound() orb.Bound {
	x0, y0 := g.OriginX, g.OriginY
	x1 := g.OriginX + g.PixelWidth*float64(g.Cols)
	y1 := g.OriginY + g.PixelHeight*float64(g.Rows)
	return orb.Bound{
		Min: orb.Point{math.Min(x0, x1), math.Min(y0, y1)},
		Max: orb.Point{math.Max(x0, x1), math.Max(y0, y1)},
	}
}

// Stride converts a reduction scale into a pixel step, never finer than the native grid.
func (g Grid) Stride(scale float64) int {
	if scale <= 0 || g.NominalScale() == 0 {
		return 1
	}
	step := int(math.Round(scale / g.NominalScale()))
	if step < 1 {
		return 1
	}
	return step
}

// Coarsen returns a grid with the same origin and CRS whose pixels each
// cover factor x factor pixels of g. A partial block at the edge gets a whole pixel.
func (g Grid) Coarsen(factor int) Grid {
	if factor <= 1 {
		return g
	}
	c := g
	c.Cols = (g.Cols + factor - 1) / factor
	c.Rows = (g.Rows + factor - 1) / factor
	c.PixelWidth *= float64(factor)
	c.PixelHeight *= float64(factor)
	return c
}
