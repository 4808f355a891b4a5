package sentinel

import (
	"fmt"
	"math"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/utils"
	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

const WGS84 = 4326

// UTMZoneEPSG returns the WGS84 / UTM EPSG code of the zone holding p (lon, lat).
func UTMZoneEPSG(p orb.Point) int {
	zone := int(math.Floor((p.Lon()+180)/6)) + 1
	if zone > 60 {
		zone = 60
	}
	if p.Lat() < 0 {
		return 32700 + zone
	}
	return 32600 + zone
}

// TargetGrid snaps bound outwards to multiples of resolution so that every
// scene warped over the same region lands on the same pixels.
func TargetGrid(bound orb.Bound, resolution float64, crs string) raster.Grid {
	xmin := math.Floor(bound.Min.X()/resolution) * resolution
	xmax := math.Ceil(bound.Max.X()/resolution) * resolution
	ymin := math.Floor(bound.Min.Y()/resolution) * resolution
	ymax := math.Ceil(bound.Max.Y()/resolution) * resolution
	return raster.Grid{
		Cols:        max(1, int(math.Round((xmax-xmin)/resolution))),
		Rows:        max(1, int(math.Round((ymax-ymin)/resolution))),
		OriginX:     xmin,
		OriginY:     ymax,
		PixelWidth:  resolution,
		PixelHeight: -resolution,
		CRS:         crs,
	}
}

// ProjectGeometry reprojects a copy of g between two EPSG codes.
func ProjectGeometry(g orb.Geometry, fromEPSG, toEPSG int) (orb.Geometry, error) {
	if fromEPSG == toEPSG {
		return orb.Clone(g), nil
	}

	var out orb.Geometry
	var projErr error
	utils.ExecuteWithMutex(func() {
		srcSR, err := godal.NewSpatialRefFromEPSG(fromEPSG)
		if err != nil {
			projErr = err
			return
		}
		defer srcSR.Close()
		dstSR, err := godal.NewSpatialRefFromEPSG(toEPSG)
		if err != nil {
			projErr = err
			return
		}
		defer dstSR.Close()
		tr, err := godal.NewTransform(srcSR, dstSR)
		if err != nil {
			projErr = err
			return
		}
		defer tr.Close()

		out = project.Geometry(orb.Clone(g), func(p orb.Point) orb.Point {
			xs, ys := []float64{p.X()}, []float64{p.Y()}
			if err := tr.TransformEx(xs, ys, nil, nil); err != nil && projErr == nil {
				projErr = fmt.Errorf("transform error: %w", err)
			}
			return orb.Point{xs[0], ys[0]}
		})
	})
	if projErr != nil {
		return nil, projErr
	}
	return out, nil
}

// PixelToLatLon returns the WGS84 coordinates of the centre of pixel (x, y).
func PixelToLatLon(grid raster.Grid, epsg, x, y int) (float64, float64, error) {
	p, err := ProjectGeometry(grid.PixelCenter(x, y), epsg, WGS84)
	if err != nil {
		return 0, 0, err
	}
	pt := p.(orb.Point)
	return pt.Lat(), pt.Lon(), nil
}

// LatLonToPixel is the inverse of PixelToLatLon.
func LatLonToPixel(grid raster.Grid, epsg int, lat, lon float64) (int, int, error) {
	p, err := ProjectGeometry(orb.Point{lon, lat}, WGS84, epsg)
	if err != nil {
		return 0, 0, err
	}
	x, y, ok := grid.PixelAt(p.(orb.Point))
	if !ok {
		return 0, 0, fmt.Errorf("latitude %f and longitude %f are out of bounds for the image", lat, lon)
	}
	return x, y, nil
}

// RegionEPSG returns the UTM zone scenes of g (lon/lat) are warped to.
func RegionEPSG(g orb.Geometry) (int, error) {
	centroid, err := Centroid(g)
	if err != nil {
		return 0, err
	}
	return UTMZoneEPSG(centroid), nil
}

// Locator converts pixels of one grid to WGS84 with a single transform.
type Locator struct {
	grid raster.Grid
	tr   *godal.Transform
	srs  []*godal.SpatialRef
}

func NewLocator(grid raster.Grid, epsg int) (*Locator, error) {
	l := &Locator{grid: grid}
	var initErr error
	utils.ExecuteWithMutex(func() {
		src, err := godal.NewSpatialRefFromEPSG(epsg)
		if err != nil {
			initErr = err
			return
		}
		dst, err := godal.NewSpatialRefFromEPSG(WGS84)
		if err != nil {
			src.Close()
			initErr = err
			return
		}
		l.srs = []*godal.SpatialRef{src, dst}
		l.tr, initErr = godal.NewTransform(src, dst)
	})
	if initErr != nil {
		l.Close()
		return nil, initErr
	}
	return l, nil
}

// PointLatLon converts a point in the grid CRS.
func (l *Locator) PointLatLon(p orb.Point) (float64, float64, error) {
	xs, ys := []float64{p.X()}, []float64{p.Y()}
	var err error
	utils.ExecuteWithMutex(func() {
		err = l.tr.TransformEx(xs, ys, nil, nil)
	})
	if err != nil {
		return 0, 0, fmt.Errorf("transform error: %w", err)
	}
	return ys[0], xs[0], nil
}

// PixelLatLon converts the centre of pixel (x, y).
func (l *Locator) PixelLatLon(x, y int) (float64, float64, error) {
	return l.PointLatLon(l.grid.PixelCenter(x, y))
}

func (l *Locator) Close() {
	utils.ExecuteWithMutex(func() {
		if l.tr != nil {
			l.tr.Close()
		}
		for _, sr := range l.srs {
			sr.Close()
		}
	})
}
