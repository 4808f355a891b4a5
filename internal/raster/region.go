package raster

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RegionMask marks the pixels whose centre falls inside region.
// A nil region covers the whole grid.
func RegionMask(grid Grid, region orb.Geometry) *Mask {
	if region == nil {
		return FullMask(grid)
	}

	m := NewMask(grid)
	bound := region.Bound()
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			p := grid.PixelCenter(x, y)
			if !bound.Contains(p) {
				continue
			}
			m.Bits[grid.Index(x, y)] = Contains(region, p)
		}
	}
	return m
}

// Contains reports whether p lies inside a polygonal geometry.
func Contains(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	case orb.Ring:
		return planar.RingContains(geom, p)
	case orb.Bound:
		return geom.Contains(p)
	case orb.Collection:
		for _, child := range geom {
			if Contains(child, p) {
				return true
			}
		}
	}
	return false
}
