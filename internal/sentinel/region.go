package sentinel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/utils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var ErrRegionNotFound = errors.New("region not found")

func regionsDir() string {
	return filepath.Join(properties.RootPath(), "data", "regions")
}

// ListRegions returns the names of the GeoJSON files under data/regions.
func ListRegions() ([]string, error) {
	entries, err := os.ReadDir(regionsDir())
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".geojson" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".geojson"))
	}
	sort.Strings(names)
	return names, nil
}

// GetRegion reads data/regions/<name>.geojson through OGR. With an id, the
// feature whose region_id matches is returned; without one, all polygons
// of the layer are merged into a MultiPolygon.
func GetRegion(name, id string) (orb.Geometry, error) {
	filePath := filepath.Join(regionsDir(), name+".geojson")

	var (
		geoms   []orb.Geometry
		readErr error
	)
	utils.ExecuteWithMutex(func() {
		ds, err := openDataset(filePath)
		if err != nil {
			readErr = err
			return
		}
		defer ds.Close()

		layers := ds.Layers()
		if len(layers) == 0 {
			readErr = fmt.Errorf("%s has no vector layer", filePath)
			return
		}
		layer := layers[0]
		for {
			feat := layer.NextFeature()
			if feat == nil {
				break
			}
			if id != "" {
				val, ok := feat.Fields()["region_id"]
				if !ok || val.String() != id {
					feat.Close()
					continue
				}
			}
			gj, err := feat.Geometry().GeoJSON()
			feat.Close()
			if err != nil {
				readErr = err
				return
			}
			g, err := geojson.UnmarshalGeometry([]byte(gj))
			if err != nil {
				readErr = fmt.Errorf("failed to unmarshal geometry: %w", err)
				return
			}
			geoms = append(geoms, g.Geometry())
		}
	})
	if readErr != nil {
		return nil, readErr
	}
	if len(geoms) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrRegionNotFound, name, id)
	}
	if len(geoms) == 1 {
		return geoms[0], nil
	}
	return MergePolygons(geoms), nil
}

// ListRegionIDs returns the region_id values of the features in data/regions/<name>.geojson.
func ListRegionIDs(name string) ([]string, error) {
	filePath := filepath.Join(regionsDir(), name+".geojson")

	var (
		ids     []string
		readErr error
	)
	utils.ExecuteWithMutex(func() {
		ds, err := openDataset(filePath)
		if err != nil {
			readErr = err
			return
		}
		defer ds.Close()

		for _, layer := range ds.Layers() {
			for feat := layer.NextFeature(); feat != nil; feat = layer.NextFeature() {
				if val, ok := feat.Fields()["region_id"]; ok && val.String() != "" {
					ids = append(ids, val.String())
				}
				feat.Close()
			}
		}
	})
	if readErr != nil {
		return nil, readErr
	}
	sort.Strings(ids)
	return ids, nil
}

// MergePolygons flattens polygon geometries into one MultiPolygon. Other geometry types are dropped.
func MergePolygons(geoms []orb.Geometry) orb.MultiPolygon {
	var mp orb.MultiPolygon
	for _, g := range geoms {
		switch geom := g.(type) {
		case orb.Polygon:
			mp = append(mp, geom)
		case orb.MultiPolygon:
			mp = append(mp, geom...)
		case orb.Collection:
			mp = append(mp, MergePolygons(geom)...)
		}
	}
	return mp
}

// Centroid returns the area-weighted centre of a polygonal geometry.
func Centroid(g orb.Geometry) (orb.Point, error) {
	centroid, area := planar.CentroidArea(g)
	if area <= 0 {
		return orb.Point{}, errors.New("error getting centroid")
	}
	return centroid, nil
}
