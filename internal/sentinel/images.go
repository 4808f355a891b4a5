package sentinel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/Vibencrypt/COD492/internal/logger"
	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/paulmach/orb"
)

// SceneRequest selects one product over a region and acquisition window.
type SceneRequest struct {
	Region   string
	Geometry orb.Geometry // lon/lat
	Product  Product
	From     time.Time
	To       time.Time
}

func (r SceneRequest) fileName() string {
	return fmt.Sprintf("%s_%s_%s.tif", r.Product.Name, r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
}

func imagesDir() string {
	return filepath.Join(properties.RootPath(), "data", "images")
}

// GetScene returns the product warped onto the region's UTM grid, downloading
// it on first use. Windows without an acquisition are remembered in
// invalid_images.json and report ErrImageNotFound.
func GetScene(ctx context.Context, req SceneRequest) (*raster.Raster, error) {
	log := logger.New("sentinel")

	invalidFile := filepath.Join(imagesDir(), "invalid_images.json")
	dir := filepath.Join(imagesDir(), req.Region)
	name := req.fileName()
	path := filepath.Join(dir, name)

	invalid, err := loadImagesNotFound(invalidFile)
	if err != nil {
		return nil, err
	}
	if slices.Contains(invalid, filepath.Join(req.Region, name)) {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}

	if _, err := os.Stat(path); err == nil {
		return LoadRaster(path)
	}

	epsg, err := RegionEPSG(req.Geometry)
	if err != nil {
		return nil, err
	}
	projected, err := ProjectGeometry(req.Geometry, WGS84, epsg)
	if err != nil {
		return nil, fmt.Errorf("failed to project region: %w", err)
	}
	grid := TargetGrid(projected.Bound(), req.Product.Resolution, "")

	log.Info().Str("product", req.Product.Name).Str("file", name).Int("epsg", epsg).Msg("requesting image")
	content, err := requestImage(ctx, req.Product, req.From, req.To, req.Geometry.Bound())
	if err != nil {
		return nil, fmt.Errorf("error requesting image: %w", err)
	}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	rawPath := path + ".raw.tif"
	if err := os.WriteFile(rawPath, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write image file: %w", err)
	}
	defer os.Remove(rawPath)

	if err := warpToGrid(rawPath, path, grid, epsg); err != nil {
		return nil, err
	}

	r, err := LoadRaster(path)
	if err != nil {
		return nil, err
	}
	if r.ValidCount() == 0 {
		if err := saveImagesNotFound(invalidFile, []string{filepath.Join(req.Region, name)}); err != nil {
			log.Warn().Err(err).Msg("failed to record missing image")
		}
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("file", path).Msg("failed to delete empty image")
		}
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}
	return r, nil
}

// GetScenes fetches one scene per window start, spanning windowDays each.
// Windows without data are skipped.
func GetScenes(ctx context.Context, region string, geometry orb.Geometry, product Product, starts []time.Time, windowDays int) (map[time.Time]*raster.Raster, error) {
	scenes := make(map[time.Time]*raster.Raster, len(starts))
	for _, start := range starts {
		r, err := GetScene(ctx, SceneRequest{
			Region:   region,
			Geometry: geometry,
			Product:  product,
			From:     start,
			To:       start.AddDate(0, 0, windowDays).Add(-time.Second),
		})
		if errors.Is(err, ErrImageNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		scenes[start] = r
	}
	return scenes, nil
}

func loadImagesNotFound(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", filePath, err)
	}
	return names, nil
}

func saveImagesNotFound(filePath string, imagesNotFound []string) error {
	existing, err := loadImagesNotFound(filePath)
	if err != nil {
		existing = nil
	}

	unique := make(map[string]struct{})
	for _, image := range append(existing, imagesNotFound...) {
		unique[image] = struct{}{}
	}
	names := make([]string, 0, len(unique))
	for image := range unique {
		names = append(names, image)
	}
	sort.Strings(names)

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
