package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/Vibencrypt/COD492/internal/logger"
	"github.com/Vibencrypt/COD492/internal/notification"
	"github.com/Vibencrypt/COD492/internal/otsu"
	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/Vibencrypt/COD492/internal/sentinel"
	"github.com/Vibencrypt/COD492/internal/terrain"
	"github.com/Vibencrypt/COD492/output"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// FloodRequest selects a region and the pre/post acquisition windows.
type FloodRequest struct {
	Region     string
	RegionID   string
	PreStart   time.Time
	PostStart  time.Time
	WindowDays int
	Policy     flood.DegeneratePolicy
	EdgeGuided bool
	Pipeline   properties.Pipeline
	// MaxSlope (degrees) drops flooded pixels on steeper DEM slopes. 0 keeps every pixel.
	MaxSlope float64
}

// FloodRun is a finished detection and where its outputs were written.
type FloodRun struct {
	RunID string
	Dir   string
	EPSG  int
	// Region is the analysis region in the scenes' UTM CRS.
	Region orb.Geometry
	Result *flood.Result
}

// NewDetector builds a detector from the pipeline parameters.
func NewDetector(p properties.Pipeline, policy flood.DegeneratePolicy, edgeGuided bool) *flood.Detector {
	d := &flood.Detector{
		Histogram:     p.Histogram,
		Adjustment:    p.Adjustment,
		OnDegenerate:  policy,
		SpeckleRadius: p.SpeckleRadius,
		Logger:        logger.New("flood"),
	}
	if edgeGuided {
		params := p.Edge
		d.EdgeGuide = &params
	}
	return d
}

type region struct {
	name      string
	lonLat    orb.Geometry
	projected orb.Geometry
	epsg      int
}

func loadRegion(name, id string) (region, error) {
	geometry, err := sentinel.GetRegion(name, id)
	if err != nil {
		return region{}, err
	}
	epsg, err := sentinel.RegionEPSG(geometry)
	if err != nil {
		return region{}, err
	}
	projected, err := sentinel.ProjectGeometry(geometry, sentinel.WGS84, epsg)
	if err != nil {
		return region{}, fmt.Errorf("failed to project region %s: %w", name, err)
	}
	return region{name: name, lonLat: geometry, projected: projected, epsg: epsg}, nil
}

func window(start time.Time, days int) (time.Time, time.Time) {
	if days < 1 {
		days = 1
	}
	return start, start.AddDate(0, 0, days).Add(-time.Second)
}

func (r region) scene(ctx context.Context, product sentinel.Product, start time.Time, days int) (*raster.Raster, error) {
	from, to := window(start, days)
	return sentinel.GetScene(ctx, sentinel.SceneRequest{
		Region:   r.name,
		Geometry: r.lonLat,
		Product:  product,
		From:     from,
		To:       to,
	})
}

// DetectFlood downloads both scenes, maps the flood extent and writes the
// image, GeoTIFF and GeoJSON outputs under a new run folder.
func DetectFlood(ctx context.Context, req FloodRequest) (*FloodRun, error) {
	log := logger.New("delivery")
	runID := uuid.NewString()

	reg, err := loadRegion(req.Region, req.RegionID)
	if err != nil {
		return nil, err
	}

	pre, err := reg.scene(ctx, sentinel.S1VV, req.PreStart, req.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("pre-event scene: %w", err)
	}
	post, err := reg.scene(ctx, sentinel.S1VV, req.PostStart, req.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("post-event scene: %w", err)
	}

	detector := NewDetector(req.Pipeline, req.Policy, req.EdgeGuided)
	if req.MaxSlope > 0 {
		dem, err := reg.scene(ctx, sentinel.DEM, req.PostStart, req.WindowDays)
		if err != nil {
			return nil, fmt.Errorf("dem: %w", err)
		}
		detector.ValidityMask, err = slopeValidity(dem, pre.Grid, req.MaxSlope)
		if err != nil {
			return nil, err
		}
	}
	res, err := detector.DetectFloodExtent(ctx, pre, post, reg.projected, req.Pipeline.Scale)
	if err != nil {
		return nil, err
	}

	dir, err := output.ResultDir(req.Region, runID)
	if err != nil {
		return nil, err
	}
	run := &FloodRun{RunID: runID, Dir: dir, EPSG: reg.epsg, Region: reg.projected, Result: res}

	title := fmt.Sprintf("%s %s / %s", req.Region, req.PreStart.Format(time.DateOnly), req.PostStart.Format(time.DateOnly))
	if err := output.CreateFloodImage(res, title, filepath.Join(dir, "flood.png")); err != nil {
		return nil, err
	}
	if err := output.WriteMaskGeoTIFF(res.Extent, filepath.Join(dir, "flood_extent.tif")); err != nil {
		return nil, err
	}

	locator, err := sentinel.NewLocator(res.Extent.Grid, reg.epsg)
	if err != nil {
		return nil, err
	}
	defer locator.Close()
	if err := output.CreateFloodGeoJSON(res.Extent, locator.PixelLatLon, filepath.Join(dir, "flooded_points.geojson")); err != nil {
		return nil, err
	}

	log.Info().
		Str("run_id", runID).
		Str("dir", dir).
		Float64("pre_threshold", res.PreThreshold).
		Float64("post_threshold", res.PostThreshold).
		Int("flooded_pixels", res.FloodedPixels).
		Msg("flood detection finished")

	err = notification.SendFloodSummary(ctx, notification.FloodSummary{
		RunID:         runID,
		Region:        req.Region,
		PreDate:       req.PreStart.Format(time.DateOnly),
		PostDate:      req.PostStart.Format(time.DateOnly),
		PreThreshold:  res.PreThreshold,
		PostThreshold: res.PostThreshold,
		FloodedPixels: res.FloodedPixels,
		FloodedKm2:    res.FloodedArea() / 1e6,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to send flood summary")
	}
	return run, nil
}

// slopeValidity keeps the pixels of grid whose DEM slope is below maxSlope
// degrees. Pixels without elevation are dropped.
func slopeValidity(dem *raster.Raster, grid raster.Grid, maxSlope float64) (*raster.Mask, error) {
	slope, err := raster.Resample(terrain.Slope(dem), grid)
	if err != nil {
		return nil, fmt.Errorf("slope mask: %w", err)
	}
	return slope.Lt(maxSlope), nil
}

// SceneThreshold is the histogram and calibrated threshold of one scene.
type SceneThreshold struct {
	Histogram otsu.Histogram
	Scores    []otsu.Score
	Threshold float64
	Water     int
}

// ThresholdScene downloads one scene and reports how Otsu splits it.
func ThresholdScene(ctx context.Context, regionName, regionID string, start time.Time, windowDays int, p properties.Pipeline, edgeGuided bool) (*SceneThreshold, error) {
	reg, err := loadRegion(regionName, regionID)
	if err != nil {
		return nil, err
	}
	scene, err := reg.scene(ctx, sentinel.S1VV, start, windowDays)
	if err != nil {
		return nil, err
	}
	return thresholdRaster(ctx, NewDetector(p, flood.PropagateDegenerate, edgeGuided), scene, reg.projected, p.Scale)
}

func thresholdRaster(ctx context.Context, d *flood.Detector, scene *raster.Raster, area orb.Geometry, scale float64) (*SceneThreshold, error) {
	hist, err := d.SceneHistogram(ctx, scene, area, scale)
	if err != nil {
		return nil, err
	}
	scores, err := otsu.Scores(hist)
	if err != nil {
		return nil, err
	}
	t, err := otsu.ComputeThreshold(hist)
	if err != nil {
		return nil, err
	}
	t += d.Adjustment
	return &SceneThreshold{
		Histogram: hist,
		Scores:    scores,
		Threshold: t,
		Water:     scene.Lt(t).Count(),
	}, nil
}
