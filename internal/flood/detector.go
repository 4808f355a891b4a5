// Package flood maps newly flooded pixels from a pre-event and a
// post-event SAR backscatter scene using automatic Otsu thresholds.
package flood

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vibencrypt/COD492/internal/edge"
	"github.com/Vibencrypt/COD492/internal/otsu"
	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DegeneratePolicy decides what happens when a scene has no Otsu threshold.
type DegeneratePolicy int

const (
	// PropagateDegenerate returns the DegenerateHistogramError to the caller.
	PropagateDegenerate DegeneratePolicy = iota
	// BorrowPairedThreshold reuses the other scene's threshold when only one
	// of the pair is degenerate, e.g. a pre-event scene that is all land.
	BorrowPairedThreshold
)

func (p DegeneratePolicy) String() string {
	switch p {
	case PropagateDegenerate:
		return "propagate"
	case BorrowPairedThreshold:
		return "borrow"
	}
	return fmt.Sprintf("DegeneratePolicy(%d)", int(p))
}

func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch s {
	case "", "propagate":
		return PropagateDegenerate, nil
	case "borrow":
		return BorrowPairedThreshold, nil
	}
	return 0, fmt.Errorf("unknown degenerate policy %q", s)
}

// Detector computes flood extents. The zero value is not usable; set at least Histogram.
type Detector struct {
	Histogram raster.HistogramParams
	// Adjustment (dB) is added to both computed thresholds.
	Adjustment float64
	// EdgeGuide, when set, builds each histogram from the pixels near long
	// water/land edges only.
	EdgeGuide    *edge.Params
	OnDegenerate DegeneratePolicy
	// ValidityMask is applied to the final extent, e.g. to drop permanent water or steep slopes.
	ValidityMask *raster.Mask
	// SpeckleRadius applies a focal median of that radius (pixels) before thresholding. 0 disables it.
	SpeckleRadius float64
	Logger        zerolog.Logger
}

type Result struct {
	PreThreshold  float64
	PostThreshold float64
	PreWater      *raster.Mask
	PostWater     *raster.Mask
	Extent        *raster.Mask
	FloodedPixels int
	// PreBorrowed and PostBorrowed report a threshold taken from the paired scene.
	PreBorrowed  bool
	PostBorrowed bool
}

// FloodedArea returns the flooded area in squared CRS units.
func (r *Result) FloodedArea() float64 {
	g := r.Extent.Grid
	return float64(r.FloodedPixels) * g.NominalScale() * g.NominalScale()
}

// DetectFloodExtent thresholds pre and post independently and returns the
// pixels that are water after the event but were not water before.
// region limits the histograms; nil uses the whole scene. scale is the
// histogram sampling distance in CRS units.
func (d *Detector) DetectFloodExtent(ctx context.Context, pre, post *raster.Raster, region orb.Geometry, scale float64) (*Result, error) {
	if err := raster.CheckCoregistered(pre.Grid, post.Grid); err != nil {
		return nil, fmt.Errorf("pre/post scenes: %w", err)
	}
	if d.ValidityMask != nil {
		if err := raster.CheckCoregistered(pre.Grid, d.ValidityMask.Grid); err != nil {
			return nil, fmt.Errorf("validity mask: %w", err)
		}
	}

	regionMask := raster.RegionMask(pre.Grid, region)

	var (
		preT, postT     float64
		preErr, postErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		preT, preErr = d.threshold(gctx, "pre", pre, regionMask, scale)
		return fatal(preErr)
	})
	g.Go(func() error {
		postT, postErr = d.threshold(gctx, "post", post, regionMask, scale)
		return fatal(postErr)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	switch {
	case preErr == nil && postErr == nil:
	case preErr != nil && postErr == nil && d.OnDegenerate == BorrowPairedThreshold:
		d.Logger.Warn().Err(preErr).Float64("threshold", postT).Msg("pre-event scene has no threshold, using post-event threshold")
		preT, res.PreBorrowed = postT, true
	case postErr != nil && preErr == nil && d.OnDegenerate == BorrowPairedThreshold:
		d.Logger.Warn().Err(postErr).Float64("threshold", preT).Msg("post-event scene has no threshold, using pre-event threshold")
		postT, res.PostBorrowed = preT, true
	case preErr != nil:
		return nil, fmt.Errorf("pre-event scene: %w", preErr)
	default:
		return nil, fmt.Errorf("post-event scene: %w", postErr)
	}

	res.PreThreshold = preT + d.Adjustment
	res.PostThreshold = postT + d.Adjustment
	res.PreWater = pre.Lt(res.PreThreshold)
	res.PostWater = post.Lt(res.PostThreshold)
	res.Extent = res.PostWater.And(res.PreWater.Not())
	if d.ValidityMask != nil {
		res.Extent = res.Extent.UpdateMask(d.ValidityMask)
	}
	res.FloodedPixels = res.Extent.Count()

	d.Logger.Info().
		Float64("pre_threshold", res.PreThreshold).
		Float64("post_threshold", res.PostThreshold).
		Int("flooded_pixels", res.FloodedPixels).
		Msg("flood extent computed")

	return res, nil
}

// Threshold returns the calibrated threshold of a single scene.
func (d *Detector) Threshold(ctx context.Context, r *raster.Raster, region orb.Geometry, scale float64) (float64, error) {
	t, err := d.threshold(ctx, "scene", r, raster.RegionMask(r.Grid, region), scale)
	if err != nil {
		return 0, err
	}
	return t + d.Adjustment, nil
}

// SceneHistogram returns the histogram a single scene is thresholded on,
// after speckle filtering and edge restriction.
func (d *Detector) SceneHistogram(ctx context.Context, r *raster.Raster, region orb.Geometry, scale float64) (otsu.Histogram, error) {
	return d.histogram(ctx, "scene", r, raster.RegionMask(r.Grid, region), scale)
}

// threshold returns the raw Otsu threshold of one scene.
func (d *Detector) threshold(ctx context.Context, name string, r *raster.Raster, region *raster.Mask, scale float64) (float64, error) {
	hist, err := d.histogram(ctx, name, r, region, scale)
	if err != nil {
		return 0, err
	}
	t, err := otsu.ComputeThreshold(hist)
	if err != nil {
		return 0, err
	}

	d.Logger.Debug().Str("scene", name).Uint64("samples", hist.Total()).Float64("threshold", t).Msg("otsu threshold")
	return t, nil
}

func (d *Detector) histogram(ctx context.Context, name string, r *raster.Raster, region *raster.Mask, scale float64) (otsu.Histogram, error) {
	if err := ctx.Err(); err != nil {
		return otsu.Histogram{}, err
	}

	src := r
	if d.SpeckleRadius > 0 {
		src = raster.FocalMedian(src, d.SpeckleRadius)
	}
	if d.EdgeGuide != nil {
		restricted, err := d.EdgeGuide.Restrict(src)
		switch {
		case errors.Is(err, edge.ErrNoEdges):
			d.Logger.Warn().Str("scene", name).Msg("no long edges found, thresholding the whole scene")
		case err != nil:
			return otsu.Histogram{}, fmt.Errorf("%s edge buffer: %w", name, err)
		default:
			src = restricted
		}
	}

	if err := ctx.Err(); err != nil {
		return otsu.Histogram{}, err
	}

	hist, err := raster.ReduceHistogram(src, region, scale, d.Histogram)
	if err != nil {
		return otsu.Histogram{}, fmt.Errorf("%s histogram: %w", name, err)
	}
	return hist, nil
}

// fatal lets degenerate histograms through so the pair can be resolved after both finish.
func fatal(err error) error {
	if err == nil || errors.Is(err, otsu.ErrDegenerateHistogram) {
		return nil
	}
	return err
}

// WaterMask thresholds a single scene and returns its water pixels with the threshold used.
func WaterMask(r *raster.Raster, region orb.Geometry, scale float64, params raster.HistogramParams, adjustment float64) (*raster.Mask, float64, error) {
	d := Detector{Histogram: params, Adjustment: adjustment}
	t, err := d.Threshold(context.Background(), r, region, scale)
	if err != nil {
		return nil, 0, err
	}
	return r.Lt(t), t, nil
}
