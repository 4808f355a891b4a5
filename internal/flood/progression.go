package flood

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/paulmach/orb"
)

// Scene is one dated acquisition.
type Scene struct {
	Date   time.Time
	Raster *raster.Raster
}

// Step is the flood state at one post-event date.
type Step struct {
	Date   time.Time
	Result *Result
	// Cumulative is every pixel flooded at this date or any earlier one.
	Cumulative *raster.Mask
	// NewPixels counts pixels flooded for the first time at this date.
	NewPixels int
}

// Progression runs d against one baseline for every scene, in date order.
func Progression(ctx context.Context, d *Detector, baseline *raster.Raster, scenes []Scene, region orb.Geometry, scale float64) ([]Step, error) {
	ordered := make([]Scene, len(scenes))
	copy(ordered, scenes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	steps := make([]Step, 0, len(ordered))
	var cumulative *raster.Mask
	for _, s := range ordered {
		if err := ctx.Err(); err != nil {
			return steps, err
		}

		res, err := d.DetectFloodExtent(ctx, baseline, s.Raster, region, scale)
		if err != nil {
			return steps, fmt.Errorf("scene %s: %w", s.Date.Format(time.DateOnly), err)
		}

		step := Step{Date: s.Date, Result: res}
		if cumulative == nil {
			step.Cumulative = res.Extent
			step.NewPixels = res.FloodedPixels
		} else {
			// A later acquisition without data over a pixel does not unflood it.
			step.Cumulative = cumulative.Union(res.Extent)
			step.NewPixels = step.Cumulative.Count() - cumulative.Count()
		}
		cumulative = step.Cumulative
		steps = append(steps, step)

		d.Logger.Info().
			Str("date", s.Date.Format(time.DateOnly)).
			Int("flooded_pixels", res.FloodedPixels).
			Int("new_pixels", step.NewPixels).
			Msg("progression step")
	}
	return steps, nil
}
