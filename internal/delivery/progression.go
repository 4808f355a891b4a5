package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/Vibencrypt/COD492/internal/logger"
	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/sentinel"
	"github.com/Vibencrypt/COD492/internal/utils"
	"github.com/Vibencrypt/COD492/output"
	"github.com/google/uuid"
)

type ProgressionRequest struct {
	Region        string
	RegionID      string
	BaselineStart time.Time
	PostStarts    []time.Time
	WindowDays    int
	Policy        flood.DegeneratePolicy
	EdgeGuided    bool
	Pipeline      properties.Pipeline
}

// Progression maps the flood at every post-event window against one
// baseline and writes a frame per date. It returns the frame paths.
func Progression(ctx context.Context, req ProgressionRequest) ([]flood.Step, []string, error) {
	log := logger.New("delivery")

	reg, err := loadRegion(req.Region, req.RegionID)
	if err != nil {
		return nil, nil, err
	}
	baseline, err := reg.scene(ctx, sentinel.S1VV, req.BaselineStart, req.WindowDays)
	if err != nil {
		return nil, nil, fmt.Errorf("baseline scene: %w", err)
	}

	rasters, err := sentinel.GetScenes(ctx, req.Region, reg.lonLat, sentinel.S1VV, req.PostStarts, req.WindowDays)
	if err != nil {
		return nil, nil, err
	}
	if len(rasters) == 0 {
		return nil, nil, fmt.Errorf("no post-event scene found for %d windows", len(req.PostStarts))
	}

	scenes := make([]flood.Scene, 0, len(rasters))
	for _, date := range utils.GetSortedKeys(rasters, true) {
		scenes = append(scenes, flood.Scene{Date: date, Raster: rasters[date]})
	}
	if skipped := len(req.PostStarts) - len(scenes); skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("windows without acquisition")
	}

	detector := NewDetector(req.Pipeline, req.Policy, req.EdgeGuided)
	steps, err := flood.Progression(ctx, detector, baseline, scenes, reg.projected, req.Pipeline.Scale)
	if err != nil {
		return nil, nil, err
	}

	dir, err := output.ResultDir(req.Region, uuid.NewString())
	if err != nil {
		return nil, nil, err
	}
	paths, err := output.CreateProgressionFrames(steps, filepath.Join(dir, "progression"))
	if err != nil {
		return nil, nil, err
	}
	log.Info().Int("frames", len(paths)).Str("dir", dir).Msg("progression written")
	return steps, paths, nil
}
