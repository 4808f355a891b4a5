package flood

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Vibencrypt/COD492/internal/edge"
	"github.com/Vibencrypt/COD492/internal/otsu"
	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var histogramParams = raster.HistogramParams{Bins: 255, BinWidth: 0.1}

func testGrid(cols, rows int) raster.Grid {
	return raster.Grid{Cols: cols, Rows: rows, OriginX: 600000, OriginY: 2950000, PixelWidth: 10, PixelHeight: -10, CRS: "EPSG:32645"}
}

func mustRaster(t *testing.T, grid raster.Grid, values []float64) *raster.Raster {
	t.Helper()
	r, err := raster.New(grid, values)
	require.NoError(t, err)
	return r
}

// shoreline is water (-20 dB) left of column split and land (-5 dB) elsewhere.
func shoreline(t *testing.T, cols, rows, split int) *raster.Raster {
	t.Helper()
	grid := testGrid(cols, rows)
	values := make([]float64, grid.Len())
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			values[grid.Index(x, y)] = -5
			if x < split {
				values[grid.Index(x, y)] = -20
			}
		}
	}
	return mustRaster(t, grid, values)
}

func TestDetectFloodExtent_IdenticalScenes(t *testing.T) {
	scene := shoreline(t, 8, 4, 3)
	d := &Detector{Histogram: histogramParams}

	res, err := d.DetectFloodExtent(context.Background(), scene, scene, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, res.PreThreshold, res.PostThreshold)
	assert.Zero(t, res.FloodedPixels)
	for _, b := range res.Extent.Bits {
		assert.False(t, b)
	}
}

func TestDetectFloodExtent_NotCoregistered(t *testing.T) {
	pre := shoreline(t, 8, 4, 3)
	d := &Detector{Histogram: histogramParams}

	shifted := shoreline(t, 8, 4, 5)
	shifted.OriginX += 10
	coarse := shoreline(t, 8, 4, 5)
	coarse.PixelWidth, coarse.PixelHeight = 20, -20

	for name, post := range map[string]*raster.Raster{"extent": shifted, "resolution": coarse} {
		t.Run(name, func(t *testing.T) {
			_, err := d.DetectFloodExtent(context.Background(), pre, post, nil, 10)
			require.Error(t, err)
			assert.True(t, errors.Is(err, raster.ErrNotCoregistered))
			var coErr *raster.CoregistrationError
			require.True(t, errors.As(err, &coErr))
			assert.Equal(t, name, coErr.Field)
		})
	}
}

func threeByThree(t *testing.T) (*raster.Raster, *raster.Raster) {
	grid := testGrid(3, 3)
	pre := mustRaster(t, grid, []float64{
		-5, -5, -5,
		-5, -5, -5,
		-5, -5, -5,
	})
	post := mustRaster(t, grid, []float64{
		-5, -5, -5,
		-18, -18, -18,
		-5, -5, -5,
	})
	return pre, post
}

func TestDetectFloodExtent_MiddleRowFlooded(t *testing.T) {
	pre, post := threeByThree(t)
	d := &Detector{Histogram: histogramParams, OnDegenerate: BorrowPairedThreshold}

	res, err := d.DetectFloodExtent(context.Background(), pre, post, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, -5.0, res.PostThreshold)
	assert.Equal(t, res.PostThreshold, res.PreThreshold)
	assert.True(t, res.PreBorrowed)
	assert.False(t, res.PostBorrowed)
	assert.Equal(t, []bool{
		false, false, false,
		true, true, true,
		false, false, false,
	}, res.Extent.Bits)
	assert.Equal(t, 3, res.FloodedPixels)
	assert.Zero(t, res.PreWater.Count())
	assert.InDelta(t, 300, res.FloodedArea(), 1e-9)
}

func TestDetectFloodExtent_DegeneratePropagates(t *testing.T) {
	pre, post := threeByThree(t)

	d := &Detector{Histogram: histogramParams}
	_, err := d.DetectFloodExtent(context.Background(), pre, post, nil, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, otsu.ErrDegenerateHistogram))
	assert.Contains(t, err.Error(), "pre-event")

	d.OnDegenerate = BorrowPairedThreshold
	_, err = d.DetectFloodExtent(context.Background(), pre, pre, nil, 10)
	assert.ErrorIs(t, err, otsu.ErrDegenerateHistogram)
}

func TestDetectFloodExtent_Adjustment(t *testing.T) {
	pre := shoreline(t, 30, 4, 10)
	grid := pre.Grid
	values := make([]float64, grid.Len())
	for i := range values {
		values[i] = -19 + float64(i%30)*0.5
	}
	post := mustRaster(t, grid, values)

	base := &Detector{Histogram: histogramParams}
	adjusted := &Detector{Histogram: histogramParams, Adjustment: -2}

	r0, err := base.DetectFloodExtent(context.Background(), pre, post, nil, 10)
	require.NoError(t, err)
	r1, err := adjusted.DetectFloodExtent(context.Background(), pre, post, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, r0.PreThreshold-2, r1.PreThreshold)
	assert.Equal(t, r0.PostThreshold-2, r1.PostThreshold)
	assert.LessOrEqual(t, r1.PreWater.Count(), r0.PreWater.Count())
	assert.LessOrEqual(t, r1.PostWater.Count(), r0.PostWater.Count())
	assert.Less(t, r1.PostWater.Count(), r0.PostWater.Count())
}

func TestDetectFloodExtent_EdgeGuided(t *testing.T) {
	pre := shoreline(t, 40, 40, 10)
	post := shoreline(t, 40, 40, 25)

	params := edge.DefaultParams()
	params.BufferMeters = 50
	d := &Detector{Histogram: histogramParams, EdgeGuide: &params}

	res, err := d.DetectFloodExtent(context.Background(), pre, post, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, -5.0, res.PreThreshold)
	assert.Equal(t, -5.0, res.PostThreshold)
	assert.Equal(t, 15*40, res.FloodedPixels)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			flooded, _ := res.Extent.At(x, y)
			assert.Equal(t, x >= 10 && x < 25, flooded, "pixel (%d,%d)", x, y)
		}
	}
}

func TestThreshold_EdgeGuideFallsBackWithoutEdges(t *testing.T) {
	grid := testGrid(30, 30)
	values := make([]float64, grid.Len())
	for i := range values {
		values[i] = -5
	}
	for y := 14; y < 17; y++ {
		for x := 14; x < 17; x++ {
			values[grid.Index(x, y)] = -20
		}
	}
	pond := mustRaster(t, grid, values)

	params := edge.DefaultParams()
	params.MinEdgeLength = 50
	d := &Detector{Histogram: histogramParams, EdgeGuide: &params}

	threshold, err := d.Threshold(context.Background(), pond, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, -5.0, threshold)
}

func TestDetectFloodExtent_ValidityMask(t *testing.T) {
	pre, post := threeByThree(t)
	valid := raster.FullMask(pre.Grid)
	valid.Bits[post.Index(0, 1)] = false

	d := &Detector{Histogram: histogramParams, OnDegenerate: BorrowPairedThreshold, ValidityMask: valid}
	res, err := d.DetectFloodExtent(context.Background(), pre, post, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FloodedPixels)

	d.ValidityMask = raster.FullMask(testGrid(4, 4))
	_, err = d.DetectFloodExtent(context.Background(), pre, post, nil, 10)
	assert.ErrorIs(t, err, raster.ErrNotCoregistered)
}

func TestDetectFloodExtent_Cancelled(t *testing.T) {
	scene := shoreline(t, 8, 4, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &Detector{Histogram: histogramParams}
	_, err := d.DetectFloodExtent(ctx, scene, scene, nil, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaterMask(t *testing.T) {
	_, post := threeByThree(t)
	water, threshold, err := WaterMask(post, nil, 10, histogramParams, 0)
	require.NoError(t, err)
	assert.Equal(t, -5.0, threshold)
	assert.Equal(t, 3, water.Count())

	pre, _ := threeByThree(t)
	_, _, err = WaterMask(pre, nil, 10, histogramParams, 0)
	assert.ErrorIs(t, err, otsu.ErrDegenerateHistogram)
}

func TestParseDegeneratePolicy(t *testing.T) {
	for _, p := range []DegeneratePolicy{PropagateDegenerate, BorrowPairedThreshold} {
		got, err := ParseDegeneratePolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseDegeneratePolicy("ignore")
	assert.Error(t, err)
}

func TestProgression(t *testing.T) {
	baseline := shoreline(t, 30, 4, 10)
	aug3 := time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC)
	aug13 := time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC)
	aug25 := time.Date(2024, 8, 25, 0, 0, 0, 0, time.UTC)

	scenes := []Scene{
		{Date: aug13, Raster: shoreline(t, 30, 4, 25)},
		{Date: aug3, Raster: shoreline(t, 30, 4, 20)},
		{Date: aug25, Raster: shoreline(t, 30, 4, 15)},
	}

	d := &Detector{Histogram: histogramParams}
	steps, err := Progression(context.Background(), d, baseline, scenes, nil, 10)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, aug3, steps[0].Date)
	assert.Equal(t, 10*4, steps[0].Result.FloodedPixels)
	assert.Equal(t, 10*4, steps[0].NewPixels)

	assert.Equal(t, aug13, steps[1].Date)
	assert.Equal(t, 15*4, steps[1].Result.FloodedPixels)
	assert.Equal(t, 5*4, steps[1].NewPixels)

	assert.Equal(t, aug25, steps[2].Date)
	assert.Equal(t, 5*4, steps[2].Result.FloodedPixels)
	assert.Zero(t, steps[2].NewPixels)
	assert.Equal(t, 15*4, steps[2].Cumulative.Count())
}

func TestProgression_MissingDataKeepsEarlierFlooding(t *testing.T) {
	baseline := shoreline(t, 8, 4, 2)
	first := shoreline(t, 8, 4, 4)
	second := shoreline(t, 8, 4, 4)
	gap := second.Index(2, 0)
	second.Values[gap] = math.NaN()
	second.Valid[gap] = false

	d := &Detector{Histogram: histogramParams}
	steps, err := Progression(context.Background(), d, baseline, []Scene{
		{Date: time.Date(2023, 8, 3, 0, 0, 0, 0, time.UTC), Raster: first},
		{Date: time.Date(2023, 8, 13, 0, 0, 0, 0, time.UTC), Raster: second},
	}, nil, 10)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, 8, steps[0].Cumulative.Count())
	assert.Equal(t, 7, steps[1].Result.FloodedPixels)
	assert.Equal(t, 8, steps[1].Cumulative.Count())
	assert.Zero(t, steps[1].NewPixels)

	flooded, valid := steps[1].Cumulative.At(2, 0)
	assert.True(t, flooded)
	assert.True(t, valid)
}
