package output

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid() raster.Grid {
	return raster.Grid{Cols: 3, Rows: 1, OriginX: 500000, OriginY: 2900000, PixelWidth: 10, PixelHeight: -10}
}

func mask(bits ...bool) *raster.Mask {
	m := raster.NewMask(testGrid())
	copy(m.Bits, bits)
	return m
}

func testResult() *flood.Result {
	pre := mask(true, false, false)
	post := mask(true, true, false)
	post.Valid[2] = false
	extent := post.And(pre.Not())
	return &flood.Result{
		PreThreshold:  -15,
		PostThreshold: -14,
		PreWater:      pre,
		PostWater:     post,
		Extent:        extent,
		FloodedPixels: extent.Count(),
	}
}

func TestNormalizeAndRamp(t *testing.T) {
	assert.Equal(t, 0.0, normalize(-30, -25, 0))
	assert.Equal(t, 1.0, normalize(5, -25, 0))
	assert.Equal(t, 0.5, normalize(-12.5, -25, 0))
	assert.Equal(t, 0.0, normalize(3, 3, 3))

	blue := valueToColor(0)
	assert.Equal(t, uint8(255), blue.B)
	red := valueToColor(1)
	assert.Equal(t, uint8(255), red.R)
	assert.Equal(t, uint8(0), red.B)
}

func TestFloodImage(t *testing.T) {
	img := FloodImage(testResult())

	assert.Equal(t, rgba("permanent"), img.RGBAAt(0, 0))
	assert.Equal(t, rgba("flooded"), img.RGBAAt(1, 0))
	assert.Equal(t, rgba("no_data"), img.RGBAAt(2, 0))
}

func TestProgressionFrame(t *testing.T) {
	first := flood.Step{Date: time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), Result: testResult(), Cumulative: mask(false, true, false)}
	second := flood.Step{Date: time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC), Result: testResult(), Cumulative: mask(true, true, false), NewPixels: 1}

	img := ProgressionFrame(second, &first)
	assert.Equal(t, rgba("flooded"), img.RGBAAt(0, 0))
	assert.Equal(t, rgba("flooded_earlier"), img.RGBAAt(1, 0))

	img = ProgressionFrame(first, nil)
	assert.Equal(t, rgba("flooded"), img.RGBAAt(1, 0))
}

func TestCreateProgressionFrames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "progression")
	steps := []flood.Step{
		{Date: time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC), Result: testResult(), Cumulative: mask(false, true, false), NewPixels: 1},
		{Date: time.Date(2024, 8, 13, 0, 0, 0, 0, time.UTC), Result: testResult(), Cumulative: mask(true, true, false), NewPixels: 1},
	}

	paths, err := CreateProgressionFrames(steps, dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "frame_000_2024_08_03.png", filepath.Base(paths[0]))
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	f, err := os.Open(filepath.Join(dir, "progression.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "date", records[0][0])
	assert.Equal(t, "2024-08-13", records[2][0])
	assert.Equal(t, "2", records[2][5])

	_, err = CreateProgressionFrames(nil, dir)
	assert.Error(t, err)
}

func TestCreateFloodImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flood.png")
	require.NoError(t, CreateFloodImage(testResult(), "kosi 2024-08-13", path))
	assert.FileExists(t, path)
}

func TestFloodedPoints(t *testing.T) {
	locate := func(x, y int) (float64, float64, error) {
		return 26 + float64(y), 86 + float64(x), nil
	}
	fc, err := FloodedPoints(testResult().Extent, locate)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.Point{87, 26}, fc.Features[0].Geometry)
	assert.Equal(t, 1, fc.Features[0].Properties["x"])

	_, err = FloodedPoints(testResult().Extent, func(int, int) (float64, float64, error) {
		return 0, 0, errors.New("no transform")
	})
	assert.Error(t, err)
}

func TestSusceptibilityImage(t *testing.T) {
	m := mask(true, false, false)
	m.Valid[2] = false

	img := SusceptibilityImage(m)
	assert.Equal(t, rgba("susceptible"), img.RGBAAt(0, 0))
	assert.Equal(t, rgba("land"), img.RGBAAt(1, 0))
	assert.Equal(t, rgba("no_data"), img.RGBAAt(2, 0))

	path := filepath.Join(t.TempDir(), "susceptibility.png")
	require.NoError(t, CreateSusceptibilityImage(m, "kosi", path))
	assert.FileExists(t, path)
}
