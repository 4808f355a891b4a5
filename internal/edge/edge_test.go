package edge

import (
	"math"
	"testing"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrid(cols, rows int) raster.Grid {
	return raster.Grid{Cols: cols, Rows: rows, OriginX: 500000, OriginY: 2900000, PixelWidth: 10, PixelHeight: -10}
}

// shoreline returns a scene with water (-20 dB) left of column split and land (-5 dB) right of it.
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
	r, err := raster.New(grid, values)
	require.NoError(t, err)
	return r
}

func TestCanny_VerticalStep(t *testing.T) {
	r := shoreline(t, 20, 20, 10)
	edges := Canny(r.Lt(-16).Float(), 1, 1)

	for y := 0; y < 20; y++ {
		var cols []int
		for x := 0; x < 20; x++ {
			if v, _ := edges.At(x, y); v > 0 {
				cols = append(cols, x)
			}
		}
		require.Len(t, cols, 1, "row %d", y)
		assert.Contains(t, []int{9, 10}, cols[0])
	}
}

func TestCanny_FlatImageHasNoEdges(t *testing.T) {
	r, err := raster.Filled(testGrid(8, 8), 1)
	require.NoError(t, err)
	edges := Canny(r, 1, 1)
	for _, v := range edges.Values {
		assert.Zero(t, v)
	}
}

func TestConnectedPixelCount(t *testing.T) {
	r, err := raster.New(testGrid(3, 3), []float64{
		1, 1, 0,
		0, 1, 0,
		0, 0, 1,
	})
	require.NoError(t, err)

	eight := ConnectedPixelCount(r, 100, true)
	assert.Equal(t, []float64{
		4, 4, 5,
		5, 4, 5,
		5, 5, 4,
	}, eight.Values)

	four := ConnectedPixelCount(r, 100, false)
	assert.Equal(t, []float64{
		3, 3, 2,
		3, 3, 2,
		3, 3, 1,
	}, four.Values)

	capped := ConnectedPixelCount(r, 2, false)
	for _, v := range capped.Values {
		assert.LessOrEqual(t, v, 2.0)
	}
}

func TestConnectedPixelCount_SkipsNoData(t *testing.T) {
	r, err := raster.New(testGrid(3, 1), []float64{1, math.NaN(), 1})
	require.NoError(t, err)
	out := ConnectedPixelCount(r, 10, true)
	assert.Equal(t, 1.0, out.Values[0])
	assert.Equal(t, 1.0, out.Values[2])
	assert.False(t, out.Valid[1])
}

func TestDistanceTransform(t *testing.T) {
	t.Run("row", func(t *testing.T) {
		m := raster.NewMask(testGrid(5, 1))
		m.Bits[0] = true
		d := DistanceTransform(m)
		assert.Equal(t, []float64{0, 1, 2, 3, 4}, d.Values)
	})

	t.Run("centre", func(t *testing.T) {
		grid := testGrid(5, 5)
		m := raster.NewMask(grid)
		m.Bits[grid.Index(2, 2)] = true
		d := DistanceTransform(m)
		assert.InDelta(t, math.Sqrt(8), d.Values[grid.Index(0, 0)], 1e-12)
		assert.InDelta(t, 2, d.Values[grid.Index(2, 0)], 1e-12)
		assert.InDelta(t, math.Sqrt(5), d.Values[grid.Index(1, 0)], 1e-12)
		assert.Zero(t, d.Values[grid.Index(2, 2)])
	})

	t.Run("no features", func(t *testing.T) {
		d := DistanceTransform(raster.NewMask(testGrid(3, 2)))
		for _, v := range d.Values {
			assert.True(t, math.IsInf(v, 1))
		}
	})
}

func TestRestrictToEdgeBuffer(t *testing.T) {
	r := shoreline(t, 40, 40, 20)

	out, err := RestrictToEdgeBuffer(r, -16, DefaultParams(), 30)
	require.NoError(t, err)

	assert.Equal(t, 40*5, out.ValidCount())
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			_, ok := out.At(x, y)
			if x < 17 || x > 22 {
				assert.False(t, ok, "pixel (%d,%d) is beyond the buffer", x, y)
			}
		}
		_, ok := out.At(19, y)
		assert.True(t, ok)
		_, ok = out.At(20, y)
		assert.True(t, ok)
	}
}

func TestRestrictToEdgeBuffer_NoLongEdges(t *testing.T) {
	flat, err := raster.Filled(testGrid(30, 30), -5)
	require.NoError(t, err)
	_, err = RestrictToEdgeBuffer(flat, -16, DefaultParams(), 300)
	assert.ErrorIs(t, err, ErrNoEdges)

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
	pond, err := raster.New(grid, values)
	require.NoError(t, err)
	p := DefaultParams()
	p.MinEdgeLength = 50
	_, err = RestrictToEdgeBuffer(pond, -16, p, 300)
	assert.ErrorIs(t, err, ErrNoEdges)
}

func TestRestrictToEdgeBuffer_InvalidParams(t *testing.T) {
	r := shoreline(t, 10, 10, 5)
	tests := []struct {
		name   string
		mutate func(p *Params)
		buffer float64
	}{
		{"zero sigma", func(p *Params) { p.Sigma = 0 }, 300},
		{"zero buffer", func(p *Params) {}, 0},
		{"length above cap", func(p *Params) { p.MinEdgeLength = 200 }, 300},
		{"negative threshold", func(p *Params) { p.Threshold = -1 }, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			_, err := RestrictToEdgeBuffer(r, -16, p, tt.buffer)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}
