package sentinel

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kosi = orb.Bound{Min: orb.Point{86.8, 26.3}, Max: orb.Point{87.2, 26.7}}

func TestUTMZoneEPSG(t *testing.T) {
	assert.Equal(t, 32645, UTMZoneEPSG(orb.Point{86.9, 26.5}))
	assert.Equal(t, 32631, UTMZoneEPSG(orb.Point{3, 45}))
	assert.Equal(t, 32723, UTMZoneEPSG(orb.Point{-46.6, -23.5}))
	assert.Equal(t, 32660, UTMZoneEPSG(orb.Point{180, 10}))
}

func TestTargetGrid(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{500003, 2900001}, Max: orb.Point{500095, 2900049}}
	grid := TargetGrid(bound, 10, "EPSG:32645")

	assert.Equal(t, 500000.0, grid.OriginX)
	assert.Equal(t, 2900050.0, grid.OriginY)
	assert.Equal(t, 10, grid.Cols)
	assert.Equal(t, 5, grid.Rows)
	assert.Equal(t, -10.0, grid.PixelHeight)

	again := TargetGrid(orb.Bound{Min: orb.Point{500001, 2900009}, Max: orb.Point{500099, 2900041}}, 10, "EPSG:32645")
	assert.Equal(t, grid, again)
}

func TestCalculatePixels(t *testing.T) {
	assert.Equal(t, 1, calculatePixels(0, 10))
	assert.Equal(t, 1110, calculatePixels(0.1, 10))
	assert.Equal(t, maxPixels, calculatePixels(1, 10))
}

func TestBuildRequest(t *testing.T) {
	from := time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 6)
	body, err := buildRequest(S1VV, from, to, kosi)
	require.NoError(t, err)

	var payload struct {
		Input struct {
			Bounds struct {
				BBox []float64 `json:"bbox"`
			} `json:"bounds"`
			Data []struct {
				Type       string         `json:"type"`
				DataFilter map[string]any `json:"dataFilter"`
				Processing map[string]any `json:"processing"`
			} `json:"data"`
		} `json:"input"`
		Output struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"output"`
		Evalscript string `json:"evalscript"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, []float64{86.8, 26.3, 87.2, 26.7}, payload.Input.Bounds.BBox)
	require.Len(t, payload.Input.Data, 1)
	assert.Equal(t, "sentinel-1-grd", payload.Input.Data[0].Type)
	assert.Equal(t, "IW", payload.Input.Data[0].DataFilter["acquisitionMode"])
	assert.Equal(t, "SIGMA0_ELLIPSOID", payload.Input.Data[0].Processing["backCoeff"])
	assert.Equal(t, map[string]any{"from": "2024-08-10T00:00:00Z", "to": "2024-08-16T00:00:00Z"}, payload.Input.Data[0].DataFilter["timeRange"])
	assert.Equal(t, maxPixels, payload.Output.Width)
	assert.Contains(t, payload.Evalscript, "Math.log")

	body, err = buildRequest(DEM, from, to, kosi)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "processing")
}

func TestProductByName(t *testing.T) {
	p, err := ProductByName("dem")
	require.NoError(t, err)
	assert.Equal(t, DEM.Collection, p.Collection)
	_, err = ProductByName("s2")
	assert.Error(t, err)
}

func fakeCopernicus(t *testing.T, process http.HandlerFunc) {
	t.Helper()
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"secret-token","token_type":"bearer","expires_in":3600}`)
	}))
	t.Cleanup(token.Close)
	api := httptest.NewServer(process)
	t.Cleanup(api.Close)

	t.Setenv("COPERNICUS_CLIENT_ID", "id")
	t.Setenv("COPERNICUS_CLIENT_SECRET", "secret")
	t.Setenv("COPERNICUS_TOKEN_URL", token.URL)
	t.Setenv("COPERNICUS_PROCESS_URL", api.URL)

	delay := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = delay })
}

func TestRequestImage_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	fakeCopernicus(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("II*\x00tiff"))
	})

	content, err := requestImage(context.Background(), S1VV, time.Now(), time.Now(), kosi)
	require.NoError(t, err)
	assert.Equal(t, []byte("II*\x00tiff"), content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRequestImage_Forbidden(t *testing.T) {
	fakeCopernicus(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := requestImage(context.Background(), S1VV, time.Now(), time.Now(), kosi)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestRequestImage_MissingCredentials(t *testing.T) {
	t.Setenv("COPERNICUS_CLIENT_ID", "")
	_, err := requestImage(context.Background(), DEM, time.Now(), time.Now(), kosi)
	assert.ErrorContains(t, err, "missing required environment variables")

	t.Setenv("COPERNICUS_CLIENT_ID", "a,b")
	t.Setenv("COPERNICUS_CLIENT_SECRET", "x")
	_, err = requestImage(context.Background(), DEM, time.Now(), time.Now(), kosi)
	assert.ErrorContains(t, err, "mismatched")
}

func TestImagesNotFound(t *testing.T) {
	file := filepath.Join(t.TempDir(), "images", "invalid_images.json")

	names, err := loadImagesNotFound(file)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, saveImagesNotFound(file, []string{"kosi/s1_vv_2024-08-03_2024-08-08.tif"}))
	require.NoError(t, saveImagesNotFound(file, []string{"kosi/s1_vv_2024-08-03_2024-08-08.tif", "kosi/dem_a_b.tif"}))

	names, err = loadImagesNotFound(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"kosi/dem_a_b.tif", "kosi/s1_vv_2024-08-03_2024-08-08.tif"}, names)
}

func TestGetScene_KnownMissing(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ROOT_PATH", root)
	req := SceneRequest{
		Region:  "kosi",
		Product: S1VV,
		From:    time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2024, 8, 8, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, saveImagesNotFound(filepath.Join(root, "data", "images", "invalid_images.json"), []string{filepath.Join("kosi", req.fileName())}))

	_, err := GetScene(context.Background(), req)
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestMergePolygonsAndCentroid(t *testing.T) {
	square := func(x0, y0 float64) orb.Polygon {
		return orb.Polygon{orb.Ring{{x0, y0}, {x0 + 1, y0}, {x0 + 1, y0 + 1}, {x0, y0 + 1}, {x0, y0}}}
	}
	mp := MergePolygons([]orb.Geometry{square(0, 0), orb.MultiPolygon{square(2, 0)}, orb.Point{9, 9}})
	assert.Len(t, mp, 2)

	c, err := Centroid(mp)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, c.X(), 1e-9)
	assert.InDelta(t, 0.5, c.Y(), 1e-9)

	_, err = Centroid(orb.Point{1, 1})
	assert.Error(t, err)
}
