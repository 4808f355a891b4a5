package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/gocarina/gocsv"
)

// ProgressionRow is one line of the progression CSV.
type ProgressionRow struct {
	Date             string  `csv:"date"`
	PreThreshold     float64 `csv:"pre_threshold"`
	PostThreshold    float64 `csv:"post_threshold"`
	FloodedPixels    int     `csv:"flooded_pixels"`
	NewPixels        int     `csv:"new_pixels"`
	CumulativePixels int     `csv:"cumulative_pixels"`
	FloodedKm2       float64 `csv:"flooded_km2"`
}

// ProgressionFrame draws the cumulative extent at one step. Pixels first
// flooded at this date are highlighted against those flooded earlier.
func ProgressionFrame(step flood.Step, previous *flood.Step) *image.RGBA {
	img := FloodImage(step.Result)
	earlier := rgba("flooded_earlier")
	flooded := rgba("flooded")
	grid := step.Cumulative.Grid
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			i := grid.Index(x, y)
			if !step.Cumulative.Bits[i] || !step.Cumulative.Valid[i] {
				continue
			}
			if previous != nil && previous.Cumulative.Bits[i] && previous.Cumulative.Valid[i] {
				img.SetRGBA(x, y, earlier)
			} else {
				img.SetRGBA(x, y, flooded)
			}
		}
	}
	return img
}

func progressionRows(steps []flood.Step) []ProgressionRow {
	rows := make([]ProgressionRow, 0, len(steps))
	for _, s := range steps {
		rows = append(rows, ProgressionRow{
			Date:             s.Date.Format(time.DateOnly),
			PreThreshold:     s.Result.PreThreshold,
			PostThreshold:    s.Result.PostThreshold,
			FloodedPixels:    s.Result.FloodedPixels,
			NewPixels:        s.NewPixels,
			CumulativePixels: s.Cumulative.Count(),
			FloodedKm2:       s.Result.FloodedArea() / 1e6,
		})
	}
	return rows
}

// CreateProgressionFrames writes one PNG per step and a progression.csv
// summary into dir. It returns the frame paths in date order.
func CreateProgressionFrames(steps []flood.Step, dir string) ([]string, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("no progression steps")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create result folder: %w", err)
	}

	legend := []legendEntry{
		{"New", rgba("flooded")},
		{"Earlier", rgba("flooded_earlier")},
		{"Permanent", rgba("permanent")},
		{"Land", rgba("land")},
	}

	paths := make([]string, 0, len(steps))
	for i, step := range steps {
		var previous *flood.Step
		if i > 0 {
			previous = &steps[i-1]
		}
		lines := []string{
			step.Date.Format("2006-01-02"),
			fmt.Sprintf("flooded %d px  new %d px", step.Cumulative.Count(), step.NewPixels),
		}
		framePath := filepath.Join(dir, fmt.Sprintf("frame_%03d_%s.png", i, step.Date.Format("2006_01_02")))
		if err := savePNG(withLegend(ProgressionFrame(step, previous), lines, legend), framePath); err != nil {
			return nil, err
		}
		paths = append(paths, framePath)
	}

	csvFile, err := os.Create(filepath.Join(dir, "progression.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to create progression csv: %w", err)
	}
	defer csvFile.Close()

	rows := progressionRows(steps)
	if err := gocsv.MarshalFile(&rows, csvFile); err != nil {
		return nil, fmt.Errorf("failed to write progression csv: %w", err)
	}
	return paths, nil
}
