package output

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Vibencrypt/COD492/internal/flood"
	"github.com/fogleman/gg"
)

const legendHeight = 90

type legendEntry struct {
	label string
	color color.RGBA
}

// FloodImage colours every pixel of a detection: newly flooded, water in both
// scenes, land, or no data.
func FloodImage(res *flood.Result) *image.RGBA {
	grid := res.Extent.Grid
	img := image.NewRGBA(image.Rect(0, 0, grid.Cols, grid.Rows))

	var (
		flooded   = rgba("flooded")
		permanent = rgba("permanent")
		land      = rgba("land")
		noData    = rgba("no_data")
	)
	for y := 0; y < grid.Rows; y++ {
		for x := 0; x < grid.Cols; x++ {
			i := grid.Index(x, y)
			switch {
			case res.Extent.Bits[i] && res.Extent.Valid[i]:
				img.SetRGBA(x, y, flooded)
			case !res.PostWater.Valid[i]:
				img.SetRGBA(x, y, noData)
			case res.PostWater.Bits[i] && res.PreWater.Bits[i]:
				img.SetRGBA(x, y, permanent)
			default:
				img.SetRGBA(x, y, land)
			}
		}
	}
	return img
}

// CreateFloodImage writes FloodImage with a legend and the thresholds used.
func CreateFloodImage(res *flood.Result, title, outputPath string) error {
	img := FloodImage(res)
	lines := []string{
		title,
		fmt.Sprintf("pre %.2f dB  post %.2f dB  flooded %d px", res.PreThreshold, res.PostThreshold, res.FloodedPixels),
	}
	legend := []legendEntry{
		{"Flooded", rgba("flooded")},
		{"Permanent water", rgba("permanent")},
		{"Land", rgba("land")},
		{"No data", rgba("no_data")},
	}
	return savePNG(withLegend(img, lines, legend), outputPath)
}

func withLegend(img image.Image, lines []string, legend []legendEntry) image.Image {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if width < 320 {
		width = 320
	}

	dc := gg.NewContext(width, height+legendHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(img, 0, 0)

	y := float64(height + 12)
	dc.SetRGB(0, 0, 0)
	for _, line := range lines {
		dc.DrawStringAnchored(line, 10, y, 0, 0.5)
		y += 16
	}

	x := 10.0
	for _, entry := range legend {
		c := entry.color
		dc.SetRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		dc.DrawRectangle(x, y, 12, 12)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		dc.DrawRectangle(x, y, 12, 12)
		dc.SetLineWidth(1)
		dc.Stroke()

		dc.DrawStringAnchored(entry.label, x+16, y+6, 0, 0.5)
		w, _ := dc.MeasureString(entry.label)
		x += w + 32
	}
	return dc.Image()
}
