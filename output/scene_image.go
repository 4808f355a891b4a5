package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/raster"
)

func normalize(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	norm := (value - min) / (max - min)
	if norm < 0 {
		return 0
	}
	if norm > 1 {
		return 1
	}
	return norm
}

func valueToColor(norm float64) color.RGBA {
	var r, g, b uint8
	if norm <= 0.5 {
		// blue to green
		ratio := norm / 0.5
		g = uint8(255 * ratio)
		b = uint8(255 * (1 - ratio))
	} else {
		// green to red
		ratio := (norm - 0.5) / 0.5
		r = uint8(255 * ratio)
		g = uint8(255 * (1 - ratio))
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func rgba(name string) color.RGBA {
	c := properties.ColorMap[name]
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// SceneImage renders r on a blue-green-red ramp stretched over [min, max].
// Pixels outside the range are clamped; invalid pixels use the no-data colour.
func SceneImage(r *raster.Raster, min, max float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Cols, r.Rows))
	noData := rgba("no_data")
	for y := 0; y < r.Rows; y++ {
		for x := 0; x < r.Cols; x++ {
			v, ok := r.At(x, y)
			if !ok {
				img.SetRGBA(x, y, noData)
				continue
			}
			img.SetRGBA(x, y, valueToColor(normalize(v, min, max)))
		}
	}
	return img
}

// CreateSceneImage writes a backscatter preview of r, stretched over its own
// value range, as a PNG.
func CreateSceneImage(r *raster.Raster, outputPath string) error {
	lo, hi, ok := r.MinMax()
	if !ok {
		return fmt.Errorf("raster has no valid pixel")
	}
	return savePNG(SceneImage(r, lo, hi), outputPath)
}

func savePNG(img image.Image, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}
