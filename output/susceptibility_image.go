package output

import (
	"fmt"
	"image"

	"github.com/Vibencrypt/COD492/internal/raster"
)

// SusceptibilityImage colours the cells classified as flood prone, the
// other classified cells and the cells without a prediction.
func SusceptibilityImage(m *raster.Mask) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Cols, m.Rows))
	susceptible, land, noData := rgba("susceptible"), rgba("land"), rgba("no_data")
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			i := m.Index(x, y)
			switch {
			case !m.Valid[i]:
				img.SetRGBA(x, y, noData)
			case m.Bits[i]:
				img.SetRGBA(x, y, susceptible)
			default:
				img.SetRGBA(x, y, land)
			}
		}
	}
	return img
}

func CreateSusceptibilityImage(m *raster.Mask, title, outputPath string) error {
	classified := 0
	for _, v := range m.Valid {
		if v {
			classified++
		}
	}
	lines := []string{
		title,
		fmt.Sprintf("flood prone %d of %d cells (%.0f m)", m.Count(), classified, m.NominalScale()),
	}
	legend := []legendEntry{
		{"Flood prone", rgba("susceptible")},
		{"Not flood prone", rgba("land")},
		{"No data", rgba("no_data")},
	}
	return savePNG(withLegend(SusceptibilityImage(m), lines, legend), outputPath)
}
