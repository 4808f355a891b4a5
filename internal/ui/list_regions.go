package ui

import (
	"fmt"

	"github.com/Vibencrypt/COD492/internal/sentinel"
)

// ListRegions prints the region files available under data/regions.
func ListRegions() {
	regions, err := sentinel.ListRegions()
	if err != nil {
		PrintError(fmt.Sprintf("Error reading regions folder: %s", err.Error()))
		return
	}
	PrintWarning("To add a new region, add its '.geojson' file at 'data/regions' folder.\nFeatures can be selected by their 'region_id' property.")

	fmt.Printf("%s\nAvailable regions:%s\n", ColorGreen, ColorReset)
	for _, region := range regions {
		fmt.Printf("%s- %s%s\n", ColorGreen, region, ColorReset)
	}
}
