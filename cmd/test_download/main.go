package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/Vibencrypt/COD492/internal/sentinel"
	"github.com/Vibencrypt/COD492/internal/utils"
	"github.com/Vibencrypt/COD492/output"
	"github.com/joho/godotenv"
)

func main() {
	// Hardcoded test parameters - modify these to test different scenarios
	region := "kosi"
	regionID := ""
	starts := []time.Time{
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC),
	}
	windowDays := 12

	fmt.Println("=== Flood Mapping Test Scene Download ===")
	fmt.Printf("Region: %s %s\n", region, regionID)
	fmt.Printf("Windows: %d of %d days\n", len(starts), windowDays)
	fmt.Println()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
		fmt.Println("Make sure you have set the required environment variables:")
		fmt.Println("- COPERNICUS_CLIENT_ID")
		fmt.Println("- COPERNICUS_CLIENT_SECRET")
		fmt.Println("- ROOT_PATH")
		fmt.Println()
	}
	if os.Getenv("ROOT_PATH") == "" {
		wd, _ := os.Getwd()
		rootPath := filepath.Join(wd, "..", "..")
		os.Setenv("ROOT_PATH", rootPath)
		fmt.Printf("Setting ROOT_PATH to: %s\n", rootPath)
	}

	fmt.Printf("Loading geometry for region '%s'...\n", region)
	geometry, err := sentinel.GetRegion(region, regionID)
	if err != nil {
		log.Fatalf("Failed to get geometry: %v", err)
	}
	fmt.Println("✓ Geometry loaded successfully")

	scenes, err := sentinel.GetScenes(context.Background(), region, geometry, sentinel.S1VV, starts, windowDays)
	if err != nil {
		log.Fatalf("Failed to get scenes: %v", err)
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Total scenes: %d\n", len(scenes))
	if len(scenes) == 0 {
		fmt.Println("No scene was downloaded. This could mean:")
		fmt.Println("- No Sentinel-1 acquisition in the windows")
		fmt.Println("- The windows are listed in invalid_images.json")
		fmt.Println("- API credentials issue")
		return
	}

	previewDir := filepath.Join(properties.RootPath(), "data", "images", region, "preview")
	if err := os.MkdirAll(previewDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create preview folder: %v", err)
	}

	for _, date := range utils.GetSortedKeys(scenes, true) {
		r := scenes[date]
		lo, hi, _ := r.MinMax()
		fmt.Printf("- %s (size: %dx%d) (valid: %d) (range: %.2f to %.2f dB)\n",
			date.Format(time.DateOnly), r.Cols, r.Rows, r.ValidCount(), lo, hi)

		preview := filepath.Join(previewDir, fmt.Sprintf("%s.png", date.Format("2006_01_02")))
		if err := output.CreateSceneImage(r, preview); err != nil {
			log.Printf("Warning: preview failed: %v", err)
			continue
		}
		fmt.Printf("  preview: %s\n", preview)
	}

	fmt.Println("\n✓ Test completed successfully!")
}
