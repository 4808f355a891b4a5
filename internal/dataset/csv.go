package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/gocarina/gocsv"
)

func BuildFilePath(region, runID string) string {
	return filepath.Join(properties.RootPath(), "data", "datasets", fmt.Sprintf("%s_%s.csv", region, runID))
}

func Save(samples []Sample, filePath string) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to save")
	}
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&samples, file); err != nil {
		return fmt.Errorf("failed to save dataset to file: %w", err)
	}
	return nil
}

func Load(filePath string) ([]Sample, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	var samples []Sample
	if err := gocsv.UnmarshalFile(file, &samples); err != nil {
		return nil, fmt.Errorf("error unmarshalling CSV: %w", err)
	}
	return samples, nil
}
