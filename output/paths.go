package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vibencrypt/COD492/internal/properties"
)

// ResultDir returns $ROOT_PATH/data/result/<region>/<runID>, creating it.
func ResultDir(region, runID string) (string, error) {
	dir := filepath.Join(properties.RootPath(), "data", "result", region, runID)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create result folder: %w", err)
	}
	return dir, nil
}
