package otsu

import (
	"errors"
	"fmt"
)

var ErrDegenerateHistogram = errors.New("degenerate histogram")

// DegenerateHistogramError is returned when a histogram cannot be split into two
// populated classes: fewer than two bins, no pixels at all, or all pixels in one bin.
type DegenerateHistogramError struct {
	Bins     int
	Total    uint64
	NonEmpty int
}

func (e *DegenerateHistogramError) Error() string {
	return fmt.Sprintf("degenerate histogram: %d bins, %d pixels, %d non-empty bins", e.Bins, e.Total, e.NonEmpty)
}

func (e *DegenerateHistogramError) Is(target error) bool {
	return target == ErrDegenerateHistogram
}
