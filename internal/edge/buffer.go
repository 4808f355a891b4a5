package edge

import (
	"errors"
	"fmt"

	"github.com/Vibencrypt/COD492/internal/raster"
)

var (
	// ErrNoEdges is returned when no edge survives the length filter.
	// Callers usually fall back to the unrestricted scene.
	ErrNoEdges       = errors.New("no edges long enough to guide the threshold")
	ErrInvalidParams = errors.New("invalid edge parameters")
)

// Params tunes the edge-guided restriction.
type Params struct {
	// InitialThreshold (dB) gives the first water/land guess that edges are detected on.
	InitialThreshold float64 `json:"initialThreshold"`
	// Threshold is the Canny high threshold; the low threshold is half of it.
	Threshold float64 `json:"threshold"`
	Sigma     float64 `json:"sigma"`
	// LowThreshold drops edge pixels with a weaker gradient before counting lengths.
	LowThreshold       float64 `json:"lowThreshold"`
	MinConnectedPixels int     `json:"minConnectedPixels"`
	MinEdgeLength      int     `json:"minEdgeLength"`
	BufferMeters       float64 `json:"bufferMeters"`
}

func DefaultParams() Params {
	return Params{
		InitialThreshold:   -16,
		Threshold:          1,
		Sigma:              1,
		LowThreshold:       0.05,
		MinConnectedPixels: 100,
		MinEdgeLength:      20,
		BufferMeters:       300,
	}
}

func (p Params) Validate() error {
	switch {
	case !(p.Sigma > 0):
		return fmt.Errorf("%w: sigma must be positive, got %g", ErrInvalidParams, p.Sigma)
	case !(p.Threshold > 0):
		return fmt.Errorf("%w: canny threshold must be positive, got %g", ErrInvalidParams, p.Threshold)
	case !(p.BufferMeters > 0):
		return fmt.Errorf("%w: buffer must be positive, got %g", ErrInvalidParams, p.BufferMeters)
	case p.MinConnectedPixels < 1:
		return fmt.Errorf("%w: connected pixel cap must be positive, got %d", ErrInvalidParams, p.MinConnectedPixels)
	case p.MinEdgeLength > p.MinConnectedPixels:
		return fmt.Errorf("%w: edge length %d exceeds connected pixel cap %d", ErrInvalidParams, p.MinEdgeLength, p.MinConnectedPixels)
	}
	return nil
}

// Restrict is RestrictToEdgeBuffer with the initial threshold and buffer taken from p.
func (p Params) Restrict(r *raster.Raster) (*raster.Raster, error) {
	return RestrictToEdgeBuffer(r, p.InitialThreshold, p, p.BufferMeters)
}

// RestrictToEdgeBuffer masks r down to the pixels within bufferMeters of a
// long edge of the initial water/land binarization.
func RestrictToEdgeBuffer(r *raster.Raster, initialThreshold float64, p Params, bufferMeters float64) (*raster.Raster, error) {
	p.BufferMeters = bufferMeters
	if err := p.Validate(); err != nil {
		return nil, err
	}

	binary := r.Lt(initialThreshold).Float()
	canny := Canny(binary, p.Threshold, p.Sigma)

	edges := &raster.Raster{
		Grid:   r.Grid,
		Values: make([]float64, len(canny.Values)),
		Valid:  make([]bool, len(canny.Values)),
	}
	for i, m := range canny.Values {
		edges.Valid[i] = canny.Valid[i] && m > 0 && m >= p.LowThreshold
		if edges.Valid[i] {
			edges.Values[i] = 1
		}
	}

	counts := ConnectedPixelCount(edges, p.MinConnectedPixels, true)
	long := raster.NewMask(r.Grid)
	for i, c := range counts.Values {
		long.Bits[i] = counts.Valid[i] && c >= float64(p.MinEdgeLength)
	}
	if long.Count() == 0 {
		return nil, ErrNoEdges
	}

	reach := bufferMeters / r.NominalScale()
	dist := DistanceTransform(long)
	buffer := raster.NewMask(r.Grid)
	for i, d := range dist.Values {
		buffer.Bits[i] = d < reach
	}
	return r.UpdateMask(buffer), nil
}
