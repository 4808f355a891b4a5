package dataset

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/Vibencrypt/COD492/internal/raster"
	"github.com/paulmach/orb"
)

var ErrEmptyRegion = errors.New("region has no area to sample")

const maxAttemptsPerPoint = 1000

// RandomPoints draws n points uniformly inside region. The same seed always
// yields the same points.
func RandomPoints(region orb.Geometry, n int, seed int64) ([]orb.Point, error) {
	if n < 1 {
		return nil, fmt.Errorf("number of points must be positive, got %d", n)
	}
	bound := region.Bound()
	if bound.Max.X() <= bound.Min.X() || bound.Max.Y() <= bound.Min.Y() {
		return nil, ErrEmptyRegion
	}

	rng := rand.New(rand.NewSource(seed))
	points := make([]orb.Point, 0, n)
	for attempts := 0; len(points) < n; attempts++ {
		if attempts > n*maxAttemptsPerPoint {
			return nil, ErrEmptyRegion
		}
		p := orb.Point{
			bound.Min.X() + rng.Float64()*(bound.Max.X()-bound.Min.X()),
			bound.Min.Y() + rng.Float64()*(bound.Max.Y()-bound.Min.Y()),
		}
		if raster.Contains(region, p) {
			points = append(points, p)
		}
	}
	return points, nil
}
