// Package rings generates concentric buffer polygons around a point.
//
// A multi-ring buffer is a set of polygons at increasing distances from a
// source geometry. By default each buffer covers the full area out to its
// distance (concentric disks); in rings-only mode each buffer beyond the
// first is an annulus excluding the area covered by the previous distance.
package rings

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// DefaultSegments is the number of segments used to approximate each circle
// when the caller does not specify one.
const DefaultSegments = 64

// minSegments is the coarsest circle approximation accepted.
const minSegments = 8

// Ring is one buffer polygon and the distance it was generated at, in the
// working coordinate system's linear unit.
type Ring struct {
	Distance float64
	Polygon  orb.Polygon
}

// Multi generates concentric buffer polygons around center at the given
// distances. Distances must be positive, strictly ascending and non-empty.
// If ringsOnly is set, each ring beyond the innermost carries the previous
// circle as a hole.
func Multi(center orb.Point, distances []float64, segments int, ringsOnly bool) ([]Ring, error) {
	if len(distances) == 0 {
		return nil, fmt.Errorf("no buffer distances supplied")
	}
	if segments == 0 {
		segments = DefaultSegments
	}
	if segments < minSegments {
		return nil, fmt.Errorf("segments must be at least %d, got %d", minSegments, segments)
	}
	if distances[0] <= 0 {
		return nil, fmt.Errorf("buffer distances must be positive, got %v", distances[0])
	}
	if !sort.Float64sAreSorted(distances) {
		return nil, fmt.Errorf("buffer distances must be ascending, got %v", distances)
	}
	for i := 1; i < len(distances); i++ {
		if distances[i] == distances[i-1] {
			return nil, fmt.Errorf("duplicate buffer distance %v", distances[i])
		}
	}

	out := make([]Ring, 0, len(distances))
	for i, d := range distances {
		poly := orb.Polygon{circle(center, d, segments)}
		if ringsOnly && i > 0 {
			// Hole at the previous distance, wound opposite to the exterior.
			hole := circle(center, distances[i-1], segments)
			reverse(hole)
			poly = append(poly, hole)
		}
		out = append(out, Ring{Distance: d, Polygon: poly})
	}
	return out, nil
}

// circle returns a closed counter-clockwise ring approximating a circle.
func circle(center orb.Point, radius float64, segments int) orb.Ring {
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, orb.Point{
			center[0] + radius*math.Cos(angle),
			center[1] + radius*math.Sin(angle),
		})
	}
	ring = append(ring, ring[0])
	return ring
}

func reverse(r orb.Ring) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}
