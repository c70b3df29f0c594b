// Package geoproc chains the two geoprocessing steps of the buffer tool:
// projecting a geographic point into a local projected coordinate system and
// generating concentric ring buffers around it.
package geoproc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cumberland-gis/pointbuffer/internal/units"
)

// Params carries the tool inputs through both steps. It replaces the host
// dialog's six positional parameters.
type Params struct {
	// Latitude and Longitude of the site, in WGS 1984 degrees.
	Latitude  float64
	Longitude float64

	// PointPath is where the projected point artifact is written.
	PointPath string

	// Distances are the buffer distances, in Units, strictly ascending.
	Distances []float64

	// Units is the canonical distance unit of Distances.
	Units string

	// BufferPath is where the multi-ring buffer artifact is written.
	BufferPath string

	// Segments per circle when approximating rings; 0 means the default.
	Segments int

	// RingsOnly generates annuli instead of full disks beyond the first ring.
	RingsOnly bool

	// KeepGoing attempts the buffer step even if projection failed,
	// matching the legacy tool's behavior.
	KeepGoing bool

	// StepTimeout bounds each step; 0 means no deadline beyond the caller's.
	StepTimeout time.Duration
}

// ParseParams validates the six dialog inputs and assembles a Params.
func ParseParams(lat, lon, pointPath, distances, unit, bufferPath string) (Params, error) {
	var p Params
	var err error

	p.Latitude, err = strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Params{}, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return Params{}, fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}

	p.Longitude, err = strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Params{}, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return Params{}, fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude)
	}

	if strings.TrimSpace(pointPath) == "" {
		return Params{}, fmt.Errorf("output point path is required")
	}
	p.PointPath = pointPath

	p.Distances, err = ParseDistances(distances)
	if err != nil {
		return Params{}, err
	}

	p.Units, err = units.Normalize(unit)
	if err != nil {
		return Params{}, err
	}

	if strings.TrimSpace(bufferPath) == "" {
		return Params{}, fmt.Errorf("output buffer path is required")
	}
	p.BufferPath = bufferPath

	return p, nil
}

// ParseDistances parses a dialog-style distance list, e.g. "1;2;3",
// "500, 1000" or "1 2 3". Distances are sorted ascending and deduplicated.
func ParseDistances(s string) ([]float64, error) {
	cleaned := strings.NewReplacer(";", " ", ",", " ").Replace(s)
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no buffer distances supplied in %q", s)
	}

	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		d, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid buffer distance %q: %w", f, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("buffer distance must be positive, got %v", d)
		}
		out = append(out, d)
	}

	sort.Float64s(out)
	dedup := out[:1]
	for _, d := range out[1:] {
		if d != dedup[len(dedup)-1] {
			dedup = append(dedup, d)
		}
	}
	return dedup, nil
}
