// Package spatial wraps the PROJ projection engine behind a small
// transformer API for converting geographic coordinates to a projected
// coordinate system.
package spatial

import (
	"fmt"
	"strings"

	"github.com/cumberland-gis/pointbuffer/internal/units"
)

// CRS describes a coordinate reference system as a proj-string fragment.
// Definition holds the projection step only; unit conversion in and out is
// handled by the transformation pipeline.
type CRS struct {
	// Name is a human-readable label used in status messages.
	Name string

	// Code is the EPSG code, or 0 for a custom definition.
	Code int

	// Definition is the proj-string for the projection, with coordinates in
	// meters. Empty for a geographic (lat/lon degree) system.
	Definition string

	// Unit is the linear unit of projected coordinates (a units constant).
	// Empty for geographic systems.
	Unit string
}

// Geographic reports whether the CRS is a geographic (lat/lon) system.
func (c CRS) Geographic() bool {
	return c.Definition == ""
}

// String returns a short label for messages, e.g. "EPSG:2272".
func (c CRS) String() string {
	if c.Code != 0 {
		return fmt.Sprintf("EPSG:%d", c.Code)
	}
	return c.Name
}

// WGS84 is the geographic system user coordinates arrive in.
var WGS84 = CRS{
	Name: "WGS 1984",
	Code: 4326,
}

// PAStatePlaneSouth is NAD 1983 StatePlane Pennsylvania South in US survey
// feet. NAD83 to WGS84 is treated as a zero-shift transformation, matching
// the NAD_1983_To_WGS_1984_1 method.
var PAStatePlaneSouth = CRS{
	Name: "NAD 1983 StatePlane Pennsylvania South (US Feet)",
	Code: 2272,
	Definition: "+proj=lcc +lat_1=40.96666666666667 +lat_2=39.93333333333333" +
		" +lat_0=39.33333333333334 +lon_0=-77.75 +x_0=600000.0001016 +y_0=0 +ellps=GRS80",
	Unit: units.USSurveyFeet,
}

// PipelineDefinition builds the PROJ pipeline taking lon/lat degrees in the
// source system to projected coordinates in the target system's linear unit.
func PipelineDefinition(from, to CRS) (string, error) {
	if !from.Geographic() {
		return "", fmt.Errorf("source CRS %s is not geographic", from)
	}
	if to.Geographic() {
		return "", fmt.Errorf("target CRS %s has no projection definition", to)
	}
	tok, err := units.ProjToken(to.Unit)
	if err != nil {
		return "", fmt.Errorf("target CRS %s: %w", to, err)
	}

	steps := []string{
		"+proj=pipeline",
		"+step +proj=unitconvert +xy_in=deg +xy_out=rad",
		"+step " + to.Definition,
	}
	// Projected coordinates come out of the projection step in meters.
	if tok != "m" {
		steps = append(steps, fmt.Sprintf("+step +proj=unitconvert +xy_in=m +xy_out=%s", tok))
	}
	return strings.Join(steps, " "), nil
}
