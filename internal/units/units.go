// Package units provides shared constants and validation for linear distance units
package units

import (
	"fmt"
	"strings"
)

// Unit constants
const (
	Meters       = "meters"
	Kilometers   = "kilometers"
	Feet         = "feet"
	USSurveyFeet = "us-survey-feet"
	Yards        = "yards"
	Miles        = "miles"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Kilometers, Feet, USSurveyFeet, Yards, Miles}

// metersPer maps each unit to its length in meters.
// The US survey foot is 1200/3937 m exactly.
var metersPer = map[string]float64{
	Meters:       1,
	Kilometers:   1000,
	Feet:         0.3048,
	USSurveyFeet: 1200.0 / 3937.0,
	Yards:        0.9144,
	Miles:        1609.344,
}

// projToken maps each unit to the keyword the PROJ unitconvert operation uses.
var projToken = map[string]string{
	Meters:       "m",
	Kilometers:   "km",
	Feet:         "ft",
	USSurveyFeet: "us-ft",
	Yards:        "yd",
	Miles:        "mi",
}

// aliases accepts the spellings a GIS dialog is likely to deliver,
// lower-cased and with spaces/underscores stripped.
var aliases = map[string]string{
	"m":            Meters,
	"meter":        Meters,
	"meters":       Meters,
	"km":           Kilometers,
	"kilometer":    Kilometers,
	"kilometers":   Kilometers,
	"ft":           Feet,
	"foot":         Feet,
	"feet":         Feet,
	"us-ft":        USSurveyFeet,
	"usft":         USSurveyFeet,
	"ussurveyfoot": USSurveyFeet,
	"ussurveyfeet": USSurveyFeet,
	"surveyfeet":   USSurveyFeet,
	"yd":           Yards,
	"yard":         Yards,
	"yards":        Yards,
	"mi":           Miles,
	"mile":         Miles,
	"miles":        Miles,
}

// Normalize resolves a user-supplied unit token (e.g. "Feet", "us_survey_feet")
// to one of the canonical unit constants.
func Normalize(token string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(token))
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, " ", "")
	if unit, ok := aliases[key]; ok {
		return unit, nil
	}
	if _, ok := metersPer[key]; ok {
		return key, nil
	}
	return "", fmt.Errorf("unknown distance unit %q (valid units: %s)", token, GetValidUnitsString())
}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	_, ok := metersPer[unit]
	return ok
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ToMeters converts a distance in the given unit to meters.
func ToMeters(v float64, unit string) (float64, error) {
	f, ok := metersPer[unit]
	if !ok {
		return 0, fmt.Errorf("unknown distance unit %q", unit)
	}
	return v * f, nil
}

// Convert converts a distance from one unit to another.
func Convert(v float64, from, to string) (float64, error) {
	m, err := ToMeters(v, from)
	if err != nil {
		return 0, err
	}
	f, ok := metersPer[to]
	if !ok {
		return 0, fmt.Errorf("unknown distance unit %q", to)
	}
	return m / f, nil
}

// ProjToken returns the PROJ unitconvert keyword for a canonical unit.
func ProjToken(unit string) (string, error) {
	tok, ok := projToken[unit]
	if !ok {
		return "", fmt.Errorf("unknown distance unit %q", unit)
	}
	return tok, nil
}
