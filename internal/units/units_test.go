package units

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
		wantErr  bool
	}{
		{"canonical meters", "meters", Meters, false},
		{"dialog-case Feet", "Feet", Feet, false},
		{"short ft", "ft", Feet, false},
		{"underscored survey feet", "US_Survey_Feet", USSurveyFeet, false},
		{"spaced survey feet", "us survey feet", USSurveyFeet, false},
		{"proj token us-ft", "us-ft", USSurveyFeet, false},
		{"kilometers", "Kilometers", Kilometers, false},
		{"km", "km", Kilometers, false},
		{"miles", "MILES", Miles, false},
		{"yards", "yards", Yards, false},
		{"padded token", "  meters  ", Meters, false},
		{"unknown unit", "furlongs", "", true},
		{"empty string", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.token, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tt.token, err)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		from     string
		to       string
		expected float64
	}{
		{"meters to feet", 1.0, Meters, Feet, 3.28084},
		{"feet to meters", 100.0, Feet, Meters, 30.48},
		{"miles to feet", 1.0, Miles, Feet, 5280.0},
		{"kilometers to meters", 2.5, Kilometers, Meters, 2500.0},
		{"yards to feet", 1.0, Yards, Feet, 3.0},
		{"same unit", 42.0, Meters, Meters, 42.0},
		{"mile to us survey feet", 1.0, Miles, USSurveyFeet, 5279.98944},
		{"zero distance", 0.0, Miles, Meters, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.value, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Convert(%f, %s, %s) returned error: %v", tt.value, tt.from, tt.to, err)
			}
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("Convert(%f, %s, %s) = %f, want %f", tt.value, tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestConvertUnknownUnit(t *testing.T) {
	if _, err := Convert(1, "furlongs", Meters); err == nil {
		t.Error("expected error converting from unknown unit")
	}
	if _, err := Convert(1, Meters, "furlongs"); err == nil {
		t.Error("expected error converting to unknown unit")
	}
}

func TestIsValid(t *testing.T) {
	for _, unit := range ValidUnits {
		if !IsValid(unit) {
			t.Errorf("IsValid(%s) = false, want true", unit)
		}
	}
	if IsValid("Feet") {
		t.Error("IsValid should be case sensitive for canonical tokens")
	}
	if IsValid("") {
		t.Error("IsValid(\"\") = true, want false")
	}
}

func TestProjToken(t *testing.T) {
	tests := []struct {
		unit     string
		expected string
	}{
		{Meters, "m"},
		{Kilometers, "km"},
		{Feet, "ft"},
		{USSurveyFeet, "us-ft"},
		{Yards, "yd"},
		{Miles, "mi"},
	}

	for _, tt := range tests {
		got, err := ProjToken(tt.unit)
		if err != nil {
			t.Fatalf("ProjToken(%s) returned error: %v", tt.unit, err)
		}
		if got != tt.expected {
			t.Errorf("ProjToken(%s) = %q, want %q", tt.unit, got, tt.expected)
		}
	}

	if _, err := ProjToken("furlongs"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestUSSurveyFootExactRatio(t *testing.T) {
	// 1,968,500 us survey feet is exactly 600000.0001016 m (the PA South false easting)
	m, err := ToMeters(1968500, USSurveyFeet)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m-600000.0001016) > 1e-6 {
		t.Errorf("1968500 us-ft = %f m, want 600000.0001016", m)
	}
}
