package patterns

import (
	"math"
	"testing"
)

// almostEqual checks if two floats are equal within a tolerance.
func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestParseDMCoord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "latitude degrees only", input: "N60", want: 60},
		{name: "latitude DDMM north", input: "N6030", want: 60.5},
		{name: "latitude DDMM south", input: "S3413", want: -34.216667},
		{name: "longitude degrees only", input: "E025", want: 25},
		{name: "longitude DDDMM east", input: "E02530", want: 25.5},
		{name: "longitude DDDMM west", input: "W15123", want: -151.383333},
		{name: "latitude with longitude width", input: "N06030", wantErr: true},
		{name: "minutes out of range", input: "N6075", wantErr: true},
		{name: "latitude out of range", input: "N9100", wantErr: true},
		{name: "unknown hemisphere", input: "X6000", wantErr: true},
		{name: "too short", input: "N6", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDMCoord(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDMCoord(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !almostEqual(got, tt.want, 0.0001) {
				t.Errorf("ParseDMCoord(%q) = %f, want %f", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon         float64
		wantLat, wantLon string
	}{
		{60, 25, "N6000", "E02500"},
		{60.5, -151.383333, "N6030", "W15123"},
		{-34.216667, 0, "S3413", "E00000"},
	}

	for _, tt := range tests {
		if got := FormatLatitude(tt.lat); got != tt.wantLat {
			t.Errorf("FormatLatitude(%f) = %q, want %q", tt.lat, got, tt.wantLat)
		}
		if got := FormatLongitude(tt.lon); got != tt.wantLon {
			t.Errorf("FormatLongitude(%f) = %q, want %q", tt.lon, got, tt.wantLon)
		}
	}
}

func TestCompilerMatch(t *testing.T) {
	c := NewCompiler([]Format{
		{Name: "wind", Pattern: `(?P<dir>{WIND_DIR}|VRB)(?P<speed>{WIND_SPD})(?:G(?P<gust>{WIND_SPD}))?(?P<unit>{SPD_UNIT})`},
		{Name: "qnh", Pattern: `Q(?P<value>{PRESSURE})`},
	}, nil)
	if err := c.Compile(); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	m := c.Match("wind", "24015G25KT")
	if m == nil {
		t.Fatal("expected wind match")
	}
	if m.GetCapture("dir", "") != "240" || m.GetCapture("gust", "") != "25" || m.GetCapture("unit", "") != "KT" {
		t.Errorf("captures = %v", m.Captures)
	}

	// Anchored: a token with trailing text must not match.
	if c.Match("qnh", "Q1013X") != nil {
		t.Error("qnh should not match Q1013X")
	}
	if c.Match("missing", "Q1013") != nil {
		t.Error("unknown format should not match")
	}

	trace := c.TraceFormat("qnh", "Q1013")
	if !trace.Matched || trace.Captures["value"] != "1013" {
		t.Errorf("TraceFormat() = %+v", trace)
	}
}

func TestCompilerErrors(t *testing.T) {
	tests := []struct {
		name    string
		formats []Format
	}{
		{name: "unknown placeholder", formats: []Format{{Name: "a", Pattern: `{NOPE}`}}},
		{name: "duplicate name", formats: []Format{{Name: "a", Pattern: `A`}, {Name: "a", Pattern: `B`}}},
		{name: "bad regex", formats: []Format{{Name: "a", Pattern: `(`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewCompiler(tt.formats, nil).Compile(); err == nil {
				t.Error("Compile() should fail")
			}
		})
	}
}

func TestLocalPatternOverride(t *testing.T) {
	c := NewCompiler([]Format{{Name: "id", Pattern: `{ICAO}`}}, map[string]string{"ICAO": `EF[A-Z]{2}`})
	if err := c.Compile(); err != nil {
		t.Fatal(err)
	}
	if c.Match("id", "EFHK") == nil {
		t.Error("EFHK should match overridden ICAO")
	}
	if c.Match("id", "KJFK") != nil {
		t.Error("KJFK should not match overridden ICAO")
	}
}
