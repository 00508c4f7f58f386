package rules

import (
	"reflect"
	"strings"
	"testing"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
)

func TestForType(t *testing.T) {
	for _, typ := range conversion.ReportTypes {
		s, err := ForType(typ)
		if err != nil {
			t.Fatalf("ForType(%s) error = %v", typ, err)
		}
		if len(s.Rules()) == 0 {
			t.Errorf("ForType(%s) has no rules", typ)
		}
	}
	if _, err := ForType("BULLETIN"); err == nil {
		t.Error("ForType(BULLETIN) should fail")
	}
}

func TestRulesSortedByPriority(t *testing.T) {
	s, err := ForType(conversion.TAF)
	if err != nil {
		t.Fatal(err)
	}
	prev := High
	for _, r := range s.Rules() {
		if r.Priority < prev {
			t.Fatalf("rule %s (%s) after a %s rule", r.Name, r.Priority, prev)
		}
		prev = r.Priority
	}
}

func TestRecognize(t *testing.T) {
	tests := []struct {
		name     string
		typ      conversion.ReportType
		input    string
		wantID   lexeme.Identity
		wantRule string
		values   lexeme.Values
	}{
		{
			name:   "issue time",
			typ:    conversion.METAR,
			input:  "111111Z",
			wantID: lexeme.IssueTime,
			values: lexeme.Values{lexeme.Day1: 11, lexeme.Hour1: 11, lexeme.Minute1: 11},
		},
		{
			name:   "gusting wind",
			typ:    conversion.METAR,
			input:  "24015G25KT",
			wantID: lexeme.SurfaceWind,
			values: lexeme.Values{lexeme.Direction: 240, lexeme.Speed: 15, lexeme.Gust: 25, lexeme.Unit: "KT"},
		},
		{
			name:   "variable wind",
			typ:    conversion.METAR,
			input:  "VRB02KT",
			wantID: lexeme.SurfaceWind,
			values: lexeme.Values{lexeme.Kind: "VRB", lexeme.Speed: 2, lexeme.Unit: "KT"},
		},
		{
			name:   "runway visual range",
			typ:    conversion.METAR,
			input:  "R04R/1500VP2000U",
			wantID: lexeme.RunwayVisualRange,
			values: lexeme.Values{
				lexeme.Runway: "04R", lexeme.Value: 1500, lexeme.Operator2: "P",
				lexeme.Value2: 2000, lexeme.Tendency: "U",
			},
		},
		{
			name:   "runway state",
			typ:    conversion.METAR,
			input:  "R04R/290095",
			wantID: lexeme.RunwayState,
			values: lexeme.Values{lexeme.Runway: "04R", lexeme.Code: "290095"},
		},
		{
			name:   "negative dewpoint",
			typ:    conversion.METAR,
			input:  "02/M03",
			wantID: lexeme.AirDewpointTemp,
			values: lexeme.Values{lexeme.Value: 2, lexeme.Value2: -3},
		},
		{
			name:   "wind shear all runways",
			typ:    conversion.METAR,
			input:  "WS ALL RWY",
			wantID: lexeme.WindShear,
			values: lexeme.Values{lexeme.Kind: "ALL"},
		},
		{
			name:   "recent weather beats aerodrome",
			typ:    conversion.METAR,
			input:  "RERA",
			wantID: lexeme.RecentWeather,
			values: lexeme.Values{lexeme.Code: "RA"},
		},
		{
			name:     "weather tried before aerodrome",
			typ:      conversion.METAR,
			input:    "SHRA",
			wantID:   lexeme.Weather,
			wantRule: "weather",
			values:   lexeme.Values{lexeme.Code: "SHRA"},
		},
		{
			name:     "prob tempo window",
			typ:      conversion.TAF,
			input:    "PROB30 TEMPO",
			wantID:   lexeme.ForecastChangeIndicator,
			wantRule: "prob_tempo",
			values:   lexeme.Values{lexeme.Kind: "PROB_TEMPO", lexeme.Value: 30},
		},
		{
			name:     "min max temperature pair",
			typ:      conversion.TAF,
			input:    "TX12/1015Z TN03/1104Z",
			wantID:   lexeme.MinMaxTemperature,
			wantRule: "min_max_temperature",
			values: lexeme.Values{
				lexeme.MaxValue: 12, lexeme.Day1: 10, lexeme.Hour1: 15,
				lexeme.MinValue: 3, lexeme.Day2: 11, lexeme.Hour2: 4,
			},
		},
		{
			name:     "short validity",
			typ:      conversion.TAF,
			input:    "101218",
			wantID:   lexeme.ValidTime,
			wantRule: "valid_time_short",
			values:   lexeme.Values{lexeme.Day1: 10, lexeme.Hour1: 12, lexeme.Hour2: 18},
		},
		{
			name:   "coordinate pair",
			typ:    conversion.SIGMET,
			input:  "N6030 W02500",
			wantID: lexeme.CoordinatePair,
			values: lexeme.Values{lexeme.Latitude: 60.5, lexeme.Longitude: -25.0},
		},
		{
			name:   "movement",
			typ:    conversion.SIGMET,
			input:  "MOV NE 15KT",
			wantID: lexeme.Movement,
			values: lexeme.Values{lexeme.Kind: "MOV", lexeme.Direction: "NE", lexeme.Speed: 15, lexeme.Unit: "KT"},
		},
		{
			name:   "entire fir before fir type",
			typ:    conversion.AIRMET,
			input:  "ENTIRE FIR",
			wantID: lexeme.EntireArea,
			values: lexeme.Values{lexeme.Kind: "FIR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ForType(tt.typ)
			if err != nil {
				t.Fatal(err)
			}
			spans := strings.Fields(tt.input)
			c, ok, err := s.Recognize(spans, 0)
			if !ok {
				t.Fatalf("Recognize(%q) not claimed, err = %v", tt.input, err)
			}
			if c.Rule.Identity != tt.wantID {
				t.Errorf("identity = %s, want %s", c.Rule.Identity, tt.wantID)
			}
			if tt.wantRule != "" && c.Rule.Name != tt.wantRule {
				t.Errorf("rule = %s, want %s", c.Rule.Name, tt.wantRule)
			}
			if c.Spans != len(spans) || c.Raw != tt.input {
				t.Errorf("claim = %d spans %q, want %d spans %q", c.Spans, c.Raw, len(spans), tt.input)
			}
			if !reflect.DeepEqual(c.Values, tt.values) {
				t.Errorf("values = %v, want %v", c.Values, tt.values)
			}
		})
	}
}

func TestRecognizeUnclaimed(t *testing.T) {
	s, err := ForType(conversion.METAR)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Recognize([]string{"XYZ123"}, 0); ok {
		t.Error("XYZ123 should not be claimed")
	}
	// A window rule never reaches past the last span.
	if c, ok, _ := s.Recognize([]string{"WS", "ALL"}, 0); ok {
		t.Errorf("WS ALL claimed by %s", c.Rule.Name)
	}
}

func TestPriorityOrdering(t *testing.T) {
	low := Rule{Name: "low", Identity: lexeme.Remark, Priority: Low, Pattern: `ABC`}
	high := Rule{Name: "high", Identity: lexeme.Weather, Priority: High, Pattern: `A[A-Z]C`}
	normal := Rule{Name: "normal", Identity: lexeme.Cloud, Priority: Normal, Pattern: `AB.`}

	orders := [][]Rule{
		{low, normal, high},
		{high, normal, low},
		{normal, low, high},
	}
	for _, rs := range orders {
		s, err := NewSet("TEST", rs, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		c, ok, _ := s.Recognize([]string{"ABC"}, 0)
		if !ok || c.Rule.Name != "high" {
			t.Errorf("order %s,%s,%s: winner = %v, want high", rs[0].Name, rs[1].Name, rs[2].Name, c.Rule)
		}
	}

	// Equal priority falls back to registration order.
	first := Rule{Name: "first", Identity: lexeme.Remark, Priority: Normal, Pattern: `ABC`}
	second := Rule{Name: "second", Identity: lexeme.Weather, Priority: Normal, Pattern: `ABC`}
	for _, tc := range []struct {
		rs   []Rule
		want string
	}{
		{[]Rule{first, second}, "first"},
		{[]Rule{second, first}, "second"},
	} {
		s, err := NewSet("TEST", tc.rs, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if c, _, _ := s.Recognize([]string{"ABC"}, 0); c.Rule == nil || c.Rule.Name != tc.want {
			t.Errorf("tie winner = %v, want %s", c.Rule, tc.want)
		}
	}
}

func TestNewSetRejects(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		grammar []lexeme.Identity
	}{
		{
			name: "duplicate rule name",
			rules: []Rule{
				{Name: "a", Identity: lexeme.Remark, Pattern: `A`},
				{Name: "a", Identity: lexeme.Weather, Pattern: `B`},
			},
		},
		{
			name:    "grammar identity without rule",
			rules:   []Rule{{Name: "a", Identity: lexeme.Remark, Pattern: `A`}},
			grammar: []lexeme.Identity{lexeme.Remark, lexeme.Cloud},
		},
		{
			name:  "unknown identity",
			rules: []Rule{{Name: "a", Identity: "BOGUS", Pattern: `A`}},
		},
		{
			name:  "unknown placeholder",
			rules: []Rule{{Name: "a", Identity: lexeme.Remark, Pattern: `{NOPE}`}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSet("TEST", tt.rules, tt.grammar, nil); err == nil {
				t.Error("NewSet() should fail")
			}
		})
	}
}

func TestTrace(t *testing.T) {
	s, err := ForType(conversion.METAR)
	if err != nil {
		t.Fatal(err)
	}
	tr := s.Trace([]string{"SHRA"}, 0)
	if tr.Claimed != "weather" {
		t.Errorf("Claimed = %q, want weather", tr.Claimed)
	}
	var matched []string
	for _, a := range tr.Attempts {
		if a.Matched {
			matched = append(matched, a.Rule)
		}
	}
	if want := []string{"weather", "aerodrome"}; !reflect.DeepEqual(matched, want) {
		t.Errorf("matched rules = %v, want %v", matched, want)
	}
	if out := FormatTrace(tr); !strings.Contains(out, "claimed by weather") {
		t.Errorf("FormatTrace() = %q", out)
	}
}

func TestTemperatureFormatting(t *testing.T) {
	for _, s := range []string{"12", "M05", "00"} {
		v, err := ParseTemperature(s)
		if err != nil {
			t.Fatalf("ParseTemperature(%q) error = %v", s, err)
		}
		if got := FormatTemperature(v); got != s {
			t.Errorf("FormatTemperature(%d) = %q, want %q", v, got, s)
		}
	}
}
