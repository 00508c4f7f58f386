package tokenizer

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/rules"
)

const (
	metarText = "METAR EFHK 111111Z AUTO 24015G25KT 200V280 6000 R04R/1500VP2000U -RA BR FEW020 SCT030CB " +
		"15/12 Q1013 RERA WS ALL RWY W15/S3 R04R/290095 TEMPO FM1230 TL1330 4000 SHRA BKN015CB RMK AO2 SLP123="
	tafText = "TAF EFHK 101130Z 1012/1112 24010KT 9999 FEW020 TX12/1015Z TN03/1104Z " +
		"BECMG 1015/1017 26015G25KT TEMPO 1018/1024 4000 SHRA BKN015CB " +
		"PROB30 TEMPO 1102/1106 0800 FG FM110800 30010KT CAVOK="
	sigmetText = "EFIN SIGMET 1 VALID 101200/101600 EFHK- EFIN FINLAND FIR SEV TURB FCST AT 1200Z " +
		"WI N6000 E02500 - N6100 E02600 - N6000 E02700 - N6000 E02500 FL100/200 MOV E 15KT NC="
)

func tokenize(t *testing.T, text string, typ conversion.ReportType) (*lexeme.Sequence, []conversion.Issue) {
	t.Helper()
	seq, issues, err := Tokenize(text, typ, conversion.DefaultHints())
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	return seq, issues
}

func TestTokenizeCanonical(t *testing.T) {
	tests := []struct {
		name string
		typ  conversion.ReportType
		text string
		want []lexeme.Identity
	}{
		{
			name: "metar",
			typ:  conversion.METAR,
			text: metarText,
			want: []lexeme.Identity{
				lexeme.MetarStart, lexeme.AerodromeDesignator, lexeme.IssueTime, lexeme.Automated,
				lexeme.SurfaceWind, lexeme.VariableWindDirection, lexeme.HorizontalVisibility,
				lexeme.RunwayVisualRange, lexeme.Weather, lexeme.Weather, lexeme.Cloud, lexeme.Cloud,
				lexeme.AirDewpointTemp, lexeme.AirPressureQNH, lexeme.RecentWeather, lexeme.WindShear,
				lexeme.SeaState, lexeme.RunwayState, lexeme.TrendChangeIndicator, lexeme.TrendTimeGroup,
				lexeme.TrendTimeGroup, lexeme.HorizontalVisibility, lexeme.Weather, lexeme.Cloud,
				lexeme.RemarksStart, lexeme.Remark, lexeme.Remark, lexeme.EndToken,
			},
		},
		{
			name: "taf",
			typ:  conversion.TAF,
			text: tafText,
			want: []lexeme.Identity{
				lexeme.TAFStart, lexeme.AerodromeDesignator, lexeme.IssueTime, lexeme.ValidTime,
				lexeme.SurfaceWind, lexeme.HorizontalVisibility, lexeme.Cloud, lexeme.MinMaxTemperature,
				lexeme.ForecastChangeIndicator, lexeme.ChangeForecastTimeGroup, lexeme.SurfaceWind,
				lexeme.ForecastChangeIndicator, lexeme.ChangeForecastTimeGroup, lexeme.HorizontalVisibility,
				lexeme.Weather, lexeme.Cloud,
				lexeme.ForecastChangeIndicator, lexeme.ChangeForecastTimeGroup, lexeme.HorizontalVisibility,
				lexeme.Weather, lexeme.ForecastChangeIndicator, lexeme.SurfaceWind, lexeme.CAVOK,
				lexeme.EndToken,
			},
		},
		{
			name: "sigmet",
			typ:  conversion.SIGMET,
			text: sigmetText,
			want: []lexeme.Identity{
				lexeme.LocationIndicator, lexeme.SigmetStart, lexeme.SequenceDescriptor, lexeme.ValidTime,
				lexeme.MWODesignator, lexeme.FIRDesignator, lexeme.FIRName, lexeme.FIRType,
				lexeme.Phenomenon, lexeme.ObservedOrForecast, lexeme.WithinKeyword,
				lexeme.CoordinatePair, lexeme.PolygonSeparator, lexeme.CoordinatePair,
				lexeme.PolygonSeparator, lexeme.CoordinatePair, lexeme.PolygonSeparator,
				lexeme.CoordinatePair, lexeme.FlightLevel, lexeme.Movement, lexeme.IntensityChange,
				lexeme.EndToken,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, issues := tokenize(t, tt.text, tt.typ)
			if len(issues) != 0 {
				t.Errorf("issues = %v, want none", issues)
			}
			if got := seq.Identities(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("identities =\n%v\nwant\n%v", got, tt.want)
			}
			for _, l := range seq.All() {
				if l.State() != lexeme.Final {
					t.Errorf("%s is %s, want FINAL", l, l.State())
				}
			}
			if got := seq.Text(); got != tt.text {
				t.Errorf("Text() = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	first, _ := tokenize(t, tafText, conversion.TAF)
	for i := 0; i < 20; i++ {
		seq, _ := tokenize(t, tafText, conversion.TAF)
		if !reflect.DeepEqual(seq.Identities(), first.Identities()) {
			t.Fatalf("run %d identities differ", i)
		}
		for j, l := range seq.All() {
			if !reflect.DeepEqual(l.Values(), first.At(j).Values()) {
				t.Fatalf("run %d lexeme %d values = %v, want %v", i, j, l.Values(), first.At(j).Values())
			}
		}
	}
}

func TestUnknownSpanTolerance(t *testing.T) {
	text := "METAR EFHK 111111Z 24015KT XYZ123 9999 FEW020 15/12 Q1013="
	seq, issues := tokenize(t, text, conversion.METAR)

	want := []lexeme.Identity{
		lexeme.MetarStart, lexeme.AerodromeDesignator, lexeme.IssueTime, lexeme.SurfaceWind,
		lexeme.Unknown, lexeme.HorizontalVisibility, lexeme.Cloud, lexeme.AirDewpointTemp,
		lexeme.AirPressureQNH, lexeme.EndToken,
	}
	if got := seq.Identities(); !reflect.DeepEqual(got, want) {
		t.Errorf("identities = %v, want %v", got, want)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %v, want exactly one", issues)
	}
	if issues[0].Kind != conversion.SyntaxError || !strings.Contains(issues[0].Message, "XYZ123") {
		t.Errorf("issue = %v, want SYNTAX_ERROR naming XYZ123", issues[0])
	}
}

func TestContextualVisitors(t *testing.T) {
	tests := []struct {
		name   string
		typ    conversion.ReportType
		text   string
		index  int
		want   lexeme.Identity
		issues int
	}{
		{
			name:  "weather-like aerodrome",
			typ:   conversion.METAR,
			text:  "METAR SNRA 111111Z 24015KT 9999 FEW020 15/12 Q1013=",
			index: 1,
			want:  lexeme.AerodromeDesignator,
		},
		{
			name:  "correction after report start",
			typ:   conversion.METAR,
			text:  "METAR COR EFHK 111111Z 24015KT 9999 FEW020 15/12 Q1013=",
			index: 1,
			want:  lexeme.Correction,
		},
		{
			name:   "misplaced correction",
			typ:    conversion.METAR,
			text:   "METAR EFHK 111111Z COR 24015KT 9999 FEW020 15/12 Q1013=",
			index:  3,
			want:   lexeme.Unknown,
			issues: 1,
		},
		{
			name:   "second aerodrome",
			typ:    conversion.METAR,
			text:   "METAR EFHK 111111Z EFTU 24015KT 9999 FEW020 15/12 Q1013=",
			index:  3,
			want:   lexeme.Unknown,
			issues: 1,
		},
		{
			name:   "trend time outside trend",
			typ:    conversion.METAR,
			text:   "METAR EFHK 111111Z 24015KT 9999 FEW020 15/12 Q1013 FM1200=",
			index:  8,
			want:   lexeme.Unknown,
			issues: 1,
		},
		{
			name:  "amended taf",
			typ:   conversion.TAF,
			text:  "TAF AMD EFHK 101130Z 1012/1112 24010KT 9999 FEW020=",
			index: 1,
			want:  lexeme.Amendment,
		},
		{
			name:  "short validity",
			typ:   conversion.TAF,
			text:  "TAF EFHK 101130Z 101218 24010KT 9999 FEW020=",
			index: 3,
			want:  lexeme.ValidTime,
		},
		{
			name:   "second validity",
			typ:    conversion.TAF,
			text:   "TAF EFHK 101130Z 1012/1112 1012/1112 24010KT 9999 FEW020=",
			index:  4,
			want:   lexeme.Unknown,
			issues: 1,
		},
		{
			name:  "remark tokens are not reinterpreted",
			typ:   conversion.TAF,
			text:  "TAF EFHK 101130Z 1012/1112 24010KT 9999 FEW020 RMK FEW020=",
			index: 8,
			want:  lexeme.Remark,
		},
		{
			name:  "four letter fir name",
			typ:   conversion.SIGMET,
			text:  "EVRR SIGMET 2 VALID 101200/101600 EVRA- EVRR RIGA FIR OBSC TS OBS ENTIRE FIR STNR NC=",
			index: 6,
			want:  lexeme.FIRName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, issues := tokenize(t, tt.text, tt.typ)
			if got := seq.At(tt.index).Identity(); got != tt.want {
				t.Errorf("lexeme %d (%q) = %s, want %s; all %v", tt.index, seq.At(tt.index).Raw(), got, tt.want, seq.Identities())
			}
			if len(issues) != tt.issues {
				t.Errorf("issues = %v, want %d", issues, tt.issues)
			}
		})
	}
}

func TestVisitIdempotent(t *testing.T) {
	tok, err := ForType(conversion.METAR)
	if err != nil {
		t.Fatal(err)
	}
	seq, _ := tok.Tokenize(metarText, conversion.DefaultHints())
	before := seq.Identities()
	changes, converged := tok.Visit(seq, conversion.DefaultHints())
	if changes != 0 || !converged {
		t.Errorf("Visit() = %d, %v; want 0, true", changes, converged)
	}
	if !reflect.DeepEqual(seq.Identities(), before) {
		t.Error("identities changed on second visit")
	}
}

func TestVisitorIterationCap(t *testing.T) {
	set, err := rules.ForType(conversion.METAR)
	if err != nil {
		t.Fatal(err)
	}
	flip := Visitor{
		Name: "flip",
		Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
			if l.Is(lexeme.Weather) {
				return Action{Identity: lexeme.Cloud}, true
			}
			return Action{Identity: lexeme.Weather}, true
		},
	}
	tok, err := New(set, []Visitor{flip})
	if err != nil {
		t.Fatal(err)
	}
	seq, issues := tok.Tokenize("METAR EFHK=", conversion.DefaultHints())
	if len(issues) != 1 || issues[0].Kind != conversion.Other {
		t.Fatalf("issues = %v, want one OTHER", issues)
	}
	for _, l := range seq.All() {
		if l.State() != lexeme.Final {
			t.Errorf("%s not final after cap", l)
		}
	}
}

func TestNewRequiresSet(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, conversion.ErrNilArgument) {
		t.Errorf("New(nil) error = %v, want ErrNilArgument", err)
	}
}

func TestEmptyMessage(t *testing.T) {
	seq, issues := tokenize(t, " \r\n ", conversion.TAF)
	if seq.Len() != 0 || len(issues) != 1 || issues[0].Kind != conversion.SyntaxError {
		t.Errorf("Tokenize(blank) = %d lexemes, %v", seq.Len(), issues)
	}
}

func TestSpans(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"TAF EFHK\r\n101130Z=", []string{"TAF", "EFHK", "101130Z", "="}},
		{"METAR\tEFHK =", []string{"METAR", "EFHK", "="}},
		{"  ", nil},
	}

	for _, tt := range tests {
		if got := Spans(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Spans(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
