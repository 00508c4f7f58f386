package reconstruct

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/parse"
	"tac_converter/internal/timeref"
	"tac_converter/internal/tokenizer"
)

func parseText(t *testing.T, text string, typ conversion.ReportType, h conversion.Hints) (*lexeme.Sequence, model.Report) {
	t.Helper()
	seq, issues, err := tokenizer.Tokenize(text, typ, h)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(issues) > 0 {
		t.Fatalf("Tokenize(%q) issues = %v", text, issues)
	}
	r, issues, err := parse.Report(seq, typ)
	if err != nil {
		t.Fatalf("parse.Report() error = %v", err)
	}
	if len(issues) > 0 {
		t.Fatalf("parse.Report(%q) issues = %v", text, issues)
	}
	return seq, r
}

func TestRoundTrip(t *testing.T) {
	short := conversion.DefaultHints()
	short.ValidityTimeFormat = conversion.PreferShort

	tests := []struct {
		name  string
		typ   conversion.ReportType
		hints conversion.Hints
		text  string
	}{
		{
			name: "metar",
			typ:  conversion.METAR,
			text: "METAR EFHK 111111Z AUTO 24015G25KT 200V280 6000 R04R/1500VP2000U -RA BR FEW020 SCT030CB " +
				"15/12 Q1013 RERA WS ALL RWY W15/S3 R04R/290095 TEMPO FM1230 TL1330 4000 SHRA BKN015CB RMK AO2 SLP123=",
		},
		{
			name: "speci corrected",
			typ:  conversion.SPECI,
			text: "SPECI COR EFHK 111120Z VRB02KT CAVOK M02/M05 Q0998 NOSIG=",
		},
		{
			name: "metar nil",
			typ:  conversion.METAR,
			text: "METAR EFHK 111111Z NIL=",
		},
		{
			name: "taf",
			typ:  conversion.TAF,
			text: "TAF EFHK 101130Z 1012/1112 24010KT 9999 FEW020 TX12/1015Z TN03/1104Z " +
				"BECMG 1015/1017 26015G25KT TEMPO 1018/1024 4000 SHRA BKN015CB " +
				"PROB30 TEMPO 1102/1106 0800 FG FM110800 30010KT CAVOK=",
		},
		{
			name: "taf nil",
			typ:  conversion.TAF,
			text: "TAF EFHK 101130Z NIL=",
		},
		{
			name: "taf cancelled",
			typ:  conversion.TAF,
			text: "TAF AMD EFHK 101130Z 1012/1112 CNL=",
		},
		{
			name:  "taf short validity",
			typ:   conversion.TAF,
			hints: short,
			text:  "TAF EFHK 101130Z 101218 24010KT 9999 FEW020 PROB40 1014/1016 0500 FG=",
		},
		{
			name: "sigmet",
			typ:  conversion.SIGMET,
			text: "EFIN SIGMET 1 VALID 101200/101600 EFHK- EFIN FINLAND FIR SEV TURB FCST AT 1200Z " +
				"WI N6000 E02500 - N6100 E02600 - N6000 E02700 - N6000 E02500 FL100/200 MOV E 15KT NC=",
		},
		{
			name: "sigmet cancelled",
			typ:  conversion.SIGMET,
			text: "EFIN SIGMET 2 VALID 101300/101600 EFHK- EFIN FINLAND FIR CNL SIGMET 1 101200/101600=",
		},
		{
			name: "airmet",
			typ:  conversion.AIRMET,
			text: "EFIN AIRMET 2 VALID 101200/101600 EFHK- EFIN FINLAND FIR MOD ICE OBS " +
				"WI N6000 E02500 - N6100 E02600 - N6000 E02700 SFC/FL050 STNR WKN=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.hints
			if h.ValidityTimeFormat == "" {
				h = conversion.DefaultHints()
			}
			seq, r := parseText(t, tt.text, tt.typ, h)

			out, err := Sequence(r, h)
			if err != nil {
				t.Fatalf("Sequence() error = %v", err)
			}
			if got := out.Text(); got != tt.text {
				t.Fatalf("round trip:\n got %q\nwant %q", got, tt.text)
			}
			if !reflect.DeepEqual(out.Identities(), seq.Identities()) {
				t.Errorf("identities:\n got %v\nwant %v", out.Identities(), seq.Identities())
			}
			for _, l := range out.All() {
				if l.State() != lexeme.Final {
					t.Errorf("lexeme %q is %s, want final", l.Raw(), l.State())
				}
			}

			// The reconstructed lexemes carry the same values the rules
			// extract, so they build the same model.
			again, issues, err := parse.Report(out, tt.typ)
			if err != nil || len(issues) > 0 {
				t.Fatalf("parse of reconstruction: err=%v issues=%v", err, issues)
			}
			if !reflect.DeepEqual(again, r) {
				t.Errorf("model changed through reconstruction:\n got %+v\nwant %+v", again, r)
			}
		})
	}
}

func TestValidityFormat(t *testing.T) {
	tests := []struct {
		name  string
		start timeref.PartialTime
		end   timeref.PartialTime
		short bool
		want  string
	}{
		{"long by default", timeref.NewPartial(10, 12, timeref.Unset), timeref.NewPartial(10, 18, timeref.Unset), false, "1012/1018"},
		{"short within a day", timeref.NewPartial(10, 12, timeref.Unset), timeref.NewPartial(10, 18, timeref.Unset), true, "101218"},
		{"short without end day", timeref.NewPartial(10, 0, timeref.Unset), timeref.NewPartial(timeref.Unset, 24, timeref.Unset), true, "100024"},
		{"long across days", timeref.NewPartial(10, 12, timeref.Unset), timeref.NewPartial(11, 6, timeref.Unset), true, "1012/1106"},
		{"unset end day filled", timeref.NewPartial(10, 12, timeref.Unset), timeref.NewPartial(timeref.Unset, 18, timeref.Unset), false, "1012/1018"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := periodGroup(timeref.PartialPeriod(tt.start, tt.end), tt.short)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("periodGroup() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemperaturePair(t *testing.T) {
	taf := &model.TAF{
		Aerodrome: "EFHK",
		IssueTime: timeref.PartialInstant(timeref.NewPartial(10, 11, 30)),
		Validity:  timeref.PartialPeriod(timeref.NewPartial(10, 12, timeref.Unset), timeref.NewPartial(11, 12, timeref.Unset)),
		Base: &model.BaseForecast{
			Conditions: model.Conditions{Wind: &model.SurfaceWind{Direction: 240, Speed: 10, Unit: "KT"}},
			Temperatures: []model.TemperatureForecast{
				{
					Max: &model.TemperatureAt{Value: -1, Time: timeref.PartialInstant(timeref.NewPartial(10, 15, timeref.Unset))},
					Min: &model.TemperatureAt{Value: -8, Time: timeref.PartialInstant(timeref.NewPartial(11, 4, timeref.Unset))},
				},
				{Max: &model.TemperatureAt{Value: 2, Time: timeref.PartialInstant(timeref.NewPartial(11, 12, timeref.Unset))}},
			},
		},
	}
	seq, err := TAF(taf, conversion.DefaultHints())
	if err != nil {
		t.Fatal(err)
	}
	var temps []string
	for _, l := range seq.All() {
		if l.Is(lexeme.MinMaxTemperature) {
			temps = append(temps, l.Raw())
		}
	}
	want := []string{"TXM01/1015Z TNM08/1104Z", "TX02/1112Z"}
	if !reflect.DeepEqual(temps, want) {
		t.Errorf("temperature lexemes = %q, want %q", temps, want)
	}
}

func TestCompleteTimesOnly(t *testing.T) {
	m := &model.METAR{
		Aerodrome: "EFHK",
		IssueTime: timeref.CompleteInstant(mustTime(t, "2017-05-11T11:20:00Z")),
		Conditions: model.Conditions{
			Wind:  &model.SurfaceWind{Direction: 50, Speed: 3, Unit: "MPS"},
			CAVOK: true,
		},
	}
	got, err := Text(m, conversion.DefaultHints())
	if err != nil {
		t.Fatal(err)
	}
	if want := "METAR EFHK 111120Z 05003MPS CAVOK="; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name string
		r    model.Report
	}{
		{"metar without aerodrome", &model.METAR{IssueTime: timeref.PartialInstant(timeref.NewPartial(1, 0, 0))}},
		{"taf without issue time", &model.TAF{Aerodrome: "EFHK"}},
		{"sigmet without phenomenon", &model.SIGMET{
			IssuingUnit: "EFIN", Sequence: "1", MWO: "EFHK", FIR: "EFIN",
			Validity: timeref.PartialPeriod(timeref.NewPartial(10, 12, 0), timeref.NewPartial(10, 16, 0)),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Text(tt.r, conversion.DefaultHints())
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("Text() error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestNilModel(t *testing.T) {
	if _, err := Sequence(nil, conversion.DefaultHints()); !errors.Is(err, conversion.ErrNilArgument) {
		t.Errorf("Sequence(nil) error = %v", err)
	}
	var taf *model.TAF
	if _, err := TAF(taf, conversion.DefaultHints()); !errors.Is(err, conversion.ErrNilArgument) {
		t.Errorf("TAF(nil) error = %v", err)
	}
}
