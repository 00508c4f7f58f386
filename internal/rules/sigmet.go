package rules

import (
	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
)

var sigmetGrammar = []lexeme.Identity{
	lexeme.LocationIndicator, lexeme.SigmetStart, lexeme.AirmetStart, lexeme.SequenceDescriptor,
	lexeme.ValidTime, lexeme.MWODesignator, lexeme.FIRDesignator, lexeme.FIRName, lexeme.FIRType,
	lexeme.Phenomenon, lexeme.ObservedOrForecast, lexeme.WithinKeyword, lexeme.EntireArea,
	lexeme.CoordinatePair, lexeme.PolygonSeparator, lexeme.FlightLevel, lexeme.Movement,
	lexeme.IntensityChange, lexeme.CancelledReportRef, lexeme.EndToken,
}

const firTypes = `FIR/UIR|FIR|UIR|CTA`

var periodInts = map[string]lexeme.ValueName{
	"d1": lexeme.Day1, "h1": lexeme.Hour1, "m1": lexeme.Minute1,
	"d2": lexeme.Day2, "h2": lexeme.Hour2, "m2": lexeme.Minute2,
}

const periodGroup = `(?P<d1>{DAY})(?P<h1>{HOUR})(?P<m1>{MINUTE})/(?P<d2>{DAY})(?P<h2>{HOUR})(?P<m2>{MINUTE})`

func sigmetRules() []Rule {
	return []Rule{
		{
			Name:     "cancelled_report",
			Identity: lexeme.CancelledReportRef,
			Priority: High,
			Spans:    4,
			Pattern:  `CNL (?P<kind>SIGMET|AIRMET) (?P<seq>[A-Z]?\d{1,2}) ` + periodGroup,
			Ints:     periodInts,
			Strings:  map[string]lexeme.ValueName{"kind": lexeme.Kind, "seq": lexeme.Code},
		},
		keyword("sigmet", lexeme.SigmetStart, "SIGMET", nil),
		keyword("airmet", lexeme.AirmetStart, "AIRMET", nil),
		{
			Name:     "entire_area",
			Identity: lexeme.EntireArea,
			Priority: High,
			Spans:    2,
			Pattern:  `ENTIRE (?P<kind>` + firTypes + `)`,
			Strings:  map[string]lexeme.ValueName{"kind": lexeme.Kind},
		},
		{
			Name:     "fir_type",
			Identity: lexeme.FIRType,
			Priority: High,
			Pattern:  `(?P<kind>` + firTypes + `)`,
			Strings:  map[string]lexeme.ValueName{"kind": lexeme.Kind},
		},
		{
			Name:     "obs_fcst_at",
			Identity: lexeme.ObservedOrForecast,
			Priority: High,
			Spans:    3,
			Pattern:  `(?P<kind>OBS|FCST) AT (?P<hour>{HOUR})(?P<minute>{MINUTE})Z`,
			Ints:     map[string]lexeme.ValueName{"hour": lexeme.Hour1, "minute": lexeme.Minute1},
			Strings:  map[string]lexeme.ValueName{"kind": lexeme.Kind},
		},
		{
			Name:     "obs_fcst",
			Identity: lexeme.ObservedOrForecast,
			Priority: High,
			Pattern:  `(?P<kind>OBS|FCST)`,
			Strings:  map[string]lexeme.ValueName{"kind": lexeme.Kind},
		},
		keyword("within", lexeme.WithinKeyword, "WI", nil),
		keyword("separator", lexeme.PolygonSeparator, "-", nil),
		keyword("stationary", lexeme.Movement, "STNR", lexeme.Values{lexeme.Kind: "STNR"}),
		{
			Name:     "intensity_change",
			Identity: lexeme.IntensityChange,
			Priority: High,
			Pattern:  `(?P<code>NC|WKN|INTSF)`,
			Strings:  map[string]lexeme.ValueName{"code": lexeme.Code},
		},
		endToken(),

		{
			Name:     "valid_period",
			Identity: lexeme.ValidTime,
			Priority: Normal,
			Spans:    2,
			Pattern:  `VALID ` + periodGroup,
			Ints:     periodInts,
		},
		{
			Name:     "mwo",
			Identity: lexeme.MWODesignator,
			Priority: Normal,
			Pattern:  `(?P<icao>{ICAO})-`,
			Strings:  map[string]lexeme.ValueName{"icao": lexeme.Name},
		},
		{
			Name:     "phenomenon",
			Identity: lexeme.Phenomenon,
			Priority: Normal,
			Spans:    2,
			Pattern: `(?P<code>(?:SEV|MOD) (?:TURB|ICE|MTW)|(?:OBSC|EMBD|FRQ|SQL|ISOL|OCNL) (?:TSGR|TS)` +
				`|(?:ISOL|OCNL|FRQ) (?:CB|TCU)|HVY (?:DS|SS)|RDOACT CLD)`,
			Strings: map[string]lexeme.ValueName{"code": lexeme.Code},
		},
		{
			Name:     "coordinate_pair",
			Identity: lexeme.CoordinatePair,
			Priority: Normal,
			Spans:    2,
			Pattern:  `(?P<lat>{LAT}) (?P<lon>{LON})`,
			Extract:  coordinates,
		},
		{
			Name:     "level_range",
			Identity: lexeme.FlightLevel,
			Priority: Normal,
			Pattern:  `FL(?P<lower>{FL})/(?P<upper>{FL})`,
			Ints:     map[string]lexeme.ValueName{"lower": lexeme.Lower, "upper": lexeme.Upper},
		},
		{
			Name:     "level_surface",
			Identity: lexeme.FlightLevel,
			Priority: Normal,
			Pattern:  `SFC/FL(?P<upper>{FL})`,
			Fixed:    lexeme.Values{lexeme.Kind: "SFC"},
			Ints:     map[string]lexeme.ValueName{"upper": lexeme.Upper},
		},
		{
			Name:     "level_top",
			Identity: lexeme.FlightLevel,
			Priority: Normal,
			Spans:    2,
			Pattern:  `TOP FL(?P<upper>{FL})`,
			Fixed:    lexeme.Values{lexeme.Kind: "TOP"},
			Ints:     map[string]lexeme.ValueName{"upper": lexeme.Upper},
		},
		{
			Name:     "level_single",
			Identity: lexeme.FlightLevel,
			Priority: Normal,
			Pattern:  `FL(?P<lower>{FL})`,
			Fixed:    lexeme.Values{lexeme.Kind: "AT"},
			Ints:     map[string]lexeme.ValueName{"lower": lexeme.Lower},
		},
		{
			Name:     "movement",
			Identity: lexeme.Movement,
			Priority: Normal,
			Spans:    3,
			Pattern:  `MOV (?P<dir>{DIR16}) (?P<speed>\d{1,3})(?P<unit>KT|KMH)`,
			Fixed:    lexeme.Values{lexeme.Kind: "MOV"},
			Ints:     map[string]lexeme.ValueName{"speed": lexeme.Speed},
			Strings:  map[string]lexeme.ValueName{"dir": lexeme.Direction, "unit": lexeme.Unit},
		},
		// Registered after the coordinate pair so "N60 E025" is not taken
		// for a sequence number.
		{
			Name:     "sequence",
			Identity: lexeme.SequenceDescriptor,
			Priority: Normal,
			Pattern:  `(?P<seq>[A-Z]?\d{1,2})`,
			Strings:  map[string]lexeme.ValueName{"seq": lexeme.Code},
		},

		{
			Name:     "location_indicator",
			Identity: lexeme.LocationIndicator,
			Priority: Low,
			Pattern:  `(?P<icao>{ICAO})`,
			Strings:  map[string]lexeme.ValueName{"icao": lexeme.Name},
		},
	}
}

func buildSIGMET(typ conversion.ReportType) (*Set, error) {
	return NewSet(typ, sigmetRules(), sigmetGrammar,
		[]lexeme.Identity{lexeme.FIRDesignator, lexeme.FIRName})
}
