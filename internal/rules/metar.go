package rules

import (
	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
)

var metarGrammar = []lexeme.Identity{
	lexeme.MetarStart, lexeme.SpeciStart, lexeme.Correction, lexeme.AerodromeDesignator,
	lexeme.IssueTime, lexeme.Nil, lexeme.Automated, lexeme.SurfaceWind,
	lexeme.VariableWindDirection, lexeme.HorizontalVisibility, lexeme.CAVOK,
	lexeme.RunwayVisualRange, lexeme.Weather, lexeme.Cloud, lexeme.AirDewpointTemp,
	lexeme.AirPressureQNH, lexeme.RecentWeather, lexeme.WindShear, lexeme.SeaState,
	lexeme.RunwayState, lexeme.TrendChangeIndicator, lexeme.TrendTimeGroup,
	lexeme.NoSignificantWeather, lexeme.RemarksStart, lexeme.Remark, lexeme.EndToken,
}

func metarRules() []Rule {
	return []Rule{
		keyword("metar", lexeme.MetarStart, "METAR", nil),
		keyword("speci", lexeme.SpeciStart, "SPECI", nil),
		keyword("cor", lexeme.Correction, "COR", nil),
		keyword("nil", lexeme.Nil, "NIL", nil),
		keyword("auto", lexeme.Automated, "AUTO", nil),
		keyword("cavok", lexeme.CAVOK, "CAVOK", nil),
		keyword("nsw", lexeme.NoSignificantWeather, "NSW", nil),
		noCloud(),
		keyword("nosig", lexeme.TrendChangeIndicator, "NOSIG", lexeme.Values{lexeme.Kind: "NOSIG"}),
		keyword("becmg", lexeme.TrendChangeIndicator, "BECMG", lexeme.Values{lexeme.Kind: "BECMG"}),
		keyword("tempo", lexeme.TrendChangeIndicator, "TEMPO", lexeme.Values{lexeme.Kind: "TEMPO"}),
		remarksStart(),
		endToken(),

		issueTime(),
		surfaceWind(),
		variableWind(),
		visibility(),
		{
			Name:     "rvr",
			Identity: lexeme.RunwayVisualRange,
			Priority: Normal,
			Pattern: `R(?P<rwy>{RUNWAY})/(?P<op>{RVR_PREFIX})?(?P<val>{RVR_VALUE})` +
				`(?:V(?P<op2>{RVR_PREFIX})?(?P<val2>{RVR_VALUE}))?(?P<unit>FT)?(?P<tend>{TENDENCY})?`,
			Ints: map[string]lexeme.ValueName{"val": lexeme.Value, "val2": lexeme.Value2},
			Strings: map[string]lexeme.ValueName{
				"rwy": lexeme.Runway, "op": lexeme.Operator, "op2": lexeme.Operator2,
				"unit": lexeme.Unit, "tend": lexeme.Tendency,
			},
		},
		{
			Name:     "runway_state",
			Identity: lexeme.RunwayState,
			Priority: Normal,
			Pattern:  `R(?P<rwy>{RUNWAY})/(?P<code>[0-9/]{6}|CLRD\d{2})`,
			Strings:  map[string]lexeme.ValueName{"rwy": lexeme.Runway, "code": lexeme.Code},
		},
		{
			Name:     "recent_weather",
			Identity: lexeme.RecentWeather,
			Priority: Normal,
			Pattern:  `RE(?P<code>` + weatherCode + `)`,
			Strings:  map[string]lexeme.ValueName{"code": lexeme.Code},
		},
		cloud(),
		{
			Name:     "temperature",
			Identity: lexeme.AirDewpointTemp,
			Priority: Normal,
			Pattern:  `(?P<air>{TEMP})/(?P<dew>{TEMP})`,
			Temps:    map[string]lexeme.ValueName{"air": lexeme.Value, "dew": lexeme.Value2},
		},
		{
			Name:     "qnh",
			Identity: lexeme.AirPressureQNH,
			Priority: Normal,
			Pattern:  `(?P<unit>[QA])(?P<value>{PRESSURE})`,
			Ints:     map[string]lexeme.ValueName{"value": lexeme.Value},
			Strings:  map[string]lexeme.ValueName{"unit": lexeme.Unit},
		},
		{
			Name:     "wind_shear_all",
			Identity: lexeme.WindShear,
			Priority: Normal,
			Spans:    3,
			Pattern:  `WS ALL RWY`,
			Fixed:    lexeme.Values{lexeme.Kind: "ALL"},
		},
		{
			Name:     "wind_shear_runway",
			Identity: lexeme.WindShear,
			Priority: Normal,
			Spans:    2,
			Pattern:  `WS R(?P<rwy>{RUNWAY})`,
			Strings:  map[string]lexeme.ValueName{"rwy": lexeme.Runway},
		},
		{
			Name:     "sea_state",
			Identity: lexeme.SeaState,
			Priority: Normal,
			Pattern:  `W(?P<temp>{TEMP})/(?P<kind>[SH])(?P<value>\d{1,3})`,
			Temps:    map[string]lexeme.ValueName{"temp": lexeme.Value},
			Ints:     map[string]lexeme.ValueName{"value": lexeme.Value2},
			Strings:  map[string]lexeme.ValueName{"kind": lexeme.Kind},
		},
		{
			Name:     "trend_time",
			Identity: lexeme.TrendTimeGroup,
			Priority: Normal,
			Pattern:  `(?P<kind>FM|TL|AT)(?P<hour>{HOUR})(?P<minute>{MINUTE})`,
			Ints:     map[string]lexeme.ValueName{"hour": lexeme.Hour1, "minute": lexeme.Minute1},
			Strings:  map[string]lexeme.ValueName{"kind": lexeme.Kind},
		},

		weather(),
		aerodrome(),
	}
}

func buildMETAR() (*Set, error) {
	return NewSet(conversion.METAR, metarRules(), metarGrammar, []lexeme.Identity{lexeme.Remark})
}
