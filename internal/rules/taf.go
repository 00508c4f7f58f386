package rules

import (
	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
)

var tafGrammar = []lexeme.Identity{
	lexeme.TAFStart, lexeme.Amendment, lexeme.Correction, lexeme.Cancellation,
	lexeme.AerodromeDesignator, lexeme.IssueTime, lexeme.Nil, lexeme.ValidTime,
	lexeme.SurfaceWind, lexeme.HorizontalVisibility, lexeme.CAVOK, lexeme.Weather,
	lexeme.NoSignificantWeather, lexeme.Cloud, lexeme.MinMaxTemperature,
	lexeme.ForecastChangeIndicator, lexeme.ChangeForecastTimeGroup,
	lexeme.RemarksStart, lexeme.Remark, lexeme.EndToken,
}

var (
	maxTempInts = map[string]lexeme.ValueName{"maxday": lexeme.Day1, "maxhour": lexeme.Hour1}
	minTempInts = map[string]lexeme.ValueName{"minday": lexeme.Day2, "minhour": lexeme.Hour2}
)

const (
	maxTempGroup = `TX(?P<max>{TEMP})/(?P<maxday>{DAY})(?P<maxhour>{HOUR})Z`
	minTempGroup = `TN(?P<min>{TEMP})/(?P<minday>{DAY})(?P<minhour>{HOUR})Z`
)

func tafRules() []Rule {
	return []Rule{
		keyword("taf", lexeme.TAFStart, "TAF", nil),
		keyword("amd", lexeme.Amendment, "AMD", nil),
		keyword("cor", lexeme.Correction, "COR", nil),
		keyword("cnl", lexeme.Cancellation, "CNL", nil),
		keyword("nil", lexeme.Nil, "NIL", nil),
		keyword("cavok", lexeme.CAVOK, "CAVOK", nil),
		keyword("nsw", lexeme.NoSignificantWeather, "NSW", nil),
		noCloud(),
		keyword("becmg", lexeme.ForecastChangeIndicator, "BECMG", lexeme.Values{lexeme.Kind: "BECMG"}),
		keyword("tempo", lexeme.ForecastChangeIndicator, "TEMPO", lexeme.Values{lexeme.Kind: "TEMPO"}),
		remarksStart(),
		endToken(),

		{
			Name:     "prob_tempo",
			Identity: lexeme.ForecastChangeIndicator,
			Priority: Normal,
			Spans:    2,
			Pattern:  `PROB(?P<prob>30|40) TEMPO`,
			Fixed:    lexeme.Values{lexeme.Kind: "PROB_TEMPO"},
			Ints:     map[string]lexeme.ValueName{"prob": lexeme.Value},
		},
		{
			Name:     "prob",
			Identity: lexeme.ForecastChangeIndicator,
			Priority: Normal,
			Pattern:  `PROB(?P<prob>30|40)`,
			Fixed:    lexeme.Values{lexeme.Kind: "PROB"},
			Ints:     map[string]lexeme.ValueName{"prob": lexeme.Value},
		},
		{
			Name:     "from",
			Identity: lexeme.ForecastChangeIndicator,
			Priority: Normal,
			Pattern:  `FM(?P<day>{DAY})(?P<hour>{HOUR})(?P<minute>{MINUTE})`,
			Fixed:    lexeme.Values{lexeme.Kind: "FM"},
			Ints:     map[string]lexeme.ValueName{"day": lexeme.Day1, "hour": lexeme.Hour1, "minute": lexeme.Minute1},
		},
		issueTime(),
		{
			Name:     "valid_time",
			Identity: lexeme.ValidTime,
			Priority: Normal,
			Pattern:  `(?P<d1>{DAY})(?P<h1>{HOUR})/(?P<d2>{DAY})(?P<h2>{HOUR})`,
			Ints: map[string]lexeme.ValueName{
				"d1": lexeme.Day1, "h1": lexeme.Hour1, "d2": lexeme.Day2, "h2": lexeme.Hour2,
			},
		},
		surfaceWind(),
		visibility(),
		cloud(),
		{
			Name:     "min_max_temperature",
			Identity: lexeme.MinMaxTemperature,
			Priority: Normal,
			Spans:    2,
			Pattern:  maxTempGroup + ` ` + minTempGroup,
			Temps:    map[string]lexeme.ValueName{"max": lexeme.MaxValue, "min": lexeme.MinValue},
			Ints: map[string]lexeme.ValueName{
				"maxday": lexeme.Day1, "maxhour": lexeme.Hour1, "minday": lexeme.Day2, "minhour": lexeme.Hour2,
			},
		},
		{
			Name:     "max_temperature",
			Identity: lexeme.MinMaxTemperature,
			Priority: Normal,
			Pattern:  maxTempGroup,
			Temps:    map[string]lexeme.ValueName{"max": lexeme.MaxValue},
			Ints:     maxTempInts,
		},
		{
			Name:     "min_temperature",
			Identity: lexeme.MinMaxTemperature,
			Priority: Normal,
			Pattern:  minTempGroup,
			Temps:    map[string]lexeme.ValueName{"min": lexeme.MinValue},
			Ints:     minTempInts,
		},

		weather(),
		aerodrome(),
		{
			Name:     "valid_time_short",
			Identity: lexeme.ValidTime,
			Priority: Low,
			Pattern:  `(?P<d1>{DAY})(?P<h1>{HOUR})(?P<h2>{HOUR})`,
			Ints:     map[string]lexeme.ValueName{"d1": lexeme.Day1, "h1": lexeme.Hour1, "h2": lexeme.Hour2},
		},
	}
}

func buildTAF() (*Set, error) {
	return NewSet(conversion.TAF, tafRules(), tafGrammar,
		[]lexeme.Identity{lexeme.ChangeForecastTimeGroup, lexeme.Remark})
}
