package rules

import (
	"tac_converter/internal/lexeme"
	"tac_converter/internal/patterns"
)

// Rules shared by the aerodrome report types (METAR, SPECI and TAF).

const weatherCode = `(?:{WX_DESC})(?:{WX_PHEN}){0,3}|(?:{WX_PHEN}){1,3}`

func endToken() Rule { return keyword("end", lexeme.EndToken, "=", nil) }

func remarksStart() Rule { return keyword("rmk", lexeme.RemarksStart, "RMK", nil) }

func issueTime() Rule {
	return Rule{
		Name:     "issue_time",
		Identity: lexeme.IssueTime,
		Priority: Normal,
		Pattern:  `(?P<day>{DAY})(?P<hour>{HOUR})(?P<minute>{MINUTE})Z`,
		Ints:     map[string]lexeme.ValueName{"day": lexeme.Day1, "hour": lexeme.Hour1, "minute": lexeme.Minute1},
	}
}

func surfaceWind() Rule {
	return Rule{
		Name:     "surface_wind",
		Identity: lexeme.SurfaceWind,
		Priority: Normal,
		Pattern:  `(?:(?P<dir>{WIND_DIR})|(?P<vrb>VRB))(?P<speed>{WIND_SPD})(?:G(?P<gust>{WIND_SPD}))?(?P<unit>{SPD_UNIT})`,
		Ints:     map[string]lexeme.ValueName{"dir": lexeme.Direction, "speed": lexeme.Speed, "gust": lexeme.Gust},
		Strings:  map[string]lexeme.ValueName{"vrb": lexeme.Kind, "unit": lexeme.Unit},
	}
}

func variableWind() Rule {
	return Rule{
		Name:     "variable_wind",
		Identity: lexeme.VariableWindDirection,
		Priority: Normal,
		Pattern:  `(?P<min>{WIND_DIR})V(?P<max>{WIND_DIR})`,
		Ints:     map[string]lexeme.ValueName{"min": lexeme.MinDir, "max": lexeme.MaxDir},
	}
}

func visibility() Rule {
	return Rule{
		Name:     "visibility",
		Identity: lexeme.HorizontalVisibility,
		Priority: Normal,
		Pattern:  `(?P<vis>{VIS})(?P<dir>{COMPASS})?`,
		Ints:     map[string]lexeme.ValueName{"vis": lexeme.Value},
		Strings:  map[string]lexeme.ValueName{"dir": lexeme.Direction},
	}
}

func cloud() Rule {
	return Rule{
		Name:     "cloud",
		Identity: lexeme.Cloud,
		Priority: Normal,
		Pattern:  `(?P<cover>{COVER}|VV)(?P<height>{HEIGHT})(?P<type>{CLOUD_TYPE})?`,
		Ints:     map[string]lexeme.ValueName{"height": lexeme.Value},
		Strings:  map[string]lexeme.ValueName{"cover": lexeme.Cover, "type": lexeme.CloudType},
	}
}

func noCloud() Rule {
	return Rule{
		Name:     "no_cloud",
		Identity: lexeme.Cloud,
		Priority: High,
		Pattern:  `(?P<cover>NSC|NCD|SKC|CLR)`,
		Strings:  map[string]lexeme.ValueName{"cover": lexeme.Cover},
	}
}

func weather() Rule {
	return Rule{
		Name:     "weather",
		Identity: lexeme.Weather,
		Priority: Low,
		Pattern:  `(?P<intensity>{WX_INTENSITY})?(?P<code>` + weatherCode + `)`,
		Strings:  map[string]lexeme.ValueName{"intensity": lexeme.Intensity, "code": lexeme.Code},
	}
}

func aerodrome() Rule {
	return Rule{
		Name:     "aerodrome",
		Identity: lexeme.AerodromeDesignator,
		Priority: Low,
		Pattern:  `(?P<icao>{ICAO})`,
		Strings:  map[string]lexeme.ValueName{"icao": lexeme.Name},
	}
}

// coordinates decodes the lat/lon groups of a coordinate pair.
func coordinates(m *patterns.Match, v lexeme.Values) error {
	lat, err := patterns.ParseDMCoord(m.GetCapture("lat", ""))
	if err != nil {
		return err
	}
	lon, err := patterns.ParseDMCoord(m.GetCapture("lon", ""))
	if err != nil {
		return err
	}
	v[lexeme.Latitude] = lat
	v[lexeme.Longitude] = lon
	return nil
}
