// Package parse builds report models from recognised lexeme sequences.
// Every parsed value name maps to exactly one model field.
package parse

import (
	"strings"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/timeref"
)

// builder collects the issues found while filling a model.
type builder struct {
	issues  []conversion.Issue
	missing []string
	seen    map[string]bool
}

func newBuilder() *builder {
	return &builder{seen: make(map[string]bool)}
}

func (b *builder) logical(format string, args ...any) {
	b.issues = append(b.issues, conversion.NewIssue(conversion.LogicalError, format, args...))
}

// once reports whether key is seen for the first time and records a
// duplicate otherwise.
func (b *builder) once(key string, l *lexeme.Lexeme) bool {
	if b.seen[key] {
		b.logical("duplicate %s %q at position %d", strings.ToLower(string(l.Identity())), l.Raw(), l.Index())
		return false
	}
	b.seen[key] = true
	return true
}

// require records name as missing unless ok.
func (b *builder) require(ok bool, name string) {
	if !ok {
		b.missing = append(b.missing, name)
	}
}

// result appends a single MISSING_DATA issue listing every missing field.
func (b *builder) result() []conversion.Issue {
	if len(b.missing) > 0 {
		b.issues = append(b.issues, conversion.NewIssue(conversion.MissingData,
			"missing mandatory fields: %s", strings.Join(b.missing, ", ")))
	}
	return b.issues
}

func partial(v lexeme.Values, day, hour, minute lexeme.ValueName) timeref.PartialTime {
	return timeref.NewPartial(v.IntOr(day, timeref.Unset), v.IntOr(hour, timeref.Unset), v.IntOr(minute, timeref.Unset))
}

func period(v lexeme.Values) timeref.Period {
	return timeref.PartialPeriod(
		partial(v, lexeme.Day1, lexeme.Hour1, lexeme.Minute1),
		partial(v, lexeme.Day2, lexeme.Hour2, lexeme.Minute2),
	)
}

// checkPeriod reports a period whose length is not acceptable.
func (b *builder) checkPeriod(p timeref.Period, what string) {
	if _, err := p.Hours(timeref.DefaultMaxRolloverHours); err != nil {
		b.logical("%s: %v", what, err)
	}
}

// condition fills the shared weather elements. It returns false for
// identities that are not weather elements.
func (b *builder) condition(c *model.Conditions, scope string, l *lexeme.Lexeme) bool {
	v := l.Values()
	switch l.Identity() {
	case lexeme.SurfaceWind:
		if b.once(scope+"wind", l) {
			c.Wind = &model.SurfaceWind{
				Variable:  v.String(lexeme.Kind) == "VRB",
				Direction: v.IntOr(lexeme.Direction, 0),
				Speed:     v.IntOr(lexeme.Speed, 0),
				Gust:      v.IntOr(lexeme.Gust, 0),
				Unit:      v.String(lexeme.Unit),
			}
		}
	case lexeme.HorizontalVisibility:
		if b.once(scope+"visibility", l) {
			c.Visibility = &model.Visibility{
				Distance:  v.IntOr(lexeme.Value, 0),
				Direction: v.String(lexeme.Direction),
			}
		}
	case lexeme.CAVOK:
		if b.once(scope+"cavok", l) {
			c.CAVOK = true
		}
	case lexeme.Weather:
		c.Weather = append(c.Weather, model.Weather{
			Intensity: v.String(lexeme.Intensity),
			Code:      v.String(lexeme.Code),
		})
	case lexeme.NoSignificantWeather:
		if b.once(scope+"nsw", l) {
			c.NoSignificantWeather = true
		}
	case lexeme.Cloud:
		c.Clouds = append(c.Clouds, model.Cloud{
			Cover:  v.String(lexeme.Cover),
			Height: v.IntOr(lexeme.Value, 0),
			Type:   v.String(lexeme.CloudType),
		})
	default:
		return false
	}
	return true
}

// Report builds the model of report type t from seq.
func Report(seq *lexeme.Sequence, t conversion.ReportType) (model.Report, []conversion.Issue, error) {
	if seq == nil {
		return nil, nil, conversion.ErrNilArgument
	}
	switch t {
	case conversion.METAR, conversion.SPECI:
		m, issues := METAR(seq)
		return m, issues, nil
	case conversion.TAF:
		m, issues := TAF(seq)
		return m, issues, nil
	case conversion.SIGMET, conversion.AIRMET:
		m, issues := SIGMET(seq)
		return m, issues, nil
	}
	return nil, nil, &unsupportedError{t}
}

type unsupportedError struct{ t conversion.ReportType }

func (e *unsupportedError) Error() string { return "unsupported report type " + string(e.t) }
