package reconstruct

import (
	"fmt"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/timeref"
)

var tafSteps = []step[*model.TAF]{
	{"report start", func(o *out, t *model.TAF, _ conversion.Hints) error {
		o.add("TAF", lexeme.TAFStart, nil)
		if t.Amended {
			o.add("AMD", lexeme.Amendment, nil)
		}
		if t.Corrected {
			o.add("COR", lexeme.Correction, nil)
		}
		return nil
	}},
	{"aerodrome", func(o *out, t *model.TAF, _ conversion.Hints) error {
		if t.Aerodrome == "" {
			return missing("aerodrome")
		}
		o.add(t.Aerodrome, lexeme.AerodromeDesignator, lexeme.Values{lexeme.Name: t.Aerodrome})
		return nil
	}},
	{"issue time", func(o *out, t *model.TAF, _ conversion.Hints) error {
		p, ok := partialOf(t.IssueTime)
		if !ok {
			return missing("issue time")
		}
		o.add(dayHourMinute(p)+"Z", lexeme.IssueTime, timeValues(p, lexeme.Day1, lexeme.Hour1, lexeme.Minute1))
		if t.Nil {
			o.add("NIL", lexeme.Nil, nil)
		}
		return nil
	}},
	{"validity", func(o *out, t *model.TAF, h conversion.Hints) error {
		if t.Nil {
			return nil
		}
		raw, v, err := periodGroup(t.Validity, h.ValidityTimeFormat == conversion.PreferShort)
		if err != nil {
			return err
		}
		o.add(raw, lexeme.ValidTime, v)
		if t.Cancelled {
			o.add("CNL", lexeme.Cancellation, nil)
		}
		return nil
	}},
	{"base forecast", func(o *out, t *model.TAF, _ conversion.Hints) error {
		if t.Nil || t.Cancelled || t.Base == nil {
			return nil
		}
		conditions(o, &t.Base.Conditions)
		for _, tf := range t.Base.Temperatures {
			if err := temperatures(o, tf); err != nil {
				return err
			}
		}
		return nil
	}},
	{"change forecasts", func(o *out, t *model.TAF, _ conversion.Hints) error {
		if t.Nil || t.Cancelled {
			return nil
		}
		for _, c := range t.Changes {
			if err := change(o, c); err != nil {
				return err
			}
		}
		return nil
	}},
	{"remarks", func(o *out, t *model.TAF, _ conversion.Hints) error {
		if !t.Nil {
			remarks(o, t.Remarks)
		}
		return nil
	}},
	{"end", func(o *out, _ *model.TAF, _ conversion.Hints) error {
		endLexeme(o)
		return nil
	}},
}

// periodGroup renders a DDHH/DDHH period, or DDHHHH when short is set and
// the period is at most 24 hours within one day.
func periodGroup(p timeref.Period, short bool) (string, lexeme.Values, error) {
	start, ok := partialOf(p.Start)
	if !ok {
		return "", nil, missing("period start")
	}
	end, ok := partialOf(p.End)
	if !ok {
		return "", nil, missing("period end")
	}
	v := lexeme.Values{lexeme.Day1: start.Day, lexeme.Hour1: start.Hour, lexeme.Hour2: end.Hour}

	if short && (!end.HasDay() || end.Day == start.Day) {
		hours, err := timeref.ValidityHours(start.Day, start.Hour, end.Day, end.Hour, timeref.DefaultMaxRolloverHours)
		if err == nil && hours <= 24 {
			return two(start.Day) + two(start.Hour) + two(end.Hour), v, nil
		}
	}
	if !end.HasDay() {
		end.Day = start.Day
	}
	v[lexeme.Day2] = end.Day
	return two(start.Day) + two(start.Hour) + "/" + two(end.Day) + two(end.Hour), v, nil
}

func temperatureAt(prefix string, t *model.TemperatureAt) (string, timeref.PartialTime, error) {
	p, ok := partialOf(t.Time)
	if !ok {
		return "", p, missing(prefix + " time")
	}
	return fmt.Sprintf("%s%s/%s%sZ", prefix, temperature(t.Value), two(p.Day), two(p.Hour)), p, nil
}

// temperatures emits a max/min pair as one lexeme and a lone value on its
// own.
func temperatures(o *out, tf model.TemperatureForecast) error {
	v := lexeme.Values{}
	var raw string
	if tf.Max != nil {
		s, p, err := temperatureAt("TX", tf.Max)
		if err != nil {
			return err
		}
		raw = s
		v[lexeme.MaxValue], v[lexeme.Day1], v[lexeme.Hour1] = tf.Max.Value, p.Day, p.Hour
	}
	if tf.Min != nil {
		s, p, err := temperatureAt("TN", tf.Min)
		if err != nil {
			return err
		}
		if raw != "" {
			raw += " "
		}
		raw += s
		v[lexeme.MinValue], v[lexeme.Day2], v[lexeme.Hour2] = tf.Min.Value, p.Day, p.Hour
	}
	if raw != "" {
		o.add(raw, lexeme.MinMaxTemperature, v)
	}
	return nil
}

// change emits a change forecast. Change periods are always written in the
// long form.
func change(o *out, c model.ChangeForecast) error {
	v := lexeme.Values{lexeme.Kind: c.Kind}
	switch c.Kind {
	case model.ChangeBecoming, model.ChangeTemporary:
		o.add(c.Kind, lexeme.ForecastChangeIndicator, v)
	case model.ChangeProb:
		v[lexeme.Value] = c.Probability
		o.add(fmt.Sprintf("PROB%02d", c.Probability), lexeme.ForecastChangeIndicator, v)
	case model.ChangeProbTempo:
		v[lexeme.Value] = c.Probability
		o.add(fmt.Sprintf("PROB%02d TEMPO", c.Probability), lexeme.ForecastChangeIndicator, v)
	case model.ChangeFrom:
		p, ok := partialOf(c.Period.Start)
		if !ok {
			return missing("FM time")
		}
		for k, tv := range timeValues(p, lexeme.Day1, lexeme.Hour1, lexeme.Minute1) {
			v[k] = tv
		}
		o.add("FM"+dayHourMinute(p), lexeme.ForecastChangeIndicator, v)
		conditions(o, &c.Conditions)
		return nil
	default:
		return fmt.Errorf("unknown change forecast kind %q", c.Kind)
	}

	raw, pv, err := periodGroup(c.Period, false)
	if err != nil {
		return err
	}
	o.add(raw, lexeme.ChangeForecastTimeGroup, pv)
	conditions(o, &c.Conditions)
	return nil
}

// TAF reconstructs an aerodrome forecast. NIL stops after the issue time
// and CNL after the validity.
func TAF(t *model.TAF, h conversion.Hints) (*lexeme.Sequence, error) {
	if t == nil {
		return nil, conversion.ErrNilArgument
	}
	return run(tafSteps, t, h)
}
