package parse

import (
	"strconv"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/timeref"
)

// TAF builds an aerodrome forecast from seq. A cancelled forecast carries
// its own copy of the aerodrome and validity as the referred report.
func TAF(seq *lexeme.Sequence) (*model.TAF, []conversion.Issue) {
	b := newBuilder()
	t := &model.TAF{}
	var change *model.ChangeForecast

	for _, l := range seq.All() {
		v := l.Values()
		if change != nil {
			if b.condition(&change.Conditions, "change"+strconv.Itoa(len(t.Changes))+".", l) {
				continue
			}
		} else if b.baseCondition(t, l) {
			continue
		}

		switch l.Identity() {
		case lexeme.TAFStart, lexeme.RemarksStart, lexeme.EndToken, lexeme.Unknown:
		case lexeme.Amendment:
			t.Amended = true
		case lexeme.Correction:
			t.Corrected = true
		case lexeme.Cancellation:
			t.Cancelled = true
		case lexeme.Nil:
			t.Nil = true
		case lexeme.AerodromeDesignator:
			if b.once("aerodrome", l) {
				t.Aerodrome = v.String(lexeme.Name)
			}
		case lexeme.IssueTime:
			if b.once("issue time", l) {
				t.IssueTime = timeref.PartialInstant(partial(v, lexeme.Day1, lexeme.Hour1, lexeme.Minute1))
			}
		case lexeme.ValidTime:
			if b.once("validity", l) {
				t.Validity = period(v)
				b.checkPeriod(t.Validity, "validity "+l.Raw())
			}
		case lexeme.MinMaxTemperature:
			if change != nil {
				b.logical("temperature forecast %q is only allowed in the base forecast", l.Raw())
				continue
			}
			b.temperature(t, v)
		case lexeme.ForecastChangeIndicator:
			t.Changes = append(t.Changes, model.ChangeForecast{
				Kind:        v.String(lexeme.Kind),
				Probability: v.IntOr(lexeme.Value, 0),
			})
			change = &t.Changes[len(t.Changes)-1]
			if change.Kind == model.ChangeFrom {
				change.Period.Start = timeref.PartialInstant(partial(v, lexeme.Day1, lexeme.Hour1, lexeme.Minute1))
			}
		case lexeme.ChangeForecastTimeGroup:
			if change == nil || change.Kind == model.ChangeFrom || !change.Period.IsZero() {
				b.logical("change forecast time %q at position %d has no change indicator", l.Raw(), l.Index())
				continue
			}
			change.Period = period(v)
			b.checkPeriod(change.Period, "change period "+l.Raw())
		case lexeme.Remark:
			t.Remarks = append(t.Remarks, l.Raw())
		default:
			b.logical("%s %q is not part of a TAF", l.Identity(), l.Raw())
		}
	}

	b.require(t.Aerodrome != "", "aerodrome designator")
	b.require(!t.IssueTime.IsZero(), "issue time")
	if !t.Nil {
		b.require(!t.Validity.IsZero(), "validity")
	}
	if !t.Nil && !t.Cancelled {
		b.require(t.Base != nil && t.Base.Wind != nil, "base forecast surface wind")
	}
	for i, c := range t.Changes {
		b.require(!c.Period.IsZero(), "change forecast "+strconv.Itoa(i+1)+" time")
	}
	if t.Cancelled {
		t.ReferredReport = &model.TAF{Aerodrome: t.Aerodrome, Validity: copyPeriod(t.Validity)}
	}
	return t, b.result()
}

func (b *builder) baseCondition(t *model.TAF, l *lexeme.Lexeme) bool {
	var c model.Conditions
	if t.Base != nil {
		c = t.Base.Conditions
	}
	if !b.condition(&c, "base.", l) {
		return false
	}
	if t.Base == nil {
		t.Base = &model.BaseForecast{}
	}
	t.Base.Conditions = c
	return true
}

func (b *builder) temperature(t *model.TAF, v lexeme.Values) {
	var tf model.TemperatureForecast
	if hi, ok := v.Int(lexeme.MaxValue); ok {
		tf.Max = &model.TemperatureAt{
			Value: hi,
			Time:  timeref.PartialInstant(timeref.NewPartial(v.IntOr(lexeme.Day1, timeref.Unset), v.IntOr(lexeme.Hour1, timeref.Unset), timeref.Unset)),
		}
	}
	if lo, ok := v.Int(lexeme.MinValue); ok {
		tf.Min = &model.TemperatureAt{
			Value: lo,
			Time:  timeref.PartialInstant(timeref.NewPartial(v.IntOr(lexeme.Day2, timeref.Unset), v.IntOr(lexeme.Hour2, timeref.Unset), timeref.Unset)),
		}
	}
	if t.Base == nil {
		t.Base = &model.BaseForecast{}
	}
	t.Base.Temperatures = append(t.Base.Temperatures, tf)
}

// copyPeriod copies the partial times so the referred report owns its
// validity.
func copyPeriod(p timeref.Period) timeref.Period {
	var out timeref.Period
	if p.Start.Partial != nil {
		out.Start = timeref.PartialInstant(*p.Start.Partial)
	}
	if p.End.Partial != nil {
		out.End = timeref.PartialInstant(*p.End.Partial)
	}
	return out
}
