// Package reconstruct serialises report models back into TAC lexeme
// sequences and text. Each report type has a fixed table of steps, run in
// order, each producing zero or more final lexemes.
package reconstruct

import (
	"errors"
	"fmt"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/timeref"
)

// ErrMissingField is wrapped by errors for models lacking a field the TAC
// encoding cannot omit.
var ErrMissingField = errors.New("mandatory field missing")

func missing(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// out accumulates the lexemes of one reconstruction.
type out struct {
	seq *lexeme.Sequence
}

func (o *out) add(raw string, id lexeme.Identity, v lexeme.Values) {
	o.seq.Append(lexeme.NewFinal(raw, id, v))
}

// step emits the lexemes of one identity (or closely bound group of
// identities) for a model of type T.
type step[T any] struct {
	name string
	emit func(o *out, m T, h conversion.Hints) error
}

func run[T any](steps []step[T], m T, h conversion.Hints) (*lexeme.Sequence, error) {
	o := &out{seq: lexeme.NewSequence()}
	for _, s := range steps {
		if err := s.emit(o, m, h); err != nil {
			return nil, fmt.Errorf("reconstruct %s: %w", s.name, err)
		}
	}
	return o.seq, nil
}

// Sequence reconstructs any supported report model.
func Sequence(r model.Report, h conversion.Hints) (*lexeme.Sequence, error) {
	switch m := r.(type) {
	case *model.METAR:
		return METAR(m, h)
	case *model.TAF:
		return TAF(m, h)
	case *model.SIGMET:
		return SIGMET(m, h)
	case nil:
		return nil, conversion.ErrNilArgument
	}
	return nil, fmt.Errorf("unsupported report model %T", r)
}

// Text reconstructs r and renders it as TAC text.
func Text(r model.Report, h conversion.Hints) (string, error) {
	seq, err := Sequence(r, h)
	if err != nil {
		return "", err
	}
	return seq.Text(), nil
}

// partialOf returns the written form of i, deriving it from the complete
// time when the model only carries that.
func partialOf(i timeref.Instant) (timeref.PartialTime, bool) {
	switch {
	case i.Partial != nil:
		return *i.Partial, true
	case i.Complete != nil:
		t := i.Complete.UTC()
		return timeref.NewPartial(t.Day(), t.Hour(), t.Minute()), true
	}
	return timeref.PartialTime{}, false
}

func two(v int) string {
	if v == timeref.Unset {
		v = 0
	}
	return fmt.Sprintf("%02d", v)
}

// dayHourMinute renders DDHHMM.
func dayHourMinute(p timeref.PartialTime) string {
	return two(p.Day) + two(p.Hour) + two(p.Minute)
}

func timeValues(p timeref.PartialTime, day, hour, minute lexeme.ValueName) lexeme.Values {
	v := lexeme.Values{}
	if p.HasDay() && day != "" {
		v[day] = p.Day
	}
	if p.HasHour() && hour != "" {
		v[hour] = p.Hour
	}
	if p.HasMinute() && minute != "" {
		v[minute] = p.Minute
	}
	return v
}

func endLexeme(o *out) {
	o.add("=", lexeme.EndToken, nil)
}
