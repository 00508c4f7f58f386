package timeref

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoReference is returned when a resolver is called without a reference.
var ErrNoReference = errors.New("timeref: reference time is not set")

// ResolutionError names the partial time field that could not be completed.
type ResolutionError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Value == Unset {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %d: %s", e.Field, e.Value, e.Reason)
}

// ResolveInMonth places p in the month ym. The day must be set; hour 24 is
// rewritten as 00:00 of the following day. A day the month does not have is
// an error, never clamped.
func ResolveInMonth(p PartialTime, ym YearMonth) (time.Time, error) {
	if ym.IsZero() {
		return time.Time{}, ErrNoReference
	}
	if err := p.Validate(); err != nil {
		return time.Time{}, err
	}
	if !p.HasDay() {
		return time.Time{}, &ResolutionError{Field: "day", Value: Unset, Reason: "not set and no reference day available"}
	}
	return build(p, ym, p.Day, false)
}

// ResolveNear completes p relative to the reference instant ref:
//   - an unset day takes the reference day, and rolls to the next day when
//     the hour is earlier than the reference hour;
//   - a day before the reference day belongs to the next month;
//   - a day on or after the reference day belongs to the reference month.
//     A written day is kept even when the hour is earlier than the reference
//     hour, so an amended validity starting before its issue time stays on
//     its day.
func ResolveNear(p PartialTime, ref time.Time) (time.Time, error) {
	if ref.IsZero() {
		return time.Time{}, ErrNoReference
	}
	if err := p.Validate(); err != nil {
		return time.Time{}, err
	}
	ref = ref.UTC()
	ym := YearMonthOf(ref)

	day := p.Day
	nextDay := false
	if !p.HasDay() {
		day = ref.Day()
		nextDay = p.HasHour() && p.Hour < ref.Hour()
	} else if day < ref.Day() {
		ym = ym.Next()
	}
	return build(p, ym, day, nextDay)
}

func build(p PartialTime, ym YearMonth, day int, nextDay bool) (time.Time, error) {
	if day > ym.Days() {
		return time.Time{}, &ResolutionError{
			Field:  "day",
			Value:  day,
			Reason: fmt.Sprintf("does not exist in %s", ym),
		}
	}
	hour, minute := p.Hour, p.Minute
	if hour == Unset {
		hour = 0
	}
	if minute == Unset {
		minute = 0
	}
	midnight := hour == 24
	if midnight {
		hour = 0
	}

	t := time.Date(ym.Year, ym.Month, day, hour, minute, 0, 0, time.UTC)
	if midnight {
		t = t.AddDate(0, 0, 1)
	}
	if nextDay {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
