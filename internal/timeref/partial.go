// Package timeref completes the truncated day/hour/minute times written in
// TAC messages into full UTC timestamps.
package timeref

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unset marks an absent partial time field.
const Unset = -1

// PartialTime is a timestamp as literally written in a message: day, hour
// and minute without month or year. Unset fields hold Unset.
type PartialTime struct {
	Day    int    `json:"day"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Zone   string `json:"zone,omitempty"`
}

// NewPartial builds a partial time in UTC ("Z").
func NewPartial(day, hour, minute int) PartialTime {
	return PartialTime{Day: day, Hour: hour, Minute: minute, Zone: "Z"}
}

// HourMinute builds a partial time without a day.
func HourMinute(hour, minute int) PartialTime {
	return NewPartial(Unset, hour, minute)
}

func (p PartialTime) HasDay() bool    { return p.Day != Unset }
func (p PartialTime) HasHour() bool   { return p.Hour != Unset }
func (p PartialTime) HasMinute() bool { return p.Minute != Unset }

// IsMidnight24 reports whether the time is written as hour 24.
func (p PartialTime) IsMidnight24() bool { return p.Hour == 24 }

// Validate checks the field ranges of a partial time.
func (p PartialTime) Validate() error {
	if p.Day != Unset && (p.Day < 1 || p.Day > 31) {
		return &ResolutionError{Field: "day", Value: p.Day, Reason: "out of range 1-31"}
	}
	if p.Hour != Unset && (p.Hour < 0 || p.Hour > 24) {
		return &ResolutionError{Field: "hour", Value: p.Hour, Reason: "out of range 0-24"}
	}
	if p.Minute != Unset && (p.Minute < 0 || p.Minute > 59) {
		return &ResolutionError{Field: "minute", Value: p.Minute, Reason: "out of range 0-59"}
	}
	if p.Hour == 24 && p.Minute > 0 {
		return &ResolutionError{Field: "minute", Value: p.Minute, Reason: "must be 0 when hour is 24"}
	}
	if p.Zone != "" && p.Zone != "Z" {
		return &ResolutionError{Field: "zone", Value: Unset, Reason: fmt.Sprintf("unsupported zone %q", p.Zone)}
	}
	return nil
}

// String renders the set fields as DDHHMMZ with unset fields omitted.
func (p PartialTime) String() string {
	var b strings.Builder
	for _, v := range []int{p.Day, p.Hour, p.Minute} {
		if v != Unset {
			b.WriteString(pad2(v))
		}
	}
	b.WriteString(p.Zone)
	return b.String()
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// YearMonth is the month a message was issued in.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// YearMonthOf returns the UTC year and month of t.
func YearMonthOf(t time.Time) YearMonth {
	t = t.UTC()
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "2006-01".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year-month %q: %w", s, err)
	}
	return YearMonthOf(t), nil
}

// IsZero reports whether ym is unset.
func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}
