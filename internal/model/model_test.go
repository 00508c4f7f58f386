package model

import (
	"errors"
	"testing"
	"time"

	"tac_converter/internal/conversion"
	"tac_converter/internal/timeref"
)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func sampleTAF() *TAF {
	return &TAF{
		Aerodrome: "EFHK",
		IssueTime: timeref.PartialInstant(timeref.NewPartial(31, 17, 30)),
		Validity:  timeref.PartialPeriod(timeref.NewPartial(31, 18, timeref.Unset), timeref.NewPartial(1, 24, timeref.Unset)),
		Base: &BaseForecast{
			Temperatures: []TemperatureForecast{{
				Max: &TemperatureAt{Value: 2, Time: timeref.PartialInstant(timeref.NewPartial(1, 12, timeref.Unset))},
				Min: &TemperatureAt{Value: -5, Time: timeref.PartialInstant(timeref.NewPartial(31, 23, timeref.Unset))},
			}},
		},
		Changes: []ChangeForecast{
			{Kind: ChangeBecoming, Period: timeref.PartialPeriod(timeref.NewPartial(31, 20, timeref.Unset), timeref.NewPartial(31, 22, timeref.Unset))},
			{Kind: ChangeFrom, Period: timeref.Period{Start: timeref.PartialInstant(timeref.NewPartial(1, 6, 0))}},
		},
	}
}

func TestTAFResolveTimes(t *testing.T) {
	taf := sampleTAF()
	if taf.AllTimesComplete() {
		t.Fatal("unresolved TAF reports complete times")
	}
	if err := taf.ResolveTimes(timeref.YearMonth{Year: 2017, Month: time.December}); err != nil {
		t.Fatalf("ResolveTimes() error = %v", err)
	}
	if !taf.AllTimesComplete() {
		t.Fatal("AllTimesComplete() = false after resolution")
	}

	checks := []struct {
		name string
		got  *time.Time
		want time.Time
	}{
		{"issue time", taf.IssueTime.Complete, utc(2017, time.December, 31, 17, 30)},
		{"validity start", taf.Validity.Start.Complete, utc(2017, time.December, 31, 18, 0)},
		{"validity end", taf.Validity.End.Complete, utc(2018, time.January, 2, 0, 0)},
		{"max temperature", taf.Base.Temperatures[0].Max.Time.Complete, utc(2018, time.January, 1, 12, 0)},
		{"min temperature", taf.Base.Temperatures[0].Min.Time.Complete, utc(2017, time.December, 31, 23, 0)},
		{"becoming end", taf.Changes[0].Period.End.Complete, utc(2017, time.December, 31, 22, 0)},
		{"from start", taf.Changes[1].Period.Start.Complete, utc(2018, time.January, 1, 6, 0)},
	}
	for _, c := range checks {
		if c.got == nil || !c.got.Equal(c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestTAFResolveTimesIdempotent(t *testing.T) {
	taf := sampleTAF()
	ym := timeref.YearMonth{Year: 2017, Month: time.December}
	if err := taf.ResolveTimes(ym); err != nil {
		t.Fatal(err)
	}
	first := *taf.Changes[1].Period.Start.Complete
	if err := taf.ResolveTimes(ym); err != nil {
		t.Fatal(err)
	}
	if got := *taf.Changes[1].Period.Start.Complete; !got.Equal(first) {
		t.Errorf("second resolution = %v, want %v", got, first)
	}

	// A new reference month recomputes nested times too.
	if err := taf.ResolveTimes(timeref.YearMonth{Year: 2018, Month: time.March}); err != nil {
		t.Fatal(err)
	}
	if want := utc(2018, time.April, 1, 6, 0); !taf.Changes[1].Period.Start.Complete.Equal(want) {
		t.Errorf("re-resolved FM start = %v, want %v", taf.Changes[1].Period.Start.Complete, want)
	}
}

func TestTAFResolveTimesInvalidDay(t *testing.T) {
	taf := &TAF{
		IssueTime: timeref.PartialInstant(timeref.NewPartial(29, 5, 0)),
		Validity:  timeref.PartialPeriod(timeref.NewPartial(29, 6, timeref.Unset), timeref.NewPartial(30, 12, timeref.Unset)),
	}
	err := taf.ResolveTimes(timeref.YearMonth{Year: 2017, Month: time.February})
	var re *timeref.ResolutionError
	if !errors.As(err, &re) || re.Field != "day" {
		t.Fatalf("ResolveTimes() error = %v, want day ResolutionError", err)
	}
}

func TestTAFResolveTimesPartialOnNestedError(t *testing.T) {
	taf := &TAF{
		IssueTime: timeref.PartialInstant(timeref.NewPartial(30, 17, 30)),
		Validity:  timeref.PartialPeriod(timeref.NewPartial(30, 18, timeref.Unset), timeref.NewPartial(1, 24, timeref.Unset)),
		Changes: []ChangeForecast{
			// April has no 31st.
			{Kind: ChangeFrom, Period: timeref.Period{Start: timeref.PartialInstant(timeref.NewPartial(31, 6, 0))}},
		},
	}
	err := taf.ResolveTimes(timeref.YearMonth{Year: 2017, Month: time.April})
	var re *timeref.ResolutionError
	if !errors.As(err, &re) || re.Field != "day" {
		t.Fatalf("ResolveTimes() error = %v, want day ResolutionError", err)
	}
	if got := taf.IssueTime.Complete; got == nil || !got.Equal(utc(2017, time.April, 30, 17, 30)) {
		t.Errorf("issue time = %v, want it resolved", got)
	}
	if !taf.Validity.IsComplete() {
		t.Error("validity not resolved before the failing change")
	}
	if taf.Changes[0].Period.Start.Complete != nil {
		t.Errorf("change start = %v, want it left partial", taf.Changes[0].Period.Start.Complete)
	}
	if taf.AllTimesComplete() {
		t.Error("AllTimesComplete() = true after a failed resolution")
	}
}

func TestReferredReportResolution(t *testing.T) {
	taf := &TAF{
		Amended:   true,
		Cancelled: true,
		Aerodrome: "EFHK",
		IssueTime: timeref.PartialInstant(timeref.NewPartial(10, 11, 30)),
		Validity:  timeref.PartialPeriod(timeref.NewPartial(10, 12, timeref.Unset), timeref.NewPartial(11, 12, timeref.Unset)),
		ReferredReport: &TAF{
			Aerodrome: "EFHK",
			Validity:  timeref.PartialPeriod(timeref.NewPartial(10, 12, timeref.Unset), timeref.NewPartial(11, 12, timeref.Unset)),
		},
	}
	if err := taf.ResolveTimes(timeref.YearMonth{Year: 2017, Month: time.May}); err != nil {
		t.Fatal(err)
	}
	if !taf.AllTimesComplete() {
		t.Fatal("AllTimesComplete() = false")
	}
	if want := utc(2017, time.May, 11, 12, 0); !taf.ReferredReport.Validity.End.Complete.Equal(want) {
		t.Errorf("referred validity end = %v, want %v", taf.ReferredReport.Validity.End.Complete, want)
	}
}

func TestMETARTrendTimes(t *testing.T) {
	m := &METAR{
		Aerodrome: "EFHK",
		IssueTime: timeref.PartialInstant(timeref.NewPartial(31, 23, 50)),
		Trends: []Trend{{
			Kind: "TEMPO",
			Times: []TrendTime{
				{Kind: "FM", Time: timeref.PartialInstant(timeref.HourMinute(0, 30))},
				{Kind: "TL", Time: timeref.PartialInstant(timeref.HourMinute(23, 55))},
			},
		}},
	}
	if err := m.ResolveTimes(timeref.YearMonth{Year: 2017, Month: time.December}); err != nil {
		t.Fatal(err)
	}
	if want := utc(2018, time.January, 1, 0, 30); !m.Trends[0].Times[0].Time.Complete.Equal(want) {
		t.Errorf("FM = %v, want %v", m.Trends[0].Times[0].Time.Complete, want)
	}
	if want := utc(2017, time.December, 31, 23, 55); !m.Trends[0].Times[1].Time.Complete.Equal(want) {
		t.Errorf("TL = %v, want %v", m.Trends[0].Times[1].Time.Complete, want)
	}
	if !m.AllTimesComplete() {
		t.Error("AllTimesComplete() = false")
	}
}

func TestSIGMETResolveTimes(t *testing.T) {
	s := &SIGMET{
		Validity:    timeref.PartialPeriod(timeref.NewPartial(30, 22, 0), timeref.NewPartial(1, 2, 0)),
		Observation: &Observation{Kind: "FCST", Time: timeref.PartialInstant(timeref.HourMinute(23, 0))},
		Cancelled: &CancelledReport{
			Sequence: "1",
			Validity: timeref.PartialPeriod(timeref.NewPartial(30, 20, 0), timeref.NewPartial(1, 0, 0)),
		},
	}
	if err := s.ResolveTimes(timeref.YearMonth{Year: 2017, Month: time.April}); err != nil {
		t.Fatal(err)
	}
	if want := utc(2017, time.May, 1, 2, 0); !s.Validity.End.Complete.Equal(want) {
		t.Errorf("validity end = %v, want %v", s.Validity.End.Complete, want)
	}
	if want := utc(2017, time.April, 30, 23, 0); !s.Observation.Time.Complete.Equal(want) {
		t.Errorf("observation = %v, want %v", s.Observation.Time.Complete, want)
	}
	if want := utc(2017, time.April, 30, 20, 0); !s.Cancelled.Validity.Start.Complete.Equal(want) {
		t.Errorf("cancelled start = %v, want %v", s.Cancelled.Validity.Start.Complete, want)
	}
	if !s.AllTimesComplete() {
		t.Error("AllTimesComplete() = false")
	}
}

func TestNilReportResolve(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   conversion.ReportType
	}{
		{"taf", (*TAF)(nil), conversion.TAF},
		{"metar", (*METAR)(nil), conversion.METAR},
		{"sigmet", (*SIGMET)(nil), conversion.SIGMET},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.ResolveTimes(timeref.YearMonth{Year: 2017, Month: time.May})
			if !errors.Is(err, conversion.ErrNilArgument) {
				t.Errorf("ResolveTimes() error = %v, want ErrNilArgument", err)
			}
			if got := tt.report.ReportType(); got != tt.want {
				t.Errorf("ReportType() = %s, want %s", got, tt.want)
			}
		})
	}
}
