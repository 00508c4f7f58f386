package model

import (
	"time"

	"tac_converter/internal/conversion"
	"tac_converter/internal/timeref"
)

// TAF is an aerodrome forecast.
type TAF struct {
	Amended   bool            `json:"amended,omitempty"`
	Corrected bool            `json:"corrected,omitempty"`
	Cancelled bool            `json:"cancelled,omitempty"`
	Nil       bool            `json:"nil,omitempty"`
	Aerodrome string          `json:"aerodrome"`
	IssueTime timeref.Instant `json:"issue_time"`
	Validity  timeref.Period  `json:"validity"`

	Base    *BaseForecast    `json:"base_forecast,omitempty"`
	Changes []ChangeForecast `json:"change_forecasts,omitempty"`
	Remarks []string         `json:"remarks,omitempty"`

	// ReferredReport is an owned copy of the forecast a cancellation
	// refers to.
	ReferredReport *TAF `json:"referred_report,omitempty"`
}

// BaseForecast is the forecast for the whole validity period.
type BaseForecast struct {
	Conditions
	Temperatures []TemperatureForecast `json:"temperatures,omitempty"`
}

// TemperatureForecast is a forecast maximum and/or minimum temperature
// with the time each is expected.
type TemperatureForecast struct {
	Max *TemperatureAt `json:"max,omitempty"`
	Min *TemperatureAt `json:"min,omitempty"`
}

// TemperatureAt is a temperature expected at a day and hour.
type TemperatureAt struct {
	Value int             `json:"value"`
	Time  timeref.Instant `json:"time"`
}

// Change indicator kinds of a change forecast.
const (
	ChangeBecoming  = "BECMG"
	ChangeTemporary = "TEMPO"
	ChangeFrom      = "FM"
	ChangeProb      = "PROB"
	ChangeProbTempo = "PROB_TEMPO"
)

// ChangeForecast is a BECMG, TEMPO, FM or PROB section. FM sections only
// carry a period start.
type ChangeForecast struct {
	Kind        string         `json:"kind"`
	Probability int            `json:"probability,omitempty"`
	Period      timeref.Period `json:"period"`
	Conditions
}

func (t *TAF) ReportType() conversion.ReportType { return conversion.TAF }

// reference is the time nested sections resolve near: the issue time, or
// the validity start for a forecast without one.
func (t *TAF) reference() (time.Time, bool) {
	if t.IssueTime.Complete != nil {
		return *t.IssueTime.Complete, true
	}
	if t.Validity.Start.Complete != nil {
		return *t.Validity.Start.Complete, true
	}
	return time.Time{}, false
}

// ResolveTimes resolves the issue time in ym, the validity near the issue
// time (in ym when there is none) and every nested section near the issue
// time.
//
// Times are resolved in place and in that order. On error the times
// resolved before the failing one keep their complete values and the rest
// stay partial, so the TAF is left partly resolved; check AllTimesComplete
// rather than assuming the model is unchanged.
func (t *TAF) ResolveTimes(ym timeref.YearMonth) error {
	if t == nil {
		return conversion.ErrNilArgument
	}
	if err := t.IssueTime.ResolveInMonth(ym); err != nil {
		return err
	}
	if t.IssueTime.Complete != nil {
		if err := t.Validity.ResolveNear(*t.IssueTime.Complete); err != nil {
			return err
		}
	} else if err := t.Validity.ResolveInMonth(ym); err != nil {
		return err
	}

	ref, ok := t.reference()
	if !ok {
		if t.hasNestedTimes() {
			return &timeref.ResolutionError{Field: "issue time", Value: timeref.Unset, Reason: "nested times need an issue time or validity"}
		}
		return nil
	}
	return t.resolveNested(ref)
}

func (t *TAF) resolveNested(ref time.Time) error {
	if t.Base != nil {
		for i := range t.Base.Temperatures {
			tf := &t.Base.Temperatures[i]
			if tf.Max != nil {
				if err := tf.Max.Time.ResolveNear(ref); err != nil {
					return err
				}
			}
			if tf.Min != nil {
				if err := tf.Min.Time.ResolveNear(ref); err != nil {
					return err
				}
			}
		}
	}
	for i := range t.Changes {
		if err := t.Changes[i].Period.ResolveNear(ref); err != nil {
			return err
		}
	}
	if t.ReferredReport != nil {
		if err := t.ReferredReport.IssueTime.ResolveNear(ref); err != nil {
			return err
		}
		if err := t.ReferredReport.Validity.ResolveNear(ref); err != nil {
			return err
		}
		if inner, ok := t.ReferredReport.reference(); ok {
			return t.ReferredReport.resolveNested(inner)
		}
	}
	return nil
}

func (t *TAF) hasNestedTimes() bool {
	return (t.Base != nil && len(t.Base.Temperatures) > 0) || len(t.Changes) > 0 || t.ReferredReport != nil
}

func (t *TAF) AllTimesComplete() bool {
	if !t.IssueTime.IsComplete() || !t.Validity.IsComplete() {
		return false
	}
	if t.Base != nil {
		for _, tf := range t.Base.Temperatures {
			if tf.Max != nil && !tf.Max.Time.IsComplete() {
				return false
			}
			if tf.Min != nil && !tf.Min.Time.IsComplete() {
				return false
			}
		}
	}
	for _, c := range t.Changes {
		if !c.Period.IsComplete() {
			return false
		}
	}
	return t.ReferredReport == nil || t.ReferredReport.AllTimesComplete()
}
