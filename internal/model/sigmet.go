package model

import (
	"tac_converter/internal/conversion"
	"tac_converter/internal/timeref"
)

// SIGMET is a SIGMET or AIRMET en-route warning.
type SIGMET struct {
	Type        conversion.ReportType `json:"type"`
	IssuingUnit string                `json:"issuing_unit"`
	Sequence    string                `json:"sequence"`
	Validity    timeref.Period        `json:"validity"`
	MWO         string                `json:"mwo"`
	FIR         string                `json:"fir"`
	FIRName     string                `json:"fir_name,omitempty"`
	FIRType     string                `json:"fir_type,omitempty"`

	Phenomenon      string        `json:"phenomenon,omitempty"`
	Observation     *Observation  `json:"observation,omitempty"`
	Area            *Area         `json:"area,omitempty"`
	Levels          *FlightLevels `json:"levels,omitempty"`
	Movement        *Movement     `json:"movement,omitempty"`
	IntensityChange string        `json:"intensity_change,omitempty"`

	Cancelled *CancelledReport `json:"cancelled,omitempty"`
}

// Observation says whether the phenomenon is observed (OBS) or forecast
// (FCST), optionally at a time of day.
type Observation struct {
	Kind string          `json:"kind"`
	Time timeref.Instant `json:"time"`
}

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Area is either a whole FIR/UIR/CTA or a polygon.
type Area struct {
	Entire  string       `json:"entire,omitempty"`
	Polygon []Coordinate `json:"polygon,omitempty"`
}

// FlightLevels is the vertical extent. Kind is "" for a range, "AT" for a
// single level, "TOP" for tops and "SFC" for surface up to Upper.
type FlightLevels struct {
	Kind  string `json:"kind,omitempty"`
	Lower int    `json:"lower,omitempty"`
	Upper int    `json:"upper,omitempty"`
}

// Movement is either stationary or a direction and speed.
type Movement struct {
	Stationary bool   `json:"stationary,omitempty"`
	Direction  string `json:"direction,omitempty"`
	Speed      int    `json:"speed,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

// CancelledReport identifies the SIGMET or AIRMET a cancellation withdraws.
type CancelledReport struct {
	Type     conversion.ReportType `json:"type"`
	Sequence string                `json:"sequence"`
	Validity timeref.Period        `json:"validity"`
}

func (s *SIGMET) ReportType() conversion.ReportType {
	if s == nil || s.Type == "" {
		return conversion.SIGMET
	}
	return s.Type
}

// ResolveTimes resolves the validity in ym, and the observation time and
// cancelled validity near the validity start.
func (s *SIGMET) ResolveTimes(ym timeref.YearMonth) error {
	if s == nil {
		return conversion.ErrNilArgument
	}
	if err := s.Validity.ResolveInMonth(ym); err != nil {
		return err
	}
	ref := s.Validity.Start.Complete
	if ref == nil {
		if (s.Observation != nil && s.Observation.Time.Partial != nil) || s.Cancelled != nil {
			return &timeref.ResolutionError{Field: "validity", Value: timeref.Unset, Reason: "nested times need a validity start"}
		}
		return nil
	}
	if s.Observation != nil {
		if err := s.Observation.Time.ResolveNear(*ref); err != nil {
			return err
		}
	}
	if s.Cancelled != nil {
		if err := s.Cancelled.Validity.ResolveNear(*ref); err != nil {
			return err
		}
	}
	return nil
}

func (s *SIGMET) AllTimesComplete() bool {
	if !s.Validity.IsComplete() {
		return false
	}
	if s.Observation != nil && !allComplete(s.Observation.Time) {
		return false
	}
	return s.Cancelled == nil || s.Cancelled.Validity.IsComplete()
}
