package model

import (
	"tac_converter/internal/conversion"
	"tac_converter/internal/timeref"
)

// METAR is a routine (METAR) or special (SPECI) aerodrome observation.
type METAR struct {
	Type      conversion.ReportType `json:"type"`
	Corrected bool                  `json:"corrected,omitempty"`
	Aerodrome string                `json:"aerodrome"`
	IssueTime timeref.Instant       `json:"issue_time"`
	Nil       bool                  `json:"nil,omitempty"`
	Automated bool                  `json:"automated,omitempty"`

	Conditions
	VariableWind  *VariableWind       `json:"variable_wind,omitempty"`
	RVR           []RunwayVisualRange `json:"rvr,omitempty"`
	Temperatures  *Temperatures       `json:"temperatures,omitempty"`
	Pressure      *Pressure           `json:"pressure,omitempty"`
	RecentWeather []Weather           `json:"recent_weather,omitempty"`
	WindShear     []WindShear         `json:"wind_shear,omitempty"`
	SeaState      *SeaState           `json:"sea_state,omitempty"`
	RunwayStates  []RunwayState       `json:"runway_states,omitempty"`

	Trends  []Trend  `json:"trends,omitempty"`
	Remarks []string `json:"remarks,omitempty"`
}

// RunwayVisualRange is an RVR group. Operators are "P" (above) or "M"
// (below).
type RunwayVisualRange struct {
	Runway    string `json:"runway"`
	Operator  string `json:"operator,omitempty"`
	Value     int    `json:"value"`
	Operator2 string `json:"variable_operator,omitempty"`
	Value2    int    `json:"variable_value,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Tendency  string `json:"tendency,omitempty"`
}

// Temperatures is the air temperature and dew point in whole degrees.
type Temperatures struct {
	Air      int `json:"air"`
	Dewpoint int `json:"dewpoint"`
}

// Pressure is QNH in hPa ("Q") or hundredths of inHg ("A").
type Pressure struct {
	Unit  string `json:"unit"`
	Value int    `json:"value"`
}

// WindShear names a runway, or all runways.
type WindShear struct {
	AllRunways bool   `json:"all_runways,omitempty"`
	Runway     string `json:"runway,omitempty"`
}

// SeaState is the sea surface temperature with a state (S) or wave
// height (H).
type SeaState struct {
	Temperature int    `json:"temperature"`
	Kind        string `json:"kind"`
	Value       int    `json:"value"`
}

// RunwayState is a runway surface condition group, kept in coded form.
type RunwayState struct {
	Runway string `json:"runway"`
	Code   string `json:"code"`
}

// Trend is a NOSIG, BECMG or TEMPO trend forecast.
type Trend struct {
	Kind  string      `json:"kind"`
	Times []TrendTime `json:"times,omitempty"`
	Conditions
}

// TrendTime is an FM, TL or AT time of a trend. It has no day; it
// resolves near the issue time of the report.
type TrendTime struct {
	Kind string          `json:"kind"`
	Time timeref.Instant `json:"time"`
}

func (m *METAR) ReportType() conversion.ReportType {
	if m == nil || m.Type == "" {
		return conversion.METAR
	}
	return m.Type
}

// ResolveTimes resolves the issue time in ym and the trend times near the
// resolved issue time.
func (m *METAR) ResolveTimes(ym timeref.YearMonth) error {
	if m == nil {
		return conversion.ErrNilArgument
	}
	if err := m.IssueTime.ResolveInMonth(ym); err != nil {
		return err
	}
	for i := range m.Trends {
		for j := range m.Trends[i].Times {
			tt := &m.Trends[i].Times[j]
			if m.IssueTime.Complete == nil {
				return &timeref.ResolutionError{Field: "issue time", Value: timeref.Unset, Reason: "trend times need an issue time"}
			}
			if err := tt.Time.ResolveNear(*m.IssueTime.Complete); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *METAR) AllTimesComplete() bool {
	if !m.IssueTime.IsComplete() {
		return false
	}
	for _, t := range m.Trends {
		for _, tt := range t.Times {
			if !tt.Time.IsComplete() {
				return false
			}
		}
	}
	return true
}
