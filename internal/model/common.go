// Package model is the structured form of TAC reports.
package model

import (
	"tac_converter/internal/conversion"
	"tac_converter/internal/timeref"
)

// Report is implemented by every report model.
type Report interface {
	ReportType() conversion.ReportType
	// ResolveTimes completes every partial time of the report. Times of the
	// report itself resolve in ym; nested times resolve near the resolved
	// issue time. An error can leave the report partly resolved.
	ResolveTimes(ym timeref.YearMonth) error
	// AllTimesComplete reports whether the report and everything nested in
	// it hold resolved times.
	AllTimesComplete() bool
}

// SurfaceWind is a mean wind with optional gusts.
type SurfaceWind struct {
	Variable  bool   `json:"variable,omitempty"`
	Direction int    `json:"direction,omitempty"`
	Speed     int    `json:"speed"`
	Gust      int    `json:"gust,omitempty"` // 0 when no gust was reported
	Unit      string `json:"unit"`
}

// VariableWind is the range of a varying wind direction.
type VariableWind struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Visibility is the prevailing horizontal visibility in metres.
type Visibility struct {
	Distance  int    `json:"distance"`
	Direction string `json:"direction,omitempty"`
}

// Weather is a present or forecast weather group.
type Weather struct {
	Intensity string `json:"intensity,omitempty"`
	Code      string `json:"code"`
}

// Cloud is a cloud layer, a vertical visibility or a no-cloud code (NSC,
// NCD, SKC, CLR) in Cover with no height.
type Cloud struct {
	Cover  string `json:"cover"`
	Height int    `json:"height,omitempty"` // hundreds of feet
	Type   string `json:"type,omitempty"`
}

// HasHeight reports whether the layer carries a base height.
func (c Cloud) HasHeight() bool {
	switch c.Cover {
	case "NSC", "NCD", "SKC", "CLR":
		return false
	}
	return true
}

// Conditions are the weather elements shared by observations, trends and
// forecasts.
type Conditions struct {
	Wind                 *SurfaceWind `json:"wind,omitempty"`
	Visibility           *Visibility  `json:"visibility,omitempty"`
	CAVOK                bool         `json:"cavok,omitempty"`
	Weather              []Weather    `json:"weather,omitempty"`
	NoSignificantWeather bool         `json:"nsw,omitempty"`
	Clouds               []Cloud      `json:"clouds,omitempty"`
}

func allComplete(instants ...timeref.Instant) bool {
	for _, i := range instants {
		if !i.IsComplete() {
			return false
		}
	}
	return true
}
