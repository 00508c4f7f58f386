package parse

import (
	"strconv"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/timeref"
)

// METAR builds a METAR or SPECI from seq.
func METAR(seq *lexeme.Sequence) (*model.METAR, []conversion.Issue) {
	b := newBuilder()
	m := &model.METAR{Type: conversion.METAR}
	var trend *model.Trend

	for _, l := range seq.All() {
		v := l.Values()
		if trend != nil && b.condition(&trend.Conditions, "trend"+strconv.Itoa(len(m.Trends))+".", l) {
			continue
		}
		switch l.Identity() {
		case lexeme.MetarStart:
			m.Type = conversion.METAR
		case lexeme.SpeciStart:
			m.Type = conversion.SPECI
		case lexeme.Correction:
			m.Corrected = true
		case lexeme.AerodromeDesignator:
			if b.once("aerodrome", l) {
				m.Aerodrome = v.String(lexeme.Name)
			}
		case lexeme.IssueTime:
			if b.once("issue time", l) {
				m.IssueTime = timeref.PartialInstant(partial(v, lexeme.Day1, lexeme.Hour1, lexeme.Minute1))
			}
		case lexeme.Nil:
			m.Nil = true
		case lexeme.Automated:
			m.Automated = true
		case lexeme.TrendChangeIndicator:
			m.Trends = append(m.Trends, model.Trend{Kind: v.String(lexeme.Kind)})
			trend = &m.Trends[len(m.Trends)-1]
		case lexeme.TrendTimeGroup:
			if trend == nil {
				b.logical("trend time %q outside a trend", l.Raw())
				continue
			}
			trend.Times = append(trend.Times, model.TrendTime{
				Kind: v.String(lexeme.Kind),
				Time: timeref.PartialInstant(timeref.HourMinute(v.IntOr(lexeme.Hour1, timeref.Unset), v.IntOr(lexeme.Minute1, timeref.Unset))),
			})
		case lexeme.RemarksStart, lexeme.EndToken, lexeme.Unknown:
		case lexeme.Remark:
			m.Remarks = append(m.Remarks, l.Raw())
		default:
			if trend != nil {
				b.logical("%s %q is not allowed in a trend", l.Identity(), l.Raw())
				continue
			}
			if !b.condition(&m.Conditions, "", l) && !b.observation(m, l) {
				b.logical("%s %q is not part of a %s", l.Identity(), l.Raw(), m.Type)
			}
		}
	}

	b.require(m.Aerodrome != "", "aerodrome designator")
	b.require(!m.IssueTime.IsZero(), "issue time")
	if !m.Nil {
		b.require(m.Wind != nil, "surface wind")
	}
	return m, b.result()
}

// observation fills the METAR-only groups of the observation body.
func (b *builder) observation(m *model.METAR, l *lexeme.Lexeme) bool {
	v := l.Values()
	switch l.Identity() {
	case lexeme.VariableWindDirection:
		if b.once("variable wind", l) {
			m.VariableWind = &model.VariableWind{From: v.IntOr(lexeme.MinDir, 0), To: v.IntOr(lexeme.MaxDir, 0)}
		}
	case lexeme.RunwayVisualRange:
		m.RVR = append(m.RVR, model.RunwayVisualRange{
			Runway:    v.String(lexeme.Runway),
			Operator:  v.String(lexeme.Operator),
			Value:     v.IntOr(lexeme.Value, 0),
			Operator2: v.String(lexeme.Operator2),
			Value2:    v.IntOr(lexeme.Value2, 0),
			Unit:      v.String(lexeme.Unit),
			Tendency:  v.String(lexeme.Tendency),
		})
	case lexeme.AirDewpointTemp:
		if b.once("temperature", l) {
			m.Temperatures = &model.Temperatures{Air: v.IntOr(lexeme.Value, 0), Dewpoint: v.IntOr(lexeme.Value2, 0)}
		}
	case lexeme.AirPressureQNH:
		if b.once("pressure", l) {
			m.Pressure = &model.Pressure{Unit: v.String(lexeme.Unit), Value: v.IntOr(lexeme.Value, 0)}
		}
	case lexeme.RecentWeather:
		m.RecentWeather = append(m.RecentWeather, model.Weather{Code: v.String(lexeme.Code)})
	case lexeme.WindShear:
		m.WindShear = append(m.WindShear, model.WindShear{
			AllRunways: v.String(lexeme.Kind) == "ALL",
			Runway:     v.String(lexeme.Runway),
		})
	case lexeme.SeaState:
		if b.once("sea state", l) {
			m.SeaState = &model.SeaState{
				Temperature: v.IntOr(lexeme.Value, 0),
				Kind:        v.String(lexeme.Kind),
				Value:       v.IntOr(lexeme.Value2, 0),
			}
		}
	case lexeme.RunwayState:
		m.RunwayStates = append(m.RunwayStates, model.RunwayState{Runway: v.String(lexeme.Runway), Code: v.String(lexeme.Code)})
	default:
		return false
	}
	return true
}
