package parse

import (
	"strings"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/timeref"
)

// SIGMET builds a SIGMET or AIRMET from seq.
func SIGMET(seq *lexeme.Sequence) (*model.SIGMET, []conversion.Issue) {
	b := newBuilder()
	s := &model.SIGMET{Type: conversion.SIGMET}
	var names []string

	for _, l := range seq.All() {
		v := l.Values()
		switch l.Identity() {
		case lexeme.PolygonSeparator, lexeme.EndToken, lexeme.Unknown:
		case lexeme.LocationIndicator:
			if b.once("location indicator", l) {
				s.IssuingUnit = v.String(lexeme.Name)
			}
		case lexeme.SigmetStart:
			s.Type = conversion.SIGMET
		case lexeme.AirmetStart:
			s.Type = conversion.AIRMET
		case lexeme.SequenceDescriptor:
			if b.once("sequence", l) {
				s.Sequence = v.String(lexeme.Code)
			}
		case lexeme.ValidTime:
			if b.once("validity", l) {
				s.Validity = period(v)
			}
		case lexeme.MWODesignator:
			if b.once("mwo", l) {
				s.MWO = v.String(lexeme.Name)
			}
		case lexeme.FIRDesignator:
			if b.once("fir", l) {
				s.FIR = v.String(lexeme.Name)
			}
		case lexeme.FIRName:
			names = append(names, v.String(lexeme.Name))
		case lexeme.FIRType:
			if b.once("fir type", l) {
				s.FIRType = v.String(lexeme.Kind)
			}
		case lexeme.Phenomenon:
			if b.once("phenomenon", l) {
				s.Phenomenon = v.String(lexeme.Code)
			}
		case lexeme.ObservedOrForecast:
			if b.once("observation", l) {
				s.Observation = &model.Observation{Kind: v.String(lexeme.Kind)}
				if _, ok := v.Int(lexeme.Hour1); ok {
					s.Observation.Time = timeref.PartialInstant(timeref.HourMinute(v.IntOr(lexeme.Hour1, timeref.Unset), v.IntOr(lexeme.Minute1, timeref.Unset)))
				}
			}
		case lexeme.WithinKeyword:
			if s.Area != nil {
				b.logical("duplicate area %q at position %d", l.Raw(), l.Index())
				continue
			}
			s.Area = &model.Area{}
		case lexeme.EntireArea:
			if s.Area != nil {
				b.logical("duplicate area %q at position %d", l.Raw(), l.Index())
				continue
			}
			s.Area = &model.Area{Entire: v.String(lexeme.Kind)}
		case lexeme.CoordinatePair:
			if s.Area == nil || s.Area.Entire != "" {
				b.logical("coordinate %q at position %d is outside a WI area", l.Raw(), l.Index())
				continue
			}
			lat, _ := v.Float(lexeme.Latitude)
			lon, _ := v.Float(lexeme.Longitude)
			s.Area.Polygon = append(s.Area.Polygon, model.Coordinate{Lat: lat, Lon: lon})
		case lexeme.FlightLevel:
			if b.once("flight level", l) {
				s.Levels = &model.FlightLevels{
					Kind:  v.String(lexeme.Kind),
					Lower: v.IntOr(lexeme.Lower, 0),
					Upper: v.IntOr(lexeme.Upper, 0),
				}
			}
		case lexeme.Movement:
			if b.once("movement", l) {
				s.Movement = &model.Movement{
					Stationary: v.String(lexeme.Kind) == "STNR",
					Direction:  v.String(lexeme.Direction),
					Speed:      v.IntOr(lexeme.Speed, 0),
					Unit:       v.String(lexeme.Unit),
				}
			}
		case lexeme.IntensityChange:
			if b.once("intensity change", l) {
				s.IntensityChange = v.String(lexeme.Code)
			}
		case lexeme.CancelledReportRef:
			if b.once("cancellation", l) {
				s.Cancelled = &model.CancelledReport{
					Type:     conversion.ReportType(v.String(lexeme.Kind)),
					Sequence: v.String(lexeme.Code),
					Validity: period(v),
				}
			}
		default:
			b.logical("%s %q is not part of a %s", l.Identity(), l.Raw(), s.Type)
		}
	}
	s.FIRName = strings.Join(names, " ")

	b.require(s.IssuingUnit != "", "location indicator")
	b.require(s.Sequence != "", "sequence number")
	b.require(!s.Validity.IsZero(), "validity")
	b.require(s.MWO != "", "meteorological watch office")
	b.require(s.FIR != "", "FIR designator")
	if s.Cancelled == nil {
		b.require(s.Phenomenon != "", "phenomenon")
	}
	if s.Area != nil && s.Area.Entire == "" && len(s.Area.Polygon) < 3 {
		b.logical("polygon has %d points, at least 3 are needed", len(s.Area.Polygon))
	}
	return s, b.result()
}
