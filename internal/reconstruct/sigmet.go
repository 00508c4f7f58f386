package reconstruct

import (
	"fmt"
	"strings"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/patterns"
	"tac_converter/internal/timeref"
)

var sigmetSteps = []step[*model.SIGMET]{
	{"heading", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		if s.IssuingUnit == "" {
			return missing("location indicator")
		}
		o.add(s.IssuingUnit, lexeme.LocationIndicator, lexeme.Values{lexeme.Name: s.IssuingUnit})
		if s.ReportType() == conversion.AIRMET {
			o.add("AIRMET", lexeme.AirmetStart, nil)
		} else {
			o.add("SIGMET", lexeme.SigmetStart, nil)
		}
		if s.Sequence == "" {
			return missing("sequence")
		}
		o.add(s.Sequence, lexeme.SequenceDescriptor, lexeme.Values{lexeme.Code: s.Sequence})
		return nil
	}},
	{"validity", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		raw, v, err := warningPeriod(s.Validity)
		if err != nil {
			return err
		}
		o.add("VALID "+raw, lexeme.ValidTime, v)
		return nil
	}},
	{"mwo", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		if s.MWO == "" {
			return missing("meteorological watch office")
		}
		o.add(s.MWO+"-", lexeme.MWODesignator, lexeme.Values{lexeme.Name: s.MWO})
		return nil
	}},
	{"fir", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		if s.FIR == "" {
			return missing("FIR designator")
		}
		o.add(s.FIR, lexeme.FIRDesignator, lexeme.Values{lexeme.Name: s.FIR})
		for _, w := range strings.Fields(s.FIRName) {
			o.add(w, lexeme.FIRName, lexeme.Values{lexeme.Name: w})
		}
		if s.FIRType != "" {
			o.add(s.FIRType, lexeme.FIRType, lexeme.Values{lexeme.Kind: s.FIRType})
		}
		return nil
	}},
	{"cancellation", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		c := s.Cancelled
		if c == nil {
			return nil
		}
		typ := c.Type
		if typ == "" {
			typ = s.ReportType()
		}
		raw, v, err := warningPeriod(c.Validity)
		if err != nil {
			return err
		}
		v[lexeme.Kind], v[lexeme.Code] = string(typ), c.Sequence
		o.add(fmt.Sprintf("CNL %s %s %s", typ, c.Sequence, raw), lexeme.CancelledReportRef, v)
		return nil
	}},
	{"phenomenon", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		if s.Cancelled != nil {
			return nil
		}
		if s.Phenomenon == "" {
			return missing("phenomenon")
		}
		o.add(s.Phenomenon, lexeme.Phenomenon, lexeme.Values{lexeme.Code: s.Phenomenon})
		if obs := s.Observation; obs != nil {
			v := lexeme.Values{lexeme.Kind: obs.Kind}
			raw := obs.Kind
			if p, ok := partialOf(obs.Time); ok {
				raw += " AT " + two(p.Hour) + two(p.Minute) + "Z"
				v[lexeme.Hour1], v[lexeme.Minute1] = p.Hour, p.Minute
			}
			o.add(raw, lexeme.ObservedOrForecast, v)
		}
		return nil
	}},
	{"area", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		if s.Cancelled != nil || s.Area == nil {
			return nil
		}
		if s.Area.Entire != "" {
			o.add("ENTIRE "+s.Area.Entire, lexeme.EntireArea, lexeme.Values{lexeme.Kind: s.Area.Entire})
			return nil
		}
		o.add("WI", lexeme.WithinKeyword, nil)
		for i, c := range s.Area.Polygon {
			if i > 0 {
				o.add("-", lexeme.PolygonSeparator, nil)
			}
			o.add(patterns.FormatLatitude(c.Lat)+" "+patterns.FormatLongitude(c.Lon), lexeme.CoordinatePair,
				lexeme.Values{lexeme.Latitude: c.Lat, lexeme.Longitude: c.Lon})
		}
		return nil
	}},
	{"levels", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		l := s.Levels
		if s.Cancelled != nil || l == nil {
			return nil
		}
		v := lexeme.Values{}
		var raw string
		switch l.Kind {
		case "":
			raw = fmt.Sprintf("FL%03d/%03d", l.Lower, l.Upper)
			v[lexeme.Lower], v[lexeme.Upper] = l.Lower, l.Upper
		case "AT":
			raw = fmt.Sprintf("FL%03d", l.Lower)
			v[lexeme.Lower] = l.Lower
		case "TOP":
			raw = fmt.Sprintf("TOP FL%03d", l.Upper)
			v[lexeme.Upper] = l.Upper
		case "SFC":
			raw = fmt.Sprintf("SFC/FL%03d", l.Upper)
			v[lexeme.Upper] = l.Upper
		default:
			return fmt.Errorf("unknown flight level kind %q", l.Kind)
		}
		if l.Kind != "" {
			v[lexeme.Kind] = l.Kind
		}
		o.add(raw, lexeme.FlightLevel, v)
		return nil
	}},
	{"movement", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		mv := s.Movement
		if s.Cancelled != nil || mv == nil {
			return nil
		}
		if mv.Stationary {
			o.add("STNR", lexeme.Movement, lexeme.Values{lexeme.Kind: "STNR"})
			return nil
		}
		o.add(fmt.Sprintf("MOV %s %d%s", mv.Direction, mv.Speed, mv.Unit), lexeme.Movement, lexeme.Values{
			lexeme.Kind: "MOV", lexeme.Direction: mv.Direction, lexeme.Speed: mv.Speed, lexeme.Unit: mv.Unit,
		})
		return nil
	}},
	{"intensity change", func(o *out, s *model.SIGMET, _ conversion.Hints) error {
		if s.Cancelled == nil && s.IntensityChange != "" {
			o.add(s.IntensityChange, lexeme.IntensityChange, lexeme.Values{lexeme.Code: s.IntensityChange})
		}
		return nil
	}},
	{"end", func(o *out, _ *model.SIGMET, _ conversion.Hints) error {
		endLexeme(o)
		return nil
	}},
}

// warningPeriod renders DDHHMM/DDHHMM.
func warningPeriod(p timeref.Period) (string, lexeme.Values, error) {
	start, ok := partialOf(p.Start)
	if !ok {
		return "", nil, missing("validity start")
	}
	end, ok := partialOf(p.End)
	if !ok {
		return "", nil, missing("validity end")
	}
	v := timeValues(start, lexeme.Day1, lexeme.Hour1, lexeme.Minute1)
	for k, tv := range timeValues(end, lexeme.Day2, lexeme.Hour2, lexeme.Minute2) {
		v[k] = tv
	}
	return dayHourMinute(start) + "/" + dayHourMinute(end), v, nil
}

// SIGMET reconstructs a SIGMET or AIRMET. A cancellation carries no
// phenomenon section.
func SIGMET(s *model.SIGMET, h conversion.Hints) (*lexeme.Sequence, error) {
	if s == nil {
		return nil, conversion.ErrNilArgument
	}
	return run(sigmetSteps, s, h)
}
