package reconstruct

import (
	"fmt"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
)

var metarSteps = []step[*model.METAR]{
	{"report start", func(o *out, m *model.METAR, _ conversion.Hints) error {
		if m.ReportType() == conversion.SPECI {
			o.add("SPECI", lexeme.SpeciStart, nil)
		} else {
			o.add("METAR", lexeme.MetarStart, nil)
		}
		if m.Corrected {
			o.add("COR", lexeme.Correction, nil)
		}
		return nil
	}},
	{"aerodrome", func(o *out, m *model.METAR, _ conversion.Hints) error {
		if m.Aerodrome == "" {
			return missing("aerodrome")
		}
		o.add(m.Aerodrome, lexeme.AerodromeDesignator, lexeme.Values{lexeme.Name: m.Aerodrome})
		return nil
	}},
	{"issue time", func(o *out, m *model.METAR, _ conversion.Hints) error {
		p, ok := partialOf(m.IssueTime)
		if !ok {
			return missing("issue time")
		}
		o.add(dayHourMinute(p)+"Z", lexeme.IssueTime, timeValues(p, lexeme.Day1, lexeme.Hour1, lexeme.Minute1))
		return nil
	}},
	{"observation", func(o *out, m *model.METAR, _ conversion.Hints) error {
		if m.Nil {
			o.add("NIL", lexeme.Nil, nil)
			return nil
		}
		if m.Automated {
			o.add("AUTO", lexeme.Automated, nil)
		}
		wind(o, m.Wind)
		if vw := m.VariableWind; vw != nil {
			o.add(fmt.Sprintf("%03dV%03d", vw.From, vw.To), lexeme.VariableWindDirection,
				lexeme.Values{lexeme.MinDir: vw.From, lexeme.MaxDir: vw.To})
		}
		visibility(o, &m.Conditions)
		for _, r := range m.RVR {
			runwayVisualRange(o, r)
		}
		weather(o, &m.Conditions)
		clouds(o, &m.Conditions)
		return nil
	}},
	{"supplementary", func(o *out, m *model.METAR, _ conversion.Hints) error {
		if m.Nil {
			return nil
		}
		if t := m.Temperatures; t != nil {
			o.add(temperature(t.Air)+"/"+temperature(t.Dewpoint), lexeme.AirDewpointTemp,
				lexeme.Values{lexeme.Value: t.Air, lexeme.Value2: t.Dewpoint})
		}
		if p := m.Pressure; p != nil {
			o.add(fmt.Sprintf("%s%04d", p.Unit, p.Value), lexeme.AirPressureQNH,
				lexeme.Values{lexeme.Unit: p.Unit, lexeme.Value: p.Value})
		}
		for _, w := range m.RecentWeather {
			o.add("RE"+w.Code, lexeme.RecentWeather, lexeme.Values{lexeme.Code: w.Code})
		}
		for _, ws := range m.WindShear {
			if ws.AllRunways {
				o.add("WS ALL RWY", lexeme.WindShear, lexeme.Values{lexeme.Kind: "ALL"})
			} else {
				o.add("WS R"+ws.Runway, lexeme.WindShear, lexeme.Values{lexeme.Runway: ws.Runway})
			}
		}
		if s := m.SeaState; s != nil {
			o.add(fmt.Sprintf("W%s/%s%d", temperature(s.Temperature), s.Kind, s.Value), lexeme.SeaState,
				lexeme.Values{lexeme.Value: s.Temperature, lexeme.Kind: s.Kind, lexeme.Value2: s.Value})
		}
		for _, rs := range m.RunwayStates {
			o.add("R"+rs.Runway+"/"+rs.Code, lexeme.RunwayState,
				lexeme.Values{lexeme.Runway: rs.Runway, lexeme.Code: rs.Code})
		}
		return nil
	}},
	{"trends", func(o *out, m *model.METAR, _ conversion.Hints) error {
		if m.Nil {
			return nil
		}
		for _, tr := range m.Trends {
			o.add(tr.Kind, lexeme.TrendChangeIndicator, lexeme.Values{lexeme.Kind: tr.Kind})
			for _, tt := range tr.Times {
				p, ok := partialOf(tt.Time)
				if !ok {
					return missing("trend " + tt.Kind + " time")
				}
				v := timeValues(p, "", lexeme.Hour1, lexeme.Minute1)
				v[lexeme.Kind] = tt.Kind
				o.add(tt.Kind+two(p.Hour)+two(p.Minute), lexeme.TrendTimeGroup, v)
			}
			conditions(o, &tr.Conditions)
		}
		return nil
	}},
	{"remarks", func(o *out, m *model.METAR, _ conversion.Hints) error {
		remarks(o, m.Remarks)
		return nil
	}},
	{"end", func(o *out, _ *model.METAR, _ conversion.Hints) error {
		endLexeme(o)
		return nil
	}},
}

func runwayVisualRange(o *out, r model.RunwayVisualRange) {
	v := lexeme.Values{lexeme.Runway: r.Runway, lexeme.Value: r.Value}
	raw := fmt.Sprintf("R%s/%s%04d", r.Runway, r.Operator, r.Value)
	if r.Operator != "" {
		v[lexeme.Operator] = r.Operator
	}
	if r.Value2 != 0 || r.Operator2 != "" {
		raw += fmt.Sprintf("V%s%04d", r.Operator2, r.Value2)
		v[lexeme.Value2] = r.Value2
		if r.Operator2 != "" {
			v[lexeme.Operator2] = r.Operator2
		}
	}
	if r.Unit != "" {
		raw += r.Unit
		v[lexeme.Unit] = r.Unit
	}
	if r.Tendency != "" {
		raw += r.Tendency
		v[lexeme.Tendency] = r.Tendency
	}
	o.add(raw, lexeme.RunwayVisualRange, v)
}

func remarks(o *out, rs []string) {
	if len(rs) == 0 {
		return
	}
	o.add("RMK", lexeme.RemarksStart, nil)
	for _, r := range rs {
		o.add(r, lexeme.Remark, nil)
	}
}

// METAR reconstructs a METAR or SPECI. A NIL report carries nothing after
// the issue time.
func METAR(m *model.METAR, h conversion.Hints) (*lexeme.Sequence, error) {
	if m == nil {
		return nil, conversion.ErrNilArgument
	}
	return run(metarSteps, m, h)
}
