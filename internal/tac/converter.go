// Package tac is the entry point for converting TAC messages: tokenizing,
// building report models, completing their times and reconstructing text.
package tac

import (
	"errors"
	"fmt"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/model"
	"tac_converter/internal/parse"
	"tac_converter/internal/reconstruct"
	"tac_converter/internal/timeref"
	"tac_converter/internal/tokenizer"
)

// Converter converts between TAC text and report models. The zero value is
// ready to use and a Converter is safe for concurrent use.
type Converter struct{}

// NewConverter returns a Converter.
func NewConverter() *Converter { return &Converter{} }

// Tokenize recognises text as a report of type t.
func (c *Converter) Tokenize(text string, t conversion.ReportType, h conversion.Hints) (*lexeme.Sequence, []conversion.Issue, error) {
	return tokenizer.Tokenize(text, t, h)
}

// Parse tokenizes text and builds the model of its report type. An empty
// type is detected from the text. The result fails when no model could be
// built at all.
func (c *Converter) Parse(text string, t conversion.ReportType, h conversion.Hints) conversion.Result[model.Report] {
	var res conversion.Result[model.Report]
	if t == "" {
		detected, ok := conversion.DetectReportType(text)
		if !ok {
			res.Fail(conversion.NewIssue(conversion.SyntaxError, "cannot determine the report type"))
			return res
		}
		t = detected
	}

	seq, issues, err := c.Tokenize(text, t, h)
	if err != nil {
		res.Fail(conversion.NewIssue(conversion.Other, "%v", err))
		return res
	}
	res.Add(issues...)
	if seq.Len() == 0 {
		res.Fail(conversion.NewIssue(conversion.MissingData, "no lexemes to build a %s from", t))
		return res
	}

	r, issues, err := parse.Report(seq, t)
	if err != nil {
		res.Fail(conversion.NewIssue(conversion.Other, "%v", err))
		return res
	}
	res.Value = r
	res.Add(issues...)
	return res
}

// ParseResolved parses text and completes every time of the model in ym.
// A time that cannot be completed is a LOGICAL_ERROR; the model keeps its
// partial times.
func (c *Converter) ParseResolved(text string, t conversion.ReportType, h conversion.Hints, ym timeref.YearMonth) conversion.Result[model.Report] {
	res := c.Parse(text, t, h)
	if res.Value == nil {
		return res
	}
	if err := c.ResolveTimes(res.Value, ym); err != nil {
		res.Add(conversion.NewIssue(conversion.LogicalError, "%v", err))
	}
	return res
}

// ParseMETAR parses a METAR or SPECI.
func (c *Converter) ParseMETAR(text string, h conversion.Hints) conversion.Result[*model.METAR] {
	t := conversion.METAR
	if detected, ok := conversion.DetectReportType(text); ok && detected == conversion.SPECI {
		t = conversion.SPECI
	}
	return narrow[*model.METAR](c.Parse(text, t, h))
}

// ParseTAF parses a TAF.
func (c *Converter) ParseTAF(text string, h conversion.Hints) conversion.Result[*model.TAF] {
	return narrow[*model.TAF](c.Parse(text, conversion.TAF, h))
}

// ParseSIGMET parses a SIGMET or AIRMET.
func (c *Converter) ParseSIGMET(text string, h conversion.Hints) conversion.Result[*model.SIGMET] {
	t := conversion.SIGMET
	if detected, ok := conversion.DetectReportType(text); ok && detected == conversion.AIRMET {
		t = conversion.AIRMET
	}
	return narrow[*model.SIGMET](c.Parse(text, t, h))
}

func narrow[T model.Report](in conversion.Result[model.Report]) conversion.Result[T] {
	out := conversion.Result[T]{Issues: in.Issues}
	if v, ok := in.Value.(T); ok {
		out.Value = v
	}
	if in.Status() == conversion.Fail {
		out.MarkFailed()
	}
	return out
}

// Reconstruct renders r as TAC text.
func (c *Converter) Reconstruct(r model.Report, h conversion.Hints) (string, error) {
	if r == nil {
		return "", conversion.ErrNilArgument
	}
	return reconstruct.Text(r, h)
}

// ResolveTimes completes the partial times of r in ym.
func (c *Converter) ResolveTimes(r model.Report, ym timeref.YearMonth) error {
	if r == nil {
		return conversion.ErrNilArgument
	}
	if err := r.ResolveTimes(ym); err != nil {
		if errors.Is(err, conversion.ErrNilArgument) {
			return err
		}
		return fmt.Errorf("resolve %s times in %s: %w", r.ReportType(), ym, err)
	}
	return nil
}
