package tokenizer

import (
	"regexp"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
)

// View gives visitors positional access to the sequence being recognised.
type View struct {
	Seq   *lexeme.Sequence
	Hints conversion.Hints
	Type  conversion.ReportType
}

// Prev returns the lexeme before l, or nil.
func (v *View) Prev(l *lexeme.Lexeme) *lexeme.Lexeme { return v.Seq.At(l.Index() - 1) }

// indexOf returns the index of the first lexeme carrying one of ids at or
// after from, or -1.
func (v *View) indexOf(from int, ids ...lexeme.Identity) int {
	for i := from; i < v.Seq.Len(); i++ {
		if v.Seq.At(i).Is(ids...) {
			return i
		}
	}
	return -1
}

// Action is a visitor's decision about a lexeme.
type Action struct {
	Identity lexeme.Identity
	Values   lexeme.Values // nil keeps the values already claimed
	Final    bool
}

func finalAs(id lexeme.Identity, values lexeme.Values) Action {
	return Action{Identity: id, Values: values, Final: true}
}

// reject turns a lexeme into a final unknown one.
func reject() Action { return finalAs(lexeme.Unknown, lexeme.Values{}) }

// keep finalises a lexeme with its claimed identity and values.
func keep(l *lexeme.Lexeme) Action { return finalAs(l.Identity(), nil) }

func (a Action) changes(l *lexeme.Lexeme) bool {
	return a.Final || a.Identity != l.Identity()
}

func (a Action) apply(l *lexeme.Lexeme, source string) error {
	if a.Final {
		return l.Finalize(a.Identity, a.Values, source)
	}
	values := a.Values
	if values == nil {
		values = l.Values()
	}
	return l.Claim(a.Identity, values, source)
}

// Visitor re-examines a non-final lexeme in the context of its sequence.
// Visit returns false when it has nothing to say about the lexeme.
type Visitor struct {
	Name  string
	Visit func(v *View, l *lexeme.Lexeme) (Action, bool)
}

// VisitorsFor returns the visitor chain of a report type, in the order the
// visitors are tried.
func VisitorsFor(t conversion.ReportType) []Visitor {
	switch t {
	case conversion.METAR, conversion.SPECI:
		return []Visitor{remarksVisitor, modifierVisitor, aerodromeVisitor, trendTimeVisitor}
	case conversion.TAF:
		return []Visitor{remarksVisitor, modifierVisitor, aerodromeVisitor, changeGroupTimeVisitor}
	case conversion.SIGMET, conversion.AIRMET:
		return []Visitor{firNameVisitor, sigmetHeaderVisitor}
	}
	return nil
}

// Everything after the first RMK up to the end token is a remark.
var remarksVisitor = Visitor{
	Name: "remarks",
	Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
		start := v.indexOf(0, lexeme.RemarksStart)
		if start < 0 || l.Index() < start {
			return Action{}, false
		}
		if l.Index() == start {
			return keep(l), true
		}
		end := v.indexOf(start+1, lexeme.EndToken)
		if end >= 0 && l.Index() >= end {
			return Action{}, false
		}
		return finalAs(lexeme.Remark, lexeme.Values{}), true
	},
}

// AMD and COR are only valid directly after the report start, possibly
// after each other.
var modifierVisitor = Visitor{
	Name: "modifiers",
	Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
		if !l.Is(lexeme.Amendment, lexeme.Correction) {
			return Action{}, false
		}
		for i := l.Index() - 1; i >= 0; i-- {
			p := v.Seq.At(i)
			if p.Identity().IsReportStart() {
				return keep(l), true
			}
			if !p.Is(lexeme.Amendment, lexeme.Correction) {
				break
			}
		}
		return reject(), true
	},
}

var designatorRe = regexp.MustCompile(`^[A-Z]{4}$`)

// aerodromeSlot is the position of the aerodrome designator: after the
// report start and any modifiers.
func aerodromeSlot(seq *lexeme.Sequence) int {
	i := 0
	if first := seq.At(0); first != nil && first.Identity().IsReportStart() {
		i = 1
	}
	for i < seq.Len() && seq.At(i).Is(lexeme.Amendment, lexeme.Correction) {
		i++
	}
	return i
}

// The group in the aerodrome slot is the designator even when it looks like
// weather; a designator anywhere else is an error.
var aerodromeVisitor = Visitor{
	Name: "aerodrome",
	Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
		if l.Index() == aerodromeSlot(v.Seq) && designatorRe.MatchString(l.Raw()) {
			return finalAs(lexeme.AerodromeDesignator, lexeme.Values{lexeme.Name: l.Raw()}), true
		}
		if l.Is(lexeme.AerodromeDesignator) {
			return reject(), true
		}
		return Action{}, false
	},
}

func isPeriodChange(l *lexeme.Lexeme) bool {
	if l == nil || !l.Is(lexeme.ForecastChangeIndicator) {
		return false
	}
	switch l.Values().String(lexeme.Kind) {
	case "BECMG", "TEMPO", "PROB", "PROB_TEMPO":
		return true
	}
	return false
}

// A TAF period group directly after BECMG, TEMPO or PROB is the time of a
// change forecast. The first one in the header is the validity.
var changeGroupTimeVisitor = Visitor{
	Name: "change_group_time",
	Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
		if !l.Is(lexeme.ValidTime) {
			return Action{}, false
		}
		if isPeriodChange(v.Prev(l)) {
			return finalAs(lexeme.ChangeForecastTimeGroup, nil), true
		}
		first := v.indexOf(0, lexeme.ValidTime)
		change := v.indexOf(0, lexeme.ForecastChangeIndicator)
		if first == l.Index() && (change < 0 || change > l.Index()) {
			return keep(l), true
		}
		return reject(), true
	},
}

// METAR FM/TL/AT groups only belong to a BECMG or TEMPO trend.
var trendTimeVisitor = Visitor{
	Name: "trend_time",
	Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
		if !l.Is(lexeme.TrendTimeGroup) {
			return Action{}, false
		}
		for i := l.Index() - 1; i >= 0; i-- {
			p := v.Seq.At(i)
			if p.Is(lexeme.TrendTimeGroup) {
				continue
			}
			if p.Is(lexeme.TrendChangeIndicator) && p.Values().String(lexeme.Kind) != "NOSIG" {
				return keep(l), true
			}
			break
		}
		return reject(), true
	},
}

// firDesignatorIndex is the position directly after the MWO designator.
func firDesignatorIndex(v *View) int {
	mwo := v.indexOf(0, lexeme.MWODesignator)
	if mwo < 0 || mwo+1 >= v.Seq.Len() {
		return -1
	}
	return mwo + 1
}

// Words between the FIR designator and the FIR/UIR/CTA keyword name the FIR.
var firNameVisitor = Visitor{
	Name: "fir_name",
	Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
		fir := firDesignatorIndex(v)
		if fir < 0 || l.Index() <= fir {
			return Action{}, false
		}
		end := v.indexOf(fir+1, lexeme.FIRType)
		if end < 0 || l.Index() >= end {
			return Action{}, false
		}
		return finalAs(lexeme.FIRName, lexeme.Values{lexeme.Name: l.Raw()}), true
	},
}

// The SIGMET header: the issuing unit opens the message, the sequence
// number follows the SIGMET/AIRMET keyword and the FIR designator follows
// the MWO.
var sigmetHeaderVisitor = Visitor{
	Name: "sigmet_header",
	Visit: func(v *View, l *lexeme.Lexeme) (Action, bool) {
		switch {
		case l.Is(lexeme.LocationIndicator):
			if l.Index() == 0 {
				return keep(l), true
			}
			if l.Index() == firDesignatorIndex(v) {
				return finalAs(lexeme.FIRDesignator, nil), true
			}
			return reject(), true
		case l.Is(lexeme.SequenceDescriptor):
			if p := v.Prev(l); p != nil && p.Is(lexeme.SigmetStart, lexeme.AirmetStart) {
				return keep(l), true
			}
			return reject(), true
		}
		return Action{}, false
	},
}
