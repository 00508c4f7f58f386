// Package tokenizer turns raw TAC text into a lexeme sequence using the rule
// set of a report type and a chain of contextual visitors.
package tokenizer

import (
	"strings"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/rules"
)

// MaxVisitPasses caps the visitor chain. A chain still changing lexemes
// after this many passes is reported as not converged.
const MaxVisitPasses = 8

// Tokenizer recognises the messages of one report type. It holds only
// read-only tables and may be shared between goroutines.
type Tokenizer struct {
	set      *rules.Set
	visitors []Visitor
}

// New creates a tokenizer from a rule set and a visitor chain.
func New(set *rules.Set, visitors []Visitor) (*Tokenizer, error) {
	if set == nil {
		return nil, conversion.ErrNilArgument
	}
	v := make([]Visitor, len(visitors))
	copy(v, visitors)
	return &Tokenizer{set: set, visitors: v}, nil
}

// ForType creates a tokenizer with the standard rules and visitors of t.
func ForType(t conversion.ReportType) (*Tokenizer, error) {
	set, err := rules.ForType(t)
	if err != nil {
		return nil, err
	}
	return New(set, VisitorsFor(t))
}

// Tokenize is a convenience wrapper around ForType and Tokenizer.Tokenize.
func Tokenize(text string, t conversion.ReportType, hints conversion.Hints) (*lexeme.Sequence, []conversion.Issue, error) {
	tok, err := ForType(t)
	if err != nil {
		return nil, nil, err
	}
	seq, issues := tok.Tokenize(text, hints)
	return seq, issues, nil
}

// Set returns the rule set the tokenizer uses.
func (t *Tokenizer) Set() *rules.Set { return t.set }

// Tokenize recognises text. Malformed input never fails: unrecognised spans
// become UNKNOWN lexemes and are reported as SYNTAX_ERROR issues. Every
// lexeme of the returned sequence is final.
func (t *Tokenizer) Tokenize(text string, hints conversion.Hints) (*lexeme.Sequence, []conversion.Issue) {
	seq := lexeme.NewSequence()
	spans := Spans(text)
	if len(spans) == 0 {
		return seq, []conversion.Issue{conversion.NewIssue(conversion.SyntaxError, "empty message")}
	}

	reasons := make(map[*lexeme.Lexeme]string)
	for pos := 0; pos < len(spans); {
		c, ok, err := t.set.Recognize(spans, pos)
		if !ok {
			l := lexeme.New(spans[pos])
			if err != nil {
				reasons[l] = err.Error()
			}
			seq.Append(l)
			pos++
			continue
		}
		l := lexeme.New(c.Raw)
		// A fresh lexeme is never final, so the claim cannot fail.
		_ = l.Claim(c.Rule.Identity, c.Values, c.Rule.Name)
		seq.Append(l)
		pos += c.Spans
	}

	var issues []conversion.Issue
	if _, converged := t.Visit(seq, hints); !converged {
		issues = append(issues, conversion.NewIssue(conversion.Other,
			"lexeme visitors did not converge within %d passes", MaxVisitPasses))
	}
	issues = append(issues, finalize(seq, reasons)...)
	return seq, issues
}

// Spans normalises line breaks and tabs to spaces, splits on whitespace and
// detaches a trailing "=" into its own span.
func Spans(text string) []string {
	text = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(text)
	var out []string
	for _, f := range strings.Fields(text) {
		if len(f) > 1 && strings.HasSuffix(f, "=") {
			out = append(out, strings.TrimSuffix(f, "="), "=")
			continue
		}
		out = append(out, f)
	}
	return out
}

// Visit runs the visitor chain until a full pass changes nothing or
// MaxVisitPasses is reached. It returns the number of changes made and
// whether the chain converged. Final lexemes are never visited, so running
// it over a tokenized sequence again changes nothing.
func (t *Tokenizer) Visit(seq *lexeme.Sequence, hints conversion.Hints) (int, bool) {
	view := &View{Seq: seq, Hints: hints, Type: t.set.Type()}
	total := 0
	for pass := 0; pass < MaxVisitPasses; pass++ {
		changed := 0
		for _, l := range seq.All() {
			if l.State() == lexeme.Final {
				continue
			}
			for _, v := range t.visitors {
				a, ok := v.Visit(view, l)
				if !ok || !a.changes(l) {
					continue
				}
				if a.apply(l, v.Name) == nil {
					changed++
					break
				}
			}
		}
		total += changed
		if changed == 0 {
			return total, true
		}
	}
	return total, false
}

// finalize fixes every lexeme still open after the visitor chain and
// reports each unknown one.
func finalize(seq *lexeme.Sequence, reasons map[*lexeme.Lexeme]string) []conversion.Issue {
	var issues []conversion.Issue
	for _, l := range seq.All() {
		switch l.State() {
		case lexeme.Tentative:
			_ = l.Finalize(l.Identity(), nil, "")
		case lexeme.Unrecognized:
			_ = l.Finalize(lexeme.Unknown, nil, "")
		}
		if l.Identity() != lexeme.Unknown {
			continue
		}
		switch {
		case l.Source() != "":
			issues = append(issues, conversion.NewIssue(conversion.SyntaxError,
				"token %q at position %d is not allowed here (%s)", l.Raw(), l.Index(), l.Source()))
		case reasons[l] != "":
			issues = append(issues, conversion.NewIssue(conversion.SyntaxError,
				"invalid token %q at position %d: %s", l.Raw(), l.Index(), reasons[l]))
		default:
			issues = append(issues, conversion.NewIssue(conversion.SyntaxError,
				"unrecognised token %q at position %d", l.Raw(), l.Index()))
		}
	}
	return issues
}
