package rules

import (
	"fmt"
	"strings"

	"tac_converter/internal/lexeme"
	"tac_converter/internal/patterns"
)

// TraceResult contains trace information for one span position.
type TraceResult struct {
	Position int       // Index of the first span.
	Span     string    // The span at Position.
	Attempts []Attempt // Every rule tried, in evaluation order.
	Claimed  string    // Name of the winning rule, empty if none.
}

// Attempt contains debug information about one rule tried on a window.
type Attempt struct {
	Rule     string            // Rule name.
	Priority Priority          // Rule priority.
	Identity lexeme.Identity   // Identity the rule would assign.
	Window   string            // The spans the rule looked at.
	Pattern  string            // The expanded regex pattern.
	Matched  bool              // Whether the pattern matched.
	Captures map[string]string // Captured groups (if matched).
	Err      string            // Decoding error (if any).
}

// Trace tries every rule on the window starting at pos and records each
// attempt. It is used to debug why a token was or was not recognised.
func (s *Set) Trace(spans []string, pos int) *TraceResult {
	tr := &TraceResult{Position: pos}
	if pos < 0 || pos >= len(spans) {
		return tr
	}
	tr.Span = spans[pos]
	for i := range s.rules {
		r := &s.rules[i]
		if pos+r.Spans > len(spans) {
			continue
		}
		raw := window(spans, pos, r.Spans)
		ft := s.compiler.TraceFormat(r.Name, raw)
		a := Attempt{
			Rule:     r.Name,
			Priority: r.Priority,
			Identity: r.Identity,
			Window:   raw,
			Pattern:  ft.Pattern,
			Matched:  ft.Matched,
			Captures: ft.Captures,
		}
		if ft.Matched {
			if _, err := r.values(&patterns.Match{FormatName: ft.Name, Captures: ft.Captures}); err != nil {
				a.Err = err.Error()
			} else if tr.Claimed == "" {
				tr.Claimed = r.Name
			}
		}
		tr.Attempts = append(tr.Attempts, a)
	}
	return tr
}

// FormatTrace renders a trace for terminal output.
func FormatTrace(tr *TraceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "span %d %q", tr.Position, tr.Span)
	if tr.Claimed != "" {
		fmt.Fprintf(&b, " claimed by %s\n", tr.Claimed)
	} else {
		b.WriteString(" not claimed\n")
	}
	for _, a := range tr.Attempts {
		mark := " "
		if a.Matched {
			mark = "+"
		}
		fmt.Fprintf(&b, "  %s %-6s %-22s %-26s %q", mark, a.Priority, a.Rule, a.Identity, a.Window)
		if a.Err != "" {
			fmt.Fprintf(&b, " error: %s", a.Err)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
