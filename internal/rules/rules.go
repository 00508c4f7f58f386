// Package rules holds the prioritised token rule tables of each TAC report
// type.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tac_converter/internal/conversion"
	"tac_converter/internal/lexeme"
	"tac_converter/internal/patterns"
)

// Priority orders rules within a set. High rules are tried first.
type Priority int

const (
	High Priority = iota
	Normal
	Low
)

func (p Priority) String() string {
	switch p {
	case High:
		return "HIGH"
	case Normal:
		return "NORMAL"
	case Low:
		return "LOW"
	}
	return "Priority(" + strconv.Itoa(int(p)) + ")"
}

// Rule recognises one token kind. Rules are stateless and shared by every
// tokenizer using the set.
type Rule struct {
	Name     string
	Identity lexeme.Identity
	Priority Priority
	Spans    int    // whitespace separated spans consumed, 1 when zero
	Pattern  string // grok pattern, see patterns.BasePatterns

	// Fixed values attached to every claim.
	Fixed lexeme.Values
	// Capture group to value mappings.
	Ints    map[string]lexeme.ValueName
	Strings map[string]lexeme.ValueName
	Temps   map[string]lexeme.ValueName // M-prefixed signed temperatures

	// Extract decodes anything the mappings cannot. It runs after them.
	Extract func(m *patterns.Match, v lexeme.Values) error
}

func (r *Rule) values(m *patterns.Match) (lexeme.Values, error) {
	v := make(lexeme.Values, len(r.Fixed)+len(m.Captures))
	for k, val := range r.Fixed {
		v[k] = val
	}
	for group, name := range r.Ints {
		s := m.GetCapture(group, "")
		if s == "" {
			continue
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", group, err)
		}
		v[name] = i
	}
	for group, name := range r.Strings {
		if s := m.GetCapture(group, ""); s != "" {
			v[name] = s
		}
	}
	for group, name := range r.Temps {
		s := m.GetCapture(group, "")
		if s == "" {
			continue
		}
		t, err := ParseTemperature(s)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", group, err)
		}
		v[name] = t
	}
	if r.Extract != nil {
		if err := r.Extract(m, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ParseTemperature parses a TAC temperature such as "M05" or "12".
func ParseTemperature(s string) (int, error) {
	neg := strings.HasPrefix(s, "M")
	n, err := strconv.Atoi(strings.TrimPrefix(s, "M"))
	if err != nil {
		return 0, err
	}
	if neg {
		n = -n
	}
	return n, nil
}

// FormatTemperature renders a temperature the way ParseTemperature reads it.
func FormatTemperature(t int) string {
	if t < 0 {
		return fmt.Sprintf("M%02d", -t)
	}
	return fmt.Sprintf("%02d", t)
}

// Claim is a successful recognition of one or more spans.
type Claim struct {
	Rule   *Rule
	Raw    string // spans joined by single spaces
	Spans  int
	Values lexeme.Values
}

// Set is the ordered rule table of one report type. A Set is immutable once
// built and safe for concurrent use.
type Set struct {
	typ      conversion.ReportType
	rules    []Rule
	compiler *patterns.Compiler
	maxSpans int
}

// NewSet validates and orders rs. Rules are sorted by priority; rules of the
// same priority keep their registration order. Every identity in grammar must
// be produced by a rule or be listed in derived (identities assigned only by
// contextual visitors).
func NewSet(typ conversion.ReportType, rs []Rule, grammar, derived []lexeme.Identity) (*Set, error) {
	s := &Set{typ: typ, rules: make([]Rule, len(rs))}
	copy(s.rules, rs)

	produced := make(map[lexeme.Identity]bool)
	names := make(map[string]bool)
	for i := range s.rules {
		r := &s.rules[i]
		if r.Name == "" {
			return nil, fmt.Errorf("%s rule %d: empty name", typ, i)
		}
		if names[r.Name] {
			return nil, fmt.Errorf("%s: duplicate rule %q", typ, r.Name)
		}
		names[r.Name] = true
		if !r.Identity.Valid() || r.Identity == lexeme.Unknown {
			return nil, fmt.Errorf("%s rule %q: invalid identity %q", typ, r.Name, r.Identity)
		}
		if r.Priority < High || r.Priority > Low {
			return nil, fmt.Errorf("%s rule %q: invalid priority %d", typ, r.Name, r.Priority)
		}
		if r.Spans <= 0 {
			r.Spans = 1
		}
		if r.Spans > s.maxSpans {
			s.maxSpans = r.Spans
		}
		produced[r.Identity] = true
	}
	for _, id := range derived {
		produced[id] = true
	}
	for _, id := range grammar {
		if !produced[id] {
			return nil, fmt.Errorf("%s: no rule produces %s", typ, id)
		}
	}

	sort.SliceStable(s.rules, func(i, j int) bool {
		return s.rules[i].Priority < s.rules[j].Priority
	})

	formats := make([]patterns.Format, len(s.rules))
	for i, r := range s.rules {
		formats[i] = patterns.Format{Name: r.Name, Pattern: r.Pattern}
	}
	s.compiler = patterns.NewCompiler(formats, nil)
	if err := s.compiler.Compile(); err != nil {
		return nil, fmt.Errorf("%s: %w", typ, err)
	}
	return s, nil
}

// Type returns the report type the set was built for.
func (s *Set) Type() conversion.ReportType { return s.typ }

// MaxSpans is the widest window any rule consumes.
func (s *Set) MaxSpans() int { return s.maxSpans }

// Rules returns the rules in evaluation order.
func (s *Set) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Recognize tries every rule, in evaluation order, on the window of spans
// starting at pos. The first rule that matches and decodes claims the
// window. When nothing claims it, the first decoding error (if any) is
// returned to explain why.
func (s *Set) Recognize(spans []string, pos int) (Claim, bool, error) {
	var firstErr error
	for i := range s.rules {
		r := &s.rules[i]
		if pos+r.Spans > len(spans) {
			continue
		}
		raw := window(spans, pos, r.Spans)
		m := s.compiler.Match(r.Name, raw)
		if m == nil {
			continue
		}
		v, err := r.values(m)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("rule %s: %w", r.Name, err)
			}
			continue
		}
		return Claim{Rule: r, Raw: raw, Spans: r.Spans, Values: v}, true, nil
	}
	return Claim{}, false, firstErr
}

func window(spans []string, pos, n int) string {
	return strings.Join(spans[pos:pos+n], " ")
}

// keyword builds a high priority rule matching word literally.
func keyword(name string, id lexeme.Identity, word string, fixed lexeme.Values) Rule {
	return Rule{
		Name:     name,
		Identity: id,
		Priority: High,
		Spans:    len(strings.Fields(word)),
		Pattern:  regexp.QuoteMeta(word),
		Fixed:    fixed,
	}
}
