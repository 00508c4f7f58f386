// Package patterns provides the grok-style pattern compiler used by the TAC
// token rules.

package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Format is a named pattern with {PLACEHOLDER} references and named capture
// groups.
type Format struct {
	Name     string         // Format name for identification
	Pattern  string         // Pattern with {PLACEHOLDER} syntax
	Compiled *regexp.Regexp // Compiled regex (populated by Compile)
	Fields   []string       // Capture group names in order (populated by Compile)
}

// Compiler manages pattern compilation and matching for a set of formats.
// Patterns are anchored: a format matches a whole token, never a substring.
type Compiler struct {
	basePatterns map[string]string
	formats      []Format
	index        map[string]int
}

// placeholderRe finds {NAME} references.
var placeholderRe = regexp.MustCompile(`\{([A-Z][A-Z0-9_]*)\}`)

// maxExpandDepth bounds nested placeholder expansion.
const maxExpandDepth = 8

// NewCompiler creates a new pattern compiler with the given formats.
// It merges the provided base patterns with the global BasePatterns,
// allowing local patterns to override global ones.
func NewCompiler(formats []Format, localPatterns map[string]string) *Compiler {
	c := &Compiler{
		basePatterns: make(map[string]string),
		formats:      make([]Format, len(formats)),
		index:        make(map[string]int, len(formats)),
	}

	// Copy global base patterns.
	for k, v := range BasePatterns {
		c.basePatterns[k] = v
	}

	// Overlay local patterns (can override global ones).
	for k, v := range localPatterns {
		c.basePatterns[k] = v
	}

	copy(c.formats, formats)

	return c
}

// Compile expands all {PLACEHOLDER} references and compiles the anchored
// regexes. Duplicate format names and unknown placeholders are errors.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		name := c.formats[i].Name
		if _, dup := c.index[name]; dup {
			return fmt.Errorf("duplicate format %q", name)
		}
		expanded, err := c.expand(c.formats[i].Pattern)
		if err != nil {
			return fmt.Errorf("format %q: %w", name, err)
		}
		re, err := regexp.Compile(`^(?:` + expanded + `)$`)
		if err != nil {
			return fmt.Errorf("format %q: %w", name, err)
		}
		c.formats[i].Compiled = re
		c.formats[i].Fields = nil
		for _, n := range re.SubexpNames() {
			if n != "" {
				c.formats[i].Fields = append(c.formats[i].Fields, n)
			}
		}
		c.index[name] = i
	}
	return nil
}

// expand replaces {PLACEHOLDER} with actual regex patterns. Base patterns may
// reference each other.
func (c *Compiler) expand(pattern string) (string, error) {
	result := pattern
	for depth := 0; depth < maxExpandDepth; depth++ {
		refs := placeholderRe.FindAllStringSubmatch(result, -1)
		if len(refs) == 0 {
			return result, nil
		}
		for _, ref := range refs {
			regex, ok := c.basePatterns[ref[1]]
			if !ok {
				return "", fmt.Errorf("unknown placeholder {%s}", ref[1])
			}
			result = strings.ReplaceAll(result, ref[0], regex)
		}
	}
	return "", fmt.Errorf("placeholder expansion deeper than %d levels", maxExpandDepth)
}

// Expanded returns the expanded, unanchored pattern of a format.
func (c *Compiler) Expanded(name string) string {
	i, ok := c.index[name]
	if !ok {
		return ""
	}
	s, _ := c.expand(c.formats[i].Pattern)
	return s
}

// Match represents a successful pattern match with extracted fields.
type Match struct {
	FormatName string            // Name of the matched format
	Captures   map[string]string // Named capture group values
}

// Match tests text against one format. It returns nil when the format is
// unknown, not compiled or does not match.
func (c *Compiler) Match(name, text string) *Match {
	i, ok := c.index[name]
	if !ok || c.formats[i].Compiled == nil {
		return nil
	}
	return match(c.formats[i], text)
}

func match(format Format, text string) *Match {
	m := format.Compiled.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	result := &Match{
		FormatName: format.Name,
		Captures:   make(map[string]string),
	}
	for i, name := range format.Compiled.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		// Alternations may repeat a group name; keep the one that matched.
		if m[i] != "" || result.Captures[name] == "" {
			result.Captures[name] = m[i]
		}
	}
	return result
}

// Names returns the format names in registration order.
func (c *Compiler) Names() []string {
	names := make([]string, len(c.formats))
	for i, f := range c.formats {
		names[i] = f.Name
	}
	return names
}

// Placeholders lists the base pattern names known to the compiler.
func (c *Compiler) Placeholders() []string {
	names := make([]string, 0, len(c.basePatterns))
	for k := range c.basePatterns {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GetCapture is a helper to safely get a capture value with a default.
func (m *Match) GetCapture(name string, defaultVal string) string {
	if m == nil {
		return defaultVal
	}
	if val, ok := m.Captures[name]; ok && val != "" {
		return val
	}
	return defaultVal
}

// FormatTrace contains debug information about a format match attempt.
type FormatTrace struct {
	Name     string            // Format name
	Matched  bool              // Whether the pattern matched
	Pattern  string            // The expanded regex pattern
	Captures map[string]string // Captured groups (if matched)
}

// TraceFormat attempts one format and records the attempt.
// This is useful for debugging why a token was not recognised.
func (c *Compiler) TraceFormat(name, text string) FormatTrace {
	ft := FormatTrace{Name: name, Pattern: c.Expanded(name)}
	if m := c.Match(name, text); m != nil {
		ft.Matched = true
		ft.Captures = m.Captures
	}
	return ft
}
