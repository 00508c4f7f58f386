package lexeme

import "strings"

// Sequence is the ordered list of lexemes of one message.
type Sequence struct {
	lexemes []*Lexeme
}

// NewSequence builds a sequence from ls in order.
func NewSequence(ls ...*Lexeme) *Sequence {
	s := &Sequence{}
	for _, l := range ls {
		s.Append(l)
	}
	return s
}

// Append adds l at the end and records its position.
func (s *Sequence) Append(l *Lexeme) {
	l.index = len(s.lexemes)
	s.lexemes = append(s.lexemes, l)
}

func (s *Sequence) Len() int { return len(s.lexemes) }

// At returns the lexeme at i, or nil when out of range.
func (s *Sequence) At(i int) *Lexeme {
	if i < 0 || i >= len(s.lexemes) {
		return nil
	}
	return s.lexemes[i]
}

// All returns the lexemes in order. The slice is a copy.
func (s *Sequence) All() []*Lexeme {
	out := make([]*Lexeme, len(s.lexemes))
	copy(out, s.lexemes)
	return out
}

// First returns the first lexeme carrying id.
func (s *Sequence) First(id Identity) (*Lexeme, bool) {
	for _, l := range s.lexemes {
		if l.identity == id {
			return l, true
		}
	}
	return nil, false
}

// Identities lists the identity of every lexeme in order.
func (s *Sequence) Identities() []Identity {
	ids := make([]Identity, len(s.lexemes))
	for i, l := range s.lexemes {
		ids[i] = l.identity
	}
	return ids
}

// Text joins the raw tokens with single spaces. The end token is attached
// to the preceding token.
func (s *Sequence) Text() string {
	var b strings.Builder
	for i, l := range s.lexemes {
		if i > 0 && l.identity != EndToken {
			b.WriteByte(' ')
		}
		b.WriteString(l.raw)
	}
	return b.String()
}

// SplitBy cuts the sequence into contiguous runs, each boundary lexeme
// (one carrying any of ids) starting a new run. The receiver is not modified
// and lexemes are shared with it.
func (s *Sequence) SplitBy(ids ...Identity) []*Sequence {
	var out []*Sequence
	var cur []*Lexeme
	for _, l := range s.lexemes {
		if l.Is(ids...) && len(cur) > 0 {
			out = append(out, &Sequence{lexemes: cur})
			cur = nil
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		out = append(out, &Sequence{lexemes: cur})
	}
	return out
}

// Unrecognized returns the lexemes that are not recognised.
func (s *Sequence) Unrecognized() []*Lexeme {
	var out []*Lexeme
	for _, l := range s.lexemes {
		if !l.Recognized() {
			out = append(out, l)
		}
	}
	return out
}
