package lexeme

import "fmt"

// State is the recognition state of a lexeme. Transitions only go forward:
// Unrecognized -> Tentative -> Final, or Unrecognized -> Final.
type State int

const (
	Unrecognized State = iota
	Tentative
	Final
)

var stateNames = []string{
	Unrecognized: "UNRECOGNIZED",
	Tentative:    "TENTATIVE",
	Final:        "FINAL",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

// StateError is returned when a transition would move a lexeme backwards.
type StateError struct {
	Raw  string
	From State
	To   State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("lexeme %q: illegal transition %s -> %s", e.Raw, e.From, e.To)
}

// Lexeme is one token of a TAC message.
type Lexeme struct {
	raw      string
	identity Identity
	state    State
	values   Values
	index    int
	source   string // rule or visitor that identified the lexeme
}

// New creates an unrecognised lexeme for raw.
func New(raw string) *Lexeme {
	return &Lexeme{raw: raw, identity: Unknown, index: -1}
}

// NewFinal creates a lexeme that is already final, as the reconstructor does.
func NewFinal(raw string, id Identity, values Values) *Lexeme {
	return &Lexeme{raw: raw, identity: id, state: Final, values: values.clone(), index: -1}
}

func (l *Lexeme) Raw() string        { return l.raw }
func (l *Lexeme) Identity() Identity { return l.identity }
func (l *Lexeme) State() State       { return l.state }
func (l *Lexeme) Index() int         { return l.index }
func (l *Lexeme) Source() string     { return l.source }

// Values returns the decoded fields. The map must not be modified.
func (l *Lexeme) Values() Values {
	if l.values == nil {
		return Values{}
	}
	return l.values
}

// Is reports whether the lexeme currently carries one of ids.
func (l *Lexeme) Is(ids ...Identity) bool {
	for _, id := range ids {
		if l.identity == id {
			return true
		}
	}
	return false
}

// Recognized reports whether the lexeme is final with a known identity.
func (l *Lexeme) Recognized() bool {
	return l.state == Final && l.identity != Unknown
}

// Claim records a tentative identification. Only unrecognised or tentative
// lexemes can be claimed.
func (l *Lexeme) Claim(id Identity, values Values, source string) error {
	if l.state == Final {
		return &StateError{Raw: l.raw, From: l.state, To: Tentative}
	}
	l.identity = id
	l.values = values.clone()
	l.source = source
	l.state = Tentative
	return nil
}

// Finalize fixes the identity of the lexeme. A nil values map keeps the
// values of a tentative claim.
func (l *Lexeme) Finalize(id Identity, values Values, source string) error {
	if l.state == Final {
		return &StateError{Raw: l.raw, From: l.state, To: Final}
	}
	l.identity = id
	if values != nil {
		l.values = values.clone()
	}
	if source != "" {
		l.source = source
	}
	l.state = Final
	return nil
}

func (l *Lexeme) String() string {
	return fmt.Sprintf("%s(%s)", l.identity, l.raw)
}
