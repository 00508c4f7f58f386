package timeref

import "time"

// Instant is a time that is either partial, as written in a message, or
// complete once resolved. Both forms may be held at once.
type Instant struct {
	Partial  *PartialTime `json:"partial,omitempty"`
	Complete *time.Time   `json:"complete,omitempty"`

	near time.Time // reference of the last ResolveNear
}

// PartialInstant wraps p.
func PartialInstant(p PartialTime) Instant {
	return Instant{Partial: &p}
}

// CompleteInstant wraps an already resolved time.
func CompleteInstant(t time.Time) Instant {
	t = t.UTC()
	return Instant{Complete: &t}
}

// IsZero reports whether neither form is present.
func (i Instant) IsZero() bool { return i.Partial == nil && i.Complete == nil }

// IsComplete reports whether the instant has a resolved time. An absent
// instant counts as complete since there is nothing to resolve.
func (i Instant) IsComplete() bool { return i.Partial == nil || i.Complete != nil }

// ResolveInMonth recomputes the complete time from the partial one.
func (i *Instant) ResolveInMonth(ym YearMonth) error {
	if i.Partial == nil {
		return nil
	}
	t, err := ResolveInMonth(*i.Partial, ym)
	if err != nil {
		return err
	}
	i.Complete = &t
	i.near = time.Time{}
	return nil
}

// ResolveNear completes the instant relative to ref. An instant already
// resolved against the same reference is left as is.
func (i *Instant) ResolveNear(ref time.Time) error {
	if i.Partial == nil {
		return nil
	}
	if i.Complete != nil && !i.near.IsZero() && i.near.Equal(ref) {
		return nil
	}
	t, err := ResolveNear(*i.Partial, ref)
	if err != nil {
		return err
	}
	i.Complete = &t
	i.near = ref
	return nil
}

// Period is a start/end pair of instants.
type Period struct {
	Start Instant `json:"start"`
	End   Instant `json:"end"`
}

// PartialPeriod builds a period from two partial times.
func PartialPeriod(start, end PartialTime) Period {
	return Period{Start: PartialInstant(start), End: PartialInstant(end)}
}

func (p Period) IsZero() bool     { return p.Start.IsZero() && p.End.IsZero() }
func (p Period) IsComplete() bool { return p.Start.IsComplete() && p.End.IsComplete() }

// ResolveInMonth places the start in ym and the end relative to the start.
func (p *Period) ResolveInMonth(ym YearMonth) error {
	if err := p.Start.ResolveInMonth(ym); err != nil {
		return err
	}
	return p.resolveEnd(ym)
}

// ResolveNear completes the start relative to ref and the end relative to
// the start.
func (p *Period) ResolveNear(ref time.Time) error {
	if err := p.Start.ResolveNear(ref); err != nil {
		return err
	}
	return p.resolveEnd(YearMonthOf(ref))
}

func (p *Period) resolveEnd(ym YearMonth) error {
	if p.Start.Complete != nil {
		return p.End.ResolveNear(*p.Start.Complete)
	}
	return p.End.ResolveInMonth(ym)
}

// Hours returns the length of the period in whole hours, computed from the
// partial fields when present.
func (p Period) Hours(maxRollover int) (int, error) {
	if p.Start.Partial != nil && p.End.Partial != nil {
		s, e := p.Start.Partial, p.End.Partial
		return ValidityHours(s.Day, s.Hour, e.Day, e.Hour, maxRollover)
	}
	if p.Start.Complete != nil && p.End.Complete != nil {
		return int(p.End.Complete.Sub(*p.Start.Complete) / time.Hour), nil
	}
	return 0, &ResolutionError{Field: "period", Value: Unset, Reason: "start or end missing"}
}
