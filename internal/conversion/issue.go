// Package conversion holds the result, issue and hint types shared by every
// stage of TAC conversion.
package conversion

import (
	"errors"
	"fmt"
)

// ErrNilArgument reports a caller bug: a required argument was nil.
var ErrNilArgument = errors.New("required argument is nil")

// IssueKind classifies a conversion issue.
type IssueKind string

const (
	SyntaxError  IssueKind = "SYNTAX_ERROR"
	LogicalError IssueKind = "LOGICAL_ERROR"
	MissingData  IssueKind = "MISSING_DATA"
	Other        IssueKind = "OTHER"
)

// Issue is a problem found while converting a message. Issues are data and
// are never printed by the converter itself.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// NewIssue formats an issue message.
func NewIssue(kind IssueKind, format string, args ...any) Issue {
	return Issue{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (i Issue) String() string { return string(i.Kind) + ": " + i.Message }

// Status is the overall outcome of a conversion.
type Status string

const (
	Success    Status = "SUCCESS"
	Fail       Status = "FAIL"
	WithErrors Status = "WITH_ERRORS"
)

// Result carries the best-effort artefact of a conversion and its issues.
type Result[T any] struct {
	Value  T       `json:"value"`
	Issues []Issue `json:"issues,omitempty"`
	failed bool
}

// Fail marks the result as having produced no usable artefact.
func (r *Result[T]) Fail(issue Issue) {
	r.failed = true
	r.Issues = append(r.Issues, issue)
}

// MarkFailed fails the result without recording a new issue.
func (r *Result[T]) MarkFailed() { r.failed = true }

// Add records issues without failing the result.
func (r *Result[T]) Add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// Status derives the outcome from the recorded issues.
func (r *Result[T]) Status() Status {
	switch {
	case r.failed:
		return Fail
	case len(r.Issues) > 0:
		return WithErrors
	default:
		return Success
	}
}

// HasKind reports whether any issue of kind was recorded.
func (r *Result[T]) HasKind(kind IssueKind) bool {
	for _, i := range r.Issues {
		if i.Kind == kind {
			return true
		}
	}
	return false
}
