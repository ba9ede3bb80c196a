package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound means an identity rule resolved to zero remote entities.
// Absence is expected during incremental rollout, so callers usually treat
// this as a skip, not a failure.
var ErrNotFound = errors.New("reconcile: no matching entity")

// AmbiguousMatchError means a prefix/keyword rule resolved to more than one
// entity. Silently picking one risks mutating the wrong object, so this is
// always surfaced with every candidate.
type AmbiguousMatchError struct {
	Rule       MatchRule
	Value      string
	Candidates []Entity
}

func (e *AmbiguousMatchError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		names = append(names, fmt.Sprintf("%d %q", c.ID, c.Name))
	}
	return fmt.Sprintf("reconcile: ambiguous %s match for %q: candidates [%s]", e.Rule, e.Value, strings.Join(names, ", "))
}

// UnknownChapterError means the schedule rule table has no entry for a
// chapter. The engine never guesses a default window.
type UnknownChapterError struct {
	Chapter int
}

func (e *UnknownChapterError) Error() string {
	return fmt.Sprintf("reconcile: no schedule rule for chapter %d", e.Chapter)
}

// PartialPropagationError means the twin update failed after the primary
// update succeeded. The caller can detect this and retry just the twin.
type PartialPropagationError struct {
	PrimaryKind Kind
	PrimaryID   int
	TwinKind    Kind
	TwinID      int
	Err         error
}

func (e *PartialPropagationError) Error() string {
	return fmt.Sprintf("reconcile: %s %d updated but twin %s %d failed: %v",
		e.PrimaryKind, e.PrimaryID, e.TwinKind, e.TwinID, e.Err)
}

func (e *PartialPropagationError) Unwrap() error { return e.Err }
