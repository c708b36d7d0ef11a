// Package recalc implements ActionRecalculator (spec §4.4): given an
// employee's active entries in time order, it rewrites the action field
// of each so the sequence strictly alternates in, out, in, out, ...
// starting with in.
package recalc

import "github.com/randhum/timeclock/internal/domain"

// Recalculator enforces the alternation invariant over an already
// time-ordered slice of entries. It is invoked after any operation that
// can change the ordering of an employee's active entries: manual insert,
// soft delete, or timestamp edit.
type Recalculator struct{}

// New returns a Recalculator. It carries no state: the alternation rule is
// a pure function of the ordered entry sequence.
func New() *Recalculator {
	return &Recalculator{}
}

// Recalculate returns entries with Action rewritten to alternate starting
// with "in". entries must already be sorted by (timestamp ASC, id ASC);
// the caller (internal/store) guarantees this. The input slice is not
// mutated; a new slice is returned so the caller can diff old vs. new and
// only write rows whose action actually changed.
func (r *Recalculator) Recalculate(entries []domain.TimeEntry) []domain.TimeEntry {
	out := make([]domain.TimeEntry, len(entries))
	copy(out, entries)

	want := domain.ActionIn
	for i := range out {
		out[i].Action = want
		want = want.Next()
	}
	return out
}
