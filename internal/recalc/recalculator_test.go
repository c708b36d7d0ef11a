package recalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/randhum/timeclock/internal/domain"
)

func mkEntry(id int64, offset time.Duration, action domain.Action) domain.TimeEntry {
	return domain.TimeEntry{ID: id, Timestamp: time.Unix(0, 0).Add(offset), Action: action}
}

func TestRecalculate_AlreadyAlternating_IsNoOp(t *testing.T) {
	r := New()
	in := []domain.TimeEntry{
		mkEntry(1, 0, domain.ActionIn),
		mkEntry(2, time.Hour, domain.ActionOut),
		mkEntry(3, 2*time.Hour, domain.ActionIn),
	}
	out := r.Recalculate(in)
	for i := range in {
		assert.Equal(t, in[i].Action, out[i].Action)
	}
}

func TestRecalculate_FixesBrokenAlternation(t *testing.T) {
	r := New()
	in := []domain.TimeEntry{
		mkEntry(1, 0, domain.ActionIn),
		mkEntry(2, time.Hour, domain.ActionIn), // wrong: should be out
		mkEntry(3, 2*time.Hour, domain.ActionIn),
	}
	out := r.Recalculate(in)
	assert.Equal(t, domain.ActionIn, out[0].Action)
	assert.Equal(t, domain.ActionOut, out[1].Action)
	assert.Equal(t, domain.ActionIn, out[2].Action)
}

func TestRecalculate_AfterRemovalOfMiddleEntry(t *testing.T) {
	r := New()
	// Simulates the remaining sequence after the "out" at index 1 was
	// soft-deleted: two "in"s now adjacent, must become in/out.
	in := []domain.TimeEntry{
		mkEntry(1, 0, domain.ActionIn),
		mkEntry(3, 2*time.Hour, domain.ActionIn),
	}
	out := r.Recalculate(in)
	assert.Equal(t, domain.ActionIn, out[0].Action)
	assert.Equal(t, domain.ActionOut, out[1].Action)
}

func TestRecalculate_EmptyInput(t *testing.T) {
	r := New()
	assert.Empty(t, r.Recalculate(nil))
}

func TestRecalculate_DoesNotMutateInput(t *testing.T) {
	r := New()
	in := []domain.TimeEntry{
		mkEntry(1, 0, domain.ActionIn),
		mkEntry(2, time.Hour, domain.ActionIn),
	}
	_ = r.Recalculate(in)
	assert.Equal(t, domain.ActionIn, in[1].Action, "input slice must remain untouched")
}
