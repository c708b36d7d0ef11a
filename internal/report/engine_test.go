package report

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randhum/timeclock/internal/domain"
)

func mkEntry(id int64, ts time.Time, action domain.Action) domain.TimeEntry {
	return domain.TimeEntry{ID: id, Timestamp: ts, Action: action, Active: true}
}

func TestBuild_SimpleClosedSession(t *testing.T) {
	e := New(zerolog.Nop())
	emp := domain.Employee{ID: 1, Name: "Alice"}
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local)

	entries := []domain.TimeEntry{
		mkEntry(1, day.Add(9*time.Hour), domain.ActionIn),
		mkEntry(2, day.Add(17*time.Hour), domain.ActionOut),
	}

	r := e.Build(emp, day, day.Add(24*time.Hour), entries)
	require.Len(t, r.Days, 1)
	require.Len(t, r.Days[0].Sessions, 1)
	assert.Equal(t, 8*time.Hour, *r.Days[0].Sessions[0].Duration)
	assert.False(t, r.Days[0].HasOpenSession)
	assert.Equal(t, 8*time.Hour, r.Totals.TotalDuration)
	assert.Equal(t, 1, r.Totals.DayCountWithWork)
}

func TestBuild_CrossMidnightSessionCountsOnStartDay(t *testing.T) {
	e := New(zerolog.Nop())
	emp := domain.Employee{ID: 1, Name: "Alice"}
	day1 := time.Date(2026, 3, 5, 22, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 6, 2, 0, 0, 0, time.Local)

	entries := []domain.TimeEntry{
		mkEntry(1, day1, domain.ActionIn),
		mkEntry(2, day2, domain.ActionOut),
	}

	r := e.Build(emp, day1.Add(-time.Hour), day2.Add(time.Hour), entries)
	require.Len(t, r.Days, 1, "cross-midnight session must be assigned to the clock-in day only")
	assert.Equal(t, 4*time.Hour, r.Days[0].DailyTotal)
}

func TestBuild_OpenSessionHasNilDurationAndZeroesTotal(t *testing.T) {
	e := New(zerolog.Nop())
	emp := domain.Employee{ID: 1, Name: "Alice"}
	ts := time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local)

	entries := []domain.TimeEntry{mkEntry(1, ts, domain.ActionIn)}

	r := e.Build(emp, ts.Add(-time.Hour), ts.Add(time.Hour), entries)
	require.Len(t, r.Days, 1)
	require.True(t, r.Days[0].HasOpenSession)
	require.Len(t, r.Days[0].Sessions, 1)
	assert.Nil(t, r.Days[0].Sessions[0].ClockOutTS)
	assert.Nil(t, r.Days[0].Sessions[0].Duration)
	assert.Equal(t, time.Duration(0), r.Days[0].DailyTotal)
}

func TestBuild_OutWithoutPriorInIsSkipped(t *testing.T) {
	e := New(zerolog.Nop())
	emp := domain.Employee{ID: 1, Name: "Alice"}
	ts := time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local)

	// A stray "out" with no matching "in" (shouldn't normally occur given
	// the alternation invariant, but the pairing algorithm must still
	// handle it defensively per spec §4.5 step 3).
	entries := []domain.TimeEntry{mkEntry(1, ts, domain.ActionOut)}

	r := e.Build(emp, ts.Add(-time.Hour), ts.Add(time.Hour), entries)
	assert.Empty(t, r.Days)
}

func TestBuild_MultipleDaysAveragePerDay(t *testing.T) {
	e := New(zerolog.Nop())
	emp := domain.Employee{ID: 1, Name: "Alice"}
	day1 := time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 6, 9, 0, 0, 0, time.Local)

	entries := []domain.TimeEntry{
		mkEntry(1, day1, domain.ActionIn),
		mkEntry(2, day1.Add(4*time.Hour), domain.ActionOut),
		mkEntry(3, day2, domain.ActionIn),
		mkEntry(4, day2.Add(6*time.Hour), domain.ActionOut),
	}

	r := e.Build(emp, day1.Add(-time.Hour), day2.Add(24*time.Hour), entries)
	require.Len(t, r.Days, 2)
	assert.Equal(t, 10*time.Hour, r.Totals.TotalDuration)
	assert.Equal(t, 2, r.Totals.DayCountWithWork)
	assert.Equal(t, 5*time.Hour, r.Totals.AveragePerDay)
}

func TestBuild_Deterministic(t *testing.T) {
	e := New(zerolog.Nop())
	emp := domain.Employee{ID: 1, Name: "Alice"}
	day := time.Date(2026, 3, 5, 9, 0, 0, 0, time.Local)

	entries := []domain.TimeEntry{
		mkEntry(2, day.Add(17*time.Hour), domain.ActionOut),
		mkEntry(1, day, domain.ActionIn),
	}

	r1 := e.Build(emp, day.Add(-time.Hour), day.Add(24*time.Hour), entries)
	r2 := e.Build(emp, day.Add(-time.Hour), day.Add(24*time.Hour), entries)
	assert.Equal(t, r1.Totals.TotalDuration, r2.Totals.TotalDuration)
	assert.Equal(t, r1.Days[0].Sessions[0].Duration, r2.Days[0].Sessions[0].Duration)
}

func TestBuild_EmptyEntries(t *testing.T) {
	e := New(zerolog.Nop())
	emp := domain.Employee{ID: 1, Name: "Alice"}
	now := time.Now()
	r := e.Build(emp, now.Add(-time.Hour), now, nil)
	assert.Empty(t, r.Days)
	assert.Equal(t, time.Duration(0), r.Totals.TotalDuration)
	assert.Equal(t, time.Duration(0), r.Totals.AveragePerDay)
}
