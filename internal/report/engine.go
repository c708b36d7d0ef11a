// Package report implements ReportEngine (spec §4.5): deterministic FIFO
// pairing of an employee's active entries into sessions, grouped by local
// calendar day, with cross-midnight support. Pure domain logic, no
// infrastructure dependency — the same "no infrastructure in domain logic"
// layering rule the teacher's internal/domain package follows.
package report

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/domain"
	"github.com/randhum/timeclock/internal/utils"
)

// Session is a paired (or still-open) clock-in/clock-out span.
type Session struct {
	ClockInTS   time.Time
	ClockOutTS  *time.Time
	Duration    *time.Duration
	ClockInID   int64
	ClockOutID  *int64
}

// DayReport groups sessions by the local calendar date of their clock-in.
type DayReport struct {
	Date          utils.CivilDate
	Sessions      []Session
	DailyTotal    time.Duration
	HasOpenSession bool
}

// Totals summarizes a Report's period.
type Totals struct {
	TotalDuration      time.Duration
	DayCountWithWork   int
	AveragePerDay      time.Duration
}

// Report is the full output for one employee over one period.
type Report struct {
	Employee domain.Employee
	Start    time.Time
	End      time.Time
	Days     []DayReport
	Totals   Totals
}

// Engine pairs entries into sessions and assembles a Report.
type Engine struct {
	log zerolog.Logger
}

// New constructs a report Engine.
func New(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "report_engine").Logger()}
}

// Build runs the FIFO pairing algorithm over entries (already filtered to
// one employee's active entries) and assembles per-day and period totals.
// entries need not be pre-sorted; Build re-sorts by (timestamp ASC, id ASC)
// to guarantee determinism regardless of caller order (spec §4.5, step 1).
func (e *Engine) Build(employee domain.Employee, start, end time.Time, entries []domain.TimeEntry) Report {
	sorted := make([]domain.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return domain.Before(sorted[i], sorted[j]) })

	byDate := make(map[utils.CivilDate]*DayReport)
	var order []utils.CivilDate

	dayFor := func(d utils.CivilDate) *DayReport {
		if dr, ok := byDate[d]; ok {
			return dr
		}
		dr := &DayReport{Date: d}
		byDate[d] = dr
		order = append(order, d)
		return dr
	}

	var pendingIns []domain.TimeEntry
	for _, entry := range sorted {
		switch entry.Action {
		case domain.ActionIn:
			pendingIns = append(pendingIns, entry)
		case domain.ActionOut:
			if len(pendingIns) == 0 {
				e.log.Warn().
					Int64("employee_id", employee.ID).
					Int64("entry_id", entry.ID).
					Msg("out without prior in")
				continue
			}
			in := pendingIns[0]
			pendingIns = pendingIns[1:]

			outID := entry.ID
			duration := entry.Timestamp.Sub(in.Timestamp)
			session := Session{
				ClockInTS:  in.Timestamp,
				ClockOutTS: &entry.Timestamp,
				Duration:   &duration,
				ClockInID:  in.ID,
				ClockOutID: &outID,
			}

			dr := dayFor(utils.DateOf(in.Timestamp))
			dr.Sessions = append(dr.Sessions, session)
			dr.DailyTotal += duration
		}
	}

	// Remaining pending_ins are open sessions: assigned to their clock-in
	// day, contribute 0 to daily totals (spec §4.5, step 4).
	for _, in := range pendingIns {
		dr := dayFor(utils.DateOf(in.Timestamp))
		dr.Sessions = append(dr.Sessions, Session{ClockInTS: in.Timestamp, ClockInID: in.ID})
		dr.HasOpenSession = true
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	var days []DayReport
	var totalDuration time.Duration
	daysWithWork := 0
	for _, d := range order {
		dr := byDate[d]
		sort.Slice(dr.Sessions, func(i, j int) bool { return dr.Sessions[i].ClockInTS.Before(dr.Sessions[j].ClockInTS) })
		if dr.DailyTotal > 0 {
			daysWithWork++
		}
		totalDuration += dr.DailyTotal
		days = append(days, *dr)
	}

	var avg time.Duration
	if daysWithWork > 0 {
		avg = totalDuration / time.Duration(daysWithWork)
	}

	return Report{
		Employee: employee,
		Start:    start,
		End:      end,
		Days:     days,
		Totals: Totals{
			TotalDuration:    totalDuration,
			DayCountWithWork: daysWithWork,
			AveragePerDay:    avg,
		},
	}
}
