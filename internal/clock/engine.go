// Package clock implements ClockEngine.PerformClockAction (spec §4.3): the
// single operation a badge scan ultimately triggers. It determines the next
// action under the employee's lock, persists it, and emits a ClockResult.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/domain"
	"github.com/randhum/timeclock/internal/errs"
	"github.com/randhum/timeclock/internal/events"
	"github.com/randhum/timeclock/internal/recalc"
	"github.com/randhum/timeclock/internal/store"
)

// ClockResult is the outcome of a clock action, emitted on the EventBus so
// UI adapters (LED feedback, kiosk display) and report hooks can react.
type ClockResult struct {
	Employee domain.Employee
	Entry    domain.TimeEntry
	Error    error
	Success  bool
}

// Engine performs the clock-action state transition.
type Engine struct {
	store *store.Store
	bus   *events.Bus
	log   zerolog.Logger
}

// New constructs an Engine bound to a Store and EventBus.
func New(s *store.Store, bus *events.Bus, log zerolog.Logger) *Engine {
	return &Engine{store: s, bus: bus, log: log.With().Str("component", "clock_engine").Logger()}
}

// PerformClockAction validates the employee is active, acquires the
// employee's lock (inside Store.CreateTimeEntry), determines in/out,
// inserts the entry, and emits a ClockResult. It never returns a non-nil
// error paired with a zero-value ClockResult: a failed lookup or insert
// still yields a ClockResult{Success: false, Error: err} the caller can
// act on (e.g. drive LED failure feedback) without type-switching on err
// separately (spec §4.3, step 7).
func (e *Engine) PerformClockAction(ctx context.Context, employee domain.Employee) ClockResult {
	if !employee.Active {
		err := errs.New(errs.CodeInactiveEmployee, fmt.Sprintf("employee %d is inactive", employee.ID))
		result := ClockResult{Employee: employee, Success: false, Error: err}
		e.emit(result)
		return result
	}

	entry, err := e.store.CreateTimeEntry(ctx, employee.ID, time.Now())
	if err != nil {
		e.log.Warn().Int64("employee_id", employee.ID).Err(err).Msg("clock action failed")
		result := ClockResult{Employee: employee, Success: false, Error: err}
		e.emit(result)
		return result
	}

	result := ClockResult{Employee: employee, Entry: *entry, Success: true}
	e.log.Info().
		Int64("employee_id", employee.ID).
		Str("action", string(entry.Action)).
		Time("timestamp", entry.Timestamp).
		Msg("clock action recorded")
	e.emit(result)
	return result
}

func (e *Engine) emit(result ClockResult) {
	if e.bus == nil {
		return
	}
	e.bus.Emit(events.EventClockResult, "clock", map[string]interface{}{
		"employee_id": result.Employee.ID,
		"success":     result.Success,
		"action":      string(result.Entry.Action),
	})
}

// Recalculator returns a fresh recalc.Recalculator for use by operations
// that need to trigger recalculation outside a clock action (manual
// insert, soft delete).
func Recalculator() *recalc.Recalculator {
	return recalc.New()
}
