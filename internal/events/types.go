package events

import "time"

// EventType identifies the kind of domain event published on the Bus.
type EventType string

const (
	// EventClockResult fires after ClockEngine.PerformClockAction
	// completes, successfully or not (spec §4.3).
	EventClockResult EventType = "clock_result"
	// EventEmployeeRegistered fires after a new employee is created
	// (spec §4.6).
	EventEmployeeRegistered EventType = "employee_registered"
	// EventRecalculationApplied names a recalculation event (spec §4.4).
	// No component publishes it at present; recalculation runs inside the
	// store, which holds no Bus.
	EventRecalculationApplied EventType = "recalculation_applied"
)

// Event is a single published occurrence. Data carries the type-specific
// fields under their own keys (e.g. "employee_id", "success", "action" for
// a clock result), kept as a generic map so the Bus stays decoupled from
// any one payload type — deployment/report UI hooks only need to
// type-assert the keys they care about.
type Event struct {
	Timestamp time.Time
	Data      map[string]interface{}
	Type      EventType
	Module    string
}
