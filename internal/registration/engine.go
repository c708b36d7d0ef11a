// Package registration implements the register-mode completion step (spec
// §4.2, mode "register"): turning a stashed tag plus operator-entered name
// into a new employee record, and announcing it on the event bus so other
// components (e.g. a future roster display) can react without polling the
// store.
package registration

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/domain"
	"github.com/randhum/timeclock/internal/events"
	"github.com/randhum/timeclock/internal/store"
)

// Engine completes employee registration.
type Engine struct {
	store *store.Store
	bus   *events.Bus
	log   zerolog.Logger
}

// New constructs a registration Engine bound to a Store and EventBus.
func New(s *store.Store, bus *events.Bus, log zerolog.Logger) *Engine {
	return &Engine{store: s, bus: bus, log: log.With().Str("component", "registration").Logger()}
}

// Register creates the employee and emits EventEmployeeRegistered on
// success. tag must already have been validated as unregistered by the
// caller's register-mode scan (spec §4.2 step "register"); Register
// re-checks via Store.CreateEmployee regardless, since the tag could have
// been claimed between the stash and the form submit.
func (e *Engine) Register(ctx context.Context, name, tag string, isAdmin bool) (*domain.Employee, error) {
	emp, err := e.store.CreateEmployee(ctx, name, tag, isAdmin)
	if err != nil {
		e.log.Warn().Err(err).Str("tag", tag).Msg("registration failed")
		return nil, err
	}

	e.log.Info().Int64("employee_id", emp.ID).Str("name", emp.Name).Msg("employee registered")
	if e.bus != nil {
		e.bus.Emit(events.EventEmployeeRegistered, "registration", map[string]interface{}{
			"employee_id": emp.ID,
			"name":        emp.Name,
			"is_admin":    emp.IsAdmin,
		})
	}
	return emp, nil
}
