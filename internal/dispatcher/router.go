package dispatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/clock"
	"github.com/randhum/timeclock/internal/domain"
	"github.com/randhum/timeclock/internal/errs"
	"github.com/randhum/timeclock/internal/registration"
	"github.com/randhum/timeclock/internal/store"
	"github.com/randhum/timeclock/internal/tagsource"
)

// Mode is the kiosk's current UI mode, which determines what a scan means
// (spec §4.2).
type Mode string

const (
	ModeTimeClock        Mode = "timeclock"
	ModeRegister         Mode = "register"
	ModeIdentify         Mode = "identify"
	ModeAdmin            Mode = "admin"
	ModeEntryEditPending Mode = "entry_edit_pending"
)

// ScanOutcome is what handle_scan decided, for the UI adapter to render
// and for tests to assert on without a real display.
type ScanOutcome struct {
	Mode          Mode
	ClockResult   *clock.ClockResult
	ErrorMessage  string
	InfoMessage   string
	StashedTag    string // register mode: tag staged on the registration form
	EditRequested bool   // entry_edit_pending: matched, proceed to entry editor
}

// Router implements handle_scan's mode dispatch (spec §4.2). It runs
// exclusively on the EventDispatcher loop thread; all its Store/Engine
// calls are therefore already serialized by the loop.
type Router struct {
	store    *store.Store
	engine   *clock.Engine
	register *registration.Engine
	tags     tagsource.TagSource
	state    *AppState
	log      zerolog.Logger

	mode       Mode
	stashedTag string
}

// NewRouter constructs a Router bound to its collaborators, starting in
// ModeTimeClock.
func NewRouter(s *store.Store, engine *clock.Engine, register *registration.Engine, tags tagsource.TagSource, state *AppState, log zerolog.Logger) *Router {
	return &Router{
		store:    s,
		engine:   engine,
		register: register,
		tags:     tags,
		state:    state,
		log:      log.With().Str("component", "scan_router").Logger(),
		mode:     ModeTimeClock,
	}
}

// SetMode switches the kiosk's UI mode.
func (r *Router) SetMode(m Mode) {
	r.mode = m
}

// Mode returns the current UI mode.
func (r *Router) Mode() Mode {
	return r.mode
}

// HandleScan applies debounce then mode dispatch for a single scanned
// tag (spec §4.2, handle_scan). Must be called on the EventDispatcher loop
// thread.
func (r *Router) HandleScan(ctx context.Context, tag string) ScanOutcome {
	now := time.Now()
	if r.state.ShouldDebounce(tag, now) {
		return ScanOutcome{Mode: r.mode}
	}

	switch r.mode {
	case ModeTimeClock:
		return r.handleTimeClockScan(ctx, tag, now)
	case ModeRegister:
		return r.handleRegisterScan(ctx, tag)
	case ModeIdentify:
		return r.handleIdentifyScan(ctx, tag)
	case ModeAdmin:
		return r.handleAdminScan(ctx, tag)
	case ModeEntryEditPending:
		return r.handleEntryEditPendingScan(tag, now)
	default:
		return ScanOutcome{Mode: r.mode}
	}
}

func (r *Router) handleTimeClockScan(ctx context.Context, tag string, now time.Time) ScanOutcome {
	emp, err := r.store.GetEmployeeByTag(ctx, tag)
	if err != nil {
		r.tags.IndicateError()
		return ScanOutcome{Mode: r.mode, ErrorMessage: errorMessageFor(err)}
	}

	if emp.IsAdmin {
		r.mode = ModeAdmin
		r.tags.IndicateSuccess()
		return ScanOutcome{Mode: r.mode, InfoMessage: "switched to admin mode"}
	}

	result := r.engine.PerformClockAction(ctx, *emp)
	if result.Success {
		r.state.SetLastClocked(*emp, now)
		r.tags.IndicateSuccess()
	} else {
		r.tags.IndicateError()
	}
	return ScanOutcome{Mode: r.mode, ClockResult: &result}
}

func (r *Router) handleRegisterScan(ctx context.Context, tag string) ScanOutcome {
	_, err := r.store.GetEmployeeByTag(ctx, tag)
	if err == nil {
		return ScanOutcome{Mode: r.mode, ErrorMessage: "this tag is already registered"}
	}
	if !errs.Is(err, errs.CodeUnknownTag) {
		r.tags.IndicateError()
		return ScanOutcome{Mode: r.mode, ErrorMessage: errorMessageFor(err)}
	}

	r.tags.IndicateSuccess()
	r.stashedTag = tag
	return ScanOutcome{Mode: r.mode, StashedTag: tag}
}

// CompleteRegistration submits the operator-entered name for the tag
// stashed by the most recent register-mode scan, creating the employee
// and switching back to ModeTimeClock on success (spec §4.2, "register").
// Returns an error and leaves the mode unchanged if no tag is stashed or
// registration fails (e.g. the tag was claimed by another scan meanwhile).
func (r *Router) CompleteRegistration(ctx context.Context, name string, isAdmin bool) (*domain.Employee, error) {
	if r.stashedTag == "" {
		return nil, errs.New(errs.CodeInvalidInput, "no tag is staged for registration")
	}

	emp, err := r.register.Register(ctx, name, r.stashedTag, isAdmin)
	if err != nil {
		r.tags.IndicateError()
		return nil, err
	}

	r.stashedTag = ""
	r.mode = ModeTimeClock
	r.tags.IndicateSuccess()
	return emp, nil
}

func (r *Router) handleIdentifyScan(ctx context.Context, tag string) ScanOutcome {
	emp, err := r.store.GetEmployeeByTag(ctx, tag)
	if err != nil {
		return ScanOutcome{Mode: r.mode, ErrorMessage: errorMessageFor(err)}
	}
	role := "employee"
	if emp.IsAdmin {
		role = "admin"
	}
	return ScanOutcome{Mode: r.mode, InfoMessage: emp.Name + " (" + role + ") " + emp.RFIDTag}
}

func (r *Router) handleAdminScan(ctx context.Context, tag string) ScanOutcome {
	emp, err := r.store.GetEmployeeByTag(ctx, tag)
	if err != nil {
		return ScanOutcome{Mode: r.mode, ErrorMessage: errorMessageFor(err)}
	}
	if !emp.IsAdmin {
		return ScanOutcome{Mode: r.mode, InfoMessage: "switch to clock mode"}
	}
	return ScanOutcome{Mode: r.mode}
}

func (r *Router) handleEntryEditPendingScan(tag string, now time.Time) ScanOutcome {
	if r.state.CheckPendingIdentity(tag, now) {
		return ScanOutcome{Mode: r.mode, EditRequested: true}
	}
	r.tags.IndicateError()
	return ScanOutcome{Mode: r.mode, ErrorMessage: "scanned tag does not match the pending request"}
}

func errorMessageFor(err error) string {
	switch errs.CodeOf(err) {
	case errs.CodeUnknownTag:
		return "unknown tag"
	case errs.CodeInactiveEmployee:
		return "employee is inactive"
	default:
		return "an error occurred"
	}
}
