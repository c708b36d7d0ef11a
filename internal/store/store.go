// Package store implements the append-only TimeClock ledger on top of
// internal/database: employee lookups, clock-action persistence with
// per-employee locking, soft-delete, manual entry insertion, and
// recalculation (spec §3, §4.3, §4.4).
//
// All writes happen inside a database transaction with explicit commit,
// retried on transient SQLITE_BUSY/SQLITE_LOCKED errors with the backoff
// schedule from spec §4.3: 50ms, 100ms, 200ms, 400ms, then fail.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/database"
	"github.com/randhum/timeclock/internal/domain"
	"github.com/randhum/timeclock/internal/errs"
)

// retrySchedule is the exact backoff sequence from spec §4.3.
var retrySchedule = []time.Duration{
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
}

// Store is the ledger's persistence layer. It owns per-employee locks for
// process lifetime (spec §9, "Employee lock") and serializes every
// read-then-write operation on an employee's entries through them.
type Store struct {
	db  *database.DB
	log zerolog.Logger

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// New wraps an already-migrated *database.DB as a Store.
func New(db *database.DB, log zerolog.Logger) *Store {
	return &Store{
		db:    db,
		log:   log.With().Str("component", "store").Logger(),
		locks: make(map[int64]*sync.Mutex),
	}
}

// employeeLock returns the mutex guarding employeeID, creating it on first
// use. The lock lives for the lifetime of the process (spec §9).
func (s *Store) employeeLock(employeeID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[employeeID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[employeeID] = l
	}
	return l
}

// withRetry runs fn inside a transaction, retrying on transient SQLITE_BUSY
// / SQLITE_LOCKED errors per the spec §4.3 backoff schedule. A non-transient
// error (including any typed *errs.Error fn returns) propagates as returned
// by database.WithTransaction, which wraps it with %w, so callers can still
// errors.As/errs.Is against it; only exhaustion of the
// retry schedule surfaces as errs.CodeStorageUnavailable.
func (s *Store) withRetry(ctx context.Context, fn func(*sql.Tx) error) error {
	var lastErr error
	attempts := append([]time.Duration{0}, retrySchedule...)

	for i, wait := range attempts {
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return errs.Wrap(errs.CodeStorageUnavailable, "context cancelled during retry backoff", ctx.Err())
			}
		}

		err := database.WithTransaction(s.db.Conn(), fn)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isTransient(err) {
			return err
		}

		s.log.Warn().Int("attempt", i+1).Err(err).Msg("transient storage error, retrying")
	}

	return errs.Wrap(errs.CodeStorageUnavailable, "storage retry budget exhausted", lastErr)
}

func isTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "busy") ||
		strings.Contains(msg, "locked")
}

// WALCheckpoint forces a WAL checkpoint, exposed for the hourly
// maintenance job (SPEC_FULL §6).
func (s *Store) WALCheckpoint() error {
	return s.db.WALCheckpoint("")
}

// GetEmployeeByTag looks up an active employee by normalized RFID tag.
// Returns errs.CodeUnknownTag if no row matches (active or not), and
// errs.CodeInactiveEmployee if the tag belongs to a retired employee.
func (s *Store) GetEmployeeByTag(ctx context.Context, tag string) (*domain.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, rfid_tag, is_admin, active, created_at, updated_at FROM employees WHERE rfid_tag = ?`, tag)

	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.CodeUnknownTag, fmt.Sprintf("no employee registered with tag %q", tag))
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to query employee by tag", err)
	}
	if !emp.Active {
		return nil, errs.New(errs.CodeInactiveEmployee, fmt.Sprintf("employee %d is inactive", emp.ID))
	}
	return emp, nil
}

// GetEmployeeByID looks up an employee regardless of active status.
func (s *Store) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, rfid_tag, is_admin, active, created_at, updated_at FROM employees WHERE id = ?`, id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.CodeNotFound, fmt.Sprintf("employee %d not found", id))
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to query employee by id", err)
	}
	return emp, nil
}

// GetEmployeeByName looks up an employee regardless of active status, for
// the admin CLI's --name lookups. Exact match, case-sensitive.
func (s *Store) GetEmployeeByName(ctx context.Context, name string) (*domain.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, rfid_tag, is_admin, active, created_at, updated_at FROM employees WHERE name = ?`, name)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.New(errs.CodeNotFound, fmt.Sprintf("no employee named %q", name))
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to query employee by name", err)
	}
	return emp, nil
}

func scanEmployee(row *sql.Row) (*domain.Employee, error) {
	var e domain.Employee
	var isAdmin, active int
	var createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.Name, &e.RFIDTag, &isAdmin, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.IsAdmin = isAdmin != 0
	e.Active = active != 0
	e.CreatedAt, _ = time.Parse(sqliteTimeLayout, createdAt)
	e.UpdatedAt, _ = time.Parse(sqliteTimeLayout, updatedAt)
	return &e, nil
}

// sqliteTimeLayout matches the format SQLite's strftime('%Y-%m-%dT%H:%M:%fZ')
// produces for column defaults.
const sqliteTimeLayout = "2006-01-02T15:04:05.000Z"

// GetAdminCount returns the number of active employees with IsAdmin set.
// The "first user must be admin" rule (spec §4.6) is enforced by
// CreateEmployee from the total employee count, not from this value.
func (s *Store) GetAdminCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE is_admin = 1 AND active = 1`).Scan(&n)
	if err != nil {
		return 0, errs.Wrap(errs.CodeStorageTransient, "failed to count admins", err)
	}
	return n, nil
}

// CreateEmployee registers a new employee. Fails with errs.CodeDuplicateTag
// if the normalized tag is already in use (active or not, invariant 1),
// and errs.CodeFirstUserMustBeAdmin if this would be the first employee
// and is_admin is false (spec §4.6).
func (s *Store) CreateEmployee(ctx context.Context, name, tag string, isAdmin bool) (*domain.Employee, error) {
	name = domain.NormalizeName(name)
	tag = domain.NormalizeTag(tag)
	if !domain.ValidateName(name) {
		return nil, errs.New(errs.CodeInvalidInput, "invalid employee name")
	}
	if !domain.ValidateTag(tag) {
		return nil, errs.New(errs.CodeInvalidInput, "invalid rfid tag")
	}

	var created *domain.Employee
	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		var existing int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM employees WHERE rfid_tag = ?`, tag).Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			return errs.New(errs.CodeDuplicateTag, fmt.Sprintf("tag %q already registered", tag))
		}

		var totalEmployees int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM employees`).Scan(&totalEmployees); err != nil {
			return err
		}
		if totalEmployees == 0 && !isAdmin {
			return errs.New(errs.CodeFirstUserMustBeAdmin, "the first registered employee must be an admin")
		}

		res, err := tx.Exec(`INSERT INTO employees (name, rfid_tag, is_admin, active) VALUES (?, ?, ?, 1)`,
			name, tag, boolToInt(isAdmin))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		now := time.Now()
		created = &domain.Employee{ID: id, Name: name, RFIDTag: tag, IsAdmin: isAdmin, Active: true, CreatedAt: now, UpdatedAt: now}
		return nil
	})
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			return nil, e
		}
		return nil, err
	}
	return created, nil
}

// ChangeEmployeeName renames an employee (admin CLI operation), stamping
// updated_at. Does not require the employee lock: it never touches
// time_entries ordering.
func (s *Store) ChangeEmployeeName(ctx context.Context, employeeID int64, newName string) error {
	newName = domain.NormalizeName(newName)
	if !domain.ValidateName(newName) {
		return errs.New(errs.CodeInvalidInput, "invalid employee name")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET name = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now') WHERE id = ?`,
		newName, employeeID)
	if err != nil {
		return errs.Wrap(errs.CodeStorageTransient, "failed to rename employee", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Wrap(errs.CodeStorageTransient, "failed to confirm rename", err)
	}
	if n == 0 {
		return errs.New(errs.CodeNotFound, fmt.Sprintf("employee %d not found", employeeID))
	}
	return nil
}

// GetLastActiveEntry returns the most recent active entry for an employee
// ordered by (timestamp, id), or nil if there are none.
func (s *Store) GetLastActiveEntry(ctx context.Context, employeeID int64) (*domain.TimeEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, employee_id, timestamp, action, active FROM time_entries
		 WHERE employee_id = ? AND active = 1
		 ORDER BY timestamp DESC, id DESC LIMIT 1`, employeeID)
	entry, err := scanTimeEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to query last active entry", err)
	}
	return entry, nil
}

func scanTimeEntry(row *sql.Row) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var active int
	var ts string
	if err := row.Scan(&e.ID, &e.EmployeeID, &ts, &e.Action, &active); err != nil {
		return nil, err
	}
	e.Active = active != 0
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	return &e, nil
}

// CreateTimeEntry determines the action under the employee's lock (in if
// there is no active last entry or it was "out", else out) and inserts it
// in a single critical section (spec §4.3, invariant 2).
func (s *Store) CreateTimeEntry(ctx context.Context, employeeID int64, timestamp time.Time) (*domain.TimeEntry, error) {
	if !domain.ValidateTimestamp(timestamp, time.Now()) {
		return nil, errs.New(errs.CodeInvalidInput, "timestamp out of acceptable range")
	}

	lock := s.employeeLock(employeeID)
	lock.Lock()
	defer lock.Unlock()

	var created *domain.TimeEntry
	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		last, err := queryLastActiveEntryTx(tx, employeeID)
		if err != nil {
			return err
		}

		action := domain.ActionIn
		if last != nil && last.Action == domain.ActionIn {
			action = domain.ActionOut
		}

		res, err := tx.Exec(`INSERT INTO time_entries (employee_id, timestamp, action, active) VALUES (?, ?, ?, 1)`,
			employeeID, timestamp.Format(time.RFC3339Nano), action)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created = &domain.TimeEntry{ID: id, EmployeeID: employeeID, Timestamp: timestamp, Action: action, Active: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func queryLastActiveEntryTx(tx *sql.Tx, employeeID int64) (*domain.TimeEntry, error) {
	row := tx.QueryRow(`SELECT id, employee_id, timestamp, action, active FROM time_entries
		 WHERE employee_id = ? AND active = 1
		 ORDER BY timestamp DESC, id DESC LIMIT 1`, employeeID)
	var e domain.TimeEntry
	var active int
	var ts string
	err := row.Scan(&e.ID, &e.EmployeeID, &ts, &e.Action, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Active = active != 0
	e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	return &e, nil
}

// InsertManualEntry inserts an entry at an arbitrary chronological
// position (editor use) with a placeholder "in" action, then triggers
// recalculation of the employee's whole active sequence, which assigns
// the entry its action from its position so alternation holds
// (spec §4.3, "insert_manual_entry").
func (s *Store) InsertManualEntry(ctx context.Context, employeeID int64, timestamp time.Time, recalc Recalculator) (*domain.TimeEntry, error) {
	if !domain.ValidateTimestamp(timestamp, time.Now()) {
		return nil, errs.New(errs.CodeInvalidInput, "timestamp out of acceptable range")
	}

	lock := s.employeeLock(employeeID)
	lock.Lock()
	defer lock.Unlock()

	var created *domain.TimeEntry
	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO time_entries (employee_id, timestamp, action, active) VALUES (?, ?, ?, 1)`,
			employeeID, timestamp.Format(time.RFC3339Nano), domain.ActionIn)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created = &domain.TimeEntry{ID: id, EmployeeID: employeeID, Timestamp: timestamp, Action: domain.ActionIn, Active: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.recalculateLocked(ctx, employeeID, recalc); err != nil {
		return nil, err
	}
	return created, nil
}

// SoftDeleteEntry marks an entry inactive and recalculates the employee's
// remaining sequence so alternation still holds.
func (s *Store) SoftDeleteEntry(ctx context.Context, entryID, employeeID int64, recalc Recalculator) error {
	lock := s.employeeLock(employeeID)
	lock.Lock()
	defer lock.Unlock()

	err := s.withRetry(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE time_entries SET active = 0 WHERE id = ? AND employee_id = ?`, entryID, employeeID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.New(errs.CodeNotFound, fmt.Sprintf("time entry %d not found for employee %d", entryID, employeeID))
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.recalculateLocked(ctx, employeeID, recalc)
}

// Recalculator rewrites action fields so an ordered entry sequence
// alternates in/out starting with in (spec §4.4). Implemented by
// internal/recalc, passed in here to avoid an import cycle.
type Recalculator interface {
	Recalculate(entries []domain.TimeEntry) []domain.TimeEntry
}

// recalculateLocked must be called with the employee's lock already held.
func (s *Store) recalculateLocked(ctx context.Context, employeeID int64, recalc Recalculator) error {
	return s.withRetry(ctx, func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT id, employee_id, timestamp, action, active FROM time_entries
			WHERE employee_id = ? AND active = 1`, employeeID)
		if err != nil {
			return err
		}
		entries, err := collectEntries(rows)
		if err != nil {
			return err
		}

		sort.Slice(entries, func(i, j int) bool { return domain.Before(entries[i], entries[j]) })

		rewritten := recalc.Recalculate(entries)
		for i, e := range rewritten {
			if e.Action == entries[i].Action {
				continue // no-op: this entry's action didn't change
			}
			if _, err := tx.Exec(`UPDATE time_entries SET action = ? WHERE id = ?`, e.Action, e.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func collectEntries(rows *sql.Rows) ([]domain.TimeEntry, error) {
	defer rows.Close()
	var entries []domain.TimeEntry
	for rows.Next() {
		var e domain.TimeEntry
		var active int
		var ts string
		if err := rows.Scan(&e.ID, &e.EmployeeID, &ts, &e.Action, &active); err != nil {
			return nil, err
		}
		e.Active = active != 0
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListEntries returns an employee's active entries in [since, until],
// ordered (timestamp ASC, id ASC) per spec §4.3.
func (s *Store) ListEntries(ctx context.Context, employeeID int64, since, until time.Time) ([]domain.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, timestamp, action, active FROM time_entries
		 WHERE employee_id = ? AND active = 1 AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC, id ASC`,
		employeeID, since.Format(time.RFC3339Nano), until.Format(time.RFC3339Nano))
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to list entries", err)
	}
	return collectEntries(rows)
}

// ListAllActiveEntries returns every active entry across all employees in
// [since, until], ordered by timestamp DESC — the order the raw CSV
// export uses (spec §6).
func (s *Store) ListAllActiveEntries(ctx context.Context, since, until time.Time) ([]domain.TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, timestamp, action, active FROM time_entries
		 WHERE active = 1 AND timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp DESC, id DESC`,
		since.Format(time.RFC3339Nano), until.Format(time.RFC3339Nano))
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to list all entries", err)
	}
	return collectEntries(rows)
}

// ListRawEntryExport returns every active entry across all employees in
// [since, until], joined with its owning employee's name and tag, ordered
// by timestamp DESC — exactly the rows and order the raw-entries CSV
// export contract requires (spec §6).
func (s *Store) ListRawEntryExport(ctx context.Context, since, until time.Time) ([]domain.RawEntryExport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.employee_id, e.name, e.rfid_tag, t.timestamp, t.action, t.active
		 FROM time_entries t
		 JOIN employees e ON e.id = t.employee_id
		 WHERE t.active = 1 AND t.timestamp >= ? AND t.timestamp <= ?
		 ORDER BY t.timestamp DESC, t.id DESC`,
		since.Format(time.RFC3339Nano), until.Format(time.RFC3339Nano))
	if err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to list raw entry export", err)
	}
	defer rows.Close()

	var out []domain.RawEntryExport
	for rows.Next() {
		var row domain.RawEntryExport
		var active int
		var ts string
		if err := rows.Scan(&row.EntryID, &row.EmployeeID, &row.EmployeeName, &row.RFIDTag, &ts, &row.Action, &active); err != nil {
			return nil, errs.Wrap(errs.CodeStorageTransient, "failed to scan raw entry export row", err)
		}
		row.Active = active != 0
		row.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeStorageTransient, "failed to iterate raw entry export rows", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
