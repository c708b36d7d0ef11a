// Package domain defines the core data model shared by every component of
// the engine: Employee and TimeEntry. These are pure types with no
// infrastructure dependencies, following the same clean-architecture split
// the rest of the codebase uses (storage and business logic both import
// domain; domain imports neither).
package domain

import (
	"strconv"
	"time"
)

// Action is the direction of a clock event.
type Action string

const (
	ActionIn  Action = "in"
	ActionOut Action = "out"
)

// Employee is a registered badge holder.
type Employee struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"` // bookkeeping only; not part of any core invariant
	Name      string    `json:"name"`
	RFIDTag   string    `json:"rfid_tag"`
	ID        int64     `json:"id"`
	IsAdmin   bool      `json:"is_admin"`
	Active    bool      `json:"active"`
}

// TimeEntry is a single recorded clock-in or clock-out event.
type TimeEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Active     bool      `json:"active"`
}

// RawEntryExport is one row of the raw-entries CSV export (spec §6):
// entry_id;employee_id;employee_name;rfid_tag;timestamp_iso8601;action;active.
type RawEntryExport struct {
	Timestamp    time.Time
	EmployeeName string
	RFIDTag      string
	Action       Action
	EntryID      int64
	EmployeeID   int64
	Active       bool
}

// RawEntryExportHeader is the raw-entries CSV header row, verbatim per the
// one-line contract in spec §6.
var RawEntryExportHeader = []string{
	"entry_id", "employee_id", "employee_name", "rfid_tag", "timestamp_iso8601", "action", "active",
}

// CSVRow renders e as one raw-entries CSV data row, matching
// RawEntryExportHeader column-for-column.
func (e RawEntryExport) CSVRow() []string {
	return []string{
		strconv.FormatInt(e.EntryID, 10),
		strconv.FormatInt(e.EmployeeID, 10),
		e.EmployeeName,
		e.RFIDTag,
		e.Timestamp.UTC().Format(time.RFC3339),
		string(e.Action),
		strconv.FormatBool(e.Active),
	}
}

// Next returns the action that should follow this one under strict
// in/out alternation.
func (a Action) Next() Action {
	if a == ActionIn {
		return ActionOut
	}
	return ActionIn
}

// Before orders two entries by (timestamp ASC, id ASC), the canonical
// ordering used everywhere entries are read: persistence, recalculation,
// and report pairing.
func Before(a, b TimeEntry) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}
