package queue

import "time"

// JobType identifies a kind of background maintenance job (SPEC_FULL §6).
// TimeClock's background work is entirely schedule-driven (no event fans
// out into async jobs the way a trading engine's state changes do), so
// every JobType here corresponds to one of the scheduler's fixed cadences.
type JobType string

const (
	// JobTypeWALCheckpoint runs sqlite's WAL checkpoint hourly to keep the
	// -wal file from growing unbounded under continuous scan traffic.
	JobTypeWALCheckpoint JobType = "wal_checkpoint"
	// JobTypeRawEntriesExport writes the full active time_entries table to
	// the configured CSV export path once a day (spec §6).
	JobTypeRawEntriesExport JobType = "raw_entries_export"
	// JobTypeBackupUpload pushes the sqlite file to off-device object
	// storage once a day, when backup config is present.
	JobTypeBackupUpload JobType = "backup_upload"
	// JobTypeMaintenanceSweep runs AppState.GCExpired once a day.
	JobTypeMaintenanceSweep JobType = "maintenance_sweep"
)

// Priority represents job priority.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// Job represents a queued job.
type Job struct {
	ID          string
	Type        JobType
	Priority    Priority
	Payload     map[string]interface{}
	CreatedAt   time.Time
	AvailableAt time.Time
	Retries     int
	MaxRetries  int
}

// Queue is the interface for job queue operations.
type Queue interface {
	Enqueue(job *Job) error
	Dequeue() (*Job, error)
	Size() int
}
