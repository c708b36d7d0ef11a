package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		profile  Profile
		contains []string // Strings that should be present in connection string
	}{
		{
			name:    "standard profile",
			path:    "/path/to/db.sqlite",
			profile: ProfileStandard,
			contains: []string{
				"/path/to/db.sqlite",
				"journal_mode(WAL)",
				"synchronous(NORMAL)",
				"auto_vacuum(INCREMENTAL)",
				"temp_store(MEMORY)",
				"foreign_keys(1)",
				"wal_autocheckpoint(1000)",
				"cache_size(-64000)",
			},
		},
		{
			name:    "ledger profile",
			path:    "/path/to/ledger.sqlite",
			profile: ProfileLedger,
			contains: []string{
				"/path/to/ledger.sqlite",
				"journal_mode(WAL)",
				"synchronous(FULL)",
				"auto_vacuum(NONE)",
				"foreign_keys(1)",
			},
		},
		{
			name:    "cache profile",
			path:    "/path/to/cache.sqlite",
			profile: ProfileCache,
			contains: []string{
				"/path/to/cache.sqlite",
				"journal_mode(WAL)",
				"synchronous(OFF)",
				"auto_vacuum(FULL)",
				"temp_store(MEMORY)",
				"foreign_keys(1)",
			},
		},
		{
			name:    "empty profile defaults",
			path:    "/path/to/db.sqlite",
			profile: "",
			contains: []string{
				"/path/to/db.sqlite",
				"journal_mode(WAL)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := buildConnectionString(tt.path, tt.profile)

			// Should start with the path
			assert.True(t, strings.HasPrefix(result, tt.path), "Connection string should start with path")

			// Should contain all expected strings
			for _, expected := range tt.contains {
				assert.Contains(t, result, expected, "Connection string should contain %s", expected)
			}

			// Should not contain conflicting settings
			if tt.profile == ProfileLedger {
				assert.NotContains(t, result, "synchronous(OFF)", "Ledger should not have synchronous(OFF)")
				assert.NotContains(t, result, "synchronous(NORMAL)", "Ledger should not have synchronous(NORMAL)")
			}

			if tt.profile == ProfileCache {
				assert.NotContains(t, result, "synchronous(FULL)", "Cache should not have synchronous(FULL)")
				assert.NotContains(t, result, "synchronous(NORMAL)", "Cache should not have synchronous(NORMAL)")
			}

			if tt.profile == ProfileStandard {
				assert.NotContains(t, result, "synchronous(OFF)", "Standard should not have synchronous(OFF)")
				assert.NotContains(t, result, "synchronous(FULL)", "Standard should not have synchronous(FULL)")
			}
		})
	}
}

func TestNewAndMigrate(t *testing.T) {
	dir := t.TempDir()
	db, err := New(Config{
		Path:    filepath.Join(dir, "timeclock.db"),
		Profile: ProfileLedger,
		Name:    "timeclock",
	})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	// Idempotent: re-running must not error.
	require.NoError(t, db.Migrate())

	_, err = db.Exec(`INSERT INTO employees (name, rfid_tag, is_admin) VALUES (?, ?, 1)`, "Alice", "AAAA1111")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM employees`).Scan(&count))
	assert.Equal(t, 1, count)

	_, err = db.Exec(`INSERT INTO employees (name, rfid_tag, is_admin) VALUES (?, ?, 0)`, "Bob", "AAAA1111")
	assert.Error(t, err, "rfid_tag uniqueness must be enforced")
}

func TestHealthCheckAndQuickCheck(t *testing.T) {
	dir := t.TempDir()
	db, err := New(Config{Path: filepath.Join(dir, "timeclock.db"), Name: "timeclock"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	assert.NoError(t, db.QuickCheck(ctx))
	assert.NoError(t, db.HealthCheck(ctx))
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	dir := t.TempDir()
	db, err := New(Config{Path: filepath.Join(dir, "timeclock.db"), Name: "timeclock"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	wantErr := assert.AnError
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, execErr := tx.Exec(`INSERT INTO employees (name, rfid_tag, is_admin) VALUES ('X', 'ZZZZ9999', 1)`); execErr != nil {
			return execErr
		}
		return wantErr
	})
	assert.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM employees WHERE rfid_tag = 'ZZZZ9999'`).Scan(&count))
	assert.Equal(t, 0, count, "failed transaction must roll back its insert")
}

func TestGetStats(t *testing.T) {
	dir := t.TempDir()
	db, err := New(Config{Path: filepath.Join(dir, "timeclock.db"), Name: "timeclock"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageSize, int64(0))
}
