// Package config loads TimeClock's runtime configuration from environment
// variables (optionally via a .env file), the same env-first approach the
// rest of the stack uses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultDataDir is used when neither TIME_CLOCK_DATA_DIR nor the CLI flag
// is set.
const defaultDataDir = "./data"

// Config holds all runtime settings for the kiosk process.
type Config struct {
	DataDir             string        // Resolved absolute path to the ledger/database directory
	LogLevel            string        // zerolog level name
	ExportPath          string        // TIME_CLOCK_EXPORT_PATH override for raw-entries CSV export
	Port                int           // HTTP admin/status server port
	DebounceWindow      time.Duration // scan debounce window (spec §4.2)
	LastClockedTTL      time.Duration // AppState "last clocked employee" expiry (spec §5)
	PendingIdentityTTL  time.Duration // AppState pending-identification expiry (spec §5)
	Backup              BackupConfig
}

// BackupConfig configures the optional off-device object-storage backup.
// Zero value means backup is disabled (not an error, see SPEC_FULL §6).
type BackupConfig struct {
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Enabled reports whether enough credentials were supplied to attempt
// off-device backup.
func (b BackupConfig) Enabled() bool {
	return b.AccountID != "" && b.AccessKey != "" && b.SecretKey != "" && b.Bucket != ""
}

// Load reads configuration from the environment (after loading an optional
// .env file). An optional dataDirFlag, when non-empty, overrides
// TIME_CLOCK_DATA_DIR — this is how the CLI --data-dir flag takes highest
// priority.
func Load(dataDirFlag ...string) (*Config, error) {
	// .env is optional; ignore a missing file, surface nothing else either —
	// it is a convenience for local development, not a requirement.
	_ = godotenv.Load()

	dataDir := os.Getenv("TIME_CLOCK_DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir
	}
	if len(dataDirFlag) > 0 && dataDirFlag[0] != "" {
		dataDir = dataDirFlag[0]
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory to absolute path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	port, err := intEnv("TIME_CLOCK_PORT", 8080)
	if err != nil {
		return nil, err
	}
	debounceMs, err := intEnv("TIME_CLOCK_DEBOUNCE_MS", 1200)
	if err != nil {
		return nil, err
	}
	lastClockedS, err := intEnv("TIME_CLOCK_LAST_CLOCKED_TTL_S", 120)
	if err != nil {
		return nil, err
	}
	pendingIDS, err := intEnv("TIME_CLOCK_PENDING_ID_TTL_S", 30)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:            absDataDir,
		LogLevel:           envOr("TIME_CLOCK_LOG_LEVEL", "info"),
		ExportPath:         os.Getenv("TIME_CLOCK_EXPORT_PATH"),
		Port:               port,
		DebounceWindow:     time.Duration(debounceMs) * time.Millisecond,
		LastClockedTTL:     time.Duration(lastClockedS) * time.Second,
		PendingIdentityTTL: time.Duration(pendingIDS) * time.Second,
		Backup: BackupConfig{
			AccountID: os.Getenv("TIME_CLOCK_BACKUP_ACCOUNT_ID"),
			AccessKey: os.Getenv("TIME_CLOCK_BACKUP_ACCESS_KEY"),
			SecretKey: os.Getenv("TIME_CLOCK_BACKUP_SECRET_KEY"),
			Bucket:    os.Getenv("TIME_CLOCK_BACKUP_BUCKET"),
		},
	}

	return cfg, nil
}

// DBPath returns the path to the ledger database file within DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "timeclock.db")
}

// RawEntriesExportPath returns the destination for the raw-entries CSV
// export: TIME_CLOCK_EXPORT_PATH when set, else a default file in DataDir.
func (c *Config) RawEntriesExportPath() string {
	if c.ExportPath != "" {
		return c.ExportPath
	}
	return filepath.Join(c.DataDir, "raw_entries_export.csv")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return n, nil
}
