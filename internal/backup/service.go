package backup

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/randhum/timeclock/internal/config"
)

// Service drives the daily off-device backup upload (SPEC_FULL §6): it
// reads the kiosk's sqlite file from disk and pushes it to object storage
// under a date-stamped key, so a lost or corrupted kiosk can be restored
// from the most recent prior day.
type Service struct {
	client *Client
	dbPath string
	log    zerolog.Logger
}

// NewService constructs a Service from BackupConfig. Returns (nil, nil) —
// not an error — when cfg is disabled, since backup is optional.
func NewService(cfg config.BackupConfig, dbPath string, log zerolog.Logger) (*Service, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := NewClient(cfg.AccountID, cfg.AccessKey, cfg.SecretKey, cfg.Bucket, log)
	if err != nil {
		return nil, fmt.Errorf("failed to construct backup client: %w", err)
	}

	return &Service{client: client, dbPath: dbPath, log: log.With().Str("component", "backup_service").Logger()}, nil
}

// UploadDaily uploads the sqlite file under a key stamped with today's
// date, so each day's backup is retained independently.
func (s *Service) UploadDaily(ctx context.Context, now time.Time) error {
	f, err := os.Open(s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database file for backup: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	key := fmt.Sprintf("timeclock-%s.db", now.UTC().Format("2006-01-02"))
	return s.client.Upload(ctx, key, f, info.Size())
}
