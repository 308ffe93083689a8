package scheduler

import (
	"context"
	"time"

	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/reliability"
)

// SettingsReader reads numeric settings.
type SettingsReader interface {
	GetFloat(key string) (float64, error)
}

// BackupUploader creates and rotates remote backups.
type BackupUploader interface {
	CreateAndUploadBackup(ctx context.Context) (reliability.BackupInfo, error)
	RotateOldBackups(ctx context.Context, retentionDays int) (int, error)
}

// DueSource lists repetition records that are due.
type DueSource interface {
	DueItems(ctx context.Context, now time.Time) ([]srs.Record, error)
	Count(ctx context.Context) (int, error)
}
