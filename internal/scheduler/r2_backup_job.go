package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/settings"
)

// R2BackupJob uploads a snapshot to R2 and prunes expired archives. It does
// nothing while r2_backup_enabled is off.
type R2BackupJob struct {
	settings SettingsReader
	backups  BackupUploader
	events   *events.Manager
	timeout  time.Duration
	log      zerolog.Logger
}

// NewR2BackupJob creates a new R2BackupJob
func NewR2BackupJob(settingsReader SettingsReader, backups BackupUploader, log zerolog.Logger) *R2BackupJob {
	return &R2BackupJob{
		settings: settingsReader,
		backups:  backups,
		timeout:  10 * time.Minute,
		log:      log.With().Str("job", "r2_backup").Logger(),
	}
}

// SetEventManager makes upload failures visible on the event stream.
func (j *R2BackupJob) SetEventManager(m *events.Manager) {
	j.events = m
}

// Name returns the job name
func (j *R2BackupJob) Name() string {
	return "r2_backup"
}

// Run executes the R2 backup job
func (j *R2BackupJob) Run() error {
	enabled, err := j.settings.GetFloat(settings.KeyR2BackupEnabled)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", settings.KeyR2BackupEnabled, err)
	}
	if enabled == 0 {
		j.log.Debug().Msg("R2 backups disabled, skipping")
		return nil
	}

	retention, err := j.settings.GetFloat(settings.KeyR2RetentionDays)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", settings.KeyR2RetentionDays, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	info, err := j.backups.CreateAndUploadBackup(ctx)
	if err != nil {
		if j.events != nil {
			j.events.EmitError(j.Name(), err, map[string]interface{}{
				"retention_days": int(retention),
			})
		}
		return err
	}

	deleted, err := j.backups.RotateOldBackups(ctx, int(retention))
	if err != nil {
		// Rotation is retried on the next run.
		j.log.Warn().Err(err).Msg("Failed to rotate old R2 backups")
		return nil
	}

	j.log.Info().
		Str("filename", info.Filename).
		Int64("size_bytes", info.SizeBytes).
		Int("rotated", deleted).
		Msg("R2 backup job completed")
	return nil
}
