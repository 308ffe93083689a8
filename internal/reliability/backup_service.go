package reliability

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/settings"
	"github.com/aristath/rfitrainer/internal/modules/srs"
)

// SettingsStore is the settings side of a backup.
type SettingsStore interface {
	Load() (settings.UserSettings, error)
	Save(us settings.UserSettings) (settings.UserSettings, error)
}

// AttemptStore is the attempt-log side of a backup.
type AttemptStore interface {
	All(ctx context.Context) ([]attempts.Attempt, error)
	ReplaceAll(ctx context.Context, list []attempts.Attempt) error
}

// ReviewStore is the repetition-queue side of a backup.
type ReviewStore interface {
	All(ctx context.Context) ([]srs.Record, error)
	Restore(ctx context.Context, records []srs.Record) error
}

// BackupService exports and restores user progress.
type BackupService struct {
	settings     SettingsStore
	attempts     AttemptStore
	reviews      ReviewStore
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewBackupService creates a BackupService. eventManager may be nil.
func NewBackupService(
	settingsStore SettingsStore,
	attemptStore AttemptStore,
	reviewStore ReviewStore,
	eventManager *events.Manager,
	log zerolog.Logger,
) *BackupService {
	return &BackupService{
		settings:     settingsStore,
		attempts:     attemptStore,
		reviews:      reviewStore,
		eventManager: eventManager,
		log:          log.With().Str("service", "backup").Logger(),
	}
}

// Export captures the current state.
func (s *BackupService) Export(ctx context.Context) (*Snapshot, error) {
	us, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	list, err := s.attempts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	records, err := s.reviews.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load srs queue: %w", err)
	}

	if list == nil {
		list = []attempts.Attempt{}
	}
	if records == nil {
		records = []srs.Record{}
	}

	return &Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: time.Now().UnixMilli(),
		Settings:  us,
		Attempts:  list,
		SRSQueue:  records,
	}, nil
}

// ExportTo writes the current state to w.
func (s *BackupService) ExportTo(ctx context.Context, w io.Writer, f Format) (*Snapshot, error) {
	snap, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	if err := Encode(w, snap, f); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("format", string(f)).
		Int("attempts", len(snap.Attempts)).
		Int("records", len(snap.SRSQueue)).
		Msg("Backup exported")
	s.emit("export", f, "", 0, snap)
	return snap, nil
}

// Restore validates snap and replaces settings, attempts and the repetition
// queue with its contents. Each store is replaced in its own transaction.
func (s *BackupService) Restore(ctx context.Context, snap *Snapshot) error {
	if snap.Settings.Theme == "" {
		snap.Settings.Theme = settings.ThemeDark
	}
	if snap.Settings.Mode == "" {
		snap.Settings.Mode = settings.DefaultUserSettings().Mode
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid backup: %w", err)
	}

	if _, err := s.settings.Save(snap.Settings); err != nil {
		return fmt.Errorf("failed to restore settings: %w", err)
	}
	if err := s.attempts.ReplaceAll(ctx, snap.Attempts); err != nil {
		return fmt.Errorf("failed to restore attempts: %w", err)
	}
	if err := s.reviews.Restore(ctx, snap.SRSQueue); err != nil {
		return fmt.Errorf("failed to restore srs queue: %w", err)
	}

	s.log.Info().
		Int("attempts", len(snap.Attempts)).
		Int("records", len(snap.SRSQueue)).
		Msg("Backup restored")
	return nil
}

// ImportFrom decodes a snapshot from r and restores it.
func (s *BackupService) ImportFrom(ctx context.Context, r io.Reader, f Format) (*Snapshot, error) {
	snap, err := Decode(r, f)
	if err != nil {
		return nil, err
	}
	if err := s.Restore(ctx, snap); err != nil {
		return nil, err
	}
	s.emit("import", f, "", 0, snap)
	return snap, nil
}

func (s *BackupService) emit(operation string, f Format, filename string, size int64, snap *Snapshot) {
	if s.eventManager == nil {
		return
	}
	s.eventManager.EmitTyped(events.BackupCompleted, "reliability", &events.BackupCompletedData{
		Operation: operation,
		Format:    string(f),
		Filename:  filename,
		SizeBytes: size,
		Attempts:  len(snap.Attempts),
		Records:   len(snap.SRSQueue),
	})
}
