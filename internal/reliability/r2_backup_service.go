package reliability

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	backupPrefix          = "rfitrainer-backup-"
	backupSuffix          = ".msgpack.gz"
	backupTimestampFormat = "2006-01-02-150405"
	minBackupsToKeep      = 3
)

// BackupInfo represents information about a backup stored in R2
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
	Checksum  string    `json:"checksum,omitempty"`
}

// R2BackupService uploads gzipped msgpack snapshots to Cloudflare R2 and
// restores from them.
type R2BackupService struct {
	store         ObjectStore
	backupService *BackupService
	now           func() time.Time
	log           zerolog.Logger
}

// NewR2BackupService creates a new R2 backup service
func NewR2BackupService(store ObjectStore, backupService *BackupService, log zerolog.Logger) *R2BackupService {
	return &R2BackupService{
		store:         store,
		backupService: backupService,
		now:           time.Now,
		log:           log.With().Str("service", "r2_backup").Logger(),
	}
}

// BackupFilename returns the object key for a backup taken at t.
func BackupFilename(t time.Time) string {
	return backupPrefix + t.UTC().Format(backupTimestampFormat) + backupSuffix
}

// ParseBackupFilename extracts the timestamp from a backup object key.
func ParseBackupFilename(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
		return time.Time{}, false
	}
	ts := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
	t, err := time.Parse(backupTimestampFormat, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CreateAndUploadBackup exports a snapshot and uploads it to R2
func (s *R2BackupService) CreateAndUploadBackup(ctx context.Context) (BackupInfo, error) {
	s.log.Info().Msg("Starting R2 backup")
	startTime := time.Now()

	snap, err := s.backupService.Export(ctx)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("failed to export snapshot: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := Encode(gz, snap, FormatMsgpack); err != nil {
		return BackupInfo{}, err
	}
	if err := gz.Close(); err != nil {
		return BackupInfo{}, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	taken := s.now().UTC()
	info := BackupInfo{
		Filename:  BackupFilename(taken),
		Timestamp: taken.Truncate(time.Second),
		SizeBytes: int64(buf.Len()),
		Checksum:  fmt.Sprintf("sha256:%x", sha256.Sum256(buf.Bytes())),
	}

	if err := s.store.Upload(ctx, info.Filename, bytes.NewReader(buf.Bytes()), info.SizeBytes); err != nil {
		return BackupInfo{}, fmt.Errorf("failed to upload to r2: %w", err)
	}

	s.backupService.emit("r2_upload", FormatMsgpack, info.Filename, info.SizeBytes, snap)
	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", info.Filename).
		Int64("size_bytes", info.SizeBytes).
		Msg("R2 backup completed successfully")

	return info, nil
}

// ListBackups lists all backups stored in R2, newest first
func (s *R2BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list r2 backups: %w", err)
	}

	now := s.now()
	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		timestamp, ok := ParseBackupFilename(obj.Key)
		if !ok {
			s.log.Warn().Str("filename", obj.Key).Msg("Skipping object with unexpected name")
			continue
		}
		backups = append(backups, BackupInfo{
			Filename:  obj.Key,
			Timestamp: timestamp,
			SizeBytes: obj.Size,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// RotateOldBackups deletes backups older than retentionDays and returns how
// many were deleted. The newest three are always kept; 0 keeps everything.
func (s *R2BackupService) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= minBackupsToKeep {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, backup := range backups[minBackupsToKeep:] {
		if !backup.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, backup.Filename); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("R2 backup rotation completed")
	return deleted, nil
}

// RestoreFromR2 downloads filename and restores it.
func (s *R2BackupService) RestoreFromR2(ctx context.Context, filename string) (*Snapshot, error) {
	if _, ok := ParseBackupFilename(filename); !ok {
		return nil, fmt.Errorf("not a backup file: %q", filename)
	}

	data, err := s.store.Download(ctx, filename)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer gz.Close()

	snap, err := Decode(io.LimitReader(gz, 256<<20), FormatMsgpack)
	if err != nil {
		return nil, err
	}
	if err := s.backupService.Restore(ctx, snap); err != nil {
		return nil, err
	}

	s.backupService.emit("r2_restore", FormatMsgpack, filename, int64(len(data)), snap)
	s.log.Info().Str("filename", filename).Msg("Restored from R2 backup")
	return snap, nil
}
