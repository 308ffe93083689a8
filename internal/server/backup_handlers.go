package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/reliability"
)

// maxImportBytes caps uploaded snapshots.
const maxImportBytes = 32 << 20

// BackupHandlers serves export, import and R2 backup endpoints.
type BackupHandlers struct {
	backups *reliability.BackupService
	r2      *reliability.R2BackupService // nil when R2 is not configured
	log     zerolog.Logger
}

// NewBackupHandlers creates backup handlers. r2 may be nil.
func NewBackupHandlers(backups *reliability.BackupService, r2 *reliability.R2BackupService, log zerolog.Logger) *BackupHandlers {
	return &BackupHandlers{
		backups: backups,
		r2:      r2,
		log:     log.With().Str("handler", "backup").Logger(),
	}
}

// HandleExport streams a snapshot as a download
// GET /api/backup/export?format=json|msgpack
func (h *BackupHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := reliability.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := fmt.Sprintf("rfitrainer-%s%s", time.Now().UTC().Format("2006-01-02"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if _, err := h.backups.ExportTo(r.Context(), w, format); err != nil {
		h.log.Error().Err(err).Msg("Failed to export backup")
		http.Error(w, "Failed to export backup", http.StatusInternalServerError)
		return
	}
}

// HandleImport restores a snapshot from the request body. The format comes
// from ?format= or, when absent, the Content-Type header.
// POST /api/backup/import
func (h *BackupHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	format := reliability.FormatFromContentType(r.Header.Get("Content-Type"))
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, err := reliability.ParseFormat(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	snap, err := h.backups.ImportFrom(r.Context(), body, format)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to import backup")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, _ = io.Copy(io.Discard, body)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"attempts": len(snap.Attempts),
		"srsQueue": len(snap.SRSQueue),
	})
}

// HandleUploadR2 uploads a backup to R2 now
// POST /api/backup/r2
func (h *BackupHandlers) HandleUploadR2(w http.ResponseWriter, r *http.Request) {
	if h.r2 == nil {
		http.Error(w, "R2 backup is not configured", http.StatusServiceUnavailable)
		return
	}

	info, err := h.r2.CreateAndUploadBackup(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual R2 backup failed")
		http.Error(w, "R2 backup failed", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusCreated, info)
}

// HandleListR2 lists backups stored in R2
// GET /api/backup/r2
func (h *BackupHandlers) HandleListR2(w http.ResponseWriter, r *http.Request) {
	if h.r2 == nil {
		http.Error(w, "R2 backup is not configured", http.StatusServiceUnavailable)
		return
	}

	backups, err := h.r2.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list R2 backups")
		http.Error(w, "Failed to list R2 backups", http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusOK, backups)
}

// HandleRestoreR2 restores from a backup stored in R2
// POST /api/backup/r2/{filename}/restore
func (h *BackupHandlers) HandleRestoreR2(w http.ResponseWriter, r *http.Request) {
	if h.r2 == nil {
		http.Error(w, "R2 backup is not configured", http.StatusServiceUnavailable)
		return
	}

	filename := chi.URLParam(r, "filename")
	if _, ok := reliability.ParseBackupFilename(filename); !ok {
		http.Error(w, "Invalid backup filename", http.StatusBadRequest)
		return
	}

	snap, err := h.r2.RestoreFromR2(r.Context(), filename)
	if err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("Failed to restore from R2")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"filename": filename,
		"attempts": len(snap.Attempts),
		"srsQueue": len(snap.SRSQueue),
	})
}

func (h *BackupHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
