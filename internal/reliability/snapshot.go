// Package reliability covers backup, restore and database maintenance.
package reliability

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/settings"
	"github.com/aristath/rfitrainer/internal/modules/srs"
)

// SnapshotVersion is the current snapshot layout.
const SnapshotVersion = 1

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat converts a query value into a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("unknown backup format %q", s)
	}
}

// FormatFromContentType maps a request Content-Type to a Format.
func FormatFromContentType(contentType string) Format {
	if strings.Contains(contentType, "msgpack") {
		return FormatMsgpack
	}
	return FormatJSON
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatMsgpack {
		return "application/x-msgpack"
	}
	return "application/json"
}

// Extension returns the file extension of f, with the leading dot.
func (f Format) Extension() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

// Snapshot is everything a user would lose with their browser profile:
// settings, the attempt log and the repetition queue.
type Snapshot struct {
	Version   int                   `json:"version" msgpack:"version"`
	CreatedAt int64                 `json:"createdAt" msgpack:"createdAt"`
	Settings  settings.UserSettings `json:"settings" msgpack:"settings"`
	Attempts  []attempts.Attempt    `json:"attempts" msgpack:"attempts"`
	SRSQueue  []srs.Record          `json:"srsQueue" msgpack:"srsQueue"`
}

// Validate rejects snapshots that would corrupt the stores on restore.
func (s *Snapshot) Validate() error {
	if s.Version < 1 || s.Version > SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if err := s.Settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	ids := make(map[string]bool, len(s.Attempts))
	for _, a := range s.Attempts {
		if a.ID == "" || ids[a.ID] {
			return fmt.Errorf("attempt id %q is empty or duplicated", a.ID)
		}
		ids[a.ID] = true
		if !a.Position.Valid() {
			return fmt.Errorf("attempt %s has unknown position %q", a.ID, a.Position)
		}
	}

	keys := make(map[string]bool, len(s.SRSQueue))
	for _, rec := range s.SRSQueue {
		if !rec.Position.Valid() {
			return fmt.Errorf("srs item %s has unknown position %q", rec.ID, rec.Position)
		}
		if rec.ID != srs.Key(rec.Position, rec.Hand) {
			return fmt.Errorf("srs item id %q does not match %s/%s", rec.ID, rec.Position, rec.Hand)
		}
		if keys[rec.ID] {
			return fmt.Errorf("srs item %s duplicated", rec.ID)
		}
		keys[rec.ID] = true
	}
	return nil
}

// Encode writes snap to w in format f.
func Encode(w io.Writer, snap *Snapshot, f Format) error {
	switch f {
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
			return fmt.Errorf("failed to encode msgpack snapshot: %w", err)
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode json snapshot: %w", err)
		}
	}
	return nil
}

// Decode reads a snapshot in format f from r. It does not validate.
func Decode(r io.Reader, f Format) (*Snapshot, error) {
	var snap Snapshot
	switch f {
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack snapshot: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return nil, fmt.Errorf("failed to decode json snapshot: %w", err)
		}
	}
	return &snap, nil
}
