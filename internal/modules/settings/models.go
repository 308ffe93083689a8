package settings

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aristath/rfitrainer/internal/domain"
)

// Setting keys.
const (
	KeyEnabledPositions = "enabled_positions"
	KeyMode             = "mode"
	KeyQuestionCount    = "question_count"
	KeyTheme            = "theme"

	KeyR2AccountID       = "r2_account_id"
	KeyR2AccessKeyID     = "r2_access_key_id"
	KeyR2SecretAccessKey = "r2_secret_access_key"
	KeyR2BucketName      = "r2_bucket_name"
	KeyR2BackupEnabled   = "r2_backup_enabled"
	KeyR2RetentionDays   = "r2_backup_retention_days"
)

// SettingDefaults holds the default value of every configurable setting.
// The Go type of each default decides how the stored string is parsed.
var SettingDefaults = map[string]interface{}{
	// Trainer preferences
	KeyEnabledPositions: joinPositions(domain.AllPositions), // comma-separated, empty = all
	KeyMode:             string(domain.ModeBoundary),        // boundary, random or review
	KeyQuestionCount:    0.0,                                // questions per session, 0 = infinite
	KeyTheme:            ThemeDark,                          // dark or light

	// Cloudflare R2 Backup settings
	KeyR2AccountID:       "",   // Cloudflare R2 account ID
	KeyR2AccessKeyID:     "",   // R2 access key ID
	KeyR2SecretAccessKey: "",   // R2 secret access key
	KeyR2BucketName:      "",   // R2 bucket name
	KeyR2BackupEnabled:   0.0,  // 1.0 = enabled, 0.0 = disabled
	KeyR2RetentionDays:   30.0, // Days to keep backups (0 = keep forever)
}

// SettingDescriptions documents each setting for the settings API.
var SettingDescriptions = map[string]string{
	KeyEnabledPositions:  "Comma-separated positions to drill. Empty drills every position in the strategy table.",
	KeyMode:              "Selection bias: boundary, random or review.",
	KeyQuestionCount:     "Questions per session. 0 means infinite.",
	KeyTheme:             "UI theme: dark or light.",
	KeyR2AccountID:       "Cloudflare account ID for R2 backups.",
	KeyR2AccessKeyID:     "R2 access key ID.",
	KeyR2SecretAccessKey: "R2 secret access key.",
	KeyR2BucketName:      "R2 bucket that receives backups.",
	KeyR2BackupEnabled:   "Upload a backup to R2 on the backup schedule (1 = on).",
	KeyR2RetentionDays:   "Days to keep R2 backups. 0 keeps them forever.",
}

// secretKeys are masked when settings are listed.
var secretKeys = map[string]bool{
	KeyR2AccessKeyID:     true,
	KeyR2SecretAccessKey: true,
}

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// QuestionCount is the session length. Zero means infinite and is written
// as "infinite" in JSON.
type QuestionCount int

// Infinite reports whether the session has no question limit.
func (q QuestionCount) Infinite() bool {
	return q <= 0
}

// MarshalJSON implements json.Marshaler.
func (q QuestionCount) MarshalJSON() ([]byte, error) {
	if q.Infinite() {
		return []byte(`"infinite"`), nil
	}
	return json.Marshal(int(q))
}

// UnmarshalJSON accepts a non-negative number or "infinite".
func (q *QuestionCount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.EqualFold(s, "infinite") || s == "" {
			*q = 0
			return nil
		}
		return fmt.Errorf("invalid question count %q", s)
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid question count: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("question count must not be negative, got %d", n)
	}
	*q = QuestionCount(n)
	return nil
}

// UserSettings is the trainer's settings singleton.
type UserSettings struct {
	EnabledPositions []domain.Position `json:"enabledPositions" msgpack:"enabledPositions"`
	Mode             domain.Mode       `json:"mode" msgpack:"mode"`
	QuestionCount    QuestionCount     `json:"questionCount" msgpack:"questionCount"`
	Theme            string            `json:"theme" msgpack:"theme"`
}

// DefaultUserSettings returns the settings used before anything is saved.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		EnabledPositions: append([]domain.Position(nil), domain.AllPositions...),
		Mode:             domain.ModeBoundary,
		QuestionCount:    0,
		Theme:            ThemeDark,
	}
}

// Validate checks every field.
func (u UserSettings) Validate() error {
	seen := make(map[domain.Position]bool, len(u.EnabledPositions))
	for _, p := range u.EnabledPositions {
		if !p.Valid() {
			return fmt.Errorf("unknown position %q", p)
		}
		if seen[p] {
			return fmt.Errorf("position %q listed twice", p)
		}
		seen[p] = true
	}
	if _, err := domain.ParseMode(string(u.Mode)); err != nil {
		return err
	}
	if u.QuestionCount < 0 {
		return fmt.Errorf("question count must not be negative, got %d", u.QuestionCount)
	}
	if u.Theme != ThemeDark && u.Theme != ThemeLight {
		return fmt.Errorf("unknown theme %q", u.Theme)
	}
	return nil
}

// Session returns the selector input for these settings.
func (u UserSettings) Session() domain.SessionSettings {
	return domain.NewSessionSettings(u.EnabledPositions, u.Mode)
}

// SettingUpdate is the body of a single-key update.
type SettingUpdate struct {
	Value interface{} `json:"value"`
}

func joinPositions(positions []domain.Position) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}

func splitPositions(s string) ([]domain.Position, error) {
	if strings.TrimSpace(s) == "" {
		return []domain.Position{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]domain.Position, 0, len(parts))
	for _, part := range parts {
		p, err := domain.ParsePosition(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
