// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/rfitrainer/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for all databases (always absolute)
	StrategyPath        string // Strategy table JSON; empty uses the embedded table
	LogLevel            string
	Port                int
	DevMode             bool
	BackupSchedule      string // six-field cron specs, seconds first
	WALSchedule         string
	MaintenanceSchedule string
	R2                  R2Config
}

// R2Config holds Cloudflare R2 credentials
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
}

// Configured reports whether every credential is present.
func (r R2Config) Configured() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.SecretAccessKey != "" && r.BucketName != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("TRAINER_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		StrategyPath:        getEnv("TRAINER_STRATEGY_PATH", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Port:                getEnvAsInt("TRAINER_PORT", 8010),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		BackupSchedule:      getEnv("TRAINER_BACKUP_SCHEDULE", "0 0 3 * * *"),
		WALSchedule:         getEnv("TRAINER_WAL_SCHEDULE", "0 */30 * * * *"),
		MaintenanceSchedule: getEnv("TRAINER_MAINTENANCE_SCHEDULE", "0 30 4 * * SUN"),
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UpdateFromSettings updates configuration from settings database
// This should be called after the config database is initialized
// Settings DB values take precedence over environment variables
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	fields := []struct {
		key    string
		target *string
	}{
		{settings.KeyR2AccountID, &c.R2.AccountID},
		{settings.KeyR2AccessKeyID, &c.R2.AccessKeyID},
		{settings.KeyR2SecretAccessKey, &c.R2.SecretAccessKey},
		{settings.KeyR2BucketName, &c.R2.BucketName},
	}

	for _, f := range fields {
		value, err := settingsRepo.Get(f.key)
		if err != nil {
			return fmt.Errorf("failed to get %s from settings: %w", f.key, err)
		}
		// Empty settings keep the env value as fallback
		if value != nil && *value != "" {
			*f.target = *value
		}
	}
	return nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedules := map[string]string{
		"TRAINER_BACKUP_SCHEDULE":      c.BackupSchedule,
		"TRAINER_WAL_SCHEDULE":         c.WALSchedule,
		"TRAINER_MAINTENANCE_SCHEDULE": c.MaintenanceSchedule,
	}
	for name, spec := range schedules {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
