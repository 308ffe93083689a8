package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/config"
	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/selector"
	"github.com/aristath/rfitrainer/internal/modules/settings"
	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/modules/strategy"
	"github.com/aristath/rfitrainer/internal/modules/trainer"
	"github.com/aristath/rfitrainer/internal/reliability"
)

// InitializeServices loads the strategy table and creates every service.
// A strategy table that cannot be loaded is an error.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	table, err := strategy.Load(cfg.StrategyPath)
	if err != nil {
		return fmt.Errorf("failed to load strategy table: %w", err)
	}
	container.StrategyTable = table
	container.StrategyIndex = strategy.NewIndex(table)
	log.Info().
		Str("source", strategySource(cfg.StrategyPath)).
		Int("positions", len(container.StrategyIndex.Positions())).
		Int("hands", table.HandCount()).
		Msg("Strategy table loaded")

	container.SettingsService = settings.NewService(container.SettingsRepo, log)
	container.SRSStore = srs.NewStore(container.SRSRepo, log)
	container.Selector = selector.New(container.StrategyIndex, container.SRSStore, log)
	container.TrainerService = trainer.NewService(
		container.StrategyIndex,
		container.SRSStore,
		container.Selector,
		container.AttemptRepo,
		log,
		trainer.WithEventManager(container.EventManager),
	)

	container.BackupService = reliability.NewBackupService(
		container.SettingsService,
		container.AttemptRepo,
		container.SRSStore,
		container.EventManager,
		log,
	)

	// Settings DB credentials take precedence over env
	if err := cfg.UpdateFromSettings(container.SettingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to read R2 credentials from settings")
	}

	// Only initialize R2 services if all credentials are provided
	if cfg.R2.Configured() {
		r2Client, err := reliability.NewR2Client(
			cfg.R2.AccountID,
			cfg.R2.AccessKeyID,
			cfg.R2.SecretAccessKey,
			cfg.R2.BucketName,
			log,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize R2 client - R2 backup disabled")
		} else {
			container.R2Client = r2Client
			container.R2BackupService = reliability.NewR2BackupService(r2Client, container.BackupService, log)
			log.Info().Msg("R2 cloud backup services initialized")
		}
	} else {
		log.Debug().Msg("R2 credentials not configured - R2 backup disabled")
	}

	return nil
}

func strategySource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
