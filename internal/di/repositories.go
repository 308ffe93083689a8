package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/settings"
	"github.com/aristath/rfitrainer/internal/modules/srs"
)

// InitializeRepositories creates every repository on the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.SettingsRepo = settings.NewRepository(container.ConfigDB.Conn(), log)
	container.SRSRepo = srs.NewSQLiteRepository(container.ProgressDB.Conn(), log)
	container.AttemptRepo = attempts.NewRepository(container.LedgerDB.Conn(), log)
	return nil
}
