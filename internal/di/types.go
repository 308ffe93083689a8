// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived dependency of the trainer and is the
// single source of truth for service instances handed to the HTTP server and
// the scheduler.
package di

import (
	"github.com/aristath/rfitrainer/internal/database"
	"github.com/aristath/rfitrainer/internal/events"
	"github.com/aristath/rfitrainer/internal/modules/attempts"
	"github.com/aristath/rfitrainer/internal/modules/selector"
	"github.com/aristath/rfitrainer/internal/modules/settings"
	"github.com/aristath/rfitrainer/internal/modules/srs"
	"github.com/aristath/rfitrainer/internal/modules/strategy"
	"github.com/aristath/rfitrainer/internal/modules/trainer"
	"github.com/aristath/rfitrainer/internal/reliability"
	"github.com/aristath/rfitrainer/internal/scheduler"
)

// Container holds all dependencies for the application.
//
// Architecture:
//   - Databases: config (settings), progress (repetition queue), ledger (attempt log)
//   - Strategy: the immutable table and its index, loaded once at startup
//   - Repositories and services: one per module
//   - Reliability: local backup always, R2 only when credentials are configured
type Container struct {
	// Databases
	ConfigDB   *database.DB
	ProgressDB *database.DB
	LedgerDB   *database.DB

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Strategy
	StrategyTable *strategy.Table
	StrategyIndex *strategy.Index

	// Repositories
	SettingsRepo *settings.Repository
	SRSRepo      srs.Repository
	AttemptRepo  *attempts.Repository

	// Services
	SettingsService *settings.Service
	SRSStore        *srs.Store
	Selector        *selector.Selector
	TrainerService  *trainer.Service

	// Reliability (R2 fields are nil when not configured)
	BackupService   *reliability.BackupService
	R2Client        *reliability.R2Client
	R2BackupService *reliability.R2BackupService

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// Databases returns every open database.
func (c *Container) Databases() []*database.DB {
	return []*database.DB{c.ConfigDB, c.ProgressDB, c.LedgerDB}
}

// Close closes every open database.
func (c *Container) Close() {
	for _, db := range c.Databases() {
		if db != nil {
			_ = db.Close()
		}
	}
}

// JobInstances holds job references for manual triggering via API
type JobInstances struct {
	WALCheckpoint scheduler.Job
	Maintenance   scheduler.Job
	DueReport     scheduler.Job
	R2Backup      scheduler.Job // nil when R2 is not configured
}
