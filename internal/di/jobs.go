package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rfitrainer/internal/config"
	"github.com/aristath/rfitrainer/internal/reliability"
	"github.com/aristath/rfitrainer/internal/scheduler"
)

const dueReportSchedule = "0 0 * * * *"

// RegisterJobs creates the scheduler and registers background jobs. A job
// with an empty schedule is created but not scheduled, so it can still be
// triggered manually. The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	container.Scheduler = sched
	instances := &JobInstances{}

	register := func(schedule string, job scheduler.Job) error {
		if schedule == "" {
			log.Debug().Str("job", job.Name()).Msg("No schedule configured, job is manual only")
			return nil
		}
		if err := sched.AddJob(schedule, job); err != nil {
			return fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
		return nil
	}

	walJob := scheduler.NewCheckWALCheckpointsJob(container.Databases()...)
	walJob.SetLogger(log)
	if err := register(cfg.WALSchedule, walJob); err != nil {
		return nil, err
	}
	instances.WALCheckpoint = walJob

	maintenance := reliability.NewMaintenanceJob(container.Databases(), cfg.DataDir, log)
	if err := register(cfg.MaintenanceSchedule, maintenance); err != nil {
		return nil, err
	}
	instances.Maintenance = maintenance

	dueReport := scheduler.NewDueReviewReportJob(container.SRSStore, log)
	if err := register(dueReportSchedule, dueReport); err != nil {
		return nil, err
	}
	instances.DueReport = dueReport

	// R2 cloud backup (optional - only if configured)
	if container.R2BackupService != nil {
		r2Job := scheduler.NewR2BackupJob(container.SettingsService, container.R2BackupService, log)
		r2Job.SetEventManager(container.EventManager)
		if err := register(cfg.BackupSchedule, r2Job); err != nil {
			return nil, err
		}
		instances.R2Backup = r2Job
	}

	return instances, nil
}
