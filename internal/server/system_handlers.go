package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/rfitrainer/internal/database"
	"github.com/aristath/rfitrainer/internal/di"
	"github.com/aristath/rfitrainer/internal/scheduler"
)

// SystemHandlers serves process and storage status.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	container *di.Container
	jobs      map[string]scheduler.Job
	startedAt time.Time
}

// NewSystemHandlers creates new system handlers. jobs may be nil.
func NewSystemHandlers(log zerolog.Logger, dataDir string, container *di.Container, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("service", "system").Logger(),
		dataDir:   dataDir,
		container: container,
		jobs:      make(map[string]scheduler.Job),
		startedAt: time.Now(),
	}
	if jobs != nil {
		for _, job := range []scheduler.Job{jobs.WALCheckpoint, jobs.Maintenance, jobs.DueReport, jobs.R2Backup} {
			if job != nil {
				h.jobs[job.Name()] = job
			}
		}
	}
	return h
}

// SystemStatusResponse represents system status
type SystemStatusResponse struct {
	Status          string  `json:"status"`
	UptimeSeconds   int64   `json:"uptime_seconds"`
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryPercent   float64 `json:"memory_percent"`
	DiskFreeBytes   uint64  `json:"disk_free_bytes"`
	DiskUsedPercent float64 `json:"disk_used_percent"`
	Goroutines      int     `json:"goroutines"`
	StrategyHands   int     `json:"strategy_hands"`
	TrackedItems    int     `json:"tracked_items"`
	R2Configured    bool    `json:"r2_configured"`
	LastChecked     string  `json:"last_checked"`
}

// DatabaseStatsResponse lists per-database storage statistics
type DatabaseStatsResponse struct {
	Databases      []database.Stats `json:"databases"`
	TotalSizeBytes int64            `json:"total_size_bytes"`
	LastChecked    string           `json:"last_checked"`
}

// JobsStatusResponse lists registered background jobs
type JobsStatusResponse struct {
	Scheduled []scheduler.JobInfo `json:"scheduled"`
	Manual    []string            `json:"manual"`
}

// HandleSystemStatus returns CPU, memory, disk and trainer counters
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		R2Configured:  h.container.R2BackupService != nil,
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	if usage, err := disk.Usage(h.dataDir); err == nil {
		response.DiskFreeBytes = usage.Free
		response.DiskUsedPercent = usage.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to get disk usage")
	}

	if h.container.StrategyTable != nil {
		response.StrategyHands = h.container.StrategyTable.HandCount()
	}
	if h.container.SRSStore != nil {
		if n, err := h.container.SRSStore.Count(r.Context()); err == nil {
			response.TrackedItems = n
		} else {
			h.log.Warn().Err(err).Msg("Failed to count tracked items")
			response.Status = "degraded"
		}
	}

	h.writeJSON(w, response)
}

// HandleDatabaseStats returns page and size statistics for every database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	response := DatabaseStatsResponse{
		Databases:   []database.Stats{},
		LastChecked: time.Now().Format(time.RFC3339),
	}

	for _, db := range h.container.Databases() {
		if db == nil {
			continue
		}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			http.Error(w, "Failed to get database stats", http.StatusInternalServerError)
			return
		}
		response.Databases = append(response.Databases, *stats)
		response.TotalSizeBytes += stats.SizeBytes + stats.WALSizeBytes
	}

	h.writeJSON(w, response)
}

// HandleJobsStatus lists scheduled and manually triggerable jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	response := JobsStatusResponse{
		Scheduled: []scheduler.JobInfo{},
		Manual:    []string{},
	}
	if h.container.Scheduler != nil {
		response.Scheduled = h.container.Scheduler.Jobs()
	}
	for name := range h.jobs {
		response.Manual = append(response.Manual, name)
	}
	sort.Strings(response.Manual)

	h.writeJSON(w, response)
}

// HandleTriggerJob runs a job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		http.Error(w, "Unknown job", http.StatusNotFound)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job trigger")
	if err := h.container.Scheduler.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status": "success",
		"job":    name,
	})
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
