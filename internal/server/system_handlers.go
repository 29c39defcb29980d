package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/web"
)

// SystemHandlers serves the health and status endpoints.
type SystemHandlers struct {
	log      zerolog.Logger
	appDB    *database.DB
	marketDB *database.DB
	started  time.Time
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(log zerolog.Logger, appDB, marketDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:      log.With().Str("handler", "system").Logger(),
		appDB:    appDB,
		marketDB: marketDB,
		started:  time.Now(),
	}
}

// HandleHealth is a cheap liveness probe: both databases must answer a
// quick integrity check.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := "ok"
	httpStatus := http.StatusOK
	databases := map[string]string{}

	for _, db := range []*database.DB{h.appDB, h.marketDB} {
		if err := db.QuickCheck(ctx); err != nil {
			h.log.Error().Err(err).Str("database", db.Name()).Msg("Health check failed")
			databases[db.Name()] = "error"
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		databases[db.Name()] = "ok"
	}

	web.JSON(w, h.log, httpStatus, map[string]interface{}{
		"status":    status,
		"databases": databases,
	})
}

// HandleStatus reports process and host statistics alongside database
// sizes.
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.systemStats()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	databases := map[string]interface{}{}
	for _, db := range []*database.DB{h.appDB, h.marketDB} {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database stats")
			continue
		}
		databases[db.Name()] = stats
	}

	web.JSON(w, h.log, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"cpu_percent":    cpuPercent,
		"ram_percent":    ramPercent,
		"goroutines":     runtime.NumGoroutine(),
		"heap_alloc":     m.HeapAlloc,
		"databases":      databases,
	})
}

func (h *SystemHandlers) systemStats() (float64, float64) {
	var cpuAvg float64
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read CPU stats")
	} else if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to read memory stats")
		return cpuAvg, 0
	}

	return cpuAvg, memStat.UsedPercent
}
