package app

import (
	"context"
	"fmt"
	"time"

	"casemeta/internal/shared/util"
)

// A parse holds its lease for milliseconds; one held this long never returned.
const stuckLease = time.Minute

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.extractor != nil {
		status.Components["extractor"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["extractor"] = "missing"
	}

	if s.app.parser != nil {
		leased, oldest := s.app.parser.Leases(time.Now())
		status.Components["parser_pool"] = fmt.Sprintf("%d leased", leased)
		if oldest > stuckLease {
			status.Status = "degraded"
			status.Components["parser_pool"] = fmt.Sprintf("%d leased, oldest held %s", leased, oldest.Round(time.Second))
		}
	}

	switch {
	case s.app.store != nil:
		n, err := s.app.store.Len(ctx)
		if err != nil {
			status.Status = "degraded"
			status.Components["result_cache"] = fmt.Sprintf("error: %v", err)
		} else {
			status.Components["result_cache"] = fmt.Sprintf("ok (%d documents)", n)
		}
		status.Components["result_cache_path"] = s.app.store.Path()
	case s.app.Config.CacheEnabled():
		status.Status = "degraded"
		status.Components["result_cache"] = "unavailable (memory only)"
	default:
		status.Components["result_cache"] = "disabled"
	}

	if s.app.memory != nil {
		status.Components["memory_cache"] = fmt.Sprintf("ok (%d/%d documents)", s.app.memory.Len(), s.app.Config.Cache.MemoryEntries)
	}

	if s.app.watching() {
		status.Components["watcher"] = "running"
	} else {
		status.Components["watcher"] = "idle"
	}
	status.Components["heap"] = fmt.Sprintf("%d MiB", util.HeapAllocMB())
	return status
}
