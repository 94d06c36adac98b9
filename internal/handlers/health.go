package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "rubberstock/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a readiness handler suitable for infrastructure probes. It
// reports 503 when the configured database does not answer a ping.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Database: databaseState(r),
		Time:     time.Now().UTC(),
	}
	status := http.StatusOK
	if resp.Database == "unreachable" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		return
	}
	applog.Debug(r.Context(), "health check responded", "status", resp.Status)
}

func databaseState(r *http.Request) string {
	if database == nil {
		return "unconfigured"
	}
	sqlDB, err := database.DB()
	if err != nil {
		return "unreachable"
	}
	if err := sqlDB.PingContext(r.Context()); err != nil {
		applog.Error(r.Context(), "database ping failed", "error", err)
		return "unreachable"
	}
	return "ok"
}
