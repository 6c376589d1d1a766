package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/applicant-intake/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) error

// HealthHandler handles health-check endpoints.
type HealthHandler struct {
	db          Probe
	storageMode domain.UploadMode
}

func NewHealthHandler(db Probe, storageMode domain.UploadMode) *HealthHandler {
	return &HealthHandler{db: db, storageMode: storageMode}
}

type DependencyStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Error     string `json:"error,omitempty"`
}

type HealthReport struct {
	Status    string                      `json:"status"`
	Timestamp time.Time                   `json:"timestamp"`
	Checks    map[string]DependencyStatus `json:"checks"`
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if action == "ping" {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
		return
	}
	writeError(w, http.StatusBadRequest, "unknown action")
}

// Check probes the database and reports the storage mode. A down database is
// unhealthy (503); running without real object storage is degraded.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	report := HealthReport{Status: "healthy", Timestamp: time.Now().UTC(), Checks: map[string]DependencyStatus{}}

	start := time.Now()
	if err := h.db(ctx); err != nil {
		report.Status = "unhealthy"
		report.Checks["database"] = DependencyStatus{Status: "down", Error: "database unreachable"}
	} else {
		report.Checks["database"] = DependencyStatus{Status: "up", LatencyMS: time.Since(start).Milliseconds()}
	}

	storage := DependencyStatus{Status: "up", Mode: string(h.storageMode)}
	switch h.storageMode {
	case domain.UploadModePresigned, domain.UploadModeBlob:
	case domain.UploadModeLocal:
		storage.Status = "local"
	default:
		storage.Status = "unconfigured"
	}
	report.Checks["storage"] = storage
	if storage.Status != "up" && report.Status == "healthy" {
		report.Status = "degraded"
	}

	status := http.StatusOK
	if report.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
