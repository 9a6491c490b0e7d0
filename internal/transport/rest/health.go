package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

// PersistenceStatus reports how far the stored blob lags the in-memory state.
type PersistenceStatus interface {
	LastSavedVersion() uint64
	Failures() int64
}

// VersionSource is the in-memory store.
type VersionSource interface {
	Version() uint64
}

type HealthHandler struct {
	db          *sql.DB
	driver      string
	persistence PersistenceStatus
	store       VersionSource
}

func NewHealthHandler(db *sql.DB, driver string, persistence PersistenceStatus, store VersionSource) *HealthHandler {
	return &HealthHandler{db: db, driver: driver, persistence: persistence, store: store}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler pings the database and reports persistence lag. Failed
// saves degrade the status but do not fail the check; the data is still
// served from memory.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	components := map[string]CheckEntry{}
	if h.db != nil {
		components[h.driver] = h.checkDatabase(r.Context())
	}
	if h.persistence != nil && h.store != nil {
		components["persistence"] = h.checkPersistence()
	}

	overall := HealthHealthy
	for _, c := range components {
		if c.Status == HealthUnhealthy {
			overall = HealthUnhealthy
			break
		}
		if c.Status == HealthDegraded {
			overall = HealthDegraded
		}
	}

	statusCode := http.StatusOK
	if overall == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeHealthJSON(w, statusCode, HealthResponse{
		Status:     overall,
		CheckedAt:  time.Now(),
		Components: components,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}

func (h *HealthHandler) checkPersistence() CheckEntry {
	current := h.store.Version()
	saved := h.persistence.LastSavedVersion()
	failures := h.persistence.Failures()

	entry := CheckEntry{
		Status:    HealthHealthy,
		CheckedAt: time.Now(),
		Details: map[string]any{
			"store_version": current,
			"saved_version": saved,
			"save_failures": failures,
		},
	}
	if failures > 0 && saved < current {
		entry.Status = HealthDegraded
		entry.Message = "latest changes are not persisted"
	}
	return entry
}

func writeHealthJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
