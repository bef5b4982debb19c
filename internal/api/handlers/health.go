package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/divradar/backend/pkg/database"
	"github.com/divradar/backend/pkg/logger"
)

// HealthHandler serves liveness checks including database reachability
type HealthHandler struct {
	db     *database.DB
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: log}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status, err := h.db.HealthCheck(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "degraded",
			"service":  "divradar-batch",
			"database": status,
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"service":  "divradar-batch",
		"database": status,
	})
}
