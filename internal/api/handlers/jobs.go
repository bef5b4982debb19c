package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/divradar/backend/internal/scheduler"
	"github.com/divradar/backend/pkg/logger"
)

// JobHandler exposes the scheduler to operators: list jobs, read their
// history and stats, and fire a job outside its schedule
type JobHandler struct {
	sched  *scheduler.Scheduler
	logger *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(sched *scheduler.Scheduler, log *logger.Logger) *JobHandler {
	return &JobHandler{sched: sched, logger: log}
}

// List handles GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.sched.GetAllJobs(),
	})
}

// Stats handles GET /api/jobs/stats
func (h *JobHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sched.GetJobStats())
}

// History handles GET /api/jobs/{name}/history?limit=N
func (h *JobHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.sched.GetJobHistory(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":     name,
		"results": history.GetLatestResults(limit),
	})
}

// Run handles POST /api/jobs/{name}/run?silent=true. Fire and forget:
// a 202 means the job was started, not that it finished; outcomes land
// in job history and the stock rows.
func (h *JobHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	silent := r.URL.Query().Get("silent") == "true"

	if err := h.sched.RunJob(name, silent); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"job":    name,
		"silent": silent,
	}).Info("Job triggered via API")

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
