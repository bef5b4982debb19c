package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// newRouterForTest registers the job routes the way the api package does,
// without pulling in the full server
func newRouterForTest(h *JobHandler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/jobs", h.List).Methods("GET")
	r.HandleFunc("/api/jobs/stats", h.Stats).Methods("GET")
	r.HandleFunc("/api/jobs/{name}/history", h.History).Methods("GET")
	r.HandleFunc("/api/jobs/{name}/run", h.Run).Methods("POST")
	return r
}
