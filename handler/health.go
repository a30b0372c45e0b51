package handler

import (
	"net/http"
)

// HealthHandler reports the liveness of the sidecar itself, not of
// the backend.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
