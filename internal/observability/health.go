package observability

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthStatus struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// HealthCheckHandler reports liveness of the local observability server.
func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthStatus{
			Status:    "healthy",
			Service:   "translate-client",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
