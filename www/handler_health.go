package www

import (
	"net/http"

	"github.com/avdberg/spotwatch-go/coordinator"
)

// NewHealthHandler serves 503 until the first successful refresh, so
// an orchestrator does not route traffic to a cold instance.
func NewHealthHandler(crd *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !crd.Healthy() {
			writeJson(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
