package www

import (
	"log/slog"
	"net/http"
)

// NewRefreshHandler triggers an on-demand price refresh, same closure
// the cron scheduler runs.
func NewRefreshHandler(logger *slog.Logger, task func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		logger.Info("refresh requested over http", slog.String("remoteAddr", r.RemoteAddr))
		task()
		w.WriteHeader(http.StatusAccepted)
	}
}
