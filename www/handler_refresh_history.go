package www

import (
	"log/slog"
	"net/http"

	"github.com/avdberg/spotwatch-go/database"
	"github.com/avdberg/spotwatch-go/hours"
)

type refreshHistoryPayload struct {
	At        string `json:"at"`
	Commodity string `json:"commodity"`
	Outcome   string `json:"outcome"`
	Hours     int    `json:"hours"`
	Error     string `json:"error,omitempty"`
}

func NewRefreshHistoryHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		limit := intOrDefault(r.URL, "limit", 50)

		entries, err := db.GetRefreshHistory(r.Context(), limit)
		if err != nil {
			logger.Error("handling refreshes request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		payload := make([]refreshHistoryPayload, 0, len(entries))
		for _, e := range entries {
			payload = append(payload, refreshHistoryPayload{
				At:        hours.FormatTimeInGuiTimezone(e.At),
				Commodity: e.Commodity,
				Outcome:   e.Outcome,
				Hours:     e.Hours,
				Error:     e.Error,
			})
		}

		if err := writeJson(w, http.StatusOK, payload); err != nil {
			logger.Error("handling refreshes request", slog.Any("error", err))
		}
	}
}
