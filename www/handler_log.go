package www

import (
	"log/slog"
	"net/http"

	"github.com/avdberg/spotwatch-go/database"
	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/logging"
)

type logEntryPayload struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Attrs     string `json:"attrs,omitempty"`
}

func NewLogHandler(logger *slog.Logger, db *database.Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		page := intOrDefault(r.URL, "page", 1)
		pageSize := intOrDefault(r.URL, "pageSize", 25)

		minLevel := slog.LevelDebug
		if lvl := r.URL.Query().Get("level"); lvl != "" {
			minLevel = logging.LevelFromString(&lvl)
		}

		entries, err := db.GetLogEntries(r.Context(), minLevel, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		payload := make([]logEntryPayload, 0, len(entries))
		for _, e := range entries {
			payload = append(payload, logEntryPayload{
				Timestamp: hours.FormatTimeInGuiTimezone(e.Timestamp),
				Level:     slog.Level(e.Level).String(),
				Message:   e.Message,
				Attrs:     e.Attrs,
			})
		}

		if err := writeJson(w, http.StatusOK, payload); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
		}
	}
}
