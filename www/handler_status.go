package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/types"
)

type commodityStatusPayload struct {
	Commodity   types.Commodity `json:"commodity"`
	State       string          `json:"state"`
	Stale       bool            `json:"stale"`
	Hours       int             `json:"hours"`
	LastSuccess string          `json:"lastSuccess,omitempty"`
	LastError   string          `json:"lastError,omitempty"`
}

type statusPayload struct {
	Healthy     bool                     `json:"healthy"`
	HasTomorrow bool                     `json:"hasTomorrow"`
	Commodities []commodityStatusPayload `json:"commodities"`
	Now         string                   `json:"now"`
}

func NewStatusHandler(logger *slog.Logger, crd *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		payload := statusPayload{
			Healthy:     crd.Healthy(),
			HasTomorrow: crd.HasTomorrow(),
			Now:         hours.FormatTimeInGuiTimezone(time.Now()),
		}

		for _, commodity := range types.Commodities() {
			snap := crd.Snapshot(commodity)
			cs := commodityStatusPayload{
				Commodity: commodity,
				State:     string(snap.State),
				Stale:     snap.Stale(),
				Hours:     len(snap.Series),
			}
			if !snap.LastSuccess.IsZero() {
				cs.LastSuccess = hours.FormatTimeInGuiTimezone(snap.LastSuccess)
			}
			if snap.LastError != nil {
				cs.LastError = snap.LastError.Error()
			}
			payload.Commodities = append(payload.Commodities, cs)
		}

		if err := writeJson(w, http.StatusOK, payload); err != nil {
			logger.Error("handling status request", slog.Any("error", err))
		}
	}
}
