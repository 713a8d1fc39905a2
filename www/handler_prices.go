package www

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/prices"
	"github.com/avdberg/spotwatch-go/types"
)

type pricePointPayload struct {
	From   time.Time `json:"from"`
	Market float64   `json:"market"`
	Tax    float64   `json:"tax"`
	Markup float64   `json:"markup"`
	Total  float64   `json:"total"`
}

type priceSeriesPayload struct {
	Commodity   types.Commodity     `json:"commodity"`
	Unit        string              `json:"unit"`
	State       string              `json:"state"`
	Stale       bool                `json:"stale"`
	LastSuccess *time.Time          `json:"lastSuccess,omitempty"`
	LastError   string              `json:"lastError,omitempty"`
	Points      []pricePointPayload `json:"points"`
}

func NewPricesHandler(logger *slog.Logger, crd *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		commodities := types.Commodities()
		if q := r.URL.Query().Get("commodity"); q != "" {
			commodity, err := types.ParseCommodity(q)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			commodities = []types.Commodity{commodity}
		}

		payload := make([]priceSeriesPayload, 0, len(commodities))
		for _, commodity := range commodities {
			payload = append(payload, toSeriesPayload(crd.Snapshot(commodity)))
		}

		if err := writeJson(w, http.StatusOK, payload); err != nil {
			logger.Error("handling prices request", slog.Any("error", err))
		}
	}
}

func toSeriesPayload(snap coordinator.Snapshot) priceSeriesPayload {
	payload := priceSeriesPayload{
		Commodity: snap.Commodity,
		Unit:      snap.Commodity.Unit(),
		State:     string(snap.State),
		Stale:     snap.Stale(),
		Points:    make([]pricePointPayload, 0, len(snap.Series)),
	}
	if !snap.LastSuccess.IsZero() {
		t := snap.LastSuccess
		payload.LastSuccess = &t
	}
	if snap.LastError != nil {
		payload.LastError = snap.LastError.Error()
	}
	for _, p := range snap.Series {
		payload.Points = append(payload.Points, toPointPayload(p))
	}
	return payload
}

func toPointPayload(p prices.Point) pricePointPayload {
	return pricePointPayload{
		From:   p.From,
		Market: p.MarketPrice,
		Tax:    p.Tax,
		Markup: p.Markup,
		Total:  p.Total(),
	}
}
