package www

import (
	"log/slog"
	"net/http"

	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/sensor"
)

func NewSensorsHandler(logger *slog.Logger, crd *coordinator.Coordinator, registry *sensor.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := writeJson(w, http.StatusOK, registry.Read(crd)); err != nil {
			logger.Error("handling sensors request", slog.Any("error", err))
		}
	}
}
