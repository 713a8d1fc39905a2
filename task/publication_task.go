package task

import (
	"log/slog"

	"github.com/avdberg/spotwatch-go/coordinator"
)

// NewPublicationTask wraps the refresh task with a guard for the
// publication window. The exchange publishes tomorrow's prices at some
// point in the early afternoon, so the schedule polls every few
// minutes but only fetches until the data has landed.
func NewPublicationTask(logger *slog.Logger, crd *coordinator.Coordinator, refresh func()) func() {
	return func() {
		if crd.HasTomorrow() {
			logger.Debug("tomorrow's prices already cached, skipping poll")
			return
		}

		logger.Info("polling for tomorrow's prices")
		refresh()
	}
}
