package task

import (
	"log/slog"

	"github.com/avdberg/spotwatch-go/coordinator"
)

// NewRepublishTask nudges the publishers at every hour boundary.
// Current/previous/next-hour sensors change value without any new data
// arriving.
func NewRepublishTask(logger *slog.Logger, crd *coordinator.Coordinator) func() {
	return func() {
		logger.Debug("announcing hourly republish")
		crd.Announce()
	}
}
