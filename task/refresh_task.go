package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/database"
	"github.com/avdberg/spotwatch-go/metrics"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

func NewRefreshTask(logger *slog.Logger, crd *coordinator.Coordinator, db *database.Database, rec *metrics.Recorder) func() {
	// The cache is memory only and empty on every boot, so the first
	// refresh runs right away instead of waiting for the schedule.
	logger.Info("cold cache, running initial price refresh")
	runRefreshTask(logger, crd, db, rec)

	return func() { runRefreshTask(logger, crd, db, rec) }
}

func runRefreshTask(logger *slog.Logger, crd *coordinator.Coordinator, db *database.Database, rec *metrics.Recorder) {
	logger.Debug("running price refresh task...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := crd.Refresh(ctx)
	if err != nil {
		logger.Error("price refresh task error", slog.Any("error", err))
	}

	for _, cr := range result.Results {
		commodity := cr.Commodity.String()

		outcome := outcomeSuccess
		errStr := ""
		if cr.Err != nil {
			outcome = outcomeFailure
			errStr = cr.Err.Error()
		}
		rec.RecordRefresh(commodity, outcome)

		row := database.RefreshHistoryRow{
			At:        result.At,
			Commodity: commodity,
			Outcome:   outcome,
			Hours:     cr.Hours,
			Error:     errStr,
		}
		if err := db.SaveRefreshHistory(ctx, row); err != nil {
			logger.Error("saving refresh history", slog.Any("error", err))
		}

		snap := crd.Snapshot(cr.Commodity)
		rec.RecordCachedHours(commodity, len(snap.Series))
		rec.RecordStale(commodity, snap.Stale())
		if !snap.LastSuccess.IsZero() {
			rec.RecordLastSuccess(commodity, snap.LastSuccess)
		}
		if v, ok := crd.Statistic(cr.Commodity, "current_total"); ok && v.IsValid() {
			rec.RecordCurrentPrice(commodity, v.Value().Value)
		}
	}

	logger.Info("price refresh task done",
		slog.String("outcome", refreshOutcome(result)),
		slog.Bool("hasTomorrow", crd.HasTomorrow()))
}

func refreshOutcome(result coordinator.RefreshResult) string {
	if result.Err() != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}
