package task

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/avdberg/spotwatch-go/config"
	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/database"
	"github.com/avdberg/spotwatch-go/metrics"
)

type Tasks struct {
	cron *cron.Cron
	cnfg *config.AppConfig

	// RefreshTask fetches prices for all commodities. Also runs once
	// during NewTasks, the cache starts empty on every boot.
	RefreshTask func()

	// PublicationTask polls for tomorrow's prices around the daily
	// publication window until they land.
	PublicationTask func()

	// RepublishTask pushes current readings without fetching, hourly
	// sensors move at hour boundaries.
	RepublishTask func()

	MaintenanceTask func()
}

func NewTasks(
	db *database.Database,
	crd *coordinator.Coordinator,
	rec *metrics.Recorder,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	refresh := NewRefreshTask(logger.With(slog.String("task", "refresh")), crd, db, rec)
	return &Tasks{
		cron:            cron.New(),
		cnfg:            cnfg,
		RefreshTask:     refresh,
		PublicationTask: NewPublicationTask(logger.With(slog.String("task", "publication")), crd, refresh),
		RepublishTask:   NewRepublishTask(logger.With(slog.String("task", "republish")), crd),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc(t.cnfg.Prices.GetRunAt(), t.RefreshTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc(t.cnfg.Prices.GetPublicationRunAt(), t.PublicationTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("@hourly", t.RepublishTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("30 2 * * *", t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
