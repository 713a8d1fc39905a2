package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/avdberg/spotwatch-go/config"
	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/database"
	"github.com/avdberg/spotwatch-go/frank"
	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/logging"
	"github.com/avdberg/spotwatch-go/metrics"
	"github.com/avdberg/spotwatch-go/mqtt"
	"github.com/avdberg/spotwatch-go/sensor"
	"github.com/avdberg/spotwatch-go/task"
	"github.com/avdberg/spotwatch-go/types"
	"github.com/avdberg/spotwatch-go/www"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := hours.SetMarketTimezone(cnfg.Prices.GetMarketTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set market timezone: %v", err))
	}
	if err := hours.SetGuiTimezone(cnfg.Gui.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set GUI timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("spotwatch is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	rec := metrics.New()
	source := metrics.NewInstrumentedSource(frank.New(cnfg.Prices.Url), rec)
	crd := coordinator.New(logger.With("module", "coordinator"), source, coordinator.Options{
		TomorrowAfterHour: cnfg.Prices.GetTomorrowAfterHour(),
		StaleAfter:        cnfg.Prices.GetStaleAfter(),
	})

	registry := sensor.NewRegistry()
	if unknown := registry.SetEnabled(cnfg.Sensors.Enabled); len(unknown) > 0 {
		logger.Warn("config enables unknown sensors", slog.Any("keys", unknown))
	}

	var pub *mqtt.Publisher
	if cnfg.Mqtt.Enabled {
		pub = mqtt.New(cnfg.Mqtt)
		pub.OnConnected = func() {
			if err := pub.PublishDiscovery(registry.Enabled()); err != nil {
				logger.Error("publishing discovery", slog.Any("error", err))
			}
			publishSensors(logger, pub, crd, registry)
		}
	}

	// The initial refresh runs inside NewTasks, before the publishers
	// connect, so the first published states already carry prices.
	tasks := task.NewTasks(db, crd, rec, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	if pub != nil {
		if isDevMode() {
			logger.Info("dev mode, skipping MQTT connection")
			pub = nil
		} else if err := pub.Connect(); err != nil {
			panic(fmt.Sprintf("MQTT connection error: %v", err))
		} else {
			defer pub.Disconnect()
		}
	}

	server := www.StartServer(db, crd, registry, tasks.RefreshTask, cnfg.Api)

	stopWatch, err := config.Watch(logger.With("module", "config"), *configPath, func(newCnfg *config.AppConfig) {
		if unknown := registry.SetEnabled(newCnfg.Sensors.Enabled); len(unknown) > 0 {
			logger.Warn("config enables unknown sensors", slog.Any("keys", unknown))
		}
		if err := hours.SetGuiTimezone(newCnfg.Gui.GetTimezone()); err != nil {
			logger.Warn("failed to set GUI timezone", slog.Any("error", err))
		}
		if pub != nil {
			if err := pub.PublishDiscovery(registry.Enabled()); err != nil {
				logger.Error("publishing discovery", slog.Any("error", err))
			}
			if removed := removedKeys(sensor.Catalog(), registry.Enabled()); len(removed) > 0 {
				if err := pub.RemoveDiscovery(removed); err != nil {
					logger.Error("removing discovery", slog.Any("error", err))
				}
			}
		}
		crd.Announce()
	})
	if err != nil {
		logger.Warn("config watcher not running", slog.Any("error", err))
	} else {
		defer stopWatch()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("main context done")
				return
			case sig := <-sigCh:
				logger.Info("received signal", slog.Any("signal", sig))
				cancel()
			case <-crd.C:
				publishSensors(logger, pub, crd, registry)
				server.BroadcastSensors()
			}
		}
	}()

	server.Run(ctx)
}

// publishSensors pushes availability and current readings over MQTT.
// A stale cache publishes as offline even though it still serves
// values locally.
func publishSensors(logger *slog.Logger, pub *mqtt.Publisher, crd *coordinator.Coordinator, registry *sensor.Registry) {
	if pub == nil {
		return
	}
	for _, commodity := range types.Commodities() {
		snap := crd.Snapshot(commodity)
		online := snap.State == coordinator.StatePopulated
		if err := pub.PublishAvailability(commodity, online); err != nil {
			logger.Warn("publishing availability", slog.Any("error", err))
		}
	}
	if err := pub.PublishReadings(registry.Read(crd)); err != nil {
		logger.Warn("publishing readings", slog.Any("error", err))
	}
}

// removedKeys lists catalog keys missing from the enabled set, the
// publisher retracts those from Home Assistant.
func removedKeys(catalog, enabled []sensor.Descriptor) []string {
	enabledKeys := make(map[string]bool, len(enabled))
	for _, d := range enabled {
		enabledKeys[d.Key] = true
	}
	var removed []string
	for _, d := range catalog {
		if !enabledKeys[d.Key] {
			removed = append(removed, d.Key)
		}
	}
	return removed
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
