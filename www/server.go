package www

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avdberg/spotwatch-go/config"
	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/database"
	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/sensor"
)

type Server struct {
	logger   *slog.Logger
	config   config.AppConfigApi
	db       *database.Database
	crd      *coordinator.Coordinator
	registry *sensor.Registry
	hub      *Hub
}

func StartServer(
	db *database.Database,
	crd *coordinator.Coordinator,
	registry *sensor.Registry,
	refreshTask func(),
	cnfg config.AppConfigApi) *Server {

	logger := slog.Default().With("module", "www")

	s := &Server{
		logger:   logger,
		config:   cnfg,
		db:       db,
		crd:      crd,
		registry: registry,
		hub:      NewHub(logger),
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	http.Handle("/api/prices", logReqMW(NewPricesHandler(
		logger.With(slog.String("handler", "prices")),
		s.crd)))

	http.Handle("/api/sensors", logReqMW(NewSensorsHandler(
		logger.With(slog.String("handler", "sensors")),
		s.crd,
		s.registry)))

	http.Handle("/api/status", logReqMW(NewStatusHandler(
		logger.With(slog.String("handler", "status")),
		s.crd)))

	http.Handle("/api/log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		s.db)))

	http.Handle("/api/refreshes", logReqMW(NewRefreshHistoryHandler(
		logger.With(slog.String("handler", "refreshes")),
		s.db)))

	http.Handle("/api/refresh", logReqMW(NewRefreshHandler(
		logger.With(slog.String("handler", "refresh")),
		refreshTask)))

	http.Handle("/healthz", NewHealthHandler(s.crd))

	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "address", s.config.Address, "port", s.config.Port)
	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	// Current/next-hour sensors flip at hour boundaries without any
	// refresh, so connected dashboards get a periodic frame too.
	ticker := time.NewTicker(time.Second * 30)
	defer ticker.Stop()

	for {
		select {
		case err := <-srvErrors:
			if err != nil {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			s.BroadcastSensors()
		}
	}
}

type sensorFrame struct {
	Type     string           `json:"type"`
	At       string           `json:"at"`
	Readings []sensor.Reading `json:"readings"`
}

// BroadcastSensors pushes the current sensor readings to every
// websocket client. Called from the run loop and after every refresh.
func (s *Server) BroadcastSensors() {
	frame := sensorFrame{
		Type:     "sensors",
		At:       hours.FormatTimeInGuiTimezone(time.Now()),
		Readings: s.registry.Read(s.crd),
	}

	buf, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error("marshalling sensor frame", slog.Any("error", err))
		return
	}

	s.hub.Broadcast <- buf
}
