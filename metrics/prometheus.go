package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes refresh and cache health over Prometheus.
type Recorder struct {
	refreshes   *prometheus.CounterVec
	cachedHours *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
	stale       *prometheus.GaugeVec
	currentHour *prometheus.GaugeVec
	fetchTime   *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spotwatch_refreshes_total",
				Help: "Total number of price refreshes by outcome",
			},
			[]string{"commodity", "outcome"},
		),
		cachedHours: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spotwatch_cached_hours",
				Help: "Number of hourly prices currently cached",
			},
			[]string{"commodity"},
		),
		lastSuccess: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spotwatch_last_success_timestamp_seconds",
				Help: "Unix timestamp of the last successful refresh",
			},
			[]string{"commodity"},
		),
		stale: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spotwatch_cache_stale",
				Help: "Whether the cached prices are considered stale (1) or fresh (0)",
			},
			[]string{"commodity"},
		),
		currentHour: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spotwatch_current_price",
				Help: "All-in price for the current hour",
			},
			[]string{"commodity"},
		),
		fetchTime: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spotwatch_fetch_duration_seconds",
				Help:    "Duration of upstream price fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"commodity"},
		),
	}
}

// RecordRefresh records the outcome of one commodity refresh.
func (r *Recorder) RecordRefresh(commodity, outcome string) {
	r.refreshes.WithLabelValues(commodity, outcome).Inc()
}

// RecordCachedHours records the size of a commodity cache.
func (r *Recorder) RecordCachedHours(commodity string, hours int) {
	r.cachedHours.WithLabelValues(commodity).Set(float64(hours))
}

// RecordLastSuccess records when a commodity last refreshed successfully.
func (r *Recorder) RecordLastSuccess(commodity string, at time.Time) {
	r.lastSuccess.WithLabelValues(commodity).Set(float64(at.Unix()))
}

// RecordStale records whether a commodity cache has gone stale.
func (r *Recorder) RecordStale(commodity string, isStale bool) {
	v := 0.0
	if isStale {
		v = 1.0
	}
	r.stale.WithLabelValues(commodity).Set(v)
}

// RecordCurrentPrice records the all-in price for the current hour.
func (r *Recorder) RecordCurrentPrice(commodity string, price float64) {
	r.currentHour.WithLabelValues(commodity).Set(price)
}

// RecordFetchDuration records how long an upstream fetch took.
func (r *Recorder) RecordFetchDuration(commodity string, seconds float64) {
	r.fetchTime.WithLabelValues(commodity).Observe(seconds)
}
