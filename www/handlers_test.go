package www

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avdberg/spotwatch-go/coordinator"
	"github.com/avdberg/spotwatch-go/prices"
	"github.com/avdberg/spotwatch-go/sensor"
	"github.com/avdberg/spotwatch-go/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sourceFunc func(ctx context.Context, commodity types.Commodity, from, till time.Time) (prices.Series, error)

func (f sourceFunc) Fetch(ctx context.Context, commodity types.Commodity, from, till time.Time) (prices.Series, error) {
	return f(ctx, commodity, from, till)
}

var testNow = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

func flatSource(market float64) sourceFunc {
	return func(_ context.Context, _ types.Commodity, from, till time.Time) (prices.Series, error) {
		var points []prices.Point
		for h := from; h.Before(till); h = h.Add(time.Hour) {
			points = append(points, prices.Point{From: h, MarketPrice: market, Tax: 0.05, Markup: 0.02})
		}
		return prices.NewSeries(points), nil
	}
}

func populatedCoordinator(t *testing.T) *coordinator.Coordinator {
	t.Helper()
	crd := coordinator.New(testLogger(), flatSource(0.10), coordinator.Options{
		Now: func() time.Time { return testNow },
	})
	if _, err := crd.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	return crd
}

func TestPricesHandlerReturnsBothCommodities(t *testing.T) {
	handler := NewPricesHandler(testLogger(), populatedCoordinator(t))

	req := httptest.NewRequest(http.MethodGet, "/api/prices", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status expected %d, got %d", http.StatusOK, rec.Code)
	}

	var payload []priceSeriesPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("expected 2 commodities, got %d", len(payload))
	}
	for _, series := range payload {
		if series.State != string(coordinator.StatePopulated) {
			t.Errorf("%s state expected populated, got %s", series.Commodity, series.State)
		}
		if len(series.Points) != 24 {
			t.Errorf("%s expected 24 points, got %d", series.Commodity, len(series.Points))
		}
		if series.Points[0].Total != 0.17 {
			t.Errorf("%s total expected 0.17, got %v", series.Commodity, series.Points[0].Total)
		}
	}
}

func TestPricesHandlerFiltersOnCommodity(t *testing.T) {
	handler := NewPricesHandler(testLogger(), populatedCoordinator(t))

	req := httptest.NewRequest(http.MethodGet, "/api/prices?commodity=gas", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var payload []priceSeriesPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(payload) != 1 || payload[0].Commodity != types.CommodityGas {
		t.Fatalf("expected only gas, got %+v", payload)
	}
	if payload[0].Unit != "€/m³" {
		t.Errorf("unit expected €/m³, got %s", payload[0].Unit)
	}
}

func TestPricesHandlerRejectsUnknownCommodity(t *testing.T) {
	handler := NewPricesHandler(testLogger(), populatedCoordinator(t))

	req := httptest.NewRequest(http.MethodGet, "/api/prices?commodity=oil", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status expected %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestSensorsHandlerServesEnabledSensors(t *testing.T) {
	registry := sensor.NewRegistry()
	registry.SetEnabled([]string{"elec_markup", "gas_markup"})
	handler := NewSensorsHandler(testLogger(), populatedCoordinator(t), registry)

	req := httptest.NewRequest(http.MethodGet, "/api/sensors", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status expected %d, got %d", http.StatusOK, rec.Code)
	}

	var readings []sensor.Reading
	if err := json.NewDecoder(rec.Body).Decode(&readings); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}
	for _, r := range readings {
		if r.Value == nil {
			t.Errorf("%s expected a value", r.Key)
		}
	}
}

func TestRefreshHandlerRunsTask(t *testing.T) {
	ran := false
	handler := NewRefreshHandler(testLogger(), func() { ran = true })

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status expected %d, got %d", http.StatusAccepted, rec.Code)
	}
	if !ran {
		t.Error("expected refresh task to run")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestHealthHandlerUnavailableUntilFirstSuccess(t *testing.T) {
	cold := coordinator.New(testLogger(), flatSource(0.10), coordinator.Options{
		Now: func() time.Time { return testNow },
	})
	handler := NewHealthHandler(cold)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status expected %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}

	handler = NewHealthHandler(populatedCoordinator(t))
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status expected %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestStatusHandlerReportsTomorrow(t *testing.T) {
	handler := NewStatusHandler(testLogger(), populatedCoordinator(t))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var payload statusPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !payload.Healthy {
		t.Error("expected healthy after refresh")
	}
	if payload.HasTomorrow {
		t.Error("morning refresh should not have tomorrow's prices")
	}
	if len(payload.Commodities) != 2 {
		t.Fatalf("expected 2 commodities, got %d", len(payload.Commodities))
	}
	for _, cs := range payload.Commodities {
		if cs.Hours != 24 {
			t.Errorf("%s expected 24 hours, got %d", cs.Commodity, cs.Hours)
		}
	}
}
