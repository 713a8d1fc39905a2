package frank

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avdberg/spotwatch-go/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

const twoHourResponse = `{
	"data": {
		"marketPricesElectricity": [
			{"from": "2025-01-15T10:00:00.000Z", "till": "2025-01-15T11:00:00.000Z",
			 "marketPrice": 0.105, "marketPriceTax": 0.022, "sourcingMarkupPrice": 0.018, "energyTaxPrice": 0.109},
			{"from": "2025-01-15T11:00:00.000Z", "till": "2025-01-15T12:00:00.000Z",
			 "marketPrice": 0.098, "marketPriceTax": 0.021, "sourcingMarkupPrice": 0.018, "energyTaxPrice": 0.109}
		],
		"marketPricesGas": [
			{"from": "2025-01-15T10:00:00.000Z", "till": "2025-01-15T11:00:00.000Z",
			 "marketPrice": 0.312, "marketPriceTax": 0.066, "sourcingMarkupPrice": 0.059, "energyTaxPrice": 0.385}
		]
	}
}`

func fetchWindow() (time.Time, time.Time) {
	from := time.Date(2025, time.January, 14, 23, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

func TestFetchParsesElectricityPrices(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, twoHourResponse)
	}))
	defer server.Close()

	from, till := fetchWindow()
	series, err := New(server.URL).Fetch(context.Background(), types.CommodityElectricity, from, till)
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}

	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}

	p := series[0]
	if !p.From.Equal(time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("expected first hour at 10:00 UTC, got %v", p.From)
	}
	if !almostEqual(p.MarketPrice, 0.105) {
		t.Errorf("expected market price 0.105, got %f", p.MarketPrice)
	}
	// VAT and energy tax fold into the tax component.
	if !almostEqual(p.Tax, 0.131) {
		t.Errorf("expected tax 0.131, got %f", p.Tax)
	}
	if !almostEqual(p.Markup, 0.018) {
		t.Errorf("expected markup 0.018, got %f", p.Markup)
	}
	if !almostEqual(p.Total(), 0.254) {
		t.Errorf("expected total 0.254, got %f", p.Total())
	}

	var req struct {
		OperationName string            `json:"operationName"`
		Variables     map[string]string `json:"variables"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("request body is not valid json: %v", err)
	}
	if req.OperationName != "MarketPrices" {
		t.Errorf("expected operation MarketPrices, got %q", req.OperationName)
	}
	// The window covers the Amsterdam market day of Jan 15.
	if req.Variables["startDate"] != "2025-01-15" || req.Variables["endDate"] != "2025-01-16" {
		t.Errorf("expected date range 2025-01-15..2025-01-16, got %v", req.Variables)
	}
}

func TestFetchPicksGasList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, twoHourResponse)
	}))
	defer server.Close()

	from, till := fetchWindow()
	series, err := New(server.URL).Fetch(context.Background(), types.CommodityGas, from, till)
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected 1 gas point, got %d", len(series))
	}
	if !almostEqual(series[0].MarketPrice, 0.312) {
		t.Errorf("expected gas market price 0.312, got %f", series[0].MarketPrice)
	}
}

func TestFetchEmptyDayIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": {"marketPricesElectricity": [], "marketPricesGas": []}}`)
	}))
	defer server.Close()

	from, till := fetchWindow()
	series, err := New(server.URL).Fetch(context.Background(), types.CommodityElectricity, from, till)
	if err != nil {
		t.Fatalf("Fetch() on an unpublished day expected no error, got %v", err)
	}
	if len(series) != 0 {
		t.Fatalf("expected an empty series, got %d points", len(series))
	}
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	from, till := fetchWindow()
	_, err := New(server.URL).Fetch(context.Background(), types.CommodityElectricity, from, till)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected a TransportError, got %v", err)
	}
	if transportErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", transportErr.StatusCode)
	}
}

func TestFetchConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	from, till := fetchWindow()
	_, err := New(server.URL).Fetch(context.Background(), types.CommodityElectricity, from, till)

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected a TransportError, got %v", err)
	}
}

func TestFetchMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>definitely not graphql</html>`)
	}))
	defer server.Close()

	from, till := fetchWindow()
	_, err := New(server.URL).Fetch(context.Background(), types.CommodityElectricity, from, till)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected a SchemaError, got %v", err)
	}
}

func TestFetchGraphqlErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errors": [{"message": "startDate is malformed"}]}`)
	}))
	defer server.Close()

	from, till := fetchWindow()
	_, err := New(server.URL).Fetch(context.Background(), types.CommodityElectricity, from, till)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected a SchemaError, got %v", err)
	}
	if !strings.Contains(schemaErr.Reason, "startDate is malformed") {
		t.Errorf("expected the upstream message in the reason, got %q", schemaErr.Reason)
	}
}

func TestFetchMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": {"marketPricesElectricity": [{"from": "2025-01-15T10:00:00.000Z"}]}}`)
	}))
	defer server.Close()

	from, till := fetchWindow()
	_, err := New(server.URL).Fetch(context.Background(), types.CommodityElectricity, from, till)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected a SchemaError, got %v", err)
	}
	if !strings.Contains(schemaErr.Reason, "marketPrice") {
		t.Errorf("expected the missing field in the reason, got %q", schemaErr.Reason)
	}
}
