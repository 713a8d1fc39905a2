package prices

import (
	"slices"
	"testing"
	"time"
)

// fixture builds two full Amsterdam market days of prices starting at
// 2025-01-14 23:00 UTC. Today's market price ramps up by the hour,
// tomorrow's is flat and cheaper than today's afternoon.
func fixture() Series {
	dayStart := time.Date(2025, time.January, 14, 23, 0, 0, 0, time.UTC)
	points := make([]Point, 0, 48)
	for i := 0; i < 24; i++ {
		points = append(points, Point{
			From:        dayStart.Add(time.Duration(i) * time.Hour),
			MarketPrice: 0.10 + 0.01*float64(i),
			Tax:         0.05,
			Markup:      0.02,
		})
	}
	tomorrowStart := dayStart.AddDate(0, 0, 1)
	for i := 0; i < 24; i++ {
		points = append(points, Point{
			From:        tomorrowStart.Add(time.Duration(i) * time.Hour),
			MarketPrice: 0.20,
			Tax:         0.05,
			Markup:      0.02,
		})
	}
	return NewSeries(points)
}

// fixtureNow is 10:30 UTC, hour 12 of the fixture's first market day.
var fixtureNow = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

func evalStat(t *testing.T, s Series, name string, now time.Time) StatValue {
	t.Helper()
	fn, ok := Stat(name)
	if !ok {
		t.Fatalf("unknown statistic %q", name)
	}
	v := fn(s, now)
	if !v.IsValid() {
		t.Fatalf("statistic %q expected a value, got none", name)
	}
	return v.Value()
}

func TestStatValues(t *testing.T) {
	s := fixture()

	// The hour covering 10:30 UTC is index 11 of the ramp.
	tests := []struct {
		name     string
		expected float64
	}{
		{"current_total", 0.28},
		{"current_market", 0.21},
		{"current_market_with_tax", 0.26},
		{"current_tax", 0.05},
		{"current_markup", 0.02},
		{"previous_total", 0.27},
		{"previous_market", 0.20},
		{"next_total", 0.29},
		{"next_market", 0.22},
		{"today_min", 0.17},
		{"today_max", 0.40},
		{"today_avg", 0.285},
		{"today_avg_market", 0.215},
		{"today_avg_with_tax", 0.265},
		{"tomorrow_min", 0.27},
		{"tomorrow_max", 0.27},
		{"tomorrow_avg", 0.27},
		{"tomorrow_avg_market", 0.20},
		{"tomorrow_avg_with_tax", 0.25},
		{"all_min", 0.17},
		{"all_max", 0.40},
		{"hour_count", 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := evalStat(t, s, tt.name, fixtureNow)
			if !almostEqual(v.Value, tt.expected) {
				t.Errorf("%s expected %f, got %f", tt.name, tt.expected, v.Value)
			}
		})
	}
}

func TestStatHours(t *testing.T) {
	s := fixture()

	tests := []struct {
		name     string
		expected time.Time
	}{
		{"current_total", time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)},
		{"previous_total", time.Date(2025, time.January, 15, 9, 0, 0, 0, time.UTC)},
		{"next_total", time.Date(2025, time.January, 15, 11, 0, 0, 0, time.UTC)},
		{"today_min", time.Date(2025, time.January, 14, 23, 0, 0, 0, time.UTC)},
		{"today_max", time.Date(2025, time.January, 15, 22, 0, 0, 0, time.UTC)},
		{"tomorrow_min", time.Date(2025, time.January, 15, 23, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := evalStat(t, s, tt.name, fixtureNow)
			if !v.At.Equal(tt.expected) {
				t.Errorf("%s expected hour %v, got %v", tt.name, tt.expected, v.At)
			}
		})
	}
}

func TestUpcomingExcludesCurrentHourAndSpansDays(t *testing.T) {
	s := fixture()

	// Upcoming hours start after hour index 11. Today's remaining totals
	// run 0.29..0.40, tomorrow is flat 0.27, so tomorrow holds the minimum.
	v := evalStat(t, s, "upcoming_min", fixtureNow)
	if !almostEqual(v.Value, 0.27) {
		t.Errorf("upcoming_min expected 0.27, got %f", v.Value)
	}
	if !v.At.Equal(time.Date(2025, time.January, 15, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("upcoming_min expected tomorrow's first hour, got %v", v.At)
	}

	max := evalStat(t, s, "upcoming_max", fixtureNow)
	if !almostEqual(max.Value, 0.40) {
		t.Errorf("upcoming_max expected 0.40, got %f", max.Value)
	}
}

func TestTaxShare(t *testing.T) {
	s := fixture()
	v := evalStat(t, s, "current_tax_share", fixtureNow)
	// Tax 0.05 of a with-tax price 0.26.
	expected := 100 * 0.05 / 0.26
	if !almostEqual(v.Value, expected) {
		t.Errorf("current_tax_share expected %f, got %f", expected, v.Value)
	}
}

func TestStatsUnavailableOnEmptyWindows(t *testing.T) {
	var empty Series
	for _, name := range []string{"current_total", "today_avg", "tomorrow_min", "upcoming_avg", "all_max"} {
		fn, _ := Stat(name)
		if fn(empty, fixtureNow).IsValid() {
			t.Errorf("%s expected no value on an empty series", name)
		}
	}

	// hour_count is a real zero, not an absent value.
	fn, _ := Stat("hour_count")
	v := fn(empty, fixtureNow)
	if !v.IsValid() || v.Value().Value != 0 {
		t.Errorf("hour_count expected 0 on an empty series, got %+v", v)
	}
}

func TestTomorrowUnavailableBeforePublication(t *testing.T) {
	// Only today's hours cached, tomorrow's statistics must be absent
	// rather than zero.
	dayStart := time.Date(2025, time.January, 14, 23, 0, 0, 0, time.UTC)
	points := make([]Point, 0, 24)
	for i := 0; i < 24; i++ {
		points = append(points, Point{From: dayStart.Add(time.Duration(i) * time.Hour), MarketPrice: 0.10})
	}
	s := NewSeries(points)

	for _, name := range []string{"tomorrow_min", "tomorrow_max", "tomorrow_avg"} {
		fn, _ := Stat(name)
		if fn(s, fixtureNow).IsValid() {
			t.Errorf("%s expected no value before tomorrow is published", name)
		}
	}

	if !evalStat(t, s, "today_avg", fixtureNow).At.IsZero() {
		t.Errorf("today_avg should not carry an hour")
	}
}

func TestStatResolvesAtReadTime(t *testing.T) {
	// The same series read an hour later yields the next hour's price,
	// no refresh needed.
	s := fixture()

	before := evalStat(t, s, "current_total", fixtureNow)
	after := evalStat(t, s, "current_total", fixtureNow.Add(time.Hour))

	if !almostEqual(before.Value, 0.28) {
		t.Errorf("expected 0.28 before, got %f", before.Value)
	}
	if !almostEqual(after.Value, 0.29) {
		t.Errorf("expected 0.29 an hour later, got %f", after.Value)
	}
}

func TestStatNames(t *testing.T) {
	names := StatNames()
	if len(names) != len(statFuncs) {
		t.Fatalf("expected %d names, got %d", len(statFuncs), len(names))
	}
	if !slices.IsSorted(names) {
		t.Error("expected names to be sorted")
	}
	if !slices.Contains(names, "current_total") {
		t.Error("expected names to contain current_total")
	}
	if _, ok := Stat("no_such_stat"); ok {
		t.Error("expected lookup of unknown statistic to fail")
	}
}
