package hours

import (
	"testing"
	"time"
)

func TestStart(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "already aligned",
			input:    time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC),
			expected: time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "truncates minutes and seconds",
			input:    time.Date(2025, time.January, 1, 10, 42, 19, 500, time.UTC),
			expected: time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:     "normalizes to UTC",
			input:    time.Date(2025, time.January, 1, 11, 30, 0, 0, time.FixedZone("CET", 3600)),
			expected: time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Start(tt.input); !got.Equal(tt.expected) {
				t.Errorf("Start() expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNextPrev(t *testing.T) {
	base := time.Date(2025, time.January, 1, 10, 15, 0, 0, time.UTC)
	if got := Next(base); !got.Equal(time.Date(2025, time.January, 1, 11, 0, 0, 0, time.UTC)) {
		t.Errorf("Next() expected 11:00, got %v", got)
	}
	if got := Prev(base); !got.Equal(time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Prev() expected 09:00, got %v", got)
	}
}

func TestSameHour(t *testing.T) {
	a := time.Date(2025, time.January, 1, 10, 5, 0, 0, time.UTC)
	b := time.Date(2025, time.January, 1, 10, 55, 0, 0, time.UTC)
	c := time.Date(2025, time.January, 1, 11, 0, 0, 0, time.UTC)
	if !SameHour(a, b) {
		t.Errorf("expected %v and %v to share an hour", a, b)
	}
	if SameHour(a, c) {
		t.Errorf("expected %v and %v not to share an hour", a, c)
	}
}

func TestDayWindow(t *testing.T) {
	tests := []struct {
		name         string
		input        time.Time
		expectedFrom time.Time
		expectedTill time.Time
	}{
		{
			// Amsterdam is UTC+1 in winter, so the local day starts at 23:00 UTC the evening before.
			name:         "winter day",
			input:        time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
			expectedFrom: time.Date(2025, time.January, 14, 23, 0, 0, 0, time.UTC),
			expectedTill: time.Date(2025, time.January, 15, 23, 0, 0, 0, time.UTC),
		},
		{
			name:         "summer day",
			input:        time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC),
			expectedFrom: time.Date(2025, time.July, 14, 22, 0, 0, 0, time.UTC),
			expectedTill: time.Date(2025, time.July, 15, 22, 0, 0, 0, time.UTC),
		},
		{
			// DST starts 2025-03-30, the local day is only 23 hours long.
			name:         "spring transition day",
			input:        time.Date(2025, time.March, 30, 12, 0, 0, 0, time.UTC),
			expectedFrom: time.Date(2025, time.March, 29, 23, 0, 0, 0, time.UTC),
			expectedTill: time.Date(2025, time.March, 30, 22, 0, 0, 0, time.UTC),
		},
		{
			// 00:30 UTC in winter is 01:30 local, so it belongs to the local
			// day that started at 23:00 UTC the evening before.
			name:         "after utc midnight",
			input:        time.Date(2025, time.January, 15, 0, 30, 0, 0, time.UTC),
			expectedFrom: time.Date(2025, time.January, 14, 23, 0, 0, 0, time.UTC),
			expectedTill: time.Date(2025, time.January, 15, 23, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, till := DayWindow(tt.input)
			if !from.Equal(tt.expectedFrom) {
				t.Errorf("DayWindow() from expected %v, got %v", tt.expectedFrom, from)
			}
			if !till.Equal(tt.expectedTill) {
				t.Errorf("DayWindow() till expected %v, got %v", tt.expectedTill, till)
			}
		})
	}
}

func TestNextDayWindow(t *testing.T) {
	input := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	from, till := NextDayWindow(input)
	expectedFrom := time.Date(2025, time.January, 15, 23, 0, 0, 0, time.UTC)
	expectedTill := time.Date(2025, time.January, 16, 23, 0, 0, 0, time.UTC)
	if !from.Equal(expectedFrom) {
		t.Errorf("NextDayWindow() from expected %v, got %v", expectedFrom, from)
	}
	if !till.Equal(expectedTill) {
		t.Errorf("NextDayWindow() till expected %v, got %v", expectedTill, till)
	}
}

func TestDayDate(t *testing.T) {
	// 23:30 UTC on the 14th is already the 15th in Amsterdam.
	input := time.Date(2025, time.January, 14, 23, 30, 0, 0, time.UTC)
	if got := DayDate(input); got != "2025-01-15" {
		t.Errorf("DayDate() expected %q, got %q", "2025-01-15", got)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, time.January, 14, 23, 30, 0, 0, time.UTC)
	b := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)
	c := time.Date(2025, time.January, 14, 12, 0, 0, 0, time.UTC)
	if !SameDay(a, b) {
		t.Errorf("expected %v and %v to share a market day", a, b)
	}
	if SameDay(a, c) {
		t.Errorf("expected %v and %v not to share a market day", a, c)
	}
}

func TestFromIso(t *testing.T) {
	parsed := FromIso("2025-01-01T15:00:00.000Z")
	expected := time.Date(2025, time.January, 1, 15, 0, 0, 0, time.UTC)
	if !parsed.Equal(expected) {
		t.Errorf("FromIso() expected %v, got %v", expected, parsed)
	}

	if !FromIso("not a valid iso date").IsZero() {
		t.Errorf("FromIso() expected zero time for an invalid date string")
	}
}
