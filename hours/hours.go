// Package hours provides hour and day arithmetic for spot price series.
// Prices are keyed by the UTC instant at the start of their hour. Day
// boundaries follow the market timezone since the exchange publishes
// prices per local calendar day.
package hours

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	hourLayout = "2006-01-02 15"
)

var (
	marketLocation *time.Location
	guiLocation    *time.Location = time.UTC
)

func init() {
	var err error
	marketLocation, err = time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		panic(fmt.Sprintf("failed to load Amsterdam location: %v", err))
	}
}

func SetMarketTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	marketLocation = loc
	return nil
}

func SetGuiTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	guiLocation = loc
	return nil
}

// Start truncates t to the start of its hour, in UTC.
func Start(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

func Next(t time.Time) time.Time {
	return Start(t).Add(time.Hour)
}

func Prev(t time.Time) time.Time {
	return Start(t).Add(-time.Hour)
}

func SameHour(a, b time.Time) bool {
	return Start(a).Equal(Start(b))
}

// DayWindow returns the half-open interval [from, till) covering t's
// market day. AddDate keeps the window correct on DST transition days
// where the day is 23 or 25 hours long.
func DayWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(marketLocation)
	y, m, d := local.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, marketLocation)
	till := from.AddDate(0, 0, 1)
	return from.UTC(), till.UTC()
}

// NextDayWindow returns the market day window following t's day.
func NextDayWindow(t time.Time) (time.Time, time.Time) {
	_, till := DayWindow(t)
	return DayWindow(till)
}

// DayDate formats t's market day as 2006-01-02, the format the price
// API takes for its date range variables.
func DayDate(t time.Time) string {
	return t.In(marketLocation).Format(dateLayout)
}

func SameDay(a, b time.Time) bool {
	return DayDate(a) == DayDate(b)
}

// FormatHour renders the hour instant localized for display.
func FormatHour(t time.Time) string {
	return t.In(guiLocation).Format(hourLayout)
}

func FormatTimeInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format("2006-01-02 15:04:05")
}

func FromIso(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
