package prices

import (
	"maps"
	"slices"
	"time"

	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/types/maybe"
)

// StatValue is the result of a derived statistic. At is set when the
// value refers to a specific hour, like the hour of the daily minimum,
// and zero otherwise.
type StatValue struct {
	Value float64
	At    time.Time
}

// StatFunc computes a named statistic from a series. The result is
// None when the series has no data for the hours the statistic needs,
// an absent value is not a zero value.
type StatFunc func(s Series, now time.Time) maybe.Maybe[StatValue]

func market(p Point) float64 { return p.MarketPrice }
func tax(p Point) float64    { return p.Tax }
func markup(p Point) float64 { return p.Markup }

func pointStat(shift func(time.Time) time.Time, value func(Point) float64) StatFunc {
	return func(s Series, now time.Time) maybe.Maybe[StatValue] {
		p, ok := s.At(shift(now))
		if !ok {
			return maybe.None[StatValue]()
		}
		return maybe.Some(StatValue{Value: value(p), At: p.From})
	}
}

type windowFunc func(s Series, now time.Time) Series

func windowToday(s Series, now time.Time) Series {
	from, till := hours.DayWindow(now)
	return s.Window(from, till)
}

func windowTomorrow(s Series, now time.Time) Series {
	from, till := hours.NextDayWindow(now)
	return s.Window(from, till)
}

func windowUpcoming(s Series, now time.Time) Series {
	return s.After(now)
}

func windowAll(s Series, _ time.Time) Series {
	return s
}

func minStat(window windowFunc) StatFunc {
	return func(s Series, now time.Time) maybe.Maybe[StatValue] {
		p, ok := window(s, now).Min()
		if !ok {
			return maybe.None[StatValue]()
		}
		return maybe.Some(StatValue{Value: p.Total(), At: p.From})
	}
}

func maxStat(window windowFunc) StatFunc {
	return func(s Series, now time.Time) maybe.Maybe[StatValue] {
		p, ok := window(s, now).Max()
		if !ok {
			return maybe.None[StatValue]()
		}
		return maybe.Some(StatValue{Value: p.Total(), At: p.From})
	}
}

func avgStat(window windowFunc, value func(Point) float64) StatFunc {
	return func(s Series, now time.Time) maybe.Maybe[StatValue] {
		avg, ok := window(s, now).Avg(value)
		if !ok {
			return maybe.None[StatValue]()
		}
		return maybe.Some(StatValue{Value: avg})
	}
}

// taxShare is the share of the current hour's with-tax price that is
// tax, in percent.
func taxShare(s Series, now time.Time) maybe.Maybe[StatValue] {
	p, ok := s.At(now)
	if !ok || p.MarketWithTax() == 0 {
		return maybe.None[StatValue]()
	}
	return maybe.Some(StatValue{Value: 100 * p.Tax / p.MarketWithTax(), At: p.From})
}

func hourCount(s Series, _ time.Time) maybe.Maybe[StatValue] {
	return maybe.Some(StatValue{Value: float64(len(s))})
}

var statFuncs = map[string]StatFunc{
	"current_total":           pointStat(hours.Start, Point.Total),
	"current_market":          pointStat(hours.Start, market),
	"current_market_with_tax": pointStat(hours.Start, Point.MarketWithTax),
	"current_tax":             pointStat(hours.Start, tax),
	"current_markup":          pointStat(hours.Start, markup),
	"current_tax_share":       taxShare,

	"previous_total":  pointStat(hours.Prev, Point.Total),
	"previous_market": pointStat(hours.Prev, market),
	"next_total":      pointStat(hours.Next, Point.Total),
	"next_market":     pointStat(hours.Next, market),

	"today_min":          minStat(windowToday),
	"today_max":          maxStat(windowToday),
	"today_avg":          avgStat(windowToday, Point.Total),
	"today_avg_market":   avgStat(windowToday, market),
	"today_avg_with_tax": avgStat(windowToday, Point.MarketWithTax),

	"tomorrow_min":          minStat(windowTomorrow),
	"tomorrow_max":          maxStat(windowTomorrow),
	"tomorrow_avg":          avgStat(windowTomorrow, Point.Total),
	"tomorrow_avg_market":   avgStat(windowTomorrow, market),
	"tomorrow_avg_with_tax": avgStat(windowTomorrow, Point.MarketWithTax),

	"upcoming_min":        minStat(windowUpcoming),
	"upcoming_max":        maxStat(windowUpcoming),
	"upcoming_avg":        avgStat(windowUpcoming, Point.Total),
	"upcoming_avg_market": avgStat(windowUpcoming, market),

	"all_min": minStat(windowAll),
	"all_max": maxStat(windowAll),
	"all_avg": avgStat(windowAll, Point.Total),

	"hour_count": hourCount,
}

// Stat looks up a statistic by name.
func Stat(name string) (StatFunc, bool) {
	fn, ok := statFuncs[name]
	return fn, ok
}

// StatNames lists all registered statistic names, sorted.
func StatNames() []string {
	return slices.Sorted(maps.Keys(statFuncs))
}
