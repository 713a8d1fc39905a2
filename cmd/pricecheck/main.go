package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/avdberg/spotwatch-go/frank"
	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/prices"
	"github.com/avdberg/spotwatch-go/types"
)

// pricecheck fetches one market day and prints it, a quick probe for
// the API endpoint without running the daemon.
func main() {
	url := flag.String("url", "", "GraphQL endpoint, empty means the public API")
	tomorrow := flag.Bool("tomorrow", false, "fetch tomorrow's prices instead of today's")
	flag.Parse()

	w := os.Stdout
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC3339,
		}),
	))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	day := time.Now()
	if *tomorrow {
		day = day.AddDate(0, 0, 1)
	}
	from, till := hours.DayWindow(day)
	fmt.Printf("prices for market day %s\n", hours.DayDate(day))

	client := frank.New(*url)
	failed := false
	for _, commodity := range types.Commodities() {
		series, err := client.Fetch(ctx, commodity, from, till)
		if err != nil {
			slog.Error("fetch failed", slog.String("commodity", commodity.String()), slog.Any("error", err))
			failed = true
			continue
		}
		printSeries(commodity, series)
	}

	if failed {
		os.Exit(1)
	}
}

func printSeries(commodity types.Commodity, series prices.Series) {
	fmt.Printf("\n%s (%s), %d hours\n", commodity, commodity.Unit(), len(series))
	if series.IsEmpty() {
		fmt.Println("  no prices published for this day")
		return
	}

	for _, p := range series {
		fmt.Printf("  %s  market %8.5f  tax %8.5f  markup %8.5f  total %8.5f\n",
			hours.FormatHour(p.From), p.MarketPrice, p.Tax, p.Markup, p.Total())
	}

	if min, ok := series.Min(); ok {
		fmt.Printf("  min %8.5f at %s\n", min.Total(), hours.FormatHour(min.From))
	}
	if max, ok := series.Max(); ok {
		fmt.Printf("  max %8.5f at %s\n", max.Total(), hours.FormatHour(max.From))
	}
	if avg, ok := series.Avg(prices.Point.Total); ok {
		fmt.Printf("  avg %8.5f\n", avg)
	}
}
