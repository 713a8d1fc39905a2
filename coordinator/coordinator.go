// Package coordinator keeps an in-memory price cache per commodity
// fresh and serves statistic reads from it. Refreshes replace a
// commodity's series wholesale, readers always see either the old or
// the new series, never a mix.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/prices"
	"github.com/avdberg/spotwatch-go/types"
	"github.com/avdberg/spotwatch-go/types/maybe"
)

type CacheState string

const (
	// StateEmpty means no fetch has succeeded yet.
	StateEmpty CacheState = "empty"
	// StatePopulated means the cache holds prices from a recent fetch.
	StatePopulated CacheState = "populated"
	// StateStale means the cache still serves prices but the last
	// successful fetch is older than the staleness threshold.
	StateStale CacheState = "stale"
)

type Options struct {
	// Hour of the UTC day after which tomorrow's prices are fetched.
	// The exchange publishes them in the early afternoon.
	TomorrowAfterHour int

	// Age of the last successful refresh beyond which a populated
	// cache counts as stale. Defaults to twice the hourly refresh.
	StaleAfter time.Duration

	// Now overrides the wall clock, tests use it to move time.
	Now func() time.Time
}

type commodityCache struct {
	series      prices.Series
	lastSuccess time.Time
	lastError   error
}

type CommodityResult struct {
	Commodity types.Commodity
	Hours     int
	Err       error
}

type RefreshResult struct {
	At      time.Time
	Results []CommodityResult
}

// Err returns the per-commodity errors joined, or nil when every
// commodity refreshed fine.
func (r RefreshResult) Err() error {
	var errs []error
	for _, cr := range r.Results {
		if cr.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cr.Commodity, cr.Err))
		}
	}
	return errors.Join(errs...)
}

type Coordinator struct {
	logger *slog.Logger
	source types.PriceSource
	opts   Options
	now    func() time.Time

	mu     sync.RWMutex
	caches map[types.Commodity]*commodityCache

	// C carries an event after every refresh, and on Announce, so
	// publishers can push fresh readings. Events are dropped when
	// nobody listens.
	C chan RefreshResult
}

func New(logger *slog.Logger, source types.PriceSource, opts Options) *Coordinator {
	if opts.TomorrowAfterHour == 0 {
		opts.TomorrowAfterHour = 13
	}
	if opts.StaleAfter == 0 {
		opts.StaleAfter = 2 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Coordinator{
		logger: logger,
		source: source,
		opts:   opts,
		now:    opts.Now,
		caches: make(map[types.Commodity]*commodityCache),
		C:      make(chan RefreshResult, 1),
	}
	for _, commodity := range types.Commodities() {
		c.caches[commodity] = &commodityCache{}
	}
	return c
}

// Refresh fetches fresh prices for all commodities concurrently. A
// commodity that fails keeps serving its cached series. The returned
// error is non-nil only on a cold start where every commodity failed
// and there is no cache to fall back on.
func (c *Coordinator) Refresh(ctx context.Context) (RefreshResult, error) {
	now := c.now()
	commodities := types.Commodities()

	var wg sync.WaitGroup
	results := make([]CommodityResult, len(commodities))
	for i, commodity := range commodities {
		wg.Add(1)
		go func(i int, commodity types.Commodity) {
			defer wg.Done()
			results[i] = c.refreshCommodity(ctx, commodity, now)
		}(i, commodity)
	}
	wg.Wait()

	result := RefreshResult{At: now, Results: results}

	failures := 0
	for _, cr := range results {
		if cr.Err != nil {
			failures++
		}
	}
	if failures == len(results) && !c.anythingCached() {
		return result, fmt.Errorf("cold start refresh failed: %w", result.Err())
	}

	select {
	case c.C <- result:
	default:
	}

	return result, nil
}

func (c *Coordinator) refreshCommodity(ctx context.Context, commodity types.Commodity, now time.Time) CommodityResult {
	fetched, err := c.fetchDays(ctx, commodity, now)
	if err != nil {
		c.mu.Lock()
		cache := c.caches[commodity]
		cache.lastError = err
		cached := len(cache.series)
		c.mu.Unlock()

		c.logger.Warn("price refresh failed, keeping cached prices",
			slog.String("commodity", commodity.String()),
			slog.Int("cachedHours", cached),
			slog.Any("error", err))
		return CommodityResult{Commodity: commodity, Err: err}
	}

	c.mu.Lock()
	cache := c.caches[commodity]
	cache.series = fetched
	cache.lastSuccess = now
	cache.lastError = nil
	c.mu.Unlock()

	c.logger.Debug("price refresh succeeded",
		slog.String("commodity", commodity.String()),
		slog.Int("hours", len(fetched)))
	return CommodityResult{Commodity: commodity, Hours: len(fetched)}
}

// fetchDays fetches today's market day and, past the publication
// cutoff, tomorrow's as a separate call. The upstream API only covers
// the first day of a range for gas, so days are never fetched as one
// range. A failed tomorrow fetch is tolerated, today's data already
// landed.
func (c *Coordinator) fetchDays(ctx context.Context, commodity types.Commodity, now time.Time) (prices.Series, error) {
	todayFrom, todayTill := hours.DayWindow(now)
	series, err := c.source.Fetch(ctx, commodity, todayFrom, todayTill)
	if err != nil {
		return nil, err
	}

	if now.UTC().Hour() >= c.opts.TomorrowAfterHour {
		tomorrowFrom, tomorrowTill := hours.NextDayWindow(now)
		tomorrow, err := c.source.Fetch(ctx, commodity, tomorrowFrom, tomorrowTill)
		if err != nil {
			c.logger.Warn("failed to fetch tomorrow's prices",
				slog.String("commodity", commodity.String()),
				slog.Any("error", err))
		} else {
			series = series.Merge(tomorrow)
		}
	}

	return series, nil
}

func (c *Coordinator) anythingCached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cache := range c.caches {
		if !cache.lastSuccess.IsZero() {
			return true
		}
	}
	return false
}

// Snapshot is a point-in-time copy of one commodity's cache. The
// series is a clone, holders never observe later refreshes.
type Snapshot struct {
	Commodity   types.Commodity
	Series      prices.Series
	State       CacheState
	LastSuccess time.Time
	LastError   error
}

func (s Snapshot) Stale() bool {
	return s.State == StateStale
}

func (c *Coordinator) Snapshot(commodity types.Commodity) Snapshot {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	cache, ok := c.caches[commodity]
	if !ok {
		return Snapshot{Commodity: commodity, State: StateEmpty}
	}

	snap := Snapshot{
		Commodity:   commodity,
		Series:      cache.series.Clone(),
		State:       StateEmpty,
		LastSuccess: cache.lastSuccess,
		LastError:   cache.lastError,
	}
	if !cache.lastSuccess.IsZero() {
		if now.Sub(cache.lastSuccess) > c.opts.StaleAfter {
			snap.State = StateStale
		} else {
			snap.State = StatePopulated
		}
	}
	return snap
}

// Electricity reads the current electricity snapshot.
func (c *Coordinator) Electricity() Snapshot {
	return c.Snapshot(types.CommodityElectricity)
}

// Gas reads the current gas snapshot.
func (c *Coordinator) Gas() Snapshot {
	return c.Snapshot(types.CommodityGas)
}

// Statistic evaluates a named statistic against the commodity's cache
// at the current wall clock. The second return is false for unknown
// statistic names. A known statistic without data yields None, absence
// is not an error and not a zero.
func (c *Coordinator) Statistic(commodity types.Commodity, name string) (maybe.Maybe[prices.StatValue], bool) {
	fn, ok := prices.Stat(name)
	if !ok {
		return maybe.None[prices.StatValue](), false
	}
	snap := c.Snapshot(commodity)
	return fn(snap.Series, c.now()), true
}

// HasTomorrow reports whether every commodity already holds prices
// for the next market day.
func (c *Coordinator) HasTomorrow() bool {
	from, till := hours.NextDayWindow(c.now())

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cache := range c.caches {
		if cache.series.Window(from, till).IsEmpty() {
			return false
		}
	}
	return true
}

// Healthy reports whether at least one commodity serves prices.
func (c *Coordinator) Healthy() bool {
	for _, commodity := range types.Commodities() {
		snap := c.Snapshot(commodity)
		if snap.State != StateEmpty && !snap.Series.IsEmpty() {
			return true
		}
	}
	return false
}

// Announce pushes an event without fetching, so publishers resend
// current readings when the wall clock moves into a new hour.
func (c *Coordinator) Announce() {
	select {
	case c.C <- RefreshResult{At: c.now()}:
	default:
	}
}
