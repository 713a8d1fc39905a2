package metrics

import (
	"context"
	"time"

	"github.com/avdberg/spotwatch-go/prices"
	"github.com/avdberg/spotwatch-go/types"
)

// InstrumentedSource decorates a price source with fetch timing.
type InstrumentedSource struct {
	next types.PriceSource
	rec  *Recorder
}

func NewInstrumentedSource(next types.PriceSource, rec *Recorder) *InstrumentedSource {
	return &InstrumentedSource{next: next, rec: rec}
}

func (s *InstrumentedSource) Fetch(ctx context.Context, commodity types.Commodity, from, till time.Time) (prices.Series, error) {
	start := time.Now()
	series, err := s.next.Fetch(ctx, commodity, from, till)
	s.rec.RecordFetchDuration(commodity.String(), time.Since(start).Seconds())
	return series, err
}
