package frank

import (
	"context"
	"time"

	"github.com/avdberg/spotwatch-go/hours"
	"github.com/avdberg/spotwatch-go/prices"
	"github.com/avdberg/spotwatch-go/types"
)

// The gas list only covers the first day of a range, so callers fetch
// one day per call and merge.
const marketPricesQuery = `query MarketPrices($startDate: Date!, $endDate: Date!) {
	marketPricesElectricity(startDate: $startDate, endDate: $endDate) {
		from till marketPrice marketPriceTax sourcingMarkupPrice energyTaxPrice
	}
	marketPricesGas(startDate: $startDate, endDate: $endDate) {
		from till marketPrice marketPriceTax sourcingMarkupPrice energyTaxPrice
	}
}`

type marketPrice struct {
	From                *string  `json:"from"`
	Till                *string  `json:"till"`
	MarketPrice         *float64 `json:"marketPrice"`
	MarketPriceTax      *float64 `json:"marketPriceTax"`
	SourcingMarkupPrice *float64 `json:"sourcingMarkupPrice"`
	EnergyTaxPrice      *float64 `json:"energyTaxPrice"`
}

// Fetch implements types.PriceSource. An empty response for a day the
// exchange has not published yet is a valid empty series, not an error.
func (f *Frank) Fetch(ctx context.Context, commodity types.Commodity, from, till time.Time) (prices.Series, error) {
	request := queryRequest{
		Query:         marketPricesQuery,
		OperationName: "MarketPrices",
		Variables: map[string]any{
			"startDate": hours.DayDate(from),
			"endDate":   hours.DayDate(till),
		},
	}

	body, err := f.doQuery(ctx, request)
	if err != nil {
		return nil, err
	}

	raw := body.Data.MarketPricesElectricity
	if commodity == types.CommodityGas {
		raw = body.Data.MarketPricesGas
	}

	points := make([]prices.Point, 0, len(raw))
	for _, mp := range raw {
		point, err := mp.toPoint()
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	return prices.NewSeries(points), nil
}

// toPoint folds the API's four price components into the three the
// rest of the app works with. VAT and energy tax together form the tax
// component.
func (mp marketPrice) toPoint() (prices.Point, error) {
	if mp.From == nil {
		return prices.Point{}, &SchemaError{Reason: "price row missing from"}
	}
	from, err := time.Parse(time.RFC3339, *mp.From)
	if err != nil {
		return prices.Point{}, &SchemaError{Reason: "price row has invalid from", Err: err}
	}
	if mp.MarketPrice == nil {
		return prices.Point{}, &SchemaError{Reason: "price row missing marketPrice"}
	}

	var tax, markup float64
	if mp.MarketPriceTax != nil {
		tax += *mp.MarketPriceTax
	}
	if mp.EnergyTaxPrice != nil {
		tax += *mp.EnergyTaxPrice
	}
	if mp.SourcingMarkupPrice != nil {
		markup = *mp.SourcingMarkupPrice
	}

	return prices.Point{
		From:        from.UTC(),
		MarketPrice: *mp.MarketPrice,
		Tax:         tax,
		Markup:      markup,
	}, nil
}
