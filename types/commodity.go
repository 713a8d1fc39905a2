package types

import (
	"context"
	"fmt"
	"time"

	"github.com/avdberg/spotwatch-go/prices"
)

// Commodity is an energy product with its own hourly price series.
type Commodity string

const (
	CommodityElectricity Commodity = "electricity"
	CommodityGas         Commodity = "gas"
)

// Commodities lists every commodity tracked by the coordinator.
func Commodities() []Commodity {
	return []Commodity{CommodityElectricity, CommodityGas}
}

func ParseCommodity(s string) (Commodity, error) {
	switch Commodity(s) {
	case CommodityElectricity, CommodityGas:
		return Commodity(s), nil
	}
	return "", fmt.Errorf("unknown commodity %q", s)
}

func (c Commodity) String() string {
	return string(c)
}

// Unit is the billing unit prices are quoted in.
func (c Commodity) Unit() string {
	if c == CommodityGas {
		return "€/m³"
	}
	return "€/kWh"
}

// PriceSource fetches hourly prices for one commodity over the
// half-open interval [from, till).
type PriceSource interface {
	Fetch(ctx context.Context, commodity Commodity, from, till time.Time) (prices.Series, error)
}
