// Package prices holds hourly spot price series and the derived
// statistics computed from them. A series is immutable once built,
// readers get value copies and never observe partial updates.
package prices

import (
	"time"
)

// Point is the price breakdown for a single hour. From is the UTC
// instant at the start of the hour. All components are EUR per unit
// (kWh for electricity, m³ for gas).
type Point struct {
	From        time.Time `json:"from"`
	MarketPrice float64   `json:"marketPrice"`
	Tax         float64   `json:"tax"`
	Markup      float64   `json:"markup"`
}

// Total is the all-in price, market plus tax plus sourcing markup.
func (p Point) Total() float64 {
	return p.MarketPrice + p.Tax + p.Markup
}

// MarketWithTax is the market price with taxes but without the
// supplier markup.
func (p Point) MarketWithTax() float64 {
	return p.MarketPrice + p.Tax
}
