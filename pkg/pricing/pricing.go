// Package pricing derives the cost of a tank layout. Prices are always
// computed from scratch from the items and bounds; nothing is cached or
// adjusted incrementally.
package pricing

import (
	"math"

	"github.com/chazu/aquascape/pkg/item"
	"github.com/chazu/aquascape/pkg/tank"
	"github.com/samber/lo"
)

// BasePrice is the tank price per 10000 cubic units of standard glass.
const BasePrice = 150

// volumeUnit normalises tank volume before applying BasePrice.
const volumeUnit = 10000

// Breakdown splits a total into its parts.
type Breakdown struct {
	Items     float64 `json:"items"`
	Tank      float64 `json:"tank"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// TankPrice returns round(BasePrice * volume/10000 * glassFactor), rounding
// halves up.
func TankPrice(b tank.Bounds) float64 {
	raw := BasePrice * (b.Volume() / volumeUnit) * b.Glass.Factor()
	return math.Floor(raw + 0.5)
}

// ItemsTotal sums the unit prices of items.
func ItemsTotal(items []item.Item) float64 {
	return lo.SumBy(items, func(it item.Item) float64 { return it.UnitPrice })
}

// Price returns the sum of item unit prices plus the tank price.
func Price(items []item.Item, b tank.Bounds) float64 {
	return ItemsTotal(items) + TankPrice(b)
}

// Calculate returns the full breakdown for items and b.
func Calculate(items []item.Item, b tank.Bounds) Breakdown {
	it := ItemsTotal(items)
	tp := TankPrice(b)
	return Breakdown{
		Items:     it,
		Tank:      tp,
		Total:     it + tp,
		ItemCount: len(items),
	}
}
