// Package pricing computes the price of a single print order line. It is
// pure: callers pass snapshots in and get values back, nothing is mutated
// and nothing is cached, so it can be re-run on every form change.
package pricing

import (
	"errors"
	"math"

	"github.com/Spok95/print-shop/internal/domain/materials"
	"github.com/Spok95/print-shop/internal/domain/stock"
)

// Dimensions arrive in centimeters, prices are per m² (or per linear meter).
// The conversion happens once, here, never inline in the math below.
const cmPerMeter = 100.0

var (
	ErrInvalidDimensions       = errors.New("width, length and quantity must be positive")
	ErrMaterialOrStockRequired = errors.New("material and stock selection required for a priced order")
)

// OrderLine describes what is being priced, straight from form state.
type OrderLine struct {
	Width        float64  // cm
	Length       float64  // cm
	Quantity     int
	Options      []string // names, validated against the material's surcharge map
	SpecialOrder bool     // price negotiated out-of-band; computed total forced to 0
}

type OptionCost struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type Result struct {
	UnitPrice          float64      `json:"unit_price"`
	Area               float64      `json:"area"`                 // m²
	MaterialLengthUsed float64      `json:"material_length_used"` // cm, requested length × quantity
	BasePrice          float64      `json:"base_price"`
	OptionsCost        float64      `json:"options_cost"`
	OptionsDetails     []OptionCost `json:"options_details,omitempty"`
	TotalPrice         float64      `json:"total_price"`
	SelectedWidth      float64      `json:"selected_width,omitempty"` // cm, allocated roll width
}

// Compute prices an order line against a material and the roll allocated by
// the stock matcher.
//
// Billing is based on the requested dimensions, not the allocated width: the
// cut's width remainder is waste the shop absorbs. For m² materials the base
// is area × unit price; for linear materials it is length × quantity × unit
// price. A special order tolerates a missing material or roll and always
// totals zero.
func Compute(m *materials.Material, entry *stock.Entry, line OrderLine) (Result, error) {
	if line.Width <= 0 || line.Length <= 0 || line.Quantity <= 0 {
		return Result{}, ErrInvalidDimensions
	}
	if !line.SpecialOrder && (m == nil || entry == nil) {
		return Result{}, ErrMaterialOrStockRequired
	}
	if m == nil {
		// special order with no material picked yet: nothing to measure
		return Result{}, nil
	}

	qty := float64(line.Quantity)
	widthM := line.Width / cmPerMeter
	lengthM := line.Length / cmPerMeter

	res := Result{
		UnitPrice:          m.PricePerUnit,
		Area:               widthM * lengthM * qty,
		MaterialLengthUsed: line.Length * qty,
	}
	if entry != nil {
		res.SelectedWidth = entry.Width
	}

	basis := res.Area
	if m.Unit == materials.UnitLinearMeter {
		basis = lengthM * qty
	}
	res.BasePrice = basis * m.PricePerUnit

	for _, name := range line.Options {
		price, ok := m.Options[name]
		if !ok {
			continue // informational toggle with no surcharge
		}
		cost := basis * price
		res.OptionsDetails = append(res.OptionsDetails, OptionCost{
			Name:       name,
			Quantity:   1,
			UnitPrice:  price,
			TotalPrice: cost,
		})
		res.OptionsCost += cost
	}

	if line.SpecialOrder {
		res.TotalPrice = 0
	} else {
		res.TotalPrice = res.BasePrice + res.OptionsCost
	}
	return res, nil
}

// Round2 rounds to 2 decimals for presentation. The calculator itself never
// rounds, so option costs don't compound rounding error.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
