package materials

import "time"

type UnitMode string

const (
	UnitSquareMeter UnitMode = "m2" // priced by printed area
	UnitLinearMeter UnitMode = "ml" // priced by consumed length
)

type Material struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	CategoryID   int64              `json:"category_id"`
	Category     string             `json:"category"` // category name (for display)
	Unit         UnitMode           `json:"unit"`
	PricePerUnit float64            `json:"price_per_unit"` // per m² or per linear meter
	Options      map[string]float64 `json:"options"`        // surcharge name -> price per unit
	Active       bool               `json:"active"`
	CreatedAt    time.Time          `json:"created_at"`
}
