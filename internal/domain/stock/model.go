package stock

import "time"

type MoveType string

const (
	MoveIn  MoveType = "in"
	MoveOut MoveType = "out"
)

// Entry is one roll width of a material. Widths and lengths are in
// centimeters; QuantityInStock is the remaining roll length.
type Entry struct {
	ID              int64     `json:"id"`
	MaterialID      int64     `json:"material_id"`
	Width           float64   `json:"width"`
	QuantityInStock float64   `json:"quantity_in_stock"`
	AlertThreshold  float64   `json:"alert_threshold"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Movement struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	EntryID    int64     `json:"entry_id"`
	MaterialID int64     `json:"material_id"`
	Qty        float64   `json:"qty"`
	Type       MoveType  `json:"type"`
	Note       string    `json:"note"`
}
