package orders

import (
	"time"

	"github.com/Spok95/print-shop/internal/domain/pricing"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Order struct {
	ID            int64          `json:"id"`
	Customer      string         `json:"customer"`
	MaterialID    int64          `json:"material_id"`
	Width         float64        `json:"width"`  // cm
	Length        float64        `json:"length"` // cm
	Quantity      int            `json:"quantity"`
	Options       []string       `json:"options"`
	SpecialOrder  bool           `json:"special_order"`
	SelectedWidth float64        `json:"selected_width"` // cm, allocated roll width (0 for unmatched special orders)
	TotalPrice    float64        `json:"total_price"`
	Price         pricing.Result `json:"price"` // snapshot taken at confirmation
	Status        Status         `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}
