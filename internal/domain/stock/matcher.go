package stock

import "fmt"

// Validation failure reasons. Empty when valid.
const (
	ReasonNoSuitableWidth   = "no_suitable_width"
	ReasonStockUnavailable  = "stock_unavailable"
	ReasonInsufficientStock = "insufficient_stock"
)

// FindSuitableWidth returns the narrowest available roll width that fits the
// requested cut width. An order is cut from a single roll and the width
// remainder is wasted, so a roll narrower than the request never qualifies.
func FindSuitableWidth(requested float64, available []float64) (float64, bool) {
	var best float64
	found := false
	for _, w := range available {
		if w < requested {
			continue
		}
		if !found || w < best {
			best = w
			found = true
		}
	}
	return best, found
}

type ValidationResult struct {
	Valid   bool
	Reason  string
	Message string
	Warning bool // low stock, non-blocking
}

// ValidateStock checks whether length×quantity can be cut from the given
// entry's remaining stock. Advisory only: it reads the snapshot and reserves
// nothing; the order commit re-checks under a row lock (ConsumeChecked).
func ValidateStock(requestedLength float64, quantity int, e *Entry) ValidationResult {
	if e == nil {
		return ValidationResult{
			Reason:  ReasonStockUnavailable,
			Message: "no stock entry for the selected width",
		}
	}
	required := requestedLength * float64(quantity)
	if required > e.QuantityInStock {
		return ValidationResult{
			Reason:  ReasonInsufficientStock,
			Message: fmt.Sprintf("insufficient stock: need %.2f cm, have %.2f cm", required, e.QuantityInStock),
		}
	}
	if remaining := e.QuantityInStock - required; remaining <= e.AlertThreshold {
		return ValidationResult{
			Valid:   true,
			Warning: true,
			Message: fmt.Sprintf("stock will drop to %.2f cm, at or below the alert threshold of %.2f cm", remaining, e.AlertThreshold),
		}
	}
	return ValidationResult{Valid: true}
}
