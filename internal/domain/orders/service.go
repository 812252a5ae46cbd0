package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Spok95/print-shop/internal/domain/materials"
	"github.com/Spok95/print-shop/internal/domain/pricing"
	"github.com/Spok95/print-shop/internal/domain/stock"
)

type MaterialSource interface {
	GetByID(ctx context.Context, id int64) (*materials.Material, error)
}

type StockSource interface {
	ListByMaterial(ctx context.Context, materialID int64) ([]stock.Entry, error)
	ConsumeChecked(ctx context.Context, entryID int64, qty float64, note string) (float64, error)
	Receive(ctx context.Context, entryID int64, qty float64, note string) error
}

type Store interface {
	Create(ctx context.Context, o *Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, limit int) ([]Order, error)
	SetStatus(ctx context.Context, id int64, from, to Status) (bool, error)
}

// Notifier pushes low-stock alerts after an order decrements a roll below
// its alert threshold.
type Notifier interface {
	LowStock(material string, width, remaining, threshold float64)
}

// ValidationError carries a blocking stock verdict out of Create so callers
// can render the taxonomy code and message.
type ValidationError struct {
	Result stock.ValidationResult
}

func (e *ValidationError) Error() string { return e.Result.Message }

type QuoteRequest struct {
	MaterialID   int64
	Width        float64 // cm
	Length       float64 // cm
	Quantity     int
	Options      []string
	SpecialOrder bool
}

type CreateRequest struct {
	QuoteRequest
	Customer string
}

// Quote is what the order form renders: the price breakdown, the stock
// verdict (blocking or just a warning) and the matched roll.
type Quote struct {
	Price      pricing.Result
	Validation stock.ValidationResult
	Material   *materials.Material
	Entry      *stock.Entry
}

type Service struct {
	log       *slog.Logger
	materials MaterialSource
	stock     StockSource
	store     Store
	notifier  Notifier
}

func NewService(log *slog.Logger, mats MaterialSource, st StockSource, store Store, n Notifier) *Service {
	return &Service{log: log, materials: mats, stock: st, store: store, notifier: n}
}

// Quote matches a roll, validates stock and computes the price, touching
// nothing. It is safe to call on every form field change; the verdict is
// advisory and the caller decides whether submission stays enabled.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	var mat *materials.Material
	var err error
	if req.MaterialID != 0 {
		mat, err = s.materials.GetByID(ctx, req.MaterialID)
		if err != nil {
			return Quote{}, err
		}
	}

	var entry *stock.Entry
	v := stock.ValidationResult{Valid: true}
	if mat != nil {
		entries, err := s.stock.ListByMaterial(ctx, mat.ID)
		if err != nil {
			return Quote{}, err
		}
		widths := make([]float64, 0, len(entries))
		for _, e := range entries {
			widths = append(widths, e.Width)
		}
		if w, ok := stock.FindSuitableWidth(req.Width, widths); ok {
			for i := range entries {
				if entries[i].Width == w {
					entry = &entries[i]
					break
				}
			}
		}
		if entry == nil {
			v = stock.ValidationResult{
				Reason:  stock.ReasonNoSuitableWidth,
				Message: fmt.Sprintf("no roll of %s is wide enough for %.1f cm", mat.Name, req.Width),
			}
		} else {
			v = stock.ValidateStock(req.Length, req.Quantity, entry)
		}
	}

	price, err := pricing.Compute(mat, entry, pricing.OrderLine{
		Width:        req.Width,
		Length:       req.Length,
		Quantity:     req.Quantity,
		Options:      req.Options,
		SpecialOrder: req.SpecialOrder,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrMaterialOrStockRequired) && mat != nil && entry == nil {
			// no roll wide enough: the verdict already says so, no price to show
			return Quote{Validation: v, Material: mat}, nil
		}
		return Quote{}, err
	}
	return Quote{Price: price, Validation: v, Material: mat, Entry: entry}, nil
}

// Create re-quotes server-side (the client's figure is never trusted),
// rejects blocked orders, persists the order with its price snapshot and
// decrements the allocated roll under a row lock. Special orders skip the
// stock gate and never touch stock.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	q, err := s.Quote(ctx, req.QuoteRequest)
	if err != nil {
		return nil, err
	}
	if !req.SpecialOrder && !q.Validation.Valid {
		return nil, &ValidationError{Result: q.Validation}
	}

	materialID := req.MaterialID
	if q.Material == nil {
		// material-less special order, nothing to reference
		materialID = 0
	}

	o := &Order{
		Customer:      req.Customer,
		MaterialID:    materialID,
		Width:         req.Width,
		Length:        req.Length,
		Quantity:      req.Quantity,
		Options:       req.Options,
		SpecialOrder:  req.SpecialOrder,
		SelectedWidth: q.Price.SelectedWidth,
		TotalPrice:    q.Price.TotalPrice,
		Price:         q.Price,
		Status:        StatusConfirmed,
	}

	if !req.SpecialOrder {
		required := req.Length * float64(req.Quantity)
		note := fmt.Sprintf("order for %s", req.Customer)
		remaining, err := s.stock.ConsumeChecked(ctx, q.Entry.ID, required, note)
		if err != nil {
			return nil, err
		}
		if remaining <= q.Entry.AlertThreshold && s.notifier != nil {
			s.notifier.LowStock(q.Material.Name, q.Entry.Width, remaining, q.Entry.AlertThreshold)
		}
	}

	id, err := s.store.Create(ctx, o)
	if err != nil {
		if !req.SpecialOrder {
			// put the length back, the order was not recorded
			if rerr := s.stock.Receive(ctx, q.Entry.ID, req.Length*float64(req.Quantity), "order insert failed, stock restored"); rerr != nil {
				s.log.Error("stock restore failed", "entry_id", q.Entry.ID, "err", rerr)
			}
		}
		return nil, err
	}
	o.ID = id
	return o, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]Order, error) {
	return s.store.List(ctx, limit)
}

// Cancel marks a confirmed order cancelled and, for non-special orders,
// returns the consumed length to the allocated roll.
func (s *Service) Cancel(ctx context.Context, id int64) (*Order, error) {
	o, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}
	if o.Status != StatusConfirmed {
		return nil, fmt.Errorf("order %d is %s, only confirmed orders can be cancelled", id, o.Status)
	}

	// conditional transition, two racing cancels must not restore stock twice
	ok, err := s.store.SetStatus(ctx, id, StatusConfirmed, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("order %d is no longer confirmed", id)
	}
	o.Status = StatusCancelled

	if !o.SpecialOrder && o.SelectedWidth > 0 {
		entries, err := s.stock.ListByMaterial(ctx, o.MaterialID)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if entries[i].Width == o.SelectedWidth {
				qty := o.Length * float64(o.Quantity)
				note := fmt.Sprintf("order %d cancelled", id)
				if err := s.stock.Receive(ctx, entries[i].ID, qty, note); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return o, nil
}
