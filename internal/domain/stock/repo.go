package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientStock is returned by ConsumeChecked when the locked row no
// longer holds enough length (another order won the race since the quote).
var ErrInsufficientStock = errors.New("insufficient stock")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Upsert(ctx context.Context, materialID int64, width, qty, alertThreshold float64) (*Entry, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be > 0")
	}
	if qty < 0 || alertThreshold < 0 {
		return nil, fmt.Errorf("quantity and alert threshold must be >= 0")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO stock_entries (material_id, width, quantity_in_stock, alert_threshold)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (material_id, width)
		DO UPDATE SET quantity_in_stock=EXCLUDED.quantity_in_stock,
		              alert_threshold=EXCLUDED.alert_threshold,
		              updated_at=NOW()
		RETURNING id, material_id, width, quantity_in_stock, alert_threshold, created_at, updated_at
	`, materialID, width, qty, alertThreshold)
	return scanEntry(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, material_id, width, quantity_in_stock, alert_threshold, created_at, updated_at
		FROM stock_entries WHERE id=$1
	`, id)
	e, err := scanEntry(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *Repo) ListByMaterial(ctx context.Context, materialID int64) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, material_id, width, quantity_in_stock, alert_threshold, created_at, updated_at
		FROM stock_entries
		WHERE material_id=$1
		ORDER BY width
	`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *Repo) ListAll(ctx context.Context) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, material_id, width, quantity_in_stock, alert_threshold, created_at, updated_at
		FROM stock_entries
		ORDER BY material_id, width
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Receive adds length to a roll and logs the movement.
func (r *Repo) Receive(ctx context.Context, entryID int64, qty float64, note string) error {
	if qty <= 0 {
		return fmt.Errorf("qty must be > 0")
	}
	return r.apply(ctx, entryID, qty, MoveIn, note)
}

// Adjust corrects a roll's remaining length by a signed delta (stocktaking).
func (r *Repo) Adjust(ctx context.Context, entryID int64, delta float64, note string) error {
	if delta == 0 {
		return nil
	}
	mtype := MoveIn
	if delta < 0 {
		mtype = MoveOut
	}
	return r.apply(ctx, entryID, delta, mtype, note)
}

func (r *Repo) apply(ctx context.Context, entryID int64, delta float64, mtype MoveType, note string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var materialID int64
	if err := tx.QueryRow(ctx, `
		UPDATE stock_entries
		SET quantity_in_stock = quantity_in_stock + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING material_id
	`, entryID, delta).Scan(&materialID); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (entry_id, material_id, qty, type, note)
		VALUES ($1,$2,$3,$4,$5)
	`, entryID, materialID, delta, string(mtype), note); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ConsumeChecked decrements a roll inside one transaction: the row is locked,
// the remaining length re-verified, then decremented and the movement logged.
// Returns the remaining length after the decrement.
func (r *Repo) ConsumeChecked(ctx context.Context, entryID int64, qty float64, note string) (float64, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("qty must be > 0")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var materialID int64
	var inStock float64
	if err := tx.QueryRow(ctx, `
		SELECT material_id, quantity_in_stock
		FROM stock_entries
		WHERE id = $1
		FOR UPDATE
	`, entryID).Scan(&materialID, &inStock); err != nil {
		return 0, err
	}
	if inStock < qty {
		return inStock, fmt.Errorf("%w: need %.2f cm, have %.2f cm", ErrInsufficientStock, qty, inStock)
	}

	remaining := inStock - qty
	if _, err = tx.Exec(ctx, `
		UPDATE stock_entries
		SET quantity_in_stock = quantity_in_stock - $2, updated_at = NOW()
		WHERE id = $1
	`, entryID, qty); err != nil {
		return 0, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO stock_movements (entry_id, material_id, qty, type, note)
		VALUES ($1,$2,$3,'out',$4)
	`, entryID, materialID, -qty, note); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *Repo) ListMovements(ctx context.Context, entryID int64, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, entry_id, material_id, qty, type, note
		FROM stock_movements
		WHERE entry_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, entryID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.EntryID, &m.MaterialID, &m.Qty, &m.Type, &m.Note); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.MaterialID, &e.Width, &e.QuantityInStock, &e.AlertThreshold, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEntries(rows pgx.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
