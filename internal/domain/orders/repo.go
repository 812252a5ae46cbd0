package orders

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, o *Order) (int64, error) {
	opts := o.Options
	if opts == nil {
		opts = []string{}
	}
	ob, err := json.Marshal(opts)
	if err != nil {
		return 0, err
	}
	pb, err := json.Marshal(o.Price)
	if err != nil {
		return 0, err
	}

	var matID any
	if o.MaterialID != 0 {
		matID = o.MaterialID
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO orders
		(customer, material_id, width, length, quantity, options, special_order, selected_width, total_price, price, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`, o.Customer, matID, o.Width, o.Length, o.Quantity, ob, o.SpecialOrder, o.SelectedWidth, o.TotalPrice, pb, string(o.Status))

	var id int64
	return id, row.Scan(&id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, customer, material_id, width, length, quantity, options, special_order, selected_width, total_price, price, status, created_at
		FROM orders WHERE id=$1
	`, id)
	o, err := scanOrder(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *Repo) List(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer, material_id, width, length, quantity, options, special_order, selected_width, total_price, price, status, created_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// SetStatus moves an order from one status to another. Returns false when the
// order is not in the expected status anymore (a concurrent transition won).
func (r *Repo) SetStatus(ctx context.Context, id int64, from, to Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status=$3 WHERE id=$1 AND status=$2
	`, id, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var matID *int64
	var opts, price []byte
	if err := row.Scan(
		&o.ID,
		&o.Customer,
		&matID,
		&o.Width,
		&o.Length,
		&o.Quantity,
		&opts,
		&o.SpecialOrder,
		&o.SelectedWidth,
		&o.TotalPrice,
		&price,
		&o.Status,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if matID != nil {
		o.MaterialID = *matID
	}
	if err := json.Unmarshal(opts, &o.Options); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(price, &o.Price); err != nil {
		return nil, err
	}
	return &o, nil
}
