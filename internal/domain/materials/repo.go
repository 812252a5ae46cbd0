package materials

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, name string, categoryID int64, unit UnitMode, price float64, options map[string]float64) (*Material, error) {
	if options == nil {
		options = map[string]float64{}
	}
	ob, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (name, category_id, unit, price_per_unit, options, active)
		VALUES ($1,$2,$3,$4,$5,TRUE)
		RETURNING id, name, category_id, unit, price_per_unit, options, active, created_at
	`, name, categoryID, string(unit), price, ob)

	var m Material
	var opts []byte
	if err := row.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Unit, &m.PricePerUnit, &opts, &m.Active, &m.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(opts, &m.Options); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT m.id, m.name, m.category_id, COALESCE(c.name,''), m.unit, m.price_per_unit, m.options, m.active, m.created_at
		FROM materials m
		LEFT JOIN material_categories c ON c.id = m.category_id
		WHERE m.id = $1
	`, id)
	var m Material
	var opts []byte
	if err := row.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Category, &m.Unit, &m.PricePerUnit, &opts, &m.Active, &m.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(opts, &m.Options); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) List(ctx context.Context, onlyActive bool) ([]Material, error) {
	q := `
		SELECT m.id, m.name, m.category_id, COALESCE(c.name,''), m.unit, m.price_per_unit, m.options, m.active, m.created_at
		FROM materials m
		LEFT JOIN material_categories c ON c.id = m.category_id
	`
	if onlyActive {
		q += " WHERE m.active = TRUE"
	}
	q += " ORDER BY c.name, m.name"

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		var opts []byte
		if err := rows.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Category, &m.Unit, &m.PricePerUnit, &opts, &m.Active, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(opts, &m.Options); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SearchByName matches materials by part of the name or category name, case-insensitive.
func (r *Repo) SearchByName(ctx context.Context, q string, onlyActive bool) ([]Material, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	like := "%" + strings.ToLower(q) + "%"

	base := `
		SELECT m.id, m.name, m.category_id, COALESCE(c.name,''), m.unit, m.price_per_unit, m.options, m.active, m.created_at
		FROM materials m
		LEFT JOIN material_categories c ON c.id = m.category_id
		WHERE (LOWER(m.name) LIKE $1 OR LOWER(c.name) LIKE $1)
	`
	if onlyActive {
		base += " AND m.active = TRUE"
	}
	base += " ORDER BY c.name, m.name"

	rows, err := r.pool.Query(ctx, base, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		var m Material
		var opts []byte
		if err := rows.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Category, &m.Unit, &m.PricePerUnit, &opts, &m.Active, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(opts, &m.Options); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) UpdatePrice(ctx context.Context, id int64, price float64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials SET price_per_unit=$2 WHERE id=$1
		RETURNING id, name, category_id, unit, price_per_unit, options, active, created_at
	`, id, price)
	return scanUpdated(row)
}

func (r *Repo) UpdateOptions(ctx context.Context, id int64, options map[string]float64) (*Material, error) {
	if options == nil {
		options = map[string]float64{}
	}
	ob, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE materials SET options=$2 WHERE id=$1
		RETURNING id, name, category_id, unit, price_per_unit, options, active, created_at
	`, id, ob)
	return scanUpdated(row)
}

func (r *Repo) SetActive(ctx context.Context, id int64, active bool) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE materials SET active=$2 WHERE id=$1
		RETURNING id, name, category_id, unit, price_per_unit, options, active, created_at
	`, id, active)
	return scanUpdated(row)
}

func scanUpdated(row pgx.Row) (*Material, error) {
	var m Material
	var opts []byte
	if err := row.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Unit, &m.PricePerUnit, &opts, &m.Active, &m.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(opts, &m.Options); err != nil {
		return nil, err
	}
	return &m, nil
}
