package postgres

import (
	"context"

	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productsRepo struct{ pool *pgxpool.Pool }

func (r *productsRepo) Create(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products(id, title, price, picture, url, created_by)
		 VALUES($1,$2,$3,$4,$5,$6)
		 RETURNING id, title, price, picture, url, created_by, created_at`,
		p.ID, p.Title, p.Price, p.Picture, p.URL, p.CreatedBy,
	).Scan(&p.ID, &p.Title, &p.Price, &p.Picture, &p.URL, &p.CreatedBy, &p.CreatedAt)
	return p, mapErr(err)
}

func (r *productsRepo) GetByID(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, price, picture, url, created_by, created_at FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.Title, &p.Price, &p.Picture, &p.URL, &p.CreatedBy, &p.CreatedAt)
	return p, mapErr(err)
}

func (r *productsRepo) List(ctx context.Context) ([]models.Product, error) {
	return r.list(ctx, `SELECT id, title, price, picture, url, created_by, created_at
	   FROM products ORDER BY created_at DESC`)
}

func (r *productsRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	return r.list(ctx, `SELECT id, title, price, picture, url, created_by, created_at
	   FROM products WHERE created_by=$1 ORDER BY created_at DESC`, ownerID)
}

func (r *productsRepo) list(ctx context.Context, q string, args ...any) ([]models.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Picture, &p.URL, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update is owner-scoped: a row belonging to someone else behaves exactly
// like a missing row.
func (r *productsRepo) Update(ctx context.Context, p models.Product) (models.Product, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE products SET title=$3, price=$4, picture=$5, url=$6
		  WHERE id=$1 AND created_by=$2
		  RETURNING id, title, price, picture, url, created_by, created_at`,
		p.ID, p.CreatedBy, p.Title, p.Price, p.Picture, p.URL,
	).Scan(&p.ID, &p.Title, &p.Price, &p.Picture, &p.URL, &p.CreatedBy, &p.CreatedAt)
	return p, mapErr(err)
}

func (r *productsRepo) Delete(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM products WHERE id=$1 AND created_by=$2`, id, ownerID)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
