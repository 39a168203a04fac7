package postgres

import (
	"context"

	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type fundingsRepo struct{ pool *pgxpool.Pool }

func (r *fundingsRepo) Create(ctx context.Context, f models.FundingTransaction) (models.FundingTransaction, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = models.FundingCompleted
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO funding_transactions(id, user_id, amount, type, status)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING id, user_id, amount, type, status, created_at, updated_at`,
		f.ID, f.UserID, f.Amount, f.Type, f.Status,
	).Scan(&f.ID, &f.UserID, &f.Amount, &f.Type, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	return f, mapErr(err)
}

func (r *fundingsRepo) UpdateStatus(ctx context.Context, id string, status models.FundingStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE funding_transactions SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *fundingsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.FundingTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, amount, type, status, created_at, updated_at
		   FROM funding_transactions
		  WHERE user_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.FundingTransaction
	for rows.Next() {
		var f models.FundingTransaction
		if err := rows.Scan(&f.ID, &f.UserID, &f.Amount, &f.Type, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
