package postgres

import (
	"context"

	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type walletsRepo struct{ pool *pgxpool.Pool }

const adjustSQL = `UPDATE wallets
	    SET amount = amount + $2,
	        last_updated_at = now()
	  WHERE user_id = $1
	  RETURNING user_id, amount, last_updated_at`

func (r *walletsRepo) Get(ctx context.Context, userID string) (models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, amount, last_updated_at FROM wallets WHERE user_id=$1`, userID,
	).Scan(&w.UserID, &w.Amount, &w.LastUpdatedAt)
	return w, mapErr(err)
}

func (r *walletsRepo) GetOrCreate(ctx context.Context, userID string) (models.Wallet, error) {
	if w, err := r.Get(ctx, userID); err == nil {
		return w, nil
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wallets(user_id, amount, last_updated_at)
		 VALUES($1, 0, now())
		 ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return models.Wallet{}, mapErr(err)
	}
	return r.Get(ctx, userID)
}

// Adjust applies delta in a single statement; the row lock serializes
// concurrent adjustments and the amount >= 0 check makes an overdraw fail
// instead of committing a negative balance.
func (r *walletsRepo) Adjust(ctx context.Context, userID string, delta int64) (models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx, adjustSQL, userID, delta).
		Scan(&w.UserID, &w.Amount, &w.LastUpdatedAt)
	return w, mapErr(err)
}

func (r *walletsRepo) AdjustTx(ctx context.Context, tx pgx.Tx, userID string, delta int64) (models.Wallet, error) {
	var w models.Wallet
	err := tx.QueryRow(ctx, adjustSQL, userID, delta).
		Scan(&w.UserID, &w.Amount, &w.LastUpdatedAt)
	return w, mapErr(err)
}

func (r *walletsRepo) List(ctx context.Context) ([]models.Wallet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, amount, last_updated_at FROM wallets ORDER BY user_id`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.UserID, &w.Amount, &w.LastUpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
