package postgres

import (
	"context"

	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// transactionsRepo is the purchase ledger. It only ever inserts and reads;
// committed rows are immutable.
type transactionsRepo struct{ pool *pgxpool.Pool }

const insertTransactionSQL = `
INSERT INTO transactions (
  id, product_id, buyer_id, seller_id, product_price, platform_fee, total_amount
) VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, product_id, buyer_id, seller_id, product_price, platform_fee, total_amount, created_at`

func (r *transactionsRepo) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, insertTransactionSQL,
		t.ID, t.ProductID, t.BuyerID, t.SellerID, t.ProductPrice, t.PlatformFee, t.TotalAmount,
	).Scan(&t.ID, &t.ProductID, &t.BuyerID, &t.SellerID, &t.ProductPrice, &t.PlatformFee, &t.TotalAmount, &t.CreatedAt)
	return t, mapErr(err)
}

func (r *transactionsRepo) CreateTx(ctx context.Context, tx pgx.Tx, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	err := tx.QueryRow(ctx, insertTransactionSQL,
		t.ID, t.ProductID, t.BuyerID, t.SellerID, t.ProductPrice, t.PlatformFee, t.TotalAmount,
	).Scan(&t.ID, &t.ProductID, &t.BuyerID, &t.SellerID, &t.ProductPrice, &t.PlatformFee, &t.TotalAmount, &t.CreatedAt)
	return t, mapErr(err)
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	var t models.Transaction
	err := r.pool.QueryRow(ctx,
		`SELECT id, product_id, buyer_id, seller_id, product_price, platform_fee, total_amount, created_at
		   FROM transactions WHERE id=$1`, id,
	).Scan(&t.ID, &t.ProductID, &t.BuyerID, &t.SellerID, &t.ProductPrice, &t.PlatformFee, &t.TotalAmount, &t.CreatedAt)
	return t, mapErr(err)
}

func (r *transactionsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, buyer_id, seller_id, product_price, platform_fee, total_amount, created_at
		   FROM transactions
		  WHERE buyer_id=$1 OR seller_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.ProductID, &t.BuyerID, &t.SellerID, &t.ProductPrice, &t.PlatformFee, &t.TotalAmount, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
