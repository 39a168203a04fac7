package postgres

import (
	"context"

	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type otpsRepo struct{ pool *pgxpool.Pool }

func (r *otpsRepo) Create(ctx context.Context, o models.EmailOTP) (models.EmailOTP, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO email_otps(id, email, code_hash, expires_at)
		 VALUES($1,$2,$3,$4)
		 RETURNING id, email, code_hash, expires_at, created_at`,
		o.ID, o.Email, o.CodeHash, o.ExpiresAt,
	).Scan(&o.ID, &o.Email, &o.CodeHash, &o.ExpiresAt, &o.CreatedAt)
	return o, mapErr(err)
}

func (r *otpsRepo) Latest(ctx context.Context, email string) (models.EmailOTP, error) {
	var o models.EmailOTP
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, code_hash, expires_at, created_at
		   FROM email_otps
		  WHERE email=$1
		  ORDER BY created_at DESC
		  LIMIT 1`, email,
	).Scan(&o.ID, &o.Email, &o.CodeHash, &o.ExpiresAt, &o.CreatedAt)
	return o, mapErr(err)
}

func (r *otpsRepo) DeleteForEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM email_otps WHERE email=$1`, email)
	return mapErr(err)
}
