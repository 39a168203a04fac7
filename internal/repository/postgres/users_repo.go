package postgres

import (
	"context"

	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, name, email, password_hash, verified) VALUES($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Verified,
	)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	// Every user gets a wallet row up front so funding sweeps see them.
	_, err = r.pool.Exec(ctx,
		`INSERT INTO wallets(user_id, amount) VALUES($1, 0) ON CONFLICT (user_id) DO NOTHING`,
		u.ID,
	)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, verified, created_at, updated_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, verified, created_at, updated_at FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt, &u.UpdatedAt)
	return u, mapErr(err)
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, password_hash, verified, created_at, updated_at
		   FROM users ORDER BY created_at DESC LIMIT 100`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Verified, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET verified=true, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
