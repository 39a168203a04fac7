package postgres

import (
	"context"
	"errors"

	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users        repo.Users
	Wallets      repo.Wallets
	Products     repo.Products
	Transactions repo.Transactions
	Fundings     repo.Fundings
	OTPs         repo.OTPs
	AuditLogs    repo.AuditLogs
	Tx           repo.TxRunner
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:        &usersRepo{pool},
		Wallets:      &walletsRepo{pool},
		Products:     &productsRepo{pool},
		Transactions: &transactionsRepo{pool},
		Fundings:     &fundingsRepo{pool},
		OTPs:         &otpsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
		Tx:           &txRunner{pool},
	}
}

type txRunner struct{ pool *pgxpool.Pool }

func (r *txRunner) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// mapErr translates driver errors into the repository's sentinel set so no
// raw pgx error crosses the service boundary uncategorized.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return repo.ErrNotFound
		case "23505":
			return repo.ErrDuplicate
		case "23514":
			if pgErr.ConstraintName == "wallets_amount_check" {
				return repo.ErrInsufficientBalance
			}
		}
	}
	return err
}
