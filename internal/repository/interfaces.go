package repository

import (
	"context"
	"errors"

	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotFound is returned for any lookup that matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
	// ErrInsufficientBalance is returned when an adjustment would take a
	// wallet below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	MarkVerified(ctx context.Context, id string) error
}

// Wallets is the balance store. Adjust applies delta with a single atomic
// update so concurrent adjustments to the same wallet serialize; there is no
// read-modify-write variant. AdjustTx runs the same statement inside a
// caller-held transaction so a purchase can group both legs with the ledger
// insert.
type Wallets interface {
	Get(ctx context.Context, userID string) (models.Wallet, error)
	GetOrCreate(ctx context.Context, userID string) (models.Wallet, error)
	Adjust(ctx context.Context, userID string, delta int64) (models.Wallet, error)
	AdjustTx(ctx context.Context, tx pgx.Tx, userID string, delta int64) (models.Wallet, error)
	List(ctx context.Context) ([]models.Wallet, error)
}

type Products interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error)
	Update(ctx context.Context, p models.Product) (models.Product, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// Transactions is the append-only purchase ledger: inserts and reads only.
type Transactions interface {
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	CreateTx(ctx context.Context, tx pgx.Tx, t models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

type Fundings interface {
	Create(ctx context.Context, f models.FundingTransaction) (models.FundingTransaction, error)
	UpdateStatus(ctx context.Context, id string, status models.FundingStatus) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.FundingTransaction, error)
}

// AuditLogs is a best-effort operator trail; writes are fire-and-forget and
// a failure never propagates to the audited operation.
type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
	ListByEntity(ctx context.Context, entityType string, limit int) ([]models.AuditLog, error)
}

type OTPs interface {
	Create(ctx context.Context, o models.EmailOTP) (models.EmailOTP, error)
	Latest(ctx context.Context, email string) (models.EmailOTP, error)
	DeleteForEmail(ctx context.Context, email string) error
}

// TxRunner runs fn inside one storage transaction; nothing written in fn is
// visible unless fn returns nil. Stores without multi-operation atomicity
// simply don't provide one and callers fall back to compensation.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
