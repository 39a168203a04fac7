package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adeyemi/marketplace-backend/internal/metrics"
	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PurchaseResult is what a committed purchase returns to the caller.
type PurchaseResult struct {
	Transaction models.Transaction `json:"transaction"`
	NewBalance  int64              `json:"new_balance"`
}

// PurchaseService coordinates a single buy: validation, funds movement,
// ledger write, rollback on failure. When the store provides a TxRunner the
// buyer debit, seller credit and ledger insert commit in one serializable
// transaction. Without one (in-memory store) the legs run sequentially with
// compensating adjustments on failure.
type PurchaseService struct {
	users    repo.Users
	products repo.Products
	wallets  repo.Wallets
	ledger   repo.Transactions
	audits   repo.AuditLogs
	tx       repo.TxRunner
	fee      int64
	log      *slog.Logger
}

func NewPurchaseService(users repo.Users, products repo.Products, wallets repo.Wallets, ledger repo.Transactions, audits repo.AuditLogs, tx repo.TxRunner, fee int64, log *slog.Logger) *PurchaseService {
	return &PurchaseService{users: users, products: products, wallets: wallets, ledger: ledger, audits: audits, tx: tx, fee: fee, log: log}
}

// audit writes an operator-trail row. Failures are logged, never returned;
// auditing must not affect the operation it describes.
func (s *PurchaseService) audit(ctx context.Context, entityID, action string, details map[string]any) {
	id := entityID
	if err := s.audits.Create(ctx, models.AuditLog{
		EntityType: "purchase",
		EntityID:   &id,
		Action:     action,
		Details:    details,
	}); err != nil {
		s.log.Warn("audit write failed", "action", action, "err", err)
	}
}

func (s *PurchaseService) Purchase(ctx context.Context, buyerID, productID string) (PurchaseResult, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return PurchaseResult{}, E(KindValidation, "invalid product id format")
	}
	if _, err := uuid.Parse(buyerID); err != nil {
		return PurchaseResult{}, E(KindValidation, "invalid buyer id format")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return PurchaseResult{}, E(KindNotFound, "product not found")
		}
		return PurchaseResult{}, wrap(KindPersistence, "product lookup failed", err)
	}
	if product.CreatedBy == buyerID {
		return PurchaseResult{}, E(KindSelfPurchase, "cannot buy your own product")
	}

	if _, err := s.users.GetByID(ctx, buyerID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return PurchaseResult{}, E(KindNotFound, "buyer not found")
		}
		return PurchaseResult{}, wrap(KindPersistence, "buyer lookup failed", err)
	}

	buyerWallet, err := s.wallets.Get(ctx, buyerID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return PurchaseResult{}, E(KindNotFound, "buyer wallet not found")
		}
		return PurchaseResult{}, wrap(KindPersistence, "wallet lookup failed", err)
	}

	total := product.Price + s.fee
	if buyerWallet.Amount < total {
		return PurchaseResult{}, Ef(KindInsufficientFunds, "insufficient funds, need %d", total)
	}

	// Last cancellation point: once the transfer starts the request runs to
	// completion or rollback.
	if err := ctx.Err(); err != nil {
		return PurchaseResult{}, wrap(KindTransferFailed, "request cancelled before transfer", err)
	}

	rec := models.Transaction{
		ProductID:    product.ID,
		BuyerID:      buyerID,
		SellerID:     product.CreatedBy,
		ProductPrice: product.Price,
		PlatformFee:  s.fee,
		TotalAmount:  total,
	}

	var res PurchaseResult
	if s.tx != nil {
		res, err = s.transferAtomic(ctx, rec)
	} else {
		res, err = s.transferCompensating(ctx, rec)
	}
	if err != nil {
		if KindOf(err) == KindInconsistency {
			s.audit(ctx, buyerID, "compensation_failed", map[string]any{
				"buyer_id":  buyerID,
				"seller_id": product.CreatedBy,
				"total":     total,
			})
		}
		metrics.PurchasesFailed.WithLabelValues(string(KindOf(err))).Inc()
		return PurchaseResult{}, err
	}

	metrics.PurchasesTotal.Inc()
	s.audit(ctx, res.Transaction.ID, "committed", map[string]any{
		"buyer_id":  buyerID,
		"seller_id": product.CreatedBy,
		"total":     total,
	})
	s.log.Info("purchase committed",
		"transaction_id", res.Transaction.ID,
		"buyer_id", buyerID,
		"seller_id", product.CreatedBy,
		"total", total,
	)
	return res, nil
}

// transferAtomic groups debit, credit and ledger insert in one storage
// transaction; nothing is visible unless all three succeed. The seller is
// credited the product price only; the platform keeps the fee.
func (s *PurchaseService) transferAtomic(ctx context.Context, rec models.Transaction) (PurchaseResult, error) {
	var res PurchaseResult
	err := s.tx.WithTx(ctx, func(ptx pgx.Tx) error {
		bw, err := s.wallets.AdjustTx(ctx, ptx, rec.BuyerID, -rec.TotalAmount)
		if err != nil {
			return err
		}
		if _, err := s.wallets.AdjustTx(ctx, ptx, rec.SellerID, rec.ProductPrice); err != nil {
			return err
		}
		t, err := s.ledger.CreateTx(ctx, ptx, rec)
		if err != nil {
			return err
		}
		res = PurchaseResult{Transaction: t, NewBalance: bw.Amount}
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientBalance) {
			return PurchaseResult{}, Ef(KindInsufficientFunds, "insufficient funds, need %d", rec.TotalAmount)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return PurchaseResult{}, E(KindNotFound, "wallet not found")
		}
		return PurchaseResult{}, wrap(KindTransferFailed, "transfer aborted", err)
	}
	return res, nil
}

// transferCompensating is the path for stores without multi-operation
// atomicity: debit first, credit second, ledger last, undoing earlier legs
// when a later one fails. A failed undo is surfaced as an inconsistency
// needing manual reconciliation.
func (s *PurchaseService) transferCompensating(ctx context.Context, rec models.Transaction) (PurchaseResult, error) {
	bw, err := s.wallets.Adjust(ctx, rec.BuyerID, -rec.TotalAmount)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientBalance) {
			return PurchaseResult{}, Ef(KindInsufficientFunds, "insufficient funds, need %d", rec.TotalAmount)
		}
		return PurchaseResult{}, wrap(KindTransferFailed, "buyer debit failed", err)
	}

	if _, err := s.wallets.Adjust(ctx, rec.SellerID, rec.ProductPrice); err != nil {
		if _, cerr := s.wallets.Adjust(ctx, rec.BuyerID, rec.TotalAmount); cerr != nil {
			s.log.Error("compensation failed, manual reconciliation required",
				"buyer_id", rec.BuyerID, "amount", rec.TotalAmount, "err", cerr)
			return PurchaseResult{}, wrap(KindInconsistency, "seller credit and buyer refund both failed", cerr)
		}
		return PurchaseResult{}, wrap(KindTransferFailed, "seller credit failed, buyer refunded", err)
	}

	t, err := s.ledger.Create(ctx, rec)
	if err != nil {
		_, e1 := s.wallets.Adjust(ctx, rec.SellerID, -rec.ProductPrice)
		_, e2 := s.wallets.Adjust(ctx, rec.BuyerID, rec.TotalAmount)
		if e1 != nil || e2 != nil {
			s.log.Error("rollback after ledger failure incomplete, manual reconciliation required",
				"buyer_id", rec.BuyerID, "seller_id", rec.SellerID, "seller_err", e1, "buyer_err", e2)
			return PurchaseResult{}, wrap(KindInconsistency, "ledger write and rollback both failed", err)
		}
		return PurchaseResult{}, wrap(KindPersistence, "ledger write failed, transfer rolled back", err)
	}

	return PurchaseResult{Transaction: t, NewBalance: bw.Amount}, nil
}
