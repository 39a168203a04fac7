package services

import (
	"context"
	"errors"

	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/google/uuid"
)

type WalletService struct {
	wallets repo.Wallets
	ledger  repo.Transactions
}

func NewWalletService(wallets repo.Wallets, ledger repo.Transactions) *WalletService {
	return &WalletService{wallets: wallets, ledger: ledger}
}

func (s *WalletService) Current(ctx context.Context, userID string) (models.Wallet, error) {
	w, err := s.wallets.GetOrCreate(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Wallet{}, E(KindNotFound, "wallet not found")
		}
		return models.Wallet{}, wrap(KindPersistence, "wallet lookup failed", err)
	}
	return w, nil
}

func (s *WalletService) Transactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	out, err := s.ledger.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, wrap(KindPersistence, "transaction list failed", err)
	}
	return out, nil
}

func (s *WalletService) Transaction(ctx context.Context, id string) (models.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Transaction{}, E(KindValidation, "invalid transaction id format")
	}
	t, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.Transaction{}, E(KindNotFound, "transaction not found")
		}
		return models.Transaction{}, wrap(KindPersistence, "transaction lookup failed", err)
	}
	return t, nil
}
