package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/adeyemi/marketplace-backend/internal/metrics"
	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
)

// FundingReport counts one auto-funding sweep.
type FundingReport struct {
	Funded int `json:"funded"`
	Failed int `json:"failed"`
}

type FundingService struct {
	wallets  repo.Wallets
	fundings repo.Fundings
	audits   repo.AuditLogs
	amount   int64
	log      *slog.Logger
}

func NewFundingService(wallets repo.Wallets, fundings repo.Fundings, audits repo.AuditLogs, amount int64, log *slog.Logger) *FundingService {
	return &FundingService{wallets: wallets, fundings: fundings, audits: audits, amount: amount, log: log}
}

// RunAutoFunding credits every wallet by the configured amount and records
// one AUTO_FUNDING entry per user. A single user's failure is logged and
// skipped; it never aborts the sweep.
func (f *FundingService) RunAutoFunding(ctx context.Context) (FundingReport, error) {
	wallets, err := f.wallets.List(ctx)
	if err != nil {
		return FundingReport{}, wrap(KindPersistence, "wallet sweep failed", err)
	}

	var rep FundingReport
	for _, w := range wallets {
		if _, err := f.fundOne(ctx, w.UserID, f.amount, models.FundingAuto); err != nil {
			f.log.Error("auto-funding user failed", "user_id", w.UserID, "err", err)
			rep.Failed++
			continue
		}
		rep.Funded++
	}

	metrics.AutoFundRuns.Inc()
	metrics.AutoFundedUsers.Add(float64(rep.Funded))
	metrics.AutoFundFailures.Add(float64(rep.Failed))
	if err := f.audits.Create(ctx, models.AuditLog{
		EntityType: "funding",
		Action:     "sweep",
		Details:    map[string]any{"funded": rep.Funded, "failed": rep.Failed},
	}); err != nil {
		f.log.Warn("audit write failed", "action", "sweep", "err", err)
	}
	f.log.Info("auto-funding sweep done", "funded", rep.Funded, "failed", rep.Failed)
	return rep, nil
}

// Fund credits one user on request and records a MANUAL_FUNDING entry.
func (f *FundingService) Fund(ctx context.Context, userID string, amount int64) (models.FundingTransaction, error) {
	if amount <= 0 {
		return models.FundingTransaction{}, E(KindValidation, "amount must be positive")
	}
	ft, err := f.fundOne(ctx, userID, amount, models.FundingManual)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.FundingTransaction{}, E(KindNotFound, "user not found")
		}
		return models.FundingTransaction{}, wrap(KindPersistence, "funding failed", err)
	}
	return ft, nil
}

// fundOne records the attempt before touching the wallet: the funding row
// starts PENDING and ends COMPLETED or FAILED, so a crashed credit leaves a
// visible trace instead of nothing.
func (f *FundingService) fundOne(ctx context.Context, userID string, amount int64, typ models.FundingType) (models.FundingTransaction, error) {
	ft, err := f.fundings.Create(ctx, models.FundingTransaction{
		UserID: userID,
		Amount: amount,
		Type:   typ,
		Status: models.FundingPending,
	})
	if err != nil {
		return models.FundingTransaction{}, err
	}

	if _, err := f.wallets.Adjust(ctx, userID, amount); err != nil {
		if uerr := f.fundings.UpdateStatus(ctx, ft.ID, models.FundingFailed); uerr != nil {
			f.log.Error("funding status update failed", "funding_id", ft.ID, "err", uerr)
		}
		return models.FundingTransaction{}, err
	}

	if err := f.fundings.UpdateStatus(ctx, ft.ID, models.FundingCompleted); err != nil {
		return models.FundingTransaction{}, err
	}
	ft.Status = models.FundingCompleted
	return ft, nil
}
