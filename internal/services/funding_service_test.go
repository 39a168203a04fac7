package services_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/adeyemi/marketplace-backend/internal/repository/memory"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fundAmount = int64(5000)

func newFundingFixture(t *testing.T, users int) (*memory.Store, *services.FundingService, []models.User) {
	t.Helper()
	store := memory.NewStore()
	svc := services.NewFundingService(store.Wallets(), store.Fundings(), store.AuditLogs(), fundAmount, slog.Default())
	out := make([]models.User, users)
	for i := range out {
		out[i] = mustUser(t, store, "User", uuid.NewString()+"@example.com")
	}
	return store, svc, out
}

func TestRunAutoFundingCreditsEveryWallet(t *testing.T) {
	store, svc, users := newFundingFixture(t, 5)

	rep, err := svc.RunAutoFunding(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Funded)
	assert.Equal(t, 0, rep.Failed)

	for _, u := range users {
		w, err := store.Wallets().Get(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, fundAmount, w.Amount)

		recs, err := store.Fundings().ListByUser(context.Background(), u.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, models.FundingAuto, recs[0].Type)
		assert.Equal(t, models.FundingCompleted, recs[0].Status)
		assert.Equal(t, fundAmount, recs[0].Amount)
	}
}

func TestRunAutoFundingIsolatesPerUserFailure(t *testing.T) {
	store, svc, users := newFundingFixture(t, 4)
	bad := users[1].ID

	store.AdjustErr = func(userID string, _ int64) error {
		if userID == bad {
			return errors.New("simulated write conflict")
		}
		return nil
	}

	rep, err := svc.RunAutoFunding(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Funded)
	assert.Equal(t, 1, rep.Failed)

	for _, u := range users {
		w, werr := store.Wallets().Get(context.Background(), u.ID)
		require.NoError(t, werr)
		recs, rerr := store.Fundings().ListByUser(context.Background(), u.ID, 10, 0)
		require.NoError(t, rerr)
		require.Len(t, recs, 1)
		if u.ID == bad {
			assert.Equal(t, int64(0), w.Amount)
			assert.Equal(t, models.FundingFailed, recs[0].Status, "failed credit leaves a FAILED record")
		} else {
			assert.Equal(t, fundAmount, w.Amount)
			assert.Equal(t, models.FundingCompleted, recs[0].Status)
		}
	}
}

func TestManualFund(t *testing.T) {
	store, svc, users := newFundingFixture(t, 1)

	ft, err := svc.Fund(context.Background(), users[0].ID, 2500)
	require.NoError(t, err)
	assert.Equal(t, models.FundingManual, ft.Type)
	assert.Equal(t, models.FundingCompleted, ft.Status)
	assert.Equal(t, int64(2500), ft.Amount)

	w, err := store.Wallets().Get(context.Background(), users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), w.Amount)

	recs, err := store.Fundings().ListByUser(context.Background(), users[0].ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.FundingCompleted, recs[0].Status)
}

func TestManualFundRejectsNonPositiveAmount(t *testing.T) {
	_, svc, users := newFundingFixture(t, 1)

	_, err := svc.Fund(context.Background(), users[0].ID, 0)
	require.Error(t, err)
	assert.Equal(t, services.KindValidation, services.KindOf(err))

	_, err = svc.Fund(context.Background(), users[0].ID, -10)
	require.Error(t, err)
	assert.Equal(t, services.KindValidation, services.KindOf(err))
}

func TestRunAutoFundingWritesSweepAuditRow(t *testing.T) {
	store, svc, users := newFundingFixture(t, 3)
	store.AdjustErr = func(userID string, _ int64) error {
		if userID == users[0].ID {
			return errors.New("simulated write conflict")
		}
		return nil
	}

	_, err := svc.RunAutoFunding(context.Background())
	require.NoError(t, err)

	logs, err := store.AuditLogs().ListByEntity(context.Background(), "funding", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "sweep", logs[0].Action)
	assert.Equal(t, 2, logs[0].Details["funded"])
	assert.Equal(t, 1, logs[0].Details["failed"])
}

func TestManualFundUnknownUser(t *testing.T) {
	_, svc, _ := newFundingFixture(t, 1)

	_, err := svc.Fund(context.Background(), uuid.NewString(), 100)
	require.Error(t, err)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
}
