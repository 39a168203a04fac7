package jobs_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/adeyemi/marketplace-backend/internal/jobs"
	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/adeyemi/marketplace-backend/internal/repository/memory"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoFundJobRunsOnTicks(t *testing.T) {
	store := memory.NewStore()
	u, err := store.Users().Create(context.Background(), models.User{
		ID: uuid.NewString(), Name: "Ada", Email: "ada@example.com",
	})
	require.NoError(t, err)

	svc := services.NewFundingService(store.Wallets(), store.Fundings(), store.AuditLogs(), 5000, slog.Default())
	job := jobs.NewAutoFundJob(svc, 10*time.Millisecond, slog.Default())

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	// wait until at least one sweep has landed
	deadline := time.After(2 * time.Second)
	for {
		w, err := store.Wallets().Get(context.Background(), u.ID)
		require.NoError(t, err)
		if w.Amount >= 5000 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no funding sweep ran")
		case <-time.After(5 * time.Millisecond):
		}
	}

	job.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not stop")
	}

	w, err := store.Wallets().Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, w.Amount%5000, "balance is a whole number of sweeps")

	recs, err := store.Fundings().ListByUser(context.Background(), u.ID, 100, 0)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, w.Amount, int64(len(recs))*5000, "one record per credit")
	for _, r := range recs {
		assert.Equal(t, models.FundingAuto, r.Type)
	}
}

func TestAutoFundJobStopsOnContextCancel(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewFundingService(store.Wallets(), store.Fundings(), store.AuditLogs(), 5000, slog.Default())
	job := jobs.NewAutoFundJob(svc, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not exit on context cancel")
	}
}
