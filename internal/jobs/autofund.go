package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/adeyemi/marketplace-backend/internal/services"
)

// AutoFundJob owns the auto-funding timer. It is created at boot and
// started/stopped explicitly from main; nothing is scheduled at import time.
type AutoFundJob struct {
	svc      *services.FundingService
	interval time.Duration
	stopCh   chan struct{}
	log      *slog.Logger
}

func NewAutoFundJob(svc *services.FundingService, interval time.Duration, log *slog.Logger) *AutoFundJob {
	return &AutoFundJob{
		svc:      svc,
		interval: interval,
		stopCh:   make(chan struct{}),
		log:      log,
	}
}

// Start blocks until the context is cancelled or Stop is called; run it on
// its own goroutine.
func (j *AutoFundJob) Start(ctx context.Context) {
	j.log.Info("auto-funding scheduled", "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("auto-funding stopped", "reason", ctx.Err())
			return
		case <-j.stopCh:
			j.log.Info("auto-funding stopped")
			return
		case <-ticker.C:
			if _, err := j.svc.RunAutoFunding(ctx); err != nil {
				j.log.Error("auto-funding sweep failed", "err", err)
			}
		}
	}
}

func (j *AutoFundJob) Stop() { close(j.stopCh) }
