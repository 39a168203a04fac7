package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adeyemi/marketplace-backend/internal/api"
	"github.com/adeyemi/marketplace-backend/internal/auth"
	"github.com/adeyemi/marketplace-backend/internal/config"
	"github.com/adeyemi/marketplace-backend/internal/db"
	"github.com/adeyemi/marketplace-backend/internal/jobs"
	"github.com/adeyemi/marketplace-backend/internal/logger"
	"github.com/adeyemi/marketplace-backend/internal/mailer"
	"github.com/adeyemi/marketplace-backend/internal/metrics"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/adeyemi/marketplace-backend/internal/repository/memory"
	"github.com/adeyemi/marketplace-backend/internal/repository/postgres"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/adeyemi/marketplace-backend/internal/worker"
)

type stores struct {
	users        repo.Users
	wallets      repo.Wallets
	products     repo.Products
	transactions repo.Transactions
	fundings     repo.Fundings
	otps         repo.OTPs
	audits       repo.AuditLogs
	tx           repo.TxRunner
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st stores
	if cfg.DatabaseURL == "memory" {
		// Dev shortcut: everything in-process, compensation path for
		// purchases instead of storage transactions.
		ms := memory.NewStore()
		st = stores{
			users: ms.Users(), wallets: ms.Wallets(), products: ms.Products(),
			transactions: ms.Transactions(), fundings: ms.Fundings(), otps: ms.OTPs(),
			audits: ms.AuditLogs(),
		}
		log.Warn("running on the in-memory store, data will not survive restarts")
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}

		repos := postgres.NewRepositories(pool)
		st = stores{
			users: repos.Users, wallets: repos.Wallets, products: repos.Products,
			transactions: repos.Transactions, fundings: repos.Fundings, otps: repos.OTPs,
			audits: repos.AuditLogs, tx: repos.Tx,
		}
	}

	metrics.Init()

	wp := worker.NewPool(4)
	defer wp.Stop()

	var mail mailer.Sender
	if cfg.Env == "prod" {
		mail = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		mail = mailer.LogSender{Log: log}
	}

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)

	userSvc := services.NewUserService(st.users, st.otps, tm, mail, wp, cfg.OTPTTL, log)
	productSvc := services.NewProductService(st.products, cfg.MinProductPrice)
	purchaseSvc := services.NewPurchaseService(st.users, st.products, st.wallets, st.transactions, st.audits, st.tx, cfg.PlatformFee, log)
	walletSvc := services.NewWalletService(st.wallets, st.transactions)
	fundingSvc := services.NewFundingService(st.wallets, st.fundings, st.audits, cfg.AutoFundAmount, log)

	autoFund := jobs.NewAutoFundJob(fundingSvc, cfg.AutoFundEvery, log)
	go autoFund.Start(ctx)
	defer autoFund.Stop()

	r := api.NewRouter(api.RouterDeps{
		Cfg:       cfg,
		TM:        tm,
		Users:     userSvc,
		Products:  productSvc,
		Purchases: purchaseSvc,
		Wallets:   walletSvc,
		Fundings:  fundingSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
