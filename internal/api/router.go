package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/adeyemi/marketplace-backend/internal/api/handlers"
	"github.com/adeyemi/marketplace-backend/internal/auth"
	"github.com/adeyemi/marketplace-backend/internal/config"
	"github.com/adeyemi/marketplace-backend/internal/metrics"
	"github.com/adeyemi/marketplace-backend/internal/middleware"
	"github.com/adeyemi/marketplace-backend/internal/services"
)

type RouterDeps struct {
	Cfg       config.Config
	TM        *auth.TokenManager
	Users     *services.UserService
	Products  *services.ProductService
	Purchases *services.PurchaseService
	Wallets   *services.WalletService
	Fundings  *services.FundingService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	authH := handlers.NewAuthHandler(d.Users)
	productH := handlers.NewProductHandler(d.Products)
	purchaseH := handlers.NewPurchaseHandler(d.Purchases)
	walletH := handlers.NewWalletHandler(d.Wallets, d.Fundings)
	authMW := middleware.NewAuthMiddleware(d.TM)

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", authH.Signup)
		r.Post("/auth/verify-otp", authH.VerifyOTP)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Get("/products", productH.List)
		r.Get("/products/{id}", productH.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/users", authH.List)

			r.Post("/products", productH.Create)
			r.Get("/products/mine", productH.Mine)
			r.Put("/products/{id}", productH.Update)
			r.Delete("/products/{id}", productH.Delete)

			r.Post("/purchases/{productID}", purchaseH.Purchase)

			r.Get("/wallet", walletH.Current)
			r.Post("/wallet/fund", walletH.Fund)
			r.Get("/transactions", walletH.Transactions)
			r.Get("/transactions/{id}", walletH.Transaction)
		})
	})

	return r
}
