package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/adeyemi/marketplace-backend/internal/api/httpx"
	"github.com/adeyemi/marketplace-backend/internal/api/validate"
	"github.com/adeyemi/marketplace-backend/internal/middleware"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type WalletHandler struct {
	Wallets  *services.WalletService
	Fundings *services.FundingService
}

func NewWalletHandler(ws *services.WalletService, fs *services.FundingService) *WalletHandler {
	return &WalletHandler{Wallets: ws, Fundings: fs}
}

func (h *WalletHandler) Current(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	wal, err := h.Wallets.Current(r.Context(), uid)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, wal)
}

type fundReq struct {
	Amount int64 `json:"amount"`
}

func (h *WalletHandler) Fund(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	var req fundReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return
	}
	if e := validate.MinInt("amount", req.Amount, 1); e != nil {
		errs := validate.Errs{*e}
		httpx.WriteError(w, http.StatusBadRequest, "validation", errs.Error(), errs)
		return
	}
	ft, err := h.Fundings.Fund(r.Context(), uid, req.Amount)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, ft)
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())

	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	txs, err := h.Wallets.Transactions(r.Context(), uid, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}

func (h *WalletHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	t, err := h.Wallets.Transaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}
