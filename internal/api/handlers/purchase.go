package handlers

import (
	"net/http"

	"github.com/adeyemi/marketplace-backend/internal/api/httpx"
	"github.com/adeyemi/marketplace-backend/internal/api/validate"
	"github.com/adeyemi/marketplace-backend/internal/middleware"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type PurchaseHandler struct {
	Purchases *services.PurchaseService
}

func NewPurchaseHandler(ps *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{Purchases: ps}
}

func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing user", nil)
		return
	}
	productID := chi.URLParam(r, "productID")
	if e := validate.UUID("product_id", productID); e != nil {
		errs := validate.Errs{*e}
		httpx.WriteError(w, http.StatusBadRequest, "validation", errs.Error(), errs)
		return
	}
	res, err := h.Purchases.Purchase(r.Context(), uid, productID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
