package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adeyemi/marketplace-backend/internal/api/httpx"
	"github.com/adeyemi/marketplace-backend/internal/middleware"
	"github.com/adeyemi/marketplace-backend/internal/models"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	Products *services.ProductService
}

func NewProductHandler(ps *services.ProductService) *ProductHandler {
	return &ProductHandler{Products: ps}
}

type productReq struct {
	Title   string `json:"title"`
	Price   int64  `json:"price"`
	Picture string `json:"picture"`
	URL     string `json:"url"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return
	}
	p, err := h.Products.Create(r.Context(), models.Product{
		Title:     req.Title,
		Price:     req.Price,
		Picture:   req.Picture,
		URL:       req.URL,
		CreatedBy: uid,
	})
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Products.List(r.Context())
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Mine(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	out, err := h.Products.ListMine(r.Context(), uid)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return
	}
	p, err := h.Products.Update(r.Context(), models.Product{
		ID:        chi.URLParam(r, "id"),
		Title:     req.Title,
		Price:     req.Price,
		Picture:   req.Picture,
		URL:       req.URL,
		CreatedBy: uid,
	})
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.UserID(r.Context())
	if err := h.Products.Delete(r.Context(), chi.URLParam(r, "id"), uid); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
