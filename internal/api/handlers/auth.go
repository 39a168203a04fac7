package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adeyemi/marketplace-backend/internal/api/httpx"
	"github.com/adeyemi/marketplace-backend/internal/api/validate"
	"github.com/adeyemi/marketplace-backend/internal/services"
)

type AuthHandler struct {
	Users *services.UserService
}

func NewAuthHandler(us *services.UserService) *AuthHandler { return &AuthHandler{Users: us} }

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json body", nil)
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.Required("name", req.Name),
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation", errs.Error(), errs)
		return
	}

	u, err := h.Users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

type verifyReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "email and code required", nil)
		return
	}
	if err := h.Users.VerifyOTP(r.Context(), req.Email, req.Code); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "email and password required", nil)
		return
	}
	pair, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "refresh_token required", nil)
		return
	}
	pair, err := h.Users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pair)
}

func (h *AuthHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Users.List(r.Context())
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
