package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/adeyemi/marketplace-backend/internal/services"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteServiceError maps every service error kind to a status; the switch is
// exhaustive over the closed set so nothing falls through untagged.
func WriteServiceError(w http.ResponseWriter, err error) {
	kind := services.KindOf(err)
	var status int
	switch kind {
	case services.KindValidation, services.KindSelfPurchase, services.KindInsufficientFunds:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindTransferFailed:
		status = http.StatusBadGateway
	case services.KindPersistence, services.KindInconsistency:
		status = http.StatusInternalServerError
	default:
		status = http.StatusInternalServerError
	}
	WriteError(w, status, string(kind), err.Error(), nil)
}
