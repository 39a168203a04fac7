package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/adeyemi/marketplace-backend/internal/api/httpx"
	"github.com/adeyemi/marketplace-backend/internal/auth"
)

type ctxKey string

const ctxUserIDKey ctxKey = "uid"

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxUserIDKey).(string)
	return v, ok
}

type AuthMiddleware struct {
	TM *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{TM: tm}
}

// Auth requires a Bearer access token and puts the user id in the context.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		claims, isRefresh, err := m.TM.ParseAny(token)
		if err != nil || isRefresh {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
