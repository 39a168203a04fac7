package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

type Claims struct {
	UserID string `json:"uid"`
	Type   string `json:"typ"` // "access" | "refresh"
	jwt.RegisteredClaims
}

func (tm *TokenManager) GeneratePair(userID string) (access string, refresh string, accessExp time.Time, err error) {
	now := time.Now()

	accClaims := Claims{
		UserID: userID,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessTTL)),
		},
	}
	refClaims := Claims{
		UserID: userID,
		Type:   "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.refreshTTL)),
		},
	}

	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accClaims).SignedString(tm.accessSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refClaims).SignedString(tm.refreshSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return access, refresh, accClaims.ExpiresAt.Time, nil
}

// ParseAny tries the access secret first, then refresh. The bool result is
// true when the token is a refresh token.
func (tm *TokenManager) ParseAny(tokenStr string) (*Claims, bool, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return tm.accessSecret, nil
	})
	if err == nil && claims.Type == "access" {
		return claims, false, nil
	}

	claims = &Claims{}
	_, err = jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return tm.refreshSecret, nil
	})
	if err == nil && claims.Type == "refresh" {
		return claims, true, nil
	}
	return nil, false, errors.New("invalid token")
}
