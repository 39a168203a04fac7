package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/adeyemi/marketplace-backend/internal/auth"
	"github.com/adeyemi/marketplace-backend/internal/mailer"
	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/adeyemi/marketplace-backend/internal/worker"
)

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type UserService struct {
	users  repo.Users
	otps   repo.OTPs
	tm     *auth.TokenManager
	mail   mailer.Sender
	wp     *worker.Pool
	otpTTL time.Duration
	log    *slog.Logger
}

func NewUserService(users repo.Users, otps repo.OTPs, tm *auth.TokenManager, mail mailer.Sender, wp *worker.Pool, otpTTL time.Duration, log *slog.Logger) *UserService {
	return &UserService{users: users, otps: otps, tm: tm, mail: mail, wp: wp, otpTTL: otpTTL, log: log}
}

// Signup creates an unverified user with an empty wallet and emails a
// verification code. Email delivery runs on the worker pool; a delivery
// failure is logged, never returned, so the signup itself stands.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (models.User, error) {
	u := models.User{Name: strings.TrimSpace(name), Email: strings.ToLower(strings.TrimSpace(email))}
	if err := u.Validate(); err != nil {
		return models.User{}, wrap(KindValidation, "invalid signup", err)
	}
	if len(password) < 8 {
		return models.User{}, E(KindValidation, "password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, wrap(KindPersistence, "password hash failed", err)
	}
	u.PasswordHash = hash

	u, err = s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return models.User{}, E(KindValidation, "email already registered")
		}
		return models.User{}, wrap(KindPersistence, "user create failed", err)
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return models.User{}, wrap(KindPersistence, "otp generation failed", err)
	}
	codeHash, err := auth.HashOTP(code)
	if err != nil {
		return models.User{}, wrap(KindPersistence, "otp hash failed", err)
	}
	if _, err := s.otps.Create(ctx, models.EmailOTP{
		Email:     u.Email,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().Add(s.otpTTL),
	}); err != nil {
		return models.User{}, wrap(KindPersistence, "otp store failed", err)
	}

	to := u.Email
	s.wp.Submit(func() {
		if err := s.mail.SendOTP(to, code); err != nil {
			s.log.Error("otp mail failed", "email", to, "err", err)
		}
	})

	return u, nil
}

func (s *UserService) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	otp, err := s.otps.Latest(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return E(KindNotFound, "no pending verification for this email")
		}
		return wrap(KindPersistence, "otp lookup failed", err)
	}
	if otp.Expired(time.Now()) {
		return E(KindUnauthorized, "verification code expired")
	}
	if err := auth.VerifyOTP(code, otp.CodeHash); err != nil {
		return E(KindUnauthorized, "invalid verification code")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return wrap(KindPersistence, "user lookup failed", err)
	}
	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return wrap(KindPersistence, "verify update failed", err)
	}
	return s.otps.DeleteForEmail(ctx, email)
}

func (s *UserService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return TokenPair{}, E(KindUnauthorized, "invalid credentials")
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return TokenPair{}, E(KindUnauthorized, "invalid credentials")
	}
	if !u.Verified {
		return TokenPair{}, E(KindUnauthorized, "email not verified")
	}
	access, refresh, exp, err := s.tm.GeneratePair(u.ID)
	if err != nil {
		return TokenPair{}, wrap(KindPersistence, "token generation failed", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (s *UserService) Refresh(_ context.Context, refreshToken string) (TokenPair, error) {
	claims, isRefresh, err := s.tm.ParseAny(refreshToken)
	if err != nil || !isRefresh {
		return TokenPair{}, E(KindUnauthorized, "invalid refresh token")
	}
	access, refresh, exp, err := s.tm.GeneratePair(claims.UserID)
	if err != nil {
		return TokenPair{}, wrap(KindPersistence, "token generation failed", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	out, err := s.users.List(ctx)
	if err != nil {
		return nil, wrap(KindPersistence, "user list failed", err)
	}
	return out, nil
}
