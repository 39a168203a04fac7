package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/adeyemi/marketplace-backend/internal/auth"
	"github.com/adeyemi/marketplace-backend/internal/repository/memory"
	"github.com/adeyemi/marketplace-backend/internal/services"
	"github.com/adeyemi/marketplace-backend/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentOTP struct{ to, code string }

type captureSender struct{ ch chan sentOTP }

func (c *captureSender) SendOTP(to, code string) error {
	c.ch <- sentOTP{to: to, code: code}
	return nil
}

func (c *captureSender) wait(t *testing.T) sentOTP {
	t.Helper()
	select {
	case s := <-c.ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no otp mail delivered")
		return sentOTP{}
	}
}

func newUserFixture(t *testing.T) (*services.UserService, *captureSender) {
	t.Helper()
	store := memory.NewStore()
	tm := auth.NewTokenManager("access-secret", "refresh-secret", "test", time.Minute, time.Hour)
	mail := &captureSender{ch: make(chan sentOTP, 4)}
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	return services.NewUserService(store.Users(), store.OTPs(), tm, mail, wp, 10*time.Minute, slog.Default()), mail
}

func TestSignupVerifyLogin(t *testing.T) {
	svc, mail := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.False(t, u.Verified)
	assert.NotEmpty(t, u.PasswordHash, "hash stored, never the password")

	// login is refused until the email is verified
	_, err = svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))

	otp := mail.wait(t)
	assert.Equal(t, "ada@example.com", otp.to)
	assert.Len(t, otp.code, 6)

	require.NoError(t, svc.VerifyOTP(ctx, "ada@example.com", otp.code))

	pair, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, mail := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	otp := mail.wait(t)

	wrong := "000000"
	if otp.code == wrong {
		wrong = "000001"
	}
	err = svc.VerifyOTP(ctx, "ada@example.com", wrong)
	require.Error(t, err)
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
}

func TestVerifyOTPUnknownEmail(t *testing.T) {
	svc, _ := newUserFixture(t)
	err := svc.VerifyOTP(context.Background(), "nobody@example.com", "123456")
	require.Error(t, err)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, mail := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	mail.wait(t)

	_, err = svc.Signup(ctx, "Eve", "ada@example.com", "another-pass")
	require.Error(t, err)
	assert.Equal(t, services.KindValidation, services.KindOf(err))
}

func TestSignupWeakPassword(t *testing.T) {
	svc, _ := newUserFixture(t)
	_, err := svc.Signup(context.Background(), "Ada", "ada@example.com", "short")
	require.Error(t, err)
	assert.Equal(t, services.KindValidation, services.KindOf(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mail := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	otp := mail.wait(t)
	require.NoError(t, svc.VerifyOTP(ctx, "ada@example.com", otp.code))

	_, err = svc.Login(ctx, "ada@example.com", "wrong-pass")
	require.Error(t, err)
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
}

func TestRefreshRotatesPair(t *testing.T) {
	svc, mail := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	otp := mail.wait(t)
	require.NoError(t, svc.VerifyOTP(ctx, "ada@example.com", otp.code))

	pair, err := svc.Login(ctx, "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	// an access token is not accepted as a refresh token
	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, services.KindUnauthorized, services.KindOf(err))
}
