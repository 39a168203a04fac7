package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, VerifyPassword("s3cret-pass", hash))
	assert.Error(t, VerifyPassword("wrong", hash))
}

func TestGenerateOTP(t *testing.T) {
	code, err := GenerateOTP()
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9', "otp is numeric")
	}

	hash, err := HashOTP(code)
	require.NoError(t, err)
	assert.NoError(t, VerifyOTP(code, hash))

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	assert.Error(t, VerifyOTP(wrong, hash))
}

func TestTokenPairRoundtrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", "test", time.Minute, time.Hour)

	access, refresh, exp, err := tm.GeneratePair("user-1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, isRefresh, err := tm.ParseAny(access)
	require.NoError(t, err)
	assert.False(t, isRefresh)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "test", claims.Issuer)

	claims, isRefresh, err = tm.ParseAny(refresh)
	require.NoError(t, err)
	assert.True(t, isRefresh)
	assert.Equal(t, "user-1", claims.UserID)

	_, _, err = tm.ParseAny("garbage")
	assert.Error(t, err)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", "test", -time.Minute, time.Hour)
	access, _, _, err := tm.GeneratePair("user-1")
	require.NoError(t, err)

	_, _, err = tm.ParseAny(access)
	assert.Error(t, err)
}
