package auth

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const otpDigits = 6

// GenerateOTP returns a random numeric code. Codes are stored hashed; only
// the email carries the plain code.
func GenerateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	code := n.String()
	for len(code) < otpDigits {
		code = "0" + code
	}
	return code, nil
}

func HashOTP(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyOTP(code, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
}
