package models

import "time"

// EmailOTP holds the bcrypt hash of a signup verification code. The plain
// code only ever travels in the email.
type EmailOTP struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CodeHash  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (o *EmailOTP) Expired(now time.Time) bool { return now.After(o.ExpiresAt) }
