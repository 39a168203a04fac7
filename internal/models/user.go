package models

import (
	"errors"
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if len(strings.TrimSpace(u.Name)) < 2 {
		return errors.New("name too short")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	return nil
}
