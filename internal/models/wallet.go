package models

import "time"

// Wallet is a user's stored balance in a single currency unit.
// Amount is only ever mutated through the Wallets repository; a committed
// wallet is never negative.
type Wallet struct {
	UserID        string    `json:"user_id"`
	Amount        int64     `json:"amount"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}
