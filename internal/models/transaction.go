package models

import "time"

// Transaction is an append-only record of a completed purchase. Rows are
// inserted exactly once and never updated or deleted. ProductPrice is a
// snapshot taken at purchase time, not a live reference, and
// TotalAmount == ProductPrice + PlatformFee always.
type Transaction struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"product_id"`
	BuyerID      string    `json:"buyer_id"`
	SellerID     string    `json:"seller_id"`
	ProductPrice int64     `json:"product_price"`
	PlatformFee  int64     `json:"platform_fee"`
	TotalAmount  int64     `json:"total_amount"`
	CreatedAt    time.Time `json:"created_at"`
}
