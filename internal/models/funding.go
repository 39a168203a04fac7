package models

import "time"

type FundingType string

const (
	FundingAuto   FundingType = "AUTO_FUNDING"
	FundingManual FundingType = "MANUAL_FUNDING"
)

type FundingStatus string

const (
	FundingPending   FundingStatus = "PENDING"
	FundingCompleted FundingStatus = "COMPLETED"
	FundingFailed    FundingStatus = "FAILED"
)

// FundingTransaction records one funding event for one user.
type FundingTransaction struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Amount    int64         `json:"amount"`
	Type      FundingType   `json:"type"`
	Status    FundingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
