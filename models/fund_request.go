package models

import (
	"time"
)

// FundRequestStatus is the lifecycle state of a wallet top-up request.
// A request transitions exactly once from PENDING to APPROVED or REJECTED.
type FundRequestStatus string

const (
	FundRequestPending  FundRequestStatus = "PENDING"
	FundRequestApproved FundRequestStatus = "APPROVED"
	FundRequestRejected FundRequestStatus = "REJECTED"
)

// FundRequest represents a user's request to top up their wallet.
type FundRequest struct {
	ID        int64             `db:"id"`
	UserID    int64             `db:"user_id"`
	Amount    int64             `db:"amount"`
	Status    FundRequestStatus `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
	UpdatedAt time.Time         `db:"updated_at"`
}
