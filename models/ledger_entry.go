package models

import (
	"time"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTypeSignupCredit EntryType = "signup_credit"
	EntryTypeDeposit      EntryType = "deposit"
	EntryTypeBidHold      EntryType = "bid_hold"
	EntryTypeBidRelease   EntryType = "bid_release"
	EntryTypeSettlement   EntryType = "settlement"
)

// LedgerEntry is an immutable record of a balance-changing event.
// Hold and release entries document fund reservations without mutating
// the wallet; credit and settlement entries accompany an actual mutation.
type LedgerEntry struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	EntryType     EntryType `db:"entry_type"`
	Amount        int64     `db:"amount"`
	BalanceAfter  int64     `db:"balance_after"`
	ItemID        *int64    `db:"item_id"`
	FundRequestID *int64    `db:"fund_request_id"`
	CreatedAt     time.Time `db:"created_at"`
}
