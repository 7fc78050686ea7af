package models

import (
	"time"
)

// Bid is an immutable append-only record. Once written it is never mutated
// or deleted; its amount was strictly greater than the lot's current price
// at the instant of acceptance.
type Bid struct {
	ID        int64     `db:"id"`
	ItemID    int64     `db:"item_id"`
	UserID    int64     `db:"user_id"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

// BidResult is returned to the caller of PlaceBid on acceptance.
type BidResult struct {
	BidID           int64
	ItemID          int64
	Amount          int64
	NewCurrentPrice int64
}
