package models

import (
	"time"
)

// Item represents an auction lot. CurrentPrice is monotonically
// non-decreasing while the lot is open; WinnerID is assigned exactly once
// by the closing sweep and never reassigned.
type Item struct {
	ID            int64      `db:"id"`
	Title         string     `db:"title"`
	Description   string     `db:"description"`
	StartingPrice int64      `db:"starting_price"`
	CurrentPrice  int64      `db:"current_price"`
	EndTime       time.Time  `db:"end_time"`
	WinnerID      *int64     `db:"winner_id"`
	SettledAt     *time.Time `db:"settled_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// IsOpen reports whether the lot still accepts bids at the given instant.
func (i *Item) IsOpen(now time.Time) bool {
	return now.Before(i.EndTime)
}
