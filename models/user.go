package models

import (
	"time"
)

// User represents a marketplace account with a wallet.
// WalletBalance only changes inside ledger transactions (signup credit,
// approved deposits, winner settlement); bids place derived holds against it.
type User struct {
	ID               int64     `db:"id"`
	Username         string    `db:"username"`
	Email            string    `db:"email"`
	PasswordHash     string    `db:"password_hash"`
	WalletBalance    int64     `db:"wallet_balance"`
	AvailableBalance int64     `db:"-"` // Calculated field: wallet balance minus holds on leading bids
	IsAdmin          bool      `db:"is_admin"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
