package testutil

import (
	"context"
	"testing"
	"time"

	"bidmaster/models"

	"github.com/stretchr/testify/require"
)

// CreateTestUser inserts a user directly and returns it. The password hash
// is a throwaway; repository tests never authenticate.
func CreateTestUser(t *testing.T, db *TestDatabase, username string, walletBalance int64) *models.User {
	ctx := context.Background()

	var user models.User
	err := db.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, wallet_balance)
		VALUES ($1, $2, 'x', $3)
		RETURNING id, username, email, wallet_balance, is_admin, created_at, updated_at
	`, username, username+"@example.com", walletBalance).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.WalletBalance,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	require.NoError(t, err)

	return &user
}

// CreateTestAdmin inserts an admin user
func CreateTestAdmin(t *testing.T, db *TestDatabase, username string) *models.User {
	user := CreateTestUser(t, db, username, 0)

	_, err := db.DB.Pool.Exec(context.Background(),
		`UPDATE users SET is_admin = TRUE WHERE id = $1`, user.ID)
	require.NoError(t, err)

	user.IsAdmin = true
	return user
}

// CreateTestItem inserts an open lot ending at the given time
func CreateTestItem(t *testing.T, db *TestDatabase, title string, startingPrice int64, endTime time.Time) *models.Item {
	ctx := context.Background()

	var item models.Item
	err := db.DB.Pool.QueryRow(ctx, `
		INSERT INTO items (title, description, starting_price, current_price, end_time)
		VALUES ($1, '', $2, $2, $3)
		RETURNING id, title, description, starting_price, current_price, end_time, winner_id, settled_at, created_at, updated_at
	`, title, startingPrice, endTime).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.StartingPrice,
		&item.CurrentPrice,
		&item.EndTime,
		&item.WinnerID,
		&item.SettledAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	require.NoError(t, err)

	return &item
}

// CreateTestBid inserts a bid and bumps the lot's current price to match,
// mirroring what the settlement engine does on acceptance
func CreateTestBid(t *testing.T, db *TestDatabase, itemID, userID int64, amount int64) *models.Bid {
	ctx := context.Background()

	var bid models.Bid
	err := db.DB.Pool.QueryRow(ctx, `
		INSERT INTO bids (item_id, user_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, item_id, user_id, amount, created_at
	`, itemID, userID, amount).Scan(
		&bid.ID,
		&bid.ItemID,
		&bid.UserID,
		&bid.Amount,
		&bid.CreatedAt,
	)
	require.NoError(t, err)

	_, err = db.DB.Pool.Exec(ctx,
		`UPDATE items SET current_price = GREATEST(current_price, $1) WHERE id = $2`, amount, itemID)
	require.NoError(t, err)

	return &bid
}
