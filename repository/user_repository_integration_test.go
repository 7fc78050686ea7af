package repository

import (
	"context"
	"testing"
	"time"

	"bidmaster/repository/testutil"
	"bidmaster/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserRepository_AvailableBalance_Integration exercises the subquery that
// derives holds from leading bids on open lots
func TestUserRepository_AvailableBalance_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := NewUserRepository(testDB.DB)

	bidder := testutil.CreateTestUser(t, testDB, "bidder", 1000)
	rival := testutil.CreateTestUser(t, testDB, "rival", 5000)

	t.Run("no bids - full balance available", func(t *testing.T) {
		user, err := userRepo.GetByID(ctx, bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.WalletBalance)
		assert.Equal(t, int64(1000), user.AvailableBalance)
	})

	t.Run("leading bid on open lot holds funds", func(t *testing.T) {
		item := testutil.CreateTestItem(t, testDB, "lot a", 100, time.Now().Add(time.Hour))
		testutil.CreateTestBid(t, testDB, item.ID, bidder.ID, 300)

		user, err := userRepo.GetByID(ctx, bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.WalletBalance)
		assert.Equal(t, int64(700), user.AvailableBalance)
	})

	t.Run("outbid releases the hold", func(t *testing.T) {
		item := testutil.CreateTestItem(t, testDB, "lot b", 100, time.Now().Add(time.Hour))
		testutil.CreateTestBid(t, testDB, item.ID, bidder.ID, 200)
		testutil.CreateTestBid(t, testDB, item.ID, rival.ID, 400)

		user, err := userRepo.GetByID(ctx, bidder.ID)
		require.NoError(t, err)
		// Only lot a's 300 still held; lot b's 200 was outbid at 400
		assert.Equal(t, int64(700), user.AvailableBalance)

		other, err := userRepo.GetByID(ctx, rival.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4600), other.AvailableBalance)
	})

	t.Run("expired unsettled lot still holds funds", func(t *testing.T) {
		item := testutil.CreateTestItem(t, testDB, "lot d", 100, time.Now().Add(time.Hour))
		testutil.CreateTestBid(t, testDB, item.ID, bidder.ID, 250)

		// Past end_time but not yet swept: the winner still owes the debit
		_, err := testDB.DB.Pool.Exec(ctx,
			`UPDATE items SET end_time = NOW() - INTERVAL '1 second' WHERE id = $1`,
			item.ID)
		require.NoError(t, err)

		user, err := userRepo.GetByID(ctx, bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(450), user.AvailableBalance)

		_, err = testDB.DB.Pool.Exec(ctx,
			`UPDATE items SET settled_at = NOW() WHERE id = $1`, item.ID)
		require.NoError(t, err)
	})

	t.Run("settled lot no longer holds funds", func(t *testing.T) {
		item := testutil.CreateTestItem(t, testDB, "lot c", 100, time.Now().Add(time.Hour))
		testutil.CreateTestBid(t, testDB, item.ID, bidder.ID, 150)

		_, err := testDB.DB.Pool.Exec(ctx,
			`UPDATE items SET settled_at = NOW(), end_time = NOW() - INTERVAL '1 second' WHERE id = $1`,
			item.ID)
		require.NoError(t, err)

		user, err := userRepo.GetByID(ctx, bidder.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(700), user.AvailableBalance)
	})
}

func TestUserRepository_CreateAndCredit_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	userRepo := NewUserRepository(testDB.DB)

	t.Run("create assigns signup balance", func(t *testing.T) {
		user, err := userRepo.Create(ctx, "alice", "alice@example.com", "hash", 1000)
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, int64(1000), user.WalletBalance)
		assert.False(t, user.IsAdmin)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := userRepo.Create(ctx, "alice", "other@example.com", "hash", 1000)
		assert.ErrorIs(t, err, service.ErrUsernameTaken)
	})

	t.Run("credit and debit move the wallet", func(t *testing.T) {
		user, err := userRepo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		require.NoError(t, userRepo.CreditBalance(ctx, user.ID, 2000))
		require.NoError(t, userRepo.DebitBalance(ctx, user.ID, 500))

		user, err = userRepo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2500), user.WalletBalance)
	})

	t.Run("debit cannot overdraw", func(t *testing.T) {
		user, err := userRepo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		err = userRepo.DebitBalance(ctx, user.ID, 1000000)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	})

	t.Run("credit unknown user", func(t *testing.T) {
		err := userRepo.CreditBalance(ctx, 999999, 100)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
