package repository

import (
	"context"
	"testing"
	"time"

	"bidmaster/models"
	"bidmaster/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidRepository_GetLeading_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bidRepo := NewBidRepository(testDB.DB)
	alice := testutil.CreateTestUser(t, testDB, "alice", 10000)
	bob := testutil.CreateTestUser(t, testDB, "bob", 10000)
	item := testutil.CreateTestItem(t, testDB, "lot", 100, time.Now().Add(time.Hour))

	t.Run("no bids yet", func(t *testing.T) {
		leading, err := bidRepo.GetLeading(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, leading)
	})

	t.Run("highest amount leads", func(t *testing.T) {
		testutil.CreateTestBid(t, testDB, item.ID, alice.ID, 200)
		testutil.CreateTestBid(t, testDB, item.ID, bob.ID, 400)

		leading, err := bidRepo.GetLeading(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, leading)
		assert.Equal(t, bob.ID, leading.UserID)
		assert.Equal(t, int64(400), leading.Amount)
	})

	t.Run("earliest bid wins an amount tie", func(t *testing.T) {
		// Should never happen through the settlement engine, but the
		// ordering still has to be deterministic
		testutil.CreateTestBid(t, testDB, item.ID, alice.ID, 400)

		leading, err := bidRepo.GetLeading(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, leading.UserID)
	})
}

func TestBidRepository_Lists_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bidRepo := NewBidRepository(testDB.DB)
	alice := testutil.CreateTestUser(t, testDB, "alice", 10000)
	item := testutil.CreateTestItem(t, testDB, "lot", 100, time.Now().Add(time.Hour))

	created := &models.Bid{ItemID: item.ID, UserID: alice.ID, Amount: 150}
	require.NoError(t, bidRepo.Create(ctx, created))
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	testutil.CreateTestBid(t, testDB, item.ID, alice.ID, 300)
	testutil.CreateTestBid(t, testDB, item.ID, alice.ID, 450)

	t.Run("by item, newest first with limit", func(t *testing.T) {
		bids, err := bidRepo.ListByItem(ctx, item.ID, 2)
		require.NoError(t, err)
		require.Len(t, bids, 2)
		assert.Equal(t, int64(450), bids[0].Amount)
		assert.Equal(t, int64(300), bids[1].Amount)
	})

	t.Run("by user", func(t *testing.T) {
		bids, err := bidRepo.ListByUser(ctx, alice.ID, 10)
		require.NoError(t, err)
		assert.Len(t, bids, 3)
	})
}
