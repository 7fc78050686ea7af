package repository

import (
	"context"
	"errors"
	"fmt"

	"bidmaster/database"
	"bidmaster/models"
	"github.com/jackc/pgx/v5"
)

// BidRepository implements the service.BidRepository interface.
// The bid log is append-only; there is no update or delete path.
type BidRepository struct {
	q queryable
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *database.DB) *BidRepository {
	return &BidRepository{q: db.Pool}
}

// newBidRepositoryWithTx creates a new bid repository with a transaction
func newBidRepositoryWithTx(tx queryable) *BidRepository {
	return &BidRepository{q: tx}
}

// Create appends a bid record
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (item_id, user_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, bid.ItemID, bid.UserID, bid.Amount).Scan(
		&bid.ID,
		&bid.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bid on item %d: %w", bid.ItemID, err)
	}

	return nil
}

// ListByItem returns the most recent bids for a lot
func (r *BidRepository) ListByItem(ctx context.Context, itemID int64, limit int) ([]*models.Bid, error) {
	query := `
		SELECT id, item_id, user_id, amount, created_at
		FROM bids
		WHERE item_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids for item %d: %w", itemID, err)
	}
	defer rows.Close()

	return collectBids(rows)
}

// GetLeading returns the highest bid on a lot, earliest first on ties.
// Returns nil when the lot has no bids.
func (r *BidRepository) GetLeading(ctx context.Context, itemID int64) (*models.Bid, error) {
	query := `
		SELECT id, item_id, user_id, amount, created_at
		FROM bids
		WHERE item_id = $1
		ORDER BY amount DESC, created_at ASC
		LIMIT 1
	`

	var bid models.Bid
	err := r.q.QueryRow(ctx, query, itemID).Scan(
		&bid.ID,
		&bid.ItemID,
		&bid.UserID,
		&bid.Amount,
		&bid.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get leading bid for item %d: %w", itemID, err)
	}

	return &bid, nil
}

// ListByUser returns the most recent bids by a user
func (r *BidRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Bid, error) {
	query := `
		SELECT id, item_id, user_id, amount, created_at
		FROM bids
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectBids(rows)
}

func collectBids(rows pgx.Rows) ([]*models.Bid, error) {
	var bids []*models.Bid
	for rows.Next() {
		var bid models.Bid
		err := rows.Scan(
			&bid.ID,
			&bid.ItemID,
			&bid.UserID,
			&bid.Amount,
			&bid.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, &bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bids: %w", err)
	}

	return bids, nil
}
