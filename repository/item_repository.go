package repository

import (
	"context"
	"errors"
	"fmt"

	"bidmaster/database"
	"bidmaster/models"
	"bidmaster/service"
	"github.com/jackc/pgx/v5"
)

// ItemRepository implements the service.ItemRepository interface
type ItemRepository struct {
	q queryable
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{q: db.Pool}
}

// newItemRepositoryWithTx creates a new item repository with a transaction
func newItemRepositoryWithTx(tx queryable) *ItemRepository {
	return &ItemRepository{q: tx}
}

const itemColumns = `id, title, description, starting_price, current_price,
	end_time, winner_id, settled_at, created_at, updated_at`

// Create creates a new lot with current_price = starting_price
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (title, description, starting_price, current_price, end_time)
		VALUES ($1, $2, $3, $3, $4)
		RETURNING id, current_price, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.StartingPrice,
		item.EndTime,
	).Scan(&item.ID, &item.CurrentPrice, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create item %q: %w", item.Title, err)
	}

	return nil
}

// GetByID retrieves a lot by ID, nil if absent
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, err)
	}
	return item, nil
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
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
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListOpen returns lots still accepting bids, soonest-ending first
func (r *ItemRepository) ListOpen(ctx context.Context) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE end_time > NOW() AND settled_at IS NULL
		ORDER BY end_time ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListExpiredUnsettled returns lots past end_time not yet settled
func (r *ItemRepository) ListExpiredUnsettled(ctx context.Context) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE end_time <= NOW() AND settled_at IS NULL
		ORDER BY end_time ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		var item models.Item
		err := rows.Scan(
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
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// CompareAndSetPrice raises current_price from expected to newPrice.
// The predicate re-evaluates after any lock wait, so of two racing bids that
// read the same price exactly one update sticks; the other sees zero rows.
func (r *ItemRepository) CompareAndSetPrice(ctx context.Context, id int64, expected, newPrice int64) (bool, error) {
	query := `
		UPDATE items
		SET current_price = $1, updated_at = NOW()
		WHERE id = $2
		  AND current_price = $3
		  AND end_time > NOW()
		  AND settled_at IS NULL
	`

	result, err := r.q.Exec(ctx, query, newPrice, id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to update price for item %d: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

// Stop shortens a lot's end time to now
func (r *ItemRepository) Stop(ctx context.Context, id int64) error {
	query := `
		UPDATE items
		SET end_time = NOW(), updated_at = NOW()
		WHERE id = $1 AND settled_at IS NULL AND end_time > NOW()
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to stop item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		item, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return service.ErrNotFound
		}
		return service.ErrAuctionClosed
	}

	return nil
}

// Delete removes a lot that has no bids
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM items
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM bids WHERE item_id = $1)
	`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		item, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return service.ErrNotFound
		}
		return service.ErrItemHasBids
	}

	return nil
}

// Settle assigns the winner and marks the lot settled, exactly once.
// The settled_at guard makes re-runs of the closing sweep no-ops.
func (r *ItemRepository) Settle(ctx context.Context, id int64, winnerID *int64) (bool, error) {
	query := `
		UPDATE items
		SET winner_id = $1, settled_at = NOW(), updated_at = NOW()
		WHERE id = $2
		  AND settled_at IS NULL
		  AND end_time <= NOW()
	`

	result, err := r.q.Exec(ctx, query, winnerID, id)
	if err != nil {
		return false, fmt.Errorf("failed to settle item %d: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}
