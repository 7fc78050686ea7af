package repository

import (
	"context"
	"errors"
	"fmt"

	"bidmaster/database"
	"bidmaster/models"
	"github.com/jackc/pgx/v5"
)

// FundRequestRepository implements the service.FundRequestRepository interface
type FundRequestRepository struct {
	q queryable
}

// NewFundRequestRepository creates a new fund request repository
func NewFundRequestRepository(db *database.DB) *FundRequestRepository {
	return &FundRequestRepository{q: db.Pool}
}

// newFundRequestRepositoryWithTx creates a new fund request repository with a transaction
func newFundRequestRepositoryWithTx(tx queryable) *FundRequestRepository {
	return &FundRequestRepository{q: tx}
}

// Create creates a PENDING request
func (r *FundRequestRepository) Create(ctx context.Context, userID int64, amount int64) (*models.FundRequest, error) {
	query := `
		INSERT INTO fund_requests (user_id, amount)
		VALUES ($1, $2)
		RETURNING id, status, created_at, updated_at
	`

	request := models.FundRequest{
		UserID: userID,
		Amount: amount,
	}
	err := r.q.QueryRow(ctx, query, userID, amount).Scan(
		&request.ID,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fund request for user %d: %w", userID, err)
	}

	return &request, nil
}

// GetByID retrieves a request by ID, nil if absent
func (r *FundRequestRepository) GetByID(ctx context.Context, id int64) (*models.FundRequest, error) {
	query := `
		SELECT id, user_id, amount, status, created_at, updated_at
		FROM fund_requests
		WHERE id = $1
	`

	var request models.FundRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.UserID,
		&request.Amount,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund request %d: %w", id, err)
	}

	return &request, nil
}

// ListPending returns all PENDING requests, oldest first
func (r *FundRequestRepository) ListPending(ctx context.Context) ([]*models.FundRequest, error) {
	query := `
		SELECT id, user_id, amount, status, created_at, updated_at
		FROM fund_requests
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending fund requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.FundRequest
	for rows.Next() {
		var request models.FundRequest
		err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.Amount,
			&request.Status,
			&request.CreatedAt,
			&request.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fund requests: %w", err)
	}

	return requests, nil
}

// MarkApproved transitions PENDING -> APPROVED. Returns false when the
// request already left PENDING, so a concurrent double-approval loses here.
func (r *FundRequestRepository) MarkApproved(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, id, models.FundRequestApproved)
}

// MarkRejected transitions PENDING -> REJECTED. Returns false when the
// request already left PENDING.
func (r *FundRequestRepository) MarkRejected(ctx context.Context, id int64) (bool, error) {
	return r.transition(ctx, id, models.FundRequestRejected)
}

func (r *FundRequestRepository) transition(ctx context.Context, id int64, status models.FundRequestStatus) (bool, error) {
	query := `
		UPDATE fund_requests
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'PENDING'
	`

	result, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark fund request %d %s: %w", id, status, err)
	}

	return result.RowsAffected() == 1, nil
}
