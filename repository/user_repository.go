package repository

import (
	"context"
	"errors"
	"fmt"

	"bidmaster/database"
	"bidmaster/models"
	"bidmaster/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// A user's available balance is the wallet balance minus holds on every lot
// where one of their bids is currently leading. Exactly one bid per lot has
// amount equal to current_price (bids are accepted strictly above it), so the
// join picks out the leader without storing hold rows. The hold lasts until
// the lot settles: an expired lot still owes its leading bidder's debit, so
// the window between expiry and the closing sweep must keep holding funds.
const availableBalanceExpr = `
	u.wallet_balance - COALESCE(
		(SELECT SUM(i.current_price)
		 FROM items i
		 JOIN bids b ON b.item_id = i.id AND b.amount = i.current_price
		 WHERE b.user_id = u.id
		   AND i.settled_at IS NULL),
		0
	)`

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by ID, with available balance computed
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.wallet_balance,
		       u.is_admin, u.created_at, u.updated_at,
		       ` + availableBalanceExpr + ` AS available_balance
		FROM users u
		WHERE u.id = $1
	`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByIDForUpdate retrieves a user with available balance computed, locking
// the user row for the rest of the transaction. Concurrent funds checks for
// the same user serialize on this lock, so a second bid cannot read the
// wallet before the first one's leading bid is committed and visible.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.wallet_balance,
		       u.is_admin, u.created_at, u.updated_at,
		       ` + availableBalanceExpr + ` AS available_balance
		FROM users u
		WHERE u.id = $1
		FOR UPDATE OF u
	`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, with available balance computed
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.password_hash, u.wallet_balance,
		       u.is_admin, u.created_at, u.updated_at,
		       ` + availableBalanceExpr + ` AS available_balance
		FROM users u
		WHERE u.email = $1
	`

	user, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.WalletBalance,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.AvailableBalance,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user with the given wallet balance
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string, walletBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, wallet_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_admin, created_at, updated_at
	`

	user := models.User{
		Username:      username,
		Email:         email,
		PasswordHash:  passwordHash,
		WalletBalance: walletBalance,
		// No bids yet, so nothing is held
		AvailableBalance: walletBalance,
	}
	err := r.q.QueryRow(ctx, query, username, email, passwordHash, walletBalance).Scan(
		&user.ID,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, service.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	return &user, nil
}

// CreditBalance adds to a user's wallet balance atomically
func (r *UserRepository) CreditBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	query := `
		UPDATE users
		SET wallet_balance = wallet_balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to credit balance for user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}

	return nil
}

// DebitBalance deducts from a user's wallet balance atomically, failing if
// the wallet would go negative
func (r *UserRepository) DebitBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	query := `
		UPDATE users
		SET wallet_balance = wallet_balance - $1, updated_at = NOW()
		WHERE id = $2 AND wallet_balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to debit balance for user %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check user %d: %w", id, err)
		}
		if user == nil {
			return service.ErrNotFound
		}
		return service.ErrInsufficientFunds
	}

	return nil
}
