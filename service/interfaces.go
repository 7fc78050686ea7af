package service

import (
	"context"
	"time"

	"bidmaster/events"
	"bidmaster/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, with available balance computed
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByIDForUpdate retrieves a user with available balance computed,
	// holding a row lock until the transaction ends. Funds checks must use
	// this so concurrent checks for the same user serialize.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by email, with available balance computed
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Create creates a new user with the given wallet balance
	Create(ctx context.Context, username, email, passwordHash string, walletBalance int64) (*models.User, error)

	// CreditBalance adds to a user's wallet balance atomically
	CreditBalance(ctx context.Context, id int64, amount int64) error

	// DebitBalance deducts from a user's wallet balance atomically,
	// failing if the wallet would go negative
	DebitBalance(ctx context.Context, id int64, amount int64) error
}

// ItemRepository defines the interface for auction lot data access
type ItemRepository interface {
	// Create creates a new lot; current price starts at the starting price
	Create(ctx context.Context, item *models.Item) error

	// GetByID retrieves a lot by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*models.Item, error)

	// ListOpen returns lots still accepting bids
	ListOpen(ctx context.Context) ([]*models.Item, error)

	// CompareAndSetPrice raises current_price from expected to newPrice.
	// Returns false when the lot changed underneath the caller or closed.
	CompareAndSetPrice(ctx context.Context, id int64, expected, newPrice int64) (bool, error)

	// Stop shortens a lot's end time to now
	Stop(ctx context.Context, id int64) error

	// Delete removes a lot that has no bids
	Delete(ctx context.Context, id int64) error

	// ListExpiredUnsettled returns lots past end_time not yet settled
	ListExpiredUnsettled(ctx context.Context) ([]*models.Item, error)

	// Settle assigns the winner and marks the lot settled, exactly once.
	// Returns false when the lot was already settled or is still open.
	Settle(ctx context.Context, id int64, winnerID *int64) (bool, error)
}

// BidRepository defines the interface for the append-only bid log
type BidRepository interface {
	// Create appends a bid record
	Create(ctx context.Context, bid *models.Bid) error

	// ListByItem returns the most recent bids for a lot
	ListByItem(ctx context.Context, itemID int64, limit int) ([]*models.Bid, error)

	// GetLeading returns the highest bid on a lot (earliest wins ties),
	// nil if the lot has no bids
	GetLeading(ctx context.Context, itemID int64) (*models.Bid, error)

	// ListByUser returns the most recent bids by a user
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Bid, error)
}

// FundRequestRepository defines the interface for fund request data access
type FundRequestRepository interface {
	// Create creates a PENDING request
	Create(ctx context.Context, userID int64, amount int64) (*models.FundRequest, error)

	// GetByID retrieves a request by ID, nil if absent
	GetByID(ctx context.Context, id int64) (*models.FundRequest, error)

	// ListPending returns all PENDING requests, oldest first
	ListPending(ctx context.Context) ([]*models.FundRequest, error)

	// MarkApproved transitions PENDING -> APPROVED.
	// Returns false when the request already left PENDING.
	MarkApproved(ctx context.Context, id int64) (bool, error)

	// MarkRejected transitions PENDING -> REJECTED.
	// Returns false when the request already left PENDING.
	MarkRejected(ctx context.Context, id int64) (bool, error)
}

// LedgerRepository defines the interface for the immutable ledger
type LedgerRepository interface {
	// Record appends a ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// ListByUser returns the most recent entries for a user
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// BiddingService is the bid settlement engine
type BiddingService interface {
	// PlaceBid validates and atomically applies a single bid
	PlaceBid(ctx context.Context, userID, itemID int64, amount int64) (*models.BidResult, error)
}

// FundingService is the fund approval engine
type FundingService interface {
	// RequestFunds creates a PENDING top-up request
	RequestFunds(ctx context.Context, userID int64, amount int64) (*models.FundRequest, error)

	// ApproveFundRequest atomically approves a PENDING request and credits the wallet
	ApproveFundRequest(ctx context.Context, adminID, requestID int64) error

	// RejectFundRequest atomically rejects a PENDING request, no balance change
	RejectFundRequest(ctx context.Context, adminID, requestID int64) error

	// ListPendingRequests returns the admin approval queue
	ListPendingRequests(ctx context.Context, adminID int64) ([]*models.FundRequest, error)
}

// AuctionService covers lot lifecycle and read paths
type AuctionService interface {
	// CreateItem creates a new lot (admin only)
	CreateItem(ctx context.Context, adminID int64, title, description string, startingPrice int64, endTime time.Time) (*models.Item, error)

	// StopItem shortens a lot's end time to now (admin only)
	StopItem(ctx context.Context, adminID, itemID int64) error

	// DeleteItem removes a lot with no bids (admin only)
	DeleteItem(ctx context.Context, adminID, itemID int64) error

	// GetItem retrieves a lot
	GetItem(ctx context.Context, itemID int64) (*models.Item, error)

	// ListOpenItems returns lots still accepting bids
	ListOpenItems(ctx context.Context) ([]*models.Item, error)

	// ListBidsForItem returns the most recent bids for a lot
	ListBidsForItem(ctx context.Context, itemID int64, limit int) ([]*models.Bid, error)

	// ListBidsForUser returns the most recent bids placed by a user
	ListBidsForUser(ctx context.Context, userID int64, limit int) ([]*models.Bid, error)
}

// UserService covers registration, authentication and profile reads
type UserService interface {
	// Register creates an account with the signup credit
	Register(ctx context.Context, username, email, password string) (*models.User, error)

	// Authenticate verifies credentials and returns the account
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	// GetProfile returns the user with available balance and ledger history
	GetProfile(ctx context.Context, userID int64) (*models.User, []*models.LedgerEntry, error)
}

// ClosingService settles expired lots
type ClosingService interface {
	// CloseExpiredItems settles every expired lot exactly once, idempotently
	CloseExpiredItems(ctx context.Context) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	ItemRepository() ItemRepository
	BidRepository() BidRepository
	FundRequestRepository() FundRequestRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
