package service

import "errors"

// Settlement and approval errors. All are returned as typed results to the
// caller, never as opaque failures; none is fatal to the engine process.
var (
	ErrNotFound          = errors.New("not found")
	ErrAuctionClosed     = errors.New("auction closed")
	ErrBidTooLow         = errors.New("bid too low")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyProcessed  = errors.New("fund request already processed")
	ErrContention        = errors.New("too much contention, try again")
)

// Validation and account errors
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthorized      = errors.New("admin privileges required")
	ErrItemHasBids        = errors.New("item has bids and cannot be deleted")
)
