package service

import (
	"context"
	"fmt"
	"strings"

	"bidmaster/events"
	"bidmaster/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const ledgerHistoryLimit = 50

type userService struct {
	uowFactory   UnitOfWorkFactory
	signupCredit int64
}

// NewUserService creates a new account service. signupCredit is the wallet
// balance granted to every new account.
func NewUserService(uowFactory UnitOfWorkFactory, signupCredit int64) UserService {
	return &userService{
		uowFactory:   uowFactory,
		signupCredit: signupCredit,
	}
}

// Register creates an account, grants the signup credit and records it in
// the ledger
func (s *userService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().Create(ctx, username, email, string(hash), s.signupCredit)
	if err != nil {
		return nil, err
	}

	entry := &models.LedgerEntry{
		UserID:       user.ID,
		EntryType:    models.EntryTypeSignupCredit,
		Amount:       s.signupCredit,
		BalanceAfter: s.signupCredit,
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:       user.ID,
		Username:     user.Username,
		SignupCredit: s.signupCredit,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userId":   user.ID,
		"username": user.Username,
	}).Info("User registered")

	return user, nil
}

// Authenticate verifies credentials. The same error covers an unknown email
// and a wrong password.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetProfile returns the user with available balance plus recent ledger
// history
func (s *userService) GetProfile(ctx context.Context, userID int64) (*models.User, []*models.LedgerEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrNotFound
	}

	entries, err := uow.LedgerRepository().ListByUser(ctx, userID, ledgerHistoryLimit)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, entries, nil
}
