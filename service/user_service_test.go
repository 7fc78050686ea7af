package service

import (
	"context"
	"testing"

	"bidmaster/events"
	"bidmaster/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockLedgerRepo)

	service := NewUserService(mockFactory, 1000)

	created := &models.User{
		ID:            1,
		Username:      "alice",
		Email:         "alice@example.com",
		WalletBalance: 1000,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// The stored hash must verify against the original password
	mockUserRepo.On("Create", ctx, "alice", "alice@example.com", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")) == nil
	}), int64(1000)).Return(created, nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.EntryType == models.EntryTypeSignupCredit &&
			e.UserID == 1 &&
			e.Amount == 1000 &&
			e.BalanceAfter == 1000
	})).Return(nil)

	user, err := service.Register(ctx, "alice", "Alice@Example.com", "hunter22")

	assert.NoError(t, err)
	assert.Equal(t, int64(1000), user.WalletBalance)

	published := mockUoW.PublishedEvents()
	assert.Len(t, published, 2)
	assert.IsType(t, events.BalanceChangeEvent{}, published[0])
	assert.IsType(t, events.UserCreatedEvent{}, published[1])

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewUserService(mockFactory, 1000)

	_, err := service.Register(ctx, "alice", "alice@example.com", "abc")

	assert.ErrorIs(t, err, ErrInvalidInput)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("Create", ctx, "alice", "alice@example.com", mock.AnythingOfType("string"), int64(1000)).
		Return(nil, ErrUsernameTaken)

	_, err := service.Register(ctx, "alice", "alice@example.com", "hunter22")

	assert.ErrorIs(t, err, ErrUsernameTaken)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestUserService_Authenticate_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	assert.NoError(t, err)

	stored := &models.User{
		ID:           1,
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

	user, err := service.Authenticate(ctx, "Alice@Example.com", "hunter22")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	assert.NoError(t, err)

	stored := &models.User{ID: 1, PasswordHash: string(hash)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByEmail", ctx, "alice@example.com").Return(stored, nil)

	_, err = service.Authenticate(ctx, "alice@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Authenticate_UnknownEmail(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, nil)

	// Same error as a wrong password; callers cannot probe for accounts
	_, err := service.Authenticate(ctx, "ghost@example.com", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetProfile_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockLedgerRepo)

	service := NewUserService(mockFactory, 1000)

	stored := &models.User{ID: 1, WalletBalance: 1000, AvailableBalance: 400}
	history := []*models.LedgerEntry{
		{ID: 2, UserID: 1, EntryType: models.EntryTypeBidHold, Amount: 600},
		{ID: 1, UserID: 1, EntryType: models.EntryTypeSignupCredit, Amount: 1000},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(stored, nil)
	mockLedgerRepo.On("ListByUser", ctx, int64(1), ledgerHistoryLimit).Return(history, nil)

	user, entries, err := service.GetProfile(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(400), user.AvailableBalance)
	assert.Len(t, entries, 2)
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil)

	service := NewUserService(mockFactory, 1000)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	_, _, err := service.GetProfile(ctx, 404)

	assert.ErrorIs(t, err, ErrNotFound)
}
