package service

import (
	"context"
	"testing"

	"bidmaster/events"
	"bidmaster/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func adminUser(id int64) *models.User {
	return &models.User{ID: id, Username: "admin", IsAdmin: true}
}

func TestFundingService_RequestFunds_InvalidAmount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewFundingService(mockFactory)

	_, err := service.RequestFunds(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.RequestFunds(ctx, 1, -200)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	mockFactory.AssertNotCalled(t, "Create")
}

func TestFundingService_RequestFunds_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	created := &models.FundRequest{
		ID:     7,
		UserID: 1,
		Amount: 2000,
		Status: models.FundRequestPending,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
	mockFundRepo.On("Create", ctx, int64(1), int64(2000)).Return(created, nil)

	request, err := service.RequestFunds(ctx, 1, 2000)

	assert.NoError(t, err)
	assert.Equal(t, models.FundRequestPending, request.Status)
	mockUoW.AssertExpectations(t)
	mockFundRepo.AssertExpectations(t)
}

func TestFundingService_ApproveFundRequest_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, mockLedgerRepo)

	service := NewFundingService(mockFactory)

	pending := &models.FundRequest{
		ID:     7,
		UserID: 1,
		Amount: 2000,
		Status: models.FundRequestPending,
	}
	requester := &models.User{ID: 1, WalletBalance: 500}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(adminUser(99), nil)
	mockFundRepo.On("GetByID", ctx, int64(7)).Return(pending, nil)
	mockFundRepo.On("MarkApproved", ctx, int64(7)).Return(true, nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(requester, nil)
	mockUserRepo.On("CreditBalance", ctx, int64(1), int64(2000)).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.EntryType == models.EntryTypeDeposit &&
			e.UserID == 1 &&
			e.Amount == 2000 &&
			e.BalanceAfter == 2500 &&
			e.FundRequestID != nil && *e.FundRequestID == 7
	})).Return(nil)

	err := service.ApproveFundRequest(ctx, 99, 7)

	assert.NoError(t, err)

	published := mockUoW.PublishedEvents()
	assert.Len(t, published, 2)
	assert.IsType(t, events.BalanceChangeEvent{}, published[0])
	resolved := published[1].(events.FundRequestResolvedEvent)
	assert.Equal(t, models.FundRequestApproved, resolved.Status)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockFundRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestFundingService_ApproveFundRequest_AlreadyProcessed(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	approved := &models.FundRequest{
		ID:     7,
		UserID: 1,
		Amount: 2000,
		Status: models.FundRequestApproved,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(adminUser(99), nil)
	mockFundRepo.On("GetByID", ctx, int64(7)).Return(approved, nil)
	// The status gate loses even if the read raced the first approval
	mockFundRepo.On("MarkApproved", ctx, int64(7)).Return(false, nil)

	err := service.ApproveFundRequest(ctx, 99, 7)

	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	// The wallet is only ever credited once
	mockUserRepo.AssertNotCalled(t, "CreditBalance")
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestFundingService_ApproveFundRequest_NotAdmin(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5, IsAdmin: false}, nil)

	err := service.ApproveFundRequest(ctx, 5, 7)

	assert.ErrorIs(t, err, ErrNotAuthorized)
	mockFundRepo.AssertNotCalled(t, "MarkApproved")
}

func TestFundingService_ApproveFundRequest_NotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(adminUser(99), nil)
	mockFundRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	err := service.ApproveFundRequest(ctx, 99, 404)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFundingService_RejectFundRequest_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	pending := &models.FundRequest{
		ID:     7,
		UserID: 1,
		Amount: 2000,
		Status: models.FundRequestPending,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(adminUser(99), nil)
	mockFundRepo.On("GetByID", ctx, int64(7)).Return(pending, nil)
	mockFundRepo.On("MarkRejected", ctx, int64(7)).Return(true, nil)

	err := service.RejectFundRequest(ctx, 99, 7)

	assert.NoError(t, err)
	// Rejection never touches the wallet
	mockUserRepo.AssertNotCalled(t, "CreditBalance")

	published := mockUoW.PublishedEvents()
	assert.Len(t, published, 1)
	resolved := published[0].(events.FundRequestResolvedEvent)
	assert.Equal(t, models.FundRequestRejected, resolved.Status)

	mockUoW.AssertExpectations(t)
}

func TestFundingService_RejectFundRequest_AlreadyProcessed(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	approved := &models.FundRequest{
		ID:     7,
		UserID: 1,
		Amount: 2000,
		Status: models.FundRequestApproved,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(adminUser(99), nil)
	mockFundRepo.On("GetByID", ctx, int64(7)).Return(approved, nil)
	mockFundRepo.On("MarkRejected", ctx, int64(7)).Return(false, nil)

	err := service.RejectFundRequest(ctx, 99, 7)

	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestFundingService_ListPendingRequests_RequiresAdmin(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(5)).Return(&models.User{ID: 5, IsAdmin: false}, nil)

	_, err := service.ListPendingRequests(ctx, 5)

	assert.ErrorIs(t, err, ErrNotAuthorized)
	mockFundRepo.AssertNotCalled(t, "ListPending")
}

func TestFundingService_ListPendingRequests_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockFundRepo := new(MockFundRequestRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockFundRepo, nil)

	service := NewFundingService(mockFactory)

	queue := []*models.FundRequest{
		{ID: 7, UserID: 1, Amount: 2000, Status: models.FundRequestPending},
		{ID: 8, UserID: 2, Amount: 300, Status: models.FundRequestPending},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(adminUser(99), nil)
	mockFundRepo.On("ListPending", ctx).Return(queue, nil)

	requests, err := service.ListPendingRequests(ctx, 99)

	assert.NoError(t, err)
	assert.Len(t, requests, 2)
	assert.Equal(t, int64(7), requests[0].ID)
}
