package service

import (
	"context"
	"fmt"

	"bidmaster/events"
	"bidmaster/models"

	log "github.com/sirupsen/logrus"
)

type fundingService struct {
	uowFactory UnitOfWorkFactory
}

// NewFundingService creates a new fund approval engine
func NewFundingService(uowFactory UnitOfWorkFactory) FundingService {
	return &fundingService{
		uowFactory: uowFactory,
	}
}

// RequestFunds creates a PENDING top-up request for the user
func (s *fundingService) RequestFunds(ctx context.Context, userID int64, amount int64) (*models.FundRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	request, err := uow.FundRequestRepository().Create(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestId": request.ID,
		"userId":    userID,
		"amount":    amount,
	}).Info("Fund request created")

	return request, nil
}

// ApproveFundRequest transitions a PENDING request to APPROVED and credits
// the user's wallet, all in one transaction. The status transition is the
// gate: of two concurrent approvals exactly one flips the row, the other
// sees zero rows updated and returns ErrAlreadyProcessed without touching
// the wallet.
func (s *fundingService) ApproveFundRequest(ctx context.Context, adminID, requestID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireAdmin(ctx, uow, adminID); err != nil {
		return err
	}

	request, err := uow.FundRequestRepository().GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get fund request: %w", err)
	}
	if request == nil {
		return ErrNotFound
	}

	flipped, err := uow.FundRequestRepository().MarkApproved(ctx, requestID)
	if err != nil {
		return err
	}
	if !flipped {
		return ErrAlreadyProcessed
	}

	user, err := uow.UserRepository().GetByID(ctx, request.UserID)
	if err != nil {
		return fmt.Errorf("failed to get requesting user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	if err := uow.UserRepository().CreditBalance(ctx, request.UserID, request.Amount); err != nil {
		return err
	}

	entry := &models.LedgerEntry{
		UserID:        request.UserID,
		EntryType:     models.EntryTypeDeposit,
		Amount:        request.Amount,
		BalanceAfter:  user.WalletBalance + request.Amount,
		FundRequestID: &requestID,
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return err
	}

	uow.EventBus().Publish(events.FundRequestResolvedEvent{
		RequestID: requestID,
		UserID:    request.UserID,
		Amount:    request.Amount,
		Status:    models.FundRequestApproved,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestId": requestID,
		"userId":    request.UserID,
		"amount":    request.Amount,
		"adminId":   adminID,
	}).Info("Fund request approved")

	return nil
}

// RejectFundRequest transitions a PENDING request to REJECTED. The wallet
// is untouched.
func (s *fundingService) RejectFundRequest(ctx context.Context, adminID, requestID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireAdmin(ctx, uow, adminID); err != nil {
		return err
	}

	request, err := uow.FundRequestRepository().GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get fund request: %w", err)
	}
	if request == nil {
		return ErrNotFound
	}

	flipped, err := uow.FundRequestRepository().MarkRejected(ctx, requestID)
	if err != nil {
		return err
	}
	if !flipped {
		return ErrAlreadyProcessed
	}

	uow.EventBus().Publish(events.FundRequestResolvedEvent{
		RequestID: requestID,
		UserID:    request.UserID,
		Amount:    request.Amount,
		Status:    models.FundRequestRejected,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"requestId": requestID,
		"userId":    request.UserID,
		"adminId":   adminID,
	}).Info("Fund request rejected")

	return nil
}

// ListPendingRequests returns the admin approval queue, oldest first
func (s *fundingService) ListPendingRequests(ctx context.Context, adminID int64) ([]*models.FundRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireAdmin(ctx, uow, adminID); err != nil {
		return nil, err
	}

	requests, err := uow.FundRequestRepository().ListPending(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return requests, nil
}
