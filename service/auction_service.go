package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bidmaster/events"
	"bidmaster/models"

	log "github.com/sirupsen/logrus"
)

type auctionService struct {
	uowFactory UnitOfWorkFactory
}

// NewAuctionService creates a new auction lot lifecycle service
func NewAuctionService(uowFactory UnitOfWorkFactory) AuctionService {
	return &auctionService{
		uowFactory: uowFactory,
	}
}

// CreateItem creates a new lot with its current price at the starting price
func (s *auctionService) CreateItem(ctx context.Context, adminID int64, title, description string, startingPrice int64, endTime time.Time) (*models.Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if startingPrice <= 0 {
		return nil, ErrInvalidAmount
	}
	if !endTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: end time must be in the future", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireAdmin(ctx, uow, adminID); err != nil {
		return nil, err
	}

	item := &models.Item{
		Title:         strings.TrimSpace(title),
		Description:   description,
		StartingPrice: startingPrice,
		EndTime:       endTime,
	}
	if err := uow.ItemRepository().Create(ctx, item); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"itemId":        item.ID,
		"title":         item.Title,
		"startingPrice": startingPrice,
		"endTime":       endTime,
	}).Info("Auction lot created")

	return item, nil
}

// StopItem shortens a lot's end time to now. Existing bids stand and the
// closing sweep settles the lot on its next run.
func (s *auctionService) StopItem(ctx context.Context, adminID, itemID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireAdmin(ctx, uow, adminID); err != nil {
		return err
	}

	if err := uow.ItemRepository().Stop(ctx, itemID); err != nil {
		return err
	}

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to get stopped item: %w", err)
	}

	uow.EventBus().Publish(events.ItemUpdatedEvent{
		ItemID:       itemID,
		CurrentPrice: item.CurrentPrice,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"itemId":  itemID,
		"adminId": adminID,
	}).Info("Auction lot stopped")

	return nil
}

// DeleteItem removes a lot that never received a bid
func (s *auctionService) DeleteItem(ctx context.Context, adminID, itemID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := requireAdmin(ctx, uow, adminID); err != nil {
		return err
	}

	if err := uow.ItemRepository().Delete(ctx, itemID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"itemId":  itemID,
		"adminId": adminID,
	}).Info("Auction lot deleted")

	return nil
}

// GetItem retrieves a single lot
func (s *auctionService) GetItem(ctx context.Context, itemID int64) (*models.Item, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return item, nil
}

// ListOpenItems returns lots still accepting bids
func (s *auctionService) ListOpenItems(ctx context.Context) ([]*models.Item, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.ItemRepository().ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return items, nil
}

// ListBidsForItem returns the most recent bids for a lot
func (s *auctionService) ListBidsForItem(ctx context.Context, itemID int64, limit int) ([]*models.Bid, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	bids, err := uow.BidRepository().ListByItem(ctx, itemID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bids, nil
}

// ListBidsForUser returns the most recent bids placed by a user
func (s *auctionService) ListBidsForUser(ctx context.Context, userID int64, limit int) ([]*models.Bid, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	bids, err := uow.BidRepository().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bids, nil
}
