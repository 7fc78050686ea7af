package service

import (
	"context"
	"fmt"
	"time"

	"bidmaster/events"
	"bidmaster/models"

	log "github.com/sirupsen/logrus"
)

type biddingService struct {
	uowFactory UnitOfWorkFactory
	maxRetries int
}

// NewBiddingService creates a new bid settlement engine. maxRetries bounds
// the optimistic retries on the current_price compare-and-set before the
// call surfaces ErrContention.
func NewBiddingService(uowFactory UnitOfWorkFactory, maxRetries int) BiddingService {
	return &biddingService{
		uowFactory: uowFactory,
		maxRetries: maxRetries,
	}
}

// PlaceBid validates and atomically applies a single bid. Preconditions are
// checked in order inside the transaction, first failure wins: lot open,
// amount above current price, available funds cover the amount. Losing the
// price compare-and-set is the only retryable outcome; everything else is
// terminal for the call.
func (s *biddingService) PlaceBid(ctx context.Context, userID, itemID int64, amount int64) (*models.BidResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		result, lost, err := s.tryPlaceBid(ctx, userID, itemID, amount)
		if err != nil {
			return nil, err
		}
		if !lost {
			return result, nil
		}

		log.WithFields(log.Fields{
			"itemId":  itemID,
			"userId":  userID,
			"attempt": attempt,
		}).Debug("Lost bid race on current price, retrying with fresh state")
	}

	return nil, ErrContention
}

// tryPlaceBid runs one settlement attempt in a single transaction.
// lost=true means the price moved underneath us and the caller may retry.
func (s *biddingService) tryPlaceBid(ctx context.Context, userID, itemID int64, amount int64) (result *models.BidResult, lost bool, err error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, false, ErrNotFound
	}
	if !item.IsOpen(time.Now()) || item.SettledAt != nil {
		return nil, false, ErrAuctionClosed
	}
	if amount <= item.CurrentPrice {
		return nil, false, ErrBidTooLow
	}

	// Row lock on the bidder: concurrent funds checks for the same user
	// serialize here, so overlapping bids on different lots cannot each
	// read the wallet before the other's hold is visible
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, false, ErrNotFound
	}

	previous, err := uow.BidRepository().GetLeading(ctx, itemID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get leading bid: %w", err)
	}

	available := user.AvailableBalance
	if previous != nil && previous.UserID == userID {
		// Raising your own leading bid releases the existing hold
		available += previous.Amount
	}
	if available < amount {
		return nil, false, ErrInsufficientFunds
	}

	ok, err := uow.ItemRepository().CompareAndSetPrice(ctx, itemID, item.CurrentPrice, amount)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// A concurrent bid moved the price (or the lot closed) between our
		// read and the update. Roll back and re-evaluate from scratch.
		return nil, true, nil
	}

	bid := &models.Bid{
		ItemID: itemID,
		UserID: userID,
		Amount: amount,
	}
	if err := uow.BidRepository().Create(ctx, bid); err != nil {
		return nil, false, err
	}

	hold := &models.LedgerEntry{
		UserID:       userID,
		EntryType:    models.EntryTypeBidHold,
		Amount:       amount,
		BalanceAfter: user.WalletBalance,
		ItemID:       &itemID,
	}
	if err := RecordLedgerEntry(ctx, uow, hold); err != nil {
		return nil, false, err
	}

	if previous != nil && previous.UserID != userID {
		outbid, err := uow.UserRepository().GetByID(ctx, previous.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get outbid user: %w", err)
		}
		release := &models.LedgerEntry{
			UserID:       previous.UserID,
			EntryType:    models.EntryTypeBidRelease,
			Amount:       previous.Amount,
			BalanceAfter: outbid.WalletBalance,
			ItemID:       &itemID,
		}
		if err := RecordLedgerEntry(ctx, uow, release); err != nil {
			return nil, false, err
		}
	}

	uow.EventBus().Publish(events.BidPlacedEvent{
		BidID:  bid.ID,
		ItemID: itemID,
		UserID: userID,
		Amount: amount,
	})
	uow.EventBus().Publish(events.ItemUpdatedEvent{
		ItemID:       itemID,
		CurrentPrice: amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BidResult{
		BidID:           bid.ID,
		ItemID:          itemID,
		Amount:          amount,
		NewCurrentPrice: amount,
	}, false, nil
}
