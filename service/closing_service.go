package service

import (
	"context"
	"fmt"

	"bidmaster/events"
	"bidmaster/models"

	log "github.com/sirupsen/logrus"
)

type closingService struct {
	uowFactory UnitOfWorkFactory
}

// NewClosingService creates the service that settles expired lots
func NewClosingService(uowFactory UnitOfWorkFactory) ClosingService {
	return &closingService{
		uowFactory: uowFactory,
	}
}

// CloseExpiredItems settles every lot past its end time exactly once.
// Each lot settles in its own transaction so one bad lot cannot block the
// rest; a failed lot stays unsettled and is retried on the next sweep.
func (s *closingService) CloseExpiredItems(ctx context.Context) error {
	expired, err := s.listExpired(ctx)
	if err != nil {
		return err
	}

	for _, item := range expired {
		if err := s.closeItem(ctx, item.ID); err != nil {
			log.WithFields(log.Fields{
				"itemId": item.ID,
			}).WithError(err).Error("Failed to settle expired lot")
		}
	}

	return nil
}

func (s *closingService) listExpired(ctx context.Context) ([]*models.Item, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.ItemRepository().ListExpiredUnsettled(ctx)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return items, nil
}

// closeItem settles one lot: picks the winner from the bid log, marks the
// lot settled, debits the winner's wallet and records the settlement entry.
// The settled_at guard in the update makes concurrent sweeps safe; the loser
// sees zero rows and walks away.
func (s *closingService) closeItem(ctx context.Context, itemID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.ItemRepository().GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil || item.SettledAt != nil {
		return nil
	}

	leading, err := uow.BidRepository().GetLeading(ctx, itemID)
	if err != nil {
		return fmt.Errorf("failed to get leading bid: %w", err)
	}

	var winnerID *int64
	if leading != nil {
		winnerID = &leading.UserID
	}

	settled, err := uow.ItemRepository().Settle(ctx, itemID, winnerID)
	if err != nil {
		return err
	}
	if !settled {
		// Another sweep got here first, or the lot is still open
		return nil
	}

	if leading != nil {
		winner, err := uow.UserRepository().GetByID(ctx, leading.UserID)
		if err != nil {
			return fmt.Errorf("failed to get winner: %w", err)
		}

		if err := uow.UserRepository().DebitBalance(ctx, leading.UserID, item.CurrentPrice); err != nil {
			return fmt.Errorf("failed to debit winner %d for item %d: %w", leading.UserID, itemID, err)
		}

		entry := &models.LedgerEntry{
			UserID:       leading.UserID,
			EntryType:    models.EntryTypeSettlement,
			Amount:       item.CurrentPrice,
			BalanceAfter: winner.WalletBalance - item.CurrentPrice,
			ItemID:       &itemID,
		}
		if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
			return err
		}
	}

	uow.EventBus().Publish(events.ItemClosedEvent{
		ItemID:     itemID,
		WinnerID:   winnerID,
		FinalPrice: item.CurrentPrice,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	fields := log.Fields{
		"itemId":     itemID,
		"finalPrice": item.CurrentPrice,
	}
	if winnerID != nil {
		fields["winnerId"] = *winnerID
	}
	log.WithFields(fields).Info("Auction lot settled")

	return nil
}
