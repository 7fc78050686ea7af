package service

import (
	"context"
	"fmt"

	"bidmaster/events"
	"bidmaster/models"
)

// walletDelta returns the signed wallet change an entry type implies.
// Hold and release entries document reservations only; the wallet itself
// does not move.
func walletDelta(entry *models.LedgerEntry) int64 {
	switch entry.EntryType {
	case models.EntryTypeSignupCredit, models.EntryTypeDeposit:
		return entry.Amount
	case models.EntryTypeSettlement:
		return -entry.Amount
	default:
		return 0
	}
}

// RecordLedgerEntry appends a ledger entry and, for wallet-mutating entry
// types, publishes the balance change on the unit of work's transactional
// bus. This is the single entry point for all ledger writes.
func RecordLedgerEntry(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	if delta := walletDelta(entry); delta != 0 {
		uow.EventBus().Publish(events.BalanceChangeEvent{
			UserID:       entry.UserID,
			OldBalance:   entry.BalanceAfter - delta,
			NewBalance:   entry.BalanceAfter,
			EntryType:    entry.EntryType,
			ChangeAmount: delta,
		})
	}

	return nil
}

// requireAdmin verifies the acting user's admin flag against the store.
// The flag is never trusted from client state.
func requireAdmin(ctx context.Context, uow UnitOfWork, adminID int64) error {
	admin, err := uow.UserRepository().GetByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to get acting user: %w", err)
	}
	if admin == nil || !admin.IsAdmin {
		return ErrNotAuthorized
	}
	return nil
}
