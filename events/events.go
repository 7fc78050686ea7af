package events

import (
	"context"
	"sync"

	"bidmaster/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated         EventType = "user_created"
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeBidPlaced           EventType = "bid_placed"
	EventTypeItemUpdated         EventType = "item_updated"
	EventTypeItemClosed          EventType = "item_closed"
	EventTypeFundRequestResolved EventType = "fund_request_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent represents a new account registration
type UserCreatedEvent struct {
	UserID       int64
	Username     string
	SignupCredit int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// BalanceChangeEvent represents a committed wallet mutation
type BalanceChangeEvent struct {
	UserID       int64
	OldBalance   int64
	NewBalance   int64
	EntryType    models.EntryType
	ChangeAmount int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BidPlacedEvent represents an accepted bid
type BidPlacedEvent struct {
	BidID  int64
	ItemID int64
	UserID int64
	Amount int64
}

func (e BidPlacedEvent) Type() EventType {
	return EventTypeBidPlaced
}

// ItemUpdatedEvent represents a change to a lot's live state
type ItemUpdatedEvent struct {
	ItemID       int64
	CurrentPrice int64
}

func (e ItemUpdatedEvent) Type() EventType {
	return EventTypeItemUpdated
}

// ItemClosedEvent represents a lot settled by the closing sweep
type ItemClosedEvent struct {
	ItemID     int64
	WinnerID   *int64
	FinalPrice int64
}

func (e ItemClosedEvent) Type() EventType {
	return EventTypeItemClosed
}

// FundRequestResolvedEvent represents a fund request leaving PENDING
type FundRequestResolvedEvent struct {
	RequestID int64
	UserID    int64
	Amount    int64
	Status    models.FundRequestStatus
}

func (e FundRequestResolvedEvent) Type() EventType {
	return EventTypeFundRequestResolved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the committer
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events raised inside a unit of work until the
// database transaction commits, then flushes them to the underlying bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	if len(b.pending) == 0 {
		return
	}

	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Events outlive the transaction, so do not inherit its context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
