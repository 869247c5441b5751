package events

import (
	"context"
	"sync"

	"bookie/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountCreated EventType = "account_created"
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeBetPlaced      EventType = "bet_placed"
	EventTypeBetSettled     EventType = "bet_settled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountCreatedEvent represents a newly provisioned account
type AccountCreatedEvent struct {
	AccountID      int64
	ExternalID     string
	InitialBalance decimal.Decimal
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// BalanceChangeEvent represents a committed balance mutation together
// with the ledger entry that recorded it
type BalanceChangeEvent struct {
	AccountID       int64
	TransactionID   int64
	TransactionType models.TransactionType
	Amount          decimal.Decimal
	OldBalance      decimal.Decimal
	NewBalance      decimal.Decimal
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetPlacedEvent represents a bet that was placed
type BetPlacedEvent struct {
	BetID           int64
	AccountID       int64
	BettingOptionID int64
	Stake           decimal.Decimal
	Odds            decimal.Decimal
	PotentialPayout decimal.Decimal
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetSettledEvent represents a bet that reached a terminal state
type BetSettledEvent struct {
	BetID     int64
	AccountID int64
	Outcome   models.BetStatus
	Credited  decimal.Decimal
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
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

	// Handlers run asynchronously so a slow subscriber never blocks the
	// committing request.
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the real bus only after the database transaction
// commits. Rolled-back work never becomes visible to subscribers.
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

// Flush is called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the request transaction, so emission uses a
	// background context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
