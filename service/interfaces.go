package service

import (
	"context"
	"time"

	"bookie/events"
	"bookie/models"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create inserts a new account. Returns ErrDuplicateAccount when the
	// caller-supplied external identity already exists.
	Create(ctx context.Context, externalID string, balance decimal.Decimal) (*models.Account, error)

	// GetByID retrieves an account by its id; returns nil when missing
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByExternalID retrieves an account by its external identity
	GetByExternalID(ctx context.Context, externalID string) (*models.Account, error)

	// GetForUpdate retrieves an account and locks its row for the
	// duration of the enclosing transaction. This is the per-account
	// serialization point for all balance mutations.
	GetForUpdate(ctx context.Context, id int64) (*models.Account, error)

	// AddBalance atomically increases an account's balance
	AddBalance(ctx context.Context, id int64, amount decimal.Decimal) error

	// DeductBalance atomically decreases an account's balance, failing
	// with ErrInsufficientBalance if the balance would go negative
	DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) error
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append persists a new immutable transaction row and fills in its
	// generated id and timestamp
	Append(ctx context.Context, txn *models.Transaction) error

	// ListByAccount returns one page of an account's history ordered by
	// created_at descending, optionally filtered by transaction type
	ListByAccount(ctx context.Context, accountID int64, filter models.TransactionFilter, page, pageSize int) (*models.TransactionPage, error)

	// SumByType returns the aggregate signed sum of amounts of the given
	// type for an account
	SumByType(ctx context.Context, accountID int64, txType models.TransactionType) (decimal.Decimal, error)

	// SumByAccount returns the aggregate signed sum of all amounts for
	// an account; by the ledger invariant this equals the balance
	SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a new pending bet and fills in its generated id and
	// placement timestamp
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by its id; returns nil when missing
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetForUpdate retrieves a bet and locks its row for the duration of
	// the enclosing transaction
	GetForUpdate(ctx context.Context, id int64) (*models.Bet, error)

	// Settle transitions a bet out of pending. Returns false when the
	// bet was not pending, so exactly one concurrent settlement wins.
	Settle(ctx context.Context, id int64, status models.BetStatus, settledAt time.Time) (bool, error)

	// ListByAccount returns an account's bets, most recent first
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Bet, error)
}

// EventRepository defines the interface for sporting event data access
type EventRepository interface {
	// Create inserts a new event and fills in its generated id
	Create(ctx context.Context, event *models.Event) error

	// GetByID retrieves an event by its id; returns nil when missing
	GetByID(ctx context.Context, id int64) (*models.Event, error)

	// ListByStatus returns events in the given status
	ListByStatus(ctx context.Context, status models.EventStatus, limit int) ([]*models.Event, error)

	// UpdateStatus moves an event to a new lifecycle status
	UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error
}

// BettingOptionRepository defines the interface for betting market data access
type BettingOptionRepository interface {
	// Create inserts a new betting option and fills in its generated id
	Create(ctx context.Context, option *models.BettingOption) error

	// GetWithEvent retrieves an option together with its parent event;
	// both are nil when the option is missing
	GetWithEvent(ctx context.Context, id int64) (*models.BettingOption, *models.Event, error)

	// ListActiveByEvent returns the active options of an event
	ListActiveByEvent(ctx context.Context, eventID int64) ([]*models.BettingOption, error)

	// DeactivateByEvent closes all options of an event for new bets
	DeactivateByEvent(ctx context.Context, eventID int64) error
}

// AccountService provisions accounts for the identity layer
type AccountService interface {
	// CreateAccount creates an account for the caller-supplied identity
	// and credits the configured welcome bonus as the account's first
	// ledger entry
	CreateAccount(ctx context.Context, externalID string) (*models.Account, error)

	// GetAccount retrieves an account by the identity layer's reference
	GetAccount(ctx context.Context, externalID string) (*models.Account, error)
}

// WalletService is the only sanctioned path to mutate an account balance
type WalletService interface {
	// Deposit atomically increases the balance and appends a deposit
	// transaction; returns the transaction and the new balance
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error)

	// Withdraw atomically decreases the balance and appends a withdrawal
	// transaction; fails with ErrInsufficientBalance when the balance is
	// lower than the amount
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error)

	// GetBalance returns the current balance
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)

	// ListTransactions returns one page of the account's ledger history
	ListTransactions(ctx context.Context, accountID int64, filter models.TransactionFilter, page, pageSize int) (*models.TransactionPage, error)

	// Summary returns the balance plus per-type aggregate totals and the
	// derived net profit
	Summary(ctx context.Context, accountID int64) (*models.WalletSummary, error)
}

// BetService validates and places bets and applies settlement outcomes
type BetService interface {
	// PlaceBet debits the stake and creates a pending bet in one atomic
	// unit, snapshotting the option's odds at placement time
	PlaceBet(ctx context.Context, accountID, bettingOptionID int64, stake decimal.Decimal) (*models.PlacementResult, error)

	// SettleBet transitions a pending bet to a terminal outcome and, for
	// won and cancelled bets, credits the payout or refund atomically
	// with the transition
	SettleBet(ctx context.Context, betID int64, outcome models.BetStatus) (*models.SettlementResult, error)

	// GetBet retrieves a bet
	GetBet(ctx context.Context, betID int64) (*models.Bet, error)

	// ListBets returns an account's bets, most recent first
	ListBets(ctx context.Context, accountID int64, limit int) ([]*models.Bet, error)
}

// CatalogService manages events and their betting markets
type CatalogService interface {
	// CreateEvent creates an upcoming event seeded with the default
	// win-market options
	CreateEvent(ctx context.Context, homeTeam, awayTeam string, startTime time.Time) (*models.EventDetail, error)

	// GetEvent returns an event with its active betting options
	GetEvent(ctx context.Context, eventID int64) (*models.EventDetail, error)

	// ListEvents returns events in the given status
	ListEvents(ctx context.Context, status models.EventStatus, limit int) ([]*models.Event, error)

	// UpdateEventStatus moves an event through its lifecycle; finishing
	// or cancelling an event closes its options for new bets
	UpdateEventStatus(ctx context.Context, eventID int64, status models.EventStatus) error
}

// BalanceCache is an optional read-through cache in front of GetBalance.
// Implementations must only be populated from committed balance changes.
type BalanceCache interface {
	Get(ctx context.Context, accountID int64) (decimal.Decimal, bool)
	Set(ctx context.Context, accountID int64, balance decimal.Decimal)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	BetRepository() BetRepository
	EventRepository() EventRepository
	BettingOptionRepository() BettingOptionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a fresh UnitOfWork
	Create() UnitOfWork
}
