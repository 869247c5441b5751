package service

import (
	"context"
	"time"

	"bookie/events"
	"bookie/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, externalID string, balance decimal.Decimal) (*models.Account, error) {
	args := m.Called(ctx, externalID, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID int64, filter models.TransactionFilter, page, pageSize int) (*models.TransactionPage, error) {
	args := m.Called(ctx, accountID, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionPage), args.Error(1)
}

func (m *MockTransactionRepository) SumByType(ctx context.Context, accountID int64, txType models.TransactionType) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, txType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Settle(ctx context.Context, id int64, status models.BetStatus, settledAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, settledAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) ListByStatus(ctx context.Context, status models.EventStatus, limit int) ([]*models.Event, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventRepository) UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockBettingOptionRepository is a mock implementation of BettingOptionRepository
type MockBettingOptionRepository struct {
	mock.Mock
}

func (m *MockBettingOptionRepository) Create(ctx context.Context, option *models.BettingOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

func (m *MockBettingOptionRepository) GetWithEvent(ctx context.Context, id int64) (*models.BettingOption, *models.Event, error) {
	args := m.Called(ctx, id)
	var option *models.BettingOption
	var event *models.Event
	if args.Get(0) != nil {
		option = args.Get(0).(*models.BettingOption)
	}
	if args.Get(1) != nil {
		event = args.Get(1).(*models.Event)
	}
	return option, event, args.Error(2)
}

func (m *MockBettingOptionRepository) ListActiveByEvent(ctx context.Context, eventID int64) ([]*models.BettingOption, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BettingOption), args.Error(1)
}

func (m *MockBettingOptionRepository) DeactivateByEvent(ctx context.Context, eventID int64) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockBalanceCache is a mock implementation of BalanceCache
type MockBalanceCache struct {
	mock.Mock
}

func (m *MockBalanceCache) Get(ctx context.Context, accountID int64) (decimal.Decimal, bool) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Bool(1)
}

func (m *MockBalanceCache) Set(ctx context.Context, accountID int64, balance decimal.Decimal) {
	m.Called(ctx, accountID, balance)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback use mock expectations; the repository getters return whatever
// was injected through SetRepositories.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo       AccountRepository
	transactionRepo   TransactionRepository
	betRepo           BetRepository
	eventRepo         EventRepository
	bettingOptionRepo BettingOptionRepository
	eventBus          EventPublisher
}

// SetRepositories injects the repository mocks returned by the getters.
// Pass nil for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, transactions TransactionRepository, bets BetRepository) {
	m.accountRepo = accounts
	m.transactionRepo = transactions
	m.betRepo = bets
}

func (m *MockUnitOfWork) SetCatalogRepositories(eventRepo EventRepository, optionRepo BettingOptionRepository) {
	m.eventRepo = eventRepo
	m.bettingOptionRepo = optionRepo
}

func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) EventRepository() EventRepository {
	return m.eventRepo
}

func (m *MockUnitOfWork) BettingOptionRepository() BettingOptionRepository {
	return m.bettingOptionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &noopPublisher{}
	}
	return m.eventBus
}

// noopPublisher swallows events for tests that do not assert on them.
type noopPublisher struct{}

func (p *noopPublisher) Publish(event events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
