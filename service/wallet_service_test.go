package service

import (
	"context"
	"errors"
	"testing"

	"bookie/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestWalletService_Deposit(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTransactionRepo := new(MockTransactionRepository)

	// Configure unit of work
	mockUoW.SetRepositories(mockAccountRepo, mockTransactionRepo, nil)

	service := NewWalletService(mockFactory, nil, 3)

	account := &models.Account{
		ID:         1,
		ExternalID: "user-1",
		Balance:    decimal.RequireFromString("1000.00"),
	}
	amount := decimal.RequireFromString("50.00")

	// Mock expectations
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetForUpdate", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("AddBalance", ctx, int64(1), amount).Return(nil)

	mockTransactionRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.AccountID == 1 &&
			txn.Type == models.TransactionTypeDeposit &&
			txn.Amount.Equal(amount) &&
			txn.Description == "Deposit via card"
	})).Return(nil).Run(func(args mock.Arguments) {
		txn := args.Get(1).(*models.Transaction)
		txn.ID = 42
	})

	txn, newBalance, err := service.Deposit(ctx, 1, amount, "Deposit via card")

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.Equal(t, int64(42), txn.ID)
	assert.True(t, newBalance.Equal(decimal.RequireFromString("1050.00")))

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestWalletService_Deposit_InvalidAmount(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewWalletService(mockFactory, nil, 3)

	cases := []decimal.Decimal{
		decimal.Zero,
		decimal.RequireFromString("-10.00"),
		decimal.RequireFromString("10.005"),
	}
	for _, amount := range cases {
		txn, _, err := service.Deposit(ctx, 1, amount, "Deposit")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, CodeInvalidAmount, ErrorCodeOf(err))
		assert.Nil(t, txn)
	}

	// Validation fails before any unit of work is created
	mockFactory.AssertNotCalled(t, "Create")
}

func TestWalletService_Withdraw(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTransactionRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockTransactionRepo, nil)

	service := NewWalletService(mockFactory, nil, 3)

	account := &models.Account{
		ID:      1,
		Balance: decimal.RequireFromString("1000.00"),
	}
	amount := decimal.RequireFromString("200.00")

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetForUpdate", ctx, int64(1)).Return(account, nil)
	mockAccountRepo.On("DeductBalance", ctx, int64(1), amount).Return(nil)

	// The ledger stores the signed delta, so withdrawals append a negative amount
	mockTransactionRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.AccountID == 1 &&
			txn.Type == models.TransactionTypeWithdrawal &&
			txn.Amount.Equal(amount.Neg())
	})).Return(nil)

	txn, newBalance, err := service.Withdraw(ctx, 1, amount, "Withdrawal to bank")

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.True(t, newBalance.Equal(decimal.RequireFromString("800.00")))

	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockTransactionRepo.AssertExpectations(t)
}

func TestWalletService_Withdraw_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTransactionRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockTransactionRepo, nil)

	service := NewWalletService(mockFactory, nil, 3)

	account := &models.Account{
		ID:      1,
		Balance: decimal.RequireFromString("100.00"),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetForUpdate", ctx, int64(1)).Return(account, nil)

	txn, _, err := service.Withdraw(ctx, 1, decimal.RequireFromString("200.00"), "Withdrawal")

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, CodeInsufficientBalance, ErrorCodeOf(err))
	assert.Nil(t, txn)

	// Nothing was applied: no deduction, no ledger entry, no commit
	mockAccountRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	mockTransactionRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestWalletService_Withdraw_AccountNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil)

	service := NewWalletService(mockFactory, nil, 3)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetForUpdate", ctx, int64(99)).Return(nil, nil)

	_, _, err := service.Withdraw(ctx, 99, decimal.RequireFromString("10.00"), "Withdrawal")

	assert.ErrorIs(t, err, ErrAccountNotFound)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestWalletService_GetBalance_CacheHit(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockCache := new(MockBalanceCache)

	service := NewWalletService(mockFactory, mockCache, 3)

	cached := decimal.RequireFromString("321.50")
	mockCache.On("Get", ctx, int64(1)).Return(cached, true)

	balance, err := service.GetBalance(ctx, 1)

	assert.NoError(t, err)
	assert.True(t, balance.Equal(cached))

	// A cache hit never opens a unit of work
	mockFactory.AssertNotCalled(t, "Create")
	mockCache.AssertExpectations(t)
}

func TestWalletService_GetBalance_CacheMiss(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockCache := new(MockBalanceCache)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil)

	service := NewWalletService(mockFactory, mockCache, 3)

	account := &models.Account{
		ID:      1,
		Balance: decimal.RequireFromString("700.00"),
	}

	mockCache.On("Get", ctx, int64(1)).Return(decimal.Zero, false)
	mockCache.On("Set", ctx, int64(1), account.Balance).Return()

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByID", ctx, int64(1)).Return(account, nil)

	balance, err := service.GetBalance(ctx, 1)

	assert.NoError(t, err)
	assert.True(t, balance.Equal(account.Balance))

	mockCache.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
}

func TestWalletService_Summary(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockTransactionRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockAccountRepo, mockTransactionRepo, nil)

	service := NewWalletService(mockFactory, nil, 3)

	account := &models.Account{
		ID:      1,
		Balance: decimal.RequireFromString("1110.00"),
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByID", ctx, int64(1)).Return(account, nil)
	mockTransactionRepo.On("SumByType", ctx, int64(1), models.TransactionTypeDeposit).
		Return(decimal.RequireFromString("1000.00"), nil)
	mockTransactionRepo.On("SumByType", ctx, int64(1), models.TransactionTypeWithdrawal).
		Return(decimal.RequireFromString("0.00"), nil)
	mockTransactionRepo.On("SumByType", ctx, int64(1), models.TransactionTypeBetDebit).
		Return(decimal.RequireFromString("-100.00"), nil)
	mockTransactionRepo.On("SumByType", ctx, int64(1), models.TransactionTypePayoutCredit).
		Return(decimal.RequireFromString("210.00"), nil)

	summary, err := service.Summary(ctx, 1)

	assert.NoError(t, err)
	assert.NotNil(t, summary)
	assert.True(t, summary.Balance.Equal(decimal.RequireFromString("1110.00")))
	assert.True(t, summary.TotalDeposits.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, summary.TotalBetDebits.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, summary.TotalPayouts.Equal(decimal.RequireFromString("210.00")))
	assert.True(t, summary.NetProfit.Equal(decimal.RequireFromString("110.00")))

	mockTransactionRepo.AssertExpectations(t)
}

func TestWalletService_ListTransactions_AccountNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil)

	service := NewWalletService(mockFactory, nil, 3)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByID", ctx, int64(7)).Return(nil, nil)

	page, err := service.ListTransactions(ctx, 7, models.TransactionFilter{}, 1, 20)

	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestWalletService_Deposit_StorageErrorNotRetried(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, nil, nil)

	service := NewWalletService(mockFactory, nil, 3)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// A plain storage error is not a transient conflict and surfaces on
	// the first attempt
	boom := errors.New("connection reset")
	mockAccountRepo.On("GetForUpdate", ctx, int64(1)).Return(nil, boom).Once()

	_, _, err := service.Deposit(ctx, 1, decimal.RequireFromString("10.00"), "Deposit")

	assert.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, CodeStorageFailure, ErrorCodeOf(err))
	mockAccountRepo.AssertExpectations(t)
}
