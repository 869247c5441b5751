package service

import (
	"context"
	"fmt"

	"bookie/models"

	"github.com/shopspring/decimal"
)

type walletService struct {
	uowFactory UnitOfWorkFactory
	cache      BalanceCache
	maxRetries uint64
}

// NewWalletService creates a new wallet service. cache may be nil, in
// which case every balance read goes to storage.
func NewWalletService(uowFactory UnitOfWorkFactory, cache BalanceCache, maxRetries uint64) WalletService {
	return &walletService{
		uowFactory: uowFactory,
		cache:      cache,
		maxRetries: maxRetries,
	}
}

func (s *walletService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	if !validAmount(amount) {
		return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	var (
		txn        *models.Transaction
		newBalance decimal.Decimal
	)
	err := withRetry(ctx, s.maxRetries, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		var err error
		txn, newBalance, err = creditAccount(ctx, uow, accountID, models.TransactionTypeDeposit, amount, description)
		if err != nil {
			return err
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	return txn, newBalance, nil
}

func (s *walletService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	if !validAmount(amount) {
		return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	var (
		txn        *models.Transaction
		newBalance decimal.Decimal
	)
	err := withRetry(ctx, s.maxRetries, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		var err error
		txn, newBalance, err = debitAccount(ctx, uow, accountID, models.TransactionTypeWithdrawal, amount, description)
		if err != nil {
			return err
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	return txn, newBalance, nil
}

func (s *walletService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if s.cache != nil {
		if balance, ok := s.cache.Get(ctx, accountID); ok {
			return balance, nil
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return decimal.Zero, fmt.Errorf("%w: id %d", ErrAccountNotFound, accountID)
	}

	if err := uow.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, accountID, account.Balance)
	}

	return account.Balance, nil
}

func (s *walletService) ListTransactions(ctx context.Context, accountID int64, filter models.TransactionFilter, page, pageSize int) (*models.TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, fmt.Errorf("unknown transaction type %q", *filter.Type)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, accountID)
	}

	history, err := uow.TransactionRepository().ListByAccount(ctx, accountID, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return history, nil
}

func (s *walletService) Summary(ctx context.Context, accountID int64) (*models.WalletSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: id %d", ErrAccountNotFound, accountID)
	}

	ledger := uow.TransactionRepository()
	deposits, err := ledger.SumByType(ctx, accountID, models.TransactionTypeDeposit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum deposits: %w", err)
	}
	withdrawals, err := ledger.SumByType(ctx, accountID, models.TransactionTypeWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	betDebits, err := ledger.SumByType(ctx, accountID, models.TransactionTypeBetDebit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bet debits: %w", err)
	}
	payouts, err := ledger.SumByType(ctx, accountID, models.TransactionTypePayoutCredit)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payouts: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Withdrawals and bet debits are stored negative; the summary
	// reports absolute totals.
	totalBetDebits := betDebits.Abs()
	return &models.WalletSummary{
		Balance:          account.Balance,
		TotalDeposits:    deposits,
		TotalWithdrawals: withdrawals.Abs(),
		TotalBetDebits:   totalBetDebits,
		TotalPayouts:     payouts,
		NetProfit:        payouts.Sub(totalBetDebits),
	}, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)
