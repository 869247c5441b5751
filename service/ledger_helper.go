package service

import (
	"context"
	"fmt"

	"bookie/events"
	"bookie/models"

	"github.com/shopspring/decimal"
)

// creditAccount increases an account's balance and appends the matching
// ledger entry inside the given unit of work. This and debitAccount are
// the only paths that touch a balance, so the ledger invariant
// (balance == sum of transaction amounts) holds at every commit point.
// The amount is positive; the stored transaction amount is the signed
// balance delta.
func creditAccount(ctx context.Context, uow UnitOfWork, accountID int64, txType models.TransactionType, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	account, err := uow.AccountRepository().GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, decimal.Zero, fmt.Errorf("%w: id %d", ErrAccountNotFound, accountID)
	}

	if err := uow.AccountRepository().AddBalance(ctx, accountID, amount); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to credit account: %w", err)
	}

	newBalance := account.Balance.Add(amount)
	txn := &models.Transaction{
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	}
	if err := uow.TransactionRepository().Append(ctx, txn); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to append transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       accountID,
		TransactionID:   txn.ID,
		TransactionType: txType,
		Amount:          txn.Amount,
		OldBalance:      account.Balance,
		NewBalance:      newBalance,
	})

	return txn, newBalance, nil
}

// debitAccount decreases an account's balance and appends the matching
// ledger entry with a negative amount. Fails with ErrInsufficientBalance
// when the balance is lower than the amount, leaving nothing applied.
func debitAccount(ctx context.Context, uow UnitOfWork, accountID int64, txType models.TransactionType, amount decimal.Decimal, description string) (*models.Transaction, decimal.Decimal, error) {
	account, err := uow.AccountRepository().GetForUpdate(ctx, accountID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, decimal.Zero, fmt.Errorf("%w: id %d", ErrAccountNotFound, accountID)
	}

	if account.Balance.LessThan(amount) {
		return nil, decimal.Zero, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, account.Balance, amount)
	}

	if err := uow.AccountRepository().DeductBalance(ctx, accountID, amount); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to debit account: %w", err)
	}

	newBalance := account.Balance.Sub(amount)
	txn := &models.Transaction{
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount.Neg(),
		Description: description,
	}
	if err := uow.TransactionRepository().Append(ctx, txn); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to append transaction: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       accountID,
		TransactionID:   txn.ID,
		TransactionType: txType,
		Amount:          txn.Amount,
		OldBalance:      account.Balance,
		NewBalance:      newBalance,
	})

	return txn, newBalance, nil
}
