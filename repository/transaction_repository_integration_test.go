package repository

import (
	"context"
	"testing"

	"bookie/models"
	"bookie/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	accountRepo := NewAccountRepository(testDB.DB)
	txnRepo := NewTransactionRepository(testDB.DB)

	account, err := accountRepo.Create(ctx, "ledger-user", decimal.Zero)
	require.NoError(t, err)

	// Build a small history: deposit, then bet debit, payout, withdrawal
	deposit := testutil.CreateTestTransaction(account.ID, "1000.00")
	require.NoError(t, txnRepo.Append(ctx, deposit))
	assert.NotZero(t, deposit.ID)

	entries := []struct {
		txType models.TransactionType
		amount string
	}{
		{models.TransactionTypeBetDebit, "-100.00"},
		{models.TransactionTypePayoutCredit, "210.00"},
		{models.TransactionTypeWithdrawal, "-50.00"},
	}
	for _, e := range entries {
		txn := &models.Transaction{
			AccountID:   account.ID,
			Type:        e.txType,
			Amount:      decimal.RequireFromString(e.amount),
			Description: string(e.txType),
		}
		err := txnRepo.Append(ctx, txn)
		require.NoError(t, err)
		assert.NotZero(t, txn.ID)
		assert.False(t, txn.CreatedAt.IsZero())
	}

	t.Run("list newest first", func(t *testing.T) {
		page, err := txnRepo.ListByAccount(ctx, account.ID, models.TransactionFilter{}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
		assert.Equal(t, 1, page.Pages)
		require.Len(t, page.Transactions, 4)
		assert.Equal(t, models.TransactionTypeWithdrawal, page.Transactions[0].Type)
		assert.Equal(t, models.TransactionTypeDeposit, page.Transactions[3].Type)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := txnRepo.ListByAccount(ctx, account.ID, models.TransactionFilter{}, 2, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
		assert.Equal(t, 2, page.Pages)
		assert.Equal(t, 2, page.Page)
		assert.Len(t, page.Transactions, 1)
	})

	t.Run("type filter", func(t *testing.T) {
		deposit := models.TransactionTypeDeposit
		page, err := txnRepo.ListByAccount(ctx, account.ID, models.TransactionFilter{Type: &deposit}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Transactions, 1)
		assert.True(t, page.Transactions[0].Amount.Equal(decimal.RequireFromString("1000.00")))
	})

	t.Run("sums", func(t *testing.T) {
		deposits, err := txnRepo.SumByType(ctx, account.ID, models.TransactionTypeDeposit)
		require.NoError(t, err)
		assert.True(t, deposits.Equal(decimal.RequireFromString("1000.00")))

		debits, err := txnRepo.SumByType(ctx, account.ID, models.TransactionTypeBetDebit)
		require.NoError(t, err)
		assert.True(t, debits.Equal(decimal.RequireFromString("-100.00")))

		total, err := txnRepo.SumByAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("1060.00")))
	})

	t.Run("sum of empty history is zero", func(t *testing.T) {
		empty, err := accountRepo.Create(ctx, "empty-user", decimal.Zero)
		require.NoError(t, err)

		total, err := txnRepo.SumByAccount(ctx, empty.ID)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}
