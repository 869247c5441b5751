package service_test

import (
	"context"
	"sync"
	"testing"

	"bookie/events"
	"bookie/models"
	"bookie/repository"
	"bookie/repository/testutil"
	"bookie/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServices(t *testing.T) (*testutil.TestDatabase, service.AccountService, service.WalletService, service.BetService, service.CatalogService) {
	testDB := testutil.SetupTestDatabase(t)

	bus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(testDB.DB, bus)

	accountService := service.NewAccountService(uowFactory, decimal.RequireFromString("1000.00"), 3)
	walletService := service.NewWalletService(uowFactory, nil, 3)
	betService := service.NewBetService(uowFactory, 3)
	catalogService := service.NewCatalogService(uowFactory, 3)

	return testDB, accountService, walletService, betService, catalogService
}

func TestFullBettingFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB, accountService, walletService, betService, catalogService := setupServices(t)
	ctx := context.Background()

	// Register: account arrives with the welcome bonus as its first
	// ledger entry
	account, err := accountService.CreateAccount(ctx, "punter-1")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("1000.00")))

	// Seed an event; the default win market carries home at 2.10
	detail, err := catalogService.CreateEvent(ctx, "Arsenal", "Chelsea", testutil.CreateTestEvent("a", "b").StartTime)
	require.NoError(t, err)
	require.Len(t, detail.Options, 3)

	var homeOption *models.BettingOption
	for _, o := range detail.Options {
		if o.OptionValue == "home" {
			homeOption = o
		}
	}
	require.NotNil(t, homeOption)

	// Place 100.00 at 2.10
	placement, err := betService.PlaceBet(ctx, account.ID, homeOption.ID, decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	assert.True(t, placement.NewBalance.Equal(decimal.RequireFromString("900.00")))
	assert.True(t, placement.Bet.PotentialPayout.Equal(decimal.RequireFromString("210.00")))

	// Settle as won: payout lands atomically with the transition
	settlement, err := betService.SettleBet(ctx, placement.Bet.ID, models.BetStatusWon)
	require.NoError(t, err)
	assert.True(t, settlement.Credited.Equal(decimal.RequireFromString("210.00")))
	assert.True(t, settlement.NewBalance.Equal(decimal.RequireFromString("1110.00")))

	// Settling again is rejected
	_, err = betService.SettleBet(ctx, placement.Bet.ID, models.BetStatusLost)
	assert.ErrorIs(t, err, service.ErrBetAlreadySettled)

	// The balance always equals the sum of the ledger
	txnRepo := repository.NewTransactionRepository(testDB.DB)
	ledgerSum, err := txnRepo.SumByAccount(ctx, account.ID)
	require.NoError(t, err)
	balance, err := walletService.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(ledgerSum), "balance %s != ledger sum %s", balance, ledgerSum)
	assert.True(t, balance.Equal(decimal.RequireFromString("1110.00")))

	// Summary over the whole history
	summary, err := walletService.Summary(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalDeposits.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, summary.TotalBetDebits.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, summary.TotalPayouts.Equal(decimal.RequireFromString("210.00")))
	assert.True(t, summary.NetProfit.Equal(decimal.RequireFromString("110.00")))
}

func TestBetCancellation_RefundsStake_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	_, accountService, _, betService, catalogService := setupServices(t)
	ctx := context.Background()

	account, err := accountService.CreateAccount(ctx, "punter-2")
	require.NoError(t, err)

	detail, err := catalogService.CreateEvent(ctx, "Liverpool", "Everton", testutil.CreateTestEvent("a", "b").StartTime)
	require.NoError(t, err)

	placement, err := betService.PlaceBet(ctx, account.ID, detail.Options[0].ID, decimal.RequireFromString("250.00"))
	require.NoError(t, err)
	assert.True(t, placement.NewBalance.Equal(decimal.RequireFromString("750.00")))

	settlement, err := betService.SettleBet(ctx, placement.Bet.ID, models.BetStatusCancelled)
	require.NoError(t, err)
	assert.True(t, settlement.Credited.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, settlement.NewBalance.Equal(decimal.RequireFromString("1000.00")))
}

func TestFinishedEventClosesBetting_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	_, accountService, _, betService, catalogService := setupServices(t)
	ctx := context.Background()

	account, err := accountService.CreateAccount(ctx, "punter-3")
	require.NoError(t, err)

	detail, err := catalogService.CreateEvent(ctx, "Spurs", "West Ham", testutil.CreateTestEvent("a", "b").StartTime)
	require.NoError(t, err)

	err = catalogService.UpdateEventStatus(ctx, detail.Event.ID, models.EventStatusFinished)
	require.NoError(t, err)

	_, err = betService.PlaceBet(ctx, account.ID, detail.Options[0].ID, decimal.RequireFromString("10.00"))
	assert.ErrorIs(t, err, service.ErrOptionInactive)
}

func TestConcurrentDeposits_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB, accountService, walletService, _, _ := setupServices(t)
	ctx := context.Background()

	account, err := accountService.CreateAccount(ctx, "concurrent-punter")
	require.NoError(t, err)

	const depositors = 20
	amount := decimal.RequireFromString("10.00")

	var wg sync.WaitGroup
	errs := make(chan error, depositors)
	for i := 0; i < depositors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := walletService.Deposit(ctx, account.ID, amount, "concurrent deposit")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// 1000.00 welcome bonus + 20 * 10.00, with one ledger entry per deposit
	balance, err := walletService.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("1200.00")), "got %s", balance)

	txnRepo := repository.NewTransactionRepository(testDB.DB)
	sum, err := txnRepo.SumByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(balance))

	deposit := models.TransactionTypeDeposit
	page, err := walletService.ListTransactions(ctx, account.ID, models.TransactionFilter{Type: &deposit}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(depositors+1), page.Total)
}

func TestConcurrentSettlements_ExactlyOneWins_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	_, accountService, walletService, betService, catalogService := setupServices(t)
	ctx := context.Background()

	account, err := accountService.CreateAccount(ctx, "race-punter")
	require.NoError(t, err)

	detail, err := catalogService.CreateEvent(ctx, "Leeds", "Burnley", testutil.CreateTestEvent("a", "b").StartTime)
	require.NoError(t, err)

	placement, err := betService.PlaceBet(ctx, account.ID, detail.Options[0].ID, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	const settlers = 8
	var wg sync.WaitGroup
	outcomes := make(chan error, settlers)
	for i := 0; i < settlers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := betService.SettleBet(ctx, placement.Bet.ID, models.BetStatusWon)
			outcomes <- err
		}()
	}
	wg.Wait()
	close(outcomes)

	succeeded := 0
	for err := range outcomes {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, service.ErrBetAlreadySettled)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one settlement must win")

	// The payout was credited once
	balance, err := walletService.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	expected := decimal.RequireFromString("1000.00").
		Sub(decimal.RequireFromString("100.00")).
		Add(placement.Bet.PotentialPayout)
	assert.True(t, balance.Equal(expected), "got %s, want %s", balance, expected)
}
