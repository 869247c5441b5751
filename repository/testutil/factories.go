package testutil

import (
	"time"

	"bookie/models"

	"github.com/shopspring/decimal"
)

// CreateTestTransaction creates a deposit ledger entry
func CreateTestTransaction(accountID int64, amount string) *models.Transaction {
	return &models.Transaction{
		AccountID:   accountID,
		Type:        models.TransactionTypeDeposit,
		Amount:      decimal.RequireFromString(amount),
		Description: "test deposit",
	}
}

// CreateTestEvent creates an upcoming event
func CreateTestEvent(homeTeam, awayTeam string) *models.Event {
	return &models.Event{
		HomeTeam:  homeTeam,
		AwayTeam:  awayTeam,
		StartTime: time.Now().Add(24 * time.Hour),
		Status:    models.EventStatusUpcoming,
	}
}

// CreateTestOption creates an active betting option for an event
func CreateTestOption(eventID int64, value, odds string) *models.BettingOption {
	return &models.BettingOption{
		EventID:     eventID,
		OptionType:  "win",
		OptionValue: value,
		Odds:        decimal.RequireFromString(odds),
		IsActive:    true,
	}
}

// CreateTestBet creates a pending bet with derived payout
func CreateTestBet(accountID, optionID int64, stake, odds string) *models.Bet {
	s := decimal.RequireFromString(stake)
	o := decimal.RequireFromString(odds)
	return &models.Bet{
		AccountID:       accountID,
		BettingOptionID: optionID,
		Stake:           s,
		Odds:            o,
		PotentialPayout: s.Mul(o).RoundBank(2),
		Status:          models.BetStatusPending,
	}
}
