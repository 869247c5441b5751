package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle state of a bet. A bet starts pending
// and transitions exactly once to one of the terminal states.
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusWon       BetStatus = "won"
	BetStatusLost      BetStatus = "lost"
	BetStatusCancelled BetStatus = "cancelled"
)

// Terminal reports whether the status is a settlement outcome.
func (s BetStatus) Terminal() bool {
	switch s {
	case BetStatusWon, BetStatusLost, BetStatusCancelled:
		return true
	}
	return false
}

// Bet is a stake placed against a betting option. Odds are snapshotted at
// placement time; later odds changes never affect a placed bet.
type Bet struct {
	ID              int64           `db:"id"`
	AccountID       int64           `db:"account_id"`
	BettingOptionID int64           `db:"betting_option_id"`
	Stake           decimal.Decimal `db:"stake"`
	Odds            decimal.Decimal `db:"odds"`
	PotentialPayout decimal.Decimal `db:"potential_payout"`
	Status          BetStatus       `db:"status"`
	PlacedAt        time.Time       `db:"placed_at"`
	SettledAt       *time.Time      `db:"settled_at"`
}

// PlacementResult is returned to the caller after a successful placement.
type PlacementResult struct {
	Bet        *Bet
	NewBalance decimal.Decimal
}

// SettlementResult is returned after a bet has been settled. Credited is
// zero for lost bets, the stake for cancelled bets and the potential
// payout for won bets.
type SettlementResult struct {
	Bet        *Bet
	Credited   decimal.Decimal
	NewBalance decimal.Decimal
}
