package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a user's cash balance in the ledger.
// The balance is never mutated directly; every change goes through the
// wallet service together with an appended transaction, so at any commit
// point balance equals the sum of the account's transaction amounts.
type Account struct {
	ID         int64           `db:"id"`
	ExternalID string          `db:"external_id"`
	Balance    decimal.Decimal `db:"balance"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}
