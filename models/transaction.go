package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeWithdrawal   TransactionType = "withdrawal"
	TransactionTypeBetDebit     TransactionType = "bet_debit"
	TransactionTypePayoutCredit TransactionType = "payout_credit"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeBetDebit, TransactionTypePayoutCredit:
		return true
	}
	return false
}

// Transaction is an immutable, append-only ledger entry. Amount is the
// signed balance delta: deposits and payout credits are positive,
// withdrawals and bet debits are negative.
type Transaction struct {
	ID          int64           `db:"id"`
	AccountID   int64           `db:"account_id"`
	Type        TransactionType `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	CreatedAt   time.Time       `db:"created_at"`
}

// TransactionFilter narrows a transaction history query.
type TransactionFilter struct {
	Type *TransactionType
}

// TransactionPage is one page of an account's transaction history,
// ordered by created_at descending.
type TransactionPage struct {
	Transactions []*Transaction
	Total        int64
	Pages        int
	Page         int
}

// WalletSummary aggregates an account's ledger per transaction type.
// Totals are reported as absolute values; NetProfit is
// TotalPayouts - TotalBetDebits.
type WalletSummary struct {
	Balance          decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TotalBetDebits   decimal.Decimal
	TotalPayouts     decimal.Decimal
	NetProfit        decimal.Decimal
}
