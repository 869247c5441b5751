package repository

import (
	"context"
	"fmt"

	"bookie/database"
	"bookie/models"

	"github.com/shopspring/decimal"
)

// TransactionRepository implements the service.TransactionRepository
// interface. Rows are append-only; there is no update or delete path.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository bound to a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append persists a new immutable ledger entry
func (r *TransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (account_id, type, amount, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.AccountID,
		txn.Type,
		txn.Amount,
		txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append transaction for account %d: %w", txn.AccountID, err)
	}

	return nil
}

// ListByAccount returns one page of an account's history ordered by
// created_at descending
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, filter models.TransactionFilter, page, pageSize int) (*models.TransactionPage, error) {
	where := "account_id = $1"
	args := []any{accountID}
	if filter.Type != nil {
		where += " AND type = $2"
		args = append(args, *filter.Type)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions WHERE " + where
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count transactions for account %d: %w", accountID, err)
	}

	query := fmt.Sprintf(`
		SELECT id, account_id, type, amount, description, created_at
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.AccountID,
			&txn.Type,
			&txn.Amount,
			&txn.Description,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &models.TransactionPage{
		Transactions: txns,
		Total:        total,
		Pages:        pages,
		Page:         page,
	}, nil
}

// SumByType returns the signed sum of amounts of one transaction type
func (r *TransactionRepository) SumByType(ctx context.Context, accountID int64, txType models.TransactionType) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1 AND type = $2
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, accountID, txType).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s transactions for account %d: %w", txType, accountID, err)
	}

	return sum, nil
}

// SumByAccount returns the signed sum of all amounts for an account
func (r *TransactionRepository) SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE account_id = $1
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for account %d: %w", accountID, err)
	}

	return sum, nil
}
