package repository

import (
	"context"
	"errors"
	"fmt"

	"bookie/database"
	"bookie/models"
	"bookie/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository bound to a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// Create inserts a new account for the caller-supplied external identity
func (r *AccountRepository) Create(ctx context.Context, externalID string, balance decimal.Decimal) (*models.Account, error) {
	query := `
		INSERT INTO accounts (external_id, balance)
		VALUES ($1, $2)
		RETURNING id, external_id, balance, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, externalID, balance).Scan(
		&account.ID,
		&account.ExternalID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return nil, fmt.Errorf("%w: external id %q", service.ErrDuplicateAccount, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account %q: %w", externalID, err)
	}

	return &account, nil
}

// GetByID retrieves an account by its id
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.get(ctx, "id = $1", id)
}

// GetByExternalID retrieves an account by its external identity
func (r *AccountRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	return r.get(ctx, "external_id = $1", externalID)
}

// GetForUpdate retrieves an account and locks its row until the
// enclosing transaction ends. Concurrent mutations of the same account
// serialize here; different accounts do not block each other.
func (r *AccountRepository) GetForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	return r.get(ctx, "id = $1 FOR UPDATE", id)
}

func (r *AccountRepository) get(ctx context.Context, where string, arg any) (*models.Account, error) {
	query := `
		SELECT id, external_id, balance, created_at, updated_at
		FROM accounts
		WHERE ` + where

	var account models.Account
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.ExternalID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %v: %w", arg, err)
	}

	return &account, nil
}

// AddBalance atomically increases an account's balance
func (r *AccountRepository) AddBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", service.ErrInvalidAmount, amount)
	}

	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to add balance for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", service.ErrAccountNotFound, id)
	}

	return nil
}

// DeductBalance atomically decreases an account's balance, failing when
// the balance would go negative
func (r *AccountRepository) DeductBalance(ctx context.Context, id int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s", service.ErrInvalidAmount, amount)
	}

	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for account %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		account, err := r.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check account %d: %w", id, err)
		}
		if account == nil {
			return fmt.Errorf("%w: id %d", service.ErrAccountNotFound, id)
		}
		return fmt.Errorf("%w: have %s, need %s", service.ErrInsufficientBalance, account.Balance, amount)
	}

	return nil
}
