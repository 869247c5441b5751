package repository

import (
	"context"
	"fmt"
	"time"

	"bookie/database"
	"bookie/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository bound to a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a new pending bet
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (account_id, betting_option_id, stake, odds, potential_payout, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, placed_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.AccountID,
		bet.BettingOptionID,
		bet.Stake,
		bet.Odds,
		bet.PotentialPayout,
		bet.Status,
	).Scan(&bet.ID, &bet.PlacedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet for account %d: %w", bet.AccountID, err)
	}

	return nil
}

// GetByID retrieves a bet by its id
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate retrieves a bet and locks its row until the enclosing
// transaction ends, serializing concurrent settlements of the same bet.
func (r *BetRepository) GetForUpdate(ctx context.Context, id int64) (*models.Bet, error) {
	return r.get(ctx, id, true)
}

func (r *BetRepository) get(ctx context.Context, id int64, forUpdate bool) (*models.Bet, error) {
	query := `
		SELECT id, account_id, betting_option_id, stake, odds, potential_payout, status, placed_at, settled_at
		FROM bets
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var bet models.Bet
	err := r.q.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.AccountID,
		&bet.BettingOptionID,
		&bet.Stake,
		&bet.Odds,
		&bet.PotentialPayout,
		&bet.Status,
		&bet.PlacedAt,
		&bet.SettledAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}

	return &bet, nil
}

// Settle transitions a bet out of pending. The conditional update means
// exactly one of any concurrent settlement attempts succeeds.
func (r *BetRepository) Settle(ctx context.Context, id int64, status models.BetStatus, settledAt time.Time) (bool, error) {
	query := `
		UPDATE bets
		SET status = $1, settled_at = $2
		WHERE id = $3 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, status, settledAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to settle bet %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// ListByAccount returns an account's bets, most recent first
func (r *BetRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Bet, error) {
	query := `
		SELECT id, account_id, betting_option_id, stake, odds, potential_payout, status, placed_at, settled_at
		FROM bets
		WHERE account_id = $1
		ORDER BY placed_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.AccountID,
			&bet.BettingOptionID,
			&bet.Stake,
			&bet.Odds,
			&bet.PotentialPayout,
			&bet.Status,
			&bet.PlacedAt,
			&bet.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
