package repository

import (
	"context"
	"fmt"

	"bookie/database"
	"bookie/models"

	"github.com/jackc/pgx/v5"
)

// BettingOptionRepository implements the service.BettingOptionRepository interface
type BettingOptionRepository struct {
	q queryable
}

// NewBettingOptionRepository creates a new betting option repository
func NewBettingOptionRepository(db *database.DB) *BettingOptionRepository {
	return &BettingOptionRepository{q: db.Pool}
}

// newBettingOptionRepositoryWithTx creates a new betting option repository bound to a transaction
func newBettingOptionRepositoryWithTx(tx queryable) *BettingOptionRepository {
	return &BettingOptionRepository{q: tx}
}

// Create inserts a new betting option
func (r *BettingOptionRepository) Create(ctx context.Context, option *models.BettingOption) error {
	query := `
		INSERT INTO betting_options (event_id, option_type, option_value, odds, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		option.EventID,
		option.OptionType,
		option.OptionValue,
		option.Odds,
		option.IsActive,
	).Scan(&option.ID)

	if err != nil {
		return fmt.Errorf("failed to create betting option for event %d: %w", option.EventID, err)
	}

	return nil
}

// GetWithEvent retrieves an option together with its parent event, so
// the bet engine checks the active flag and the event status in one read.
func (r *BettingOptionRepository) GetWithEvent(ctx context.Context, id int64) (*models.BettingOption, *models.Event, error) {
	query := `
		SELECT o.id, o.event_id, o.option_type, o.option_value, o.odds, o.is_active,
		       e.id, e.home_team, e.away_team, e.start_time, e.status, e.created_at
		FROM betting_options o
		JOIN events e ON e.id = o.event_id
		WHERE o.id = $1
	`

	var option models.BettingOption
	var event models.Event
	err := r.q.QueryRow(ctx, query, id).Scan(
		&option.ID,
		&option.EventID,
		&option.OptionType,
		&option.OptionValue,
		&option.Odds,
		&option.IsActive,
		&event.ID,
		&event.HomeTeam,
		&event.AwayTeam,
		&event.StartTime,
		&event.Status,
		&event.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get betting option %d: %w", id, err)
	}

	return &option, &event, nil
}

// ListActiveByEvent returns the active options of an event
func (r *BettingOptionRepository) ListActiveByEvent(ctx context.Context, eventID int64) ([]*models.BettingOption, error) {
	query := `
		SELECT id, event_id, option_type, option_value, odds, is_active
		FROM betting_options
		WHERE event_id = $1 AND is_active
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list betting options for event %d: %w", eventID, err)
	}
	defer rows.Close()

	var options []*models.BettingOption
	for rows.Next() {
		var option models.BettingOption
		err := rows.Scan(
			&option.ID,
			&option.EventID,
			&option.OptionType,
			&option.OptionValue,
			&option.Odds,
			&option.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan betting option: %w", err)
		}
		options = append(options, &option)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate betting options: %w", err)
	}

	return options, nil
}

// DeactivateByEvent closes all of an event's options for new bets
func (r *BettingOptionRepository) DeactivateByEvent(ctx context.Context, eventID int64) error {
	query := `
		UPDATE betting_options
		SET is_active = FALSE
		WHERE event_id = $1 AND is_active
	`

	if _, err := r.q.Exec(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to deactivate betting options for event %d: %w", eventID, err)
	}

	return nil
}
