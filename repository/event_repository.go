package repository

import (
	"context"
	"fmt"

	"bookie/database"
	"bookie/models"
	"bookie/service"

	"github.com/jackc/pgx/v5"
)

// EventRepository implements the service.EventRepository interface
type EventRepository struct {
	q queryable
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{q: db.Pool}
}

// newEventRepositoryWithTx creates a new event repository bound to a transaction
func newEventRepositoryWithTx(tx queryable) *EventRepository {
	return &EventRepository{q: tx}
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (home_team, away_team, start_time, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		event.HomeTeam,
		event.AwayTeam,
		event.StartTime,
		event.Status,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create event %s vs %s: %w", event.HomeTeam, event.AwayTeam, err)
	}

	return nil
}

// GetByID retrieves an event by its id
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `
		SELECT id, home_team, away_team, start_time, status, created_at
		FROM events
		WHERE id = $1
	`

	var event models.Event
	err := r.q.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.HomeTeam,
		&event.AwayTeam,
		&event.StartTime,
		&event.Status,
		&event.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}

	return &event, nil
}

// ListByStatus returns events in the given lifecycle status
func (r *EventRepository) ListByStatus(ctx context.Context, status models.EventStatus, limit int) ([]*models.Event, error) {
	query := `
		SELECT id, home_team, away_team, start_time, status, created_at
		FROM events
		WHERE status = $1
		ORDER BY start_time ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s events: %w", status, err)
	}
	defer rows.Close()

	var evts []*models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.HomeTeam,
			&event.AwayTeam,
			&event.StartTime,
			&event.Status,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		evts = append(evts, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return evts, nil
}

// UpdateStatus moves an event to a new lifecycle status
func (r *EventRepository) UpdateStatus(ctx context.Context, id int64, status models.EventStatus) error {
	query := `
		UPDATE events
		SET status = $1
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of event %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", service.ErrEventNotFound, id)
	}

	return nil
}
