package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus represents the lifecycle state of a sporting event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusLive      EventStatus = "live"
	EventStatusFinished  EventStatus = "finished"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is a sporting event that betting options hang off.
type Event struct {
	ID        int64       `db:"id"`
	HomeTeam  string      `db:"home_team"`
	AwayTeam  string      `db:"away_team"`
	StartTime time.Time   `db:"start_time"`
	Status    EventStatus `db:"status"`
	CreatedAt time.Time   `db:"created_at"`
}

// OpenForBetting reports whether the event still accepts new bets.
func (e *Event) OpenForBetting() bool {
	return e.Status == EventStatusUpcoming || e.Status == EventStatusLive
}

// BettingOption is a single market on an event, e.g. win/home at 2.10.
// Once bets reference it only the active flag changes.
type BettingOption struct {
	ID          int64           `db:"id"`
	EventID     int64           `db:"event_id"`
	OptionType  string          `db:"option_type"`
	OptionValue string          `db:"option_value"`
	Odds        decimal.Decimal `db:"odds"`
	IsActive    bool            `db:"is_active"`
}

// EventDetail bundles an event with its active betting options.
type EventDetail struct {
	Event   *Event
	Options []*BettingOption
}
