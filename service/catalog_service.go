package service

import (
	"context"
	"fmt"
	"time"

	"bookie/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// defaultMarket is the win market seeded on every new event.
var defaultMarket = []struct {
	optionValue string
	odds        decimal.Decimal
}{
	{"home", decimal.RequireFromString("2.10")},
	{"away", decimal.RequireFromString("3.20")},
	{"draw", decimal.RequireFromString("3.50")},
}

type catalogService struct {
	uowFactory UnitOfWorkFactory
	maxRetries uint64
}

// NewCatalogService creates a new catalog service
func NewCatalogService(uowFactory UnitOfWorkFactory, maxRetries uint64) CatalogService {
	return &catalogService{
		uowFactory: uowFactory,
		maxRetries: maxRetries,
	}
}

func (s *catalogService) CreateEvent(ctx context.Context, homeTeam, awayTeam string, startTime time.Time) (*models.EventDetail, error) {
	if homeTeam == "" || awayTeam == "" {
		return nil, fmt.Errorf("home and away teams must not be empty")
	}

	var detail *models.EventDetail
	err := withRetry(ctx, s.maxRetries, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		event := &models.Event{
			HomeTeam:  homeTeam,
			AwayTeam:  awayTeam,
			StartTime: startTime,
			Status:    models.EventStatusUpcoming,
		}
		if err := uow.EventRepository().Create(ctx, event); err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}

		options := make([]*models.BettingOption, 0, len(defaultMarket))
		for _, m := range defaultMarket {
			option := &models.BettingOption{
				EventID:     event.ID,
				OptionType:  "win",
				OptionValue: m.optionValue,
				Odds:        m.odds,
				IsActive:    true,
			}
			if err := uow.BettingOptionRepository().Create(ctx, option); err != nil {
				return fmt.Errorf("failed to create betting option: %w", err)
			}
			options = append(options, option)
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		detail = &models.EventDetail{Event: event, Options: options}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"eventID":  detail.Event.ID,
		"homeTeam": homeTeam,
		"awayTeam": awayTeam,
	}).Info("Event created")

	return detail, nil
}

func (s *catalogService) GetEvent(ctx context.Context, eventID int64) (*models.EventDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: id %d", ErrEventNotFound, eventID)
	}

	options, err := uow.BettingOptionRepository().ListActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list betting options: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.EventDetail{Event: event, Options: options}, nil
}

func (s *catalogService) ListEvents(ctx context.Context, status models.EventStatus, limit int) ([]*models.Event, error) {
	if limit < 1 {
		limit = defaultPageSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	eventsList, err := uow.EventRepository().ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return eventsList, nil
}

func (s *catalogService) UpdateEventStatus(ctx context.Context, eventID int64, status models.EventStatus) error {
	switch status {
	case models.EventStatusUpcoming, models.EventStatusLive, models.EventStatusFinished, models.EventStatusCancelled:
	default:
		return fmt.Errorf("unknown event status %q", status)
	}

	return withRetry(ctx, s.maxRetries, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		event, err := uow.EventRepository().GetByID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("failed to get event: %w", err)
		}
		if event == nil {
			return fmt.Errorf("%w: id %d", ErrEventNotFound, eventID)
		}
		if event.Status == status {
			return uow.Commit()
		}
		if !event.OpenForBetting() {
			return fmt.Errorf("event %d is already %s", eventID, event.Status)
		}

		if err := uow.EventRepository().UpdateStatus(ctx, eventID, status); err != nil {
			return fmt.Errorf("failed to update event status: %w", err)
		}

		// A finished or cancelled event no longer accepts bets; close its
		// markets so placements fail fast on the option check.
		if status == models.EventStatusFinished || status == models.EventStatusCancelled {
			if err := uow.BettingOptionRepository().DeactivateByEvent(ctx, eventID); err != nil {
				return fmt.Errorf("failed to deactivate betting options: %w", err)
			}
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		log.WithFields(log.Fields{
			"eventID": eventID,
			"from":    event.Status,
			"to":      status,
		}).Info("Event status updated")

		return nil
	})
}
