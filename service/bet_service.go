package service

import (
	"context"
	"fmt"
	"time"

	"bookie/events"
	"bookie/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type betService struct {
	uowFactory UnitOfWorkFactory
	maxRetries uint64
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory, maxRetries uint64) BetService {
	return &betService{
		uowFactory: uowFactory,
		maxRetries: maxRetries,
	}
}

func (s *betService) PlaceBet(ctx context.Context, accountID, bettingOptionID int64, stake decimal.Decimal) (*models.PlacementResult, error) {
	if !validAmount(stake) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStake, stake)
	}

	var result *models.PlacementResult
	err := withRetry(ctx, s.maxRetries, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		option, event, err := uow.BettingOptionRepository().GetWithEvent(ctx, bettingOptionID)
		if err != nil {
			return fmt.Errorf("failed to get betting option: %w", err)
		}
		if option == nil {
			return fmt.Errorf("%w: id %d", ErrOptionNotFound, bettingOptionID)
		}
		if !option.IsActive || !event.OpenForBetting() {
			return fmt.Errorf("%w: option %d", ErrOptionInactive, bettingOptionID)
		}

		// The payout is fixed here from the snapshotted odds; later odds
		// changes never affect this bet.
		potentialPayout := roundCurrency(stake.Mul(option.Odds))

		_, newBalance, err := debitAccount(ctx, uow, accountID, models.TransactionTypeBetDebit,
			stake, fmt.Sprintf("Bet on option %d (%s/%s)", option.ID, option.OptionType, option.OptionValue))
		if err != nil {
			return err
		}

		bet := &models.Bet{
			AccountID:       accountID,
			BettingOptionID: option.ID,
			Stake:           stake,
			Odds:            option.Odds,
			PotentialPayout: potentialPayout,
			Status:          models.BetStatusPending,
		}
		if err := uow.BetRepository().Create(ctx, bet); err != nil {
			return fmt.Errorf("failed to create bet: %w", err)
		}

		uow.EventBus().Publish(events.BetPlacedEvent{
			BetID:           bet.ID,
			AccountID:       accountID,
			BettingOptionID: option.ID,
			Stake:           stake,
			Odds:            option.Odds,
			PotentialPayout: potentialPayout,
		})

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		result = &models.PlacementResult{Bet: bet, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":           result.Bet.ID,
		"accountID":       accountID,
		"stake":           stake,
		"odds":            result.Bet.Odds,
		"potentialPayout": result.Bet.PotentialPayout,
	}).Info("Bet placed")

	return result, nil
}

func (s *betService) SettleBet(ctx context.Context, betID int64, outcome models.BetStatus) (*models.SettlementResult, error) {
	if !outcome.Terminal() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}

	var result *models.SettlementResult
	err := withRetry(ctx, s.maxRetries, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		bet, err := uow.BetRepository().GetForUpdate(ctx, betID)
		if err != nil {
			return fmt.Errorf("failed to get bet: %w", err)
		}
		if bet == nil {
			return fmt.Errorf("%w: id %d", ErrBetNotFound, betID)
		}
		if bet.Status != models.BetStatusPending {
			return fmt.Errorf("%w: bet %d is %s", ErrBetAlreadySettled, betID, bet.Status)
		}

		settledAt := time.Now().UTC()
		settled, err := uow.BetRepository().Settle(ctx, betID, outcome, settledAt)
		if err != nil {
			return fmt.Errorf("failed to settle bet: %w", err)
		}
		if !settled {
			return fmt.Errorf("%w: bet %d", ErrBetAlreadySettled, betID)
		}

		credited := decimal.Zero
		newBalance := decimal.Zero
		switch outcome {
		case models.BetStatusWon:
			credited = bet.PotentialPayout
			_, newBalance, err = creditAccount(ctx, uow, bet.AccountID, models.TransactionTypePayoutCredit,
				credited, fmt.Sprintf("Payout for winning bet %d", betID))
			if err != nil {
				return err
			}
		case models.BetStatusCancelled:
			credited = bet.Stake
			_, newBalance, err = creditAccount(ctx, uow, bet.AccountID, models.TransactionTypePayoutCredit,
				credited, "bet cancellation refund")
			if err != nil {
				return err
			}
		case models.BetStatusLost:
			account, err := uow.AccountRepository().GetByID(ctx, bet.AccountID)
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}
			if account == nil {
				return fmt.Errorf("%w: id %d", ErrAccountNotFound, bet.AccountID)
			}
			newBalance = account.Balance
		}

		bet.Status = outcome
		bet.SettledAt = &settledAt

		uow.EventBus().Publish(events.BetSettledEvent{
			BetID:     betID,
			AccountID: bet.AccountID,
			Outcome:   outcome,
			Credited:  credited,
		})

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		result = &models.SettlementResult{Bet: bet, Credited: credited, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"betID":    betID,
		"outcome":  outcome,
		"credited": result.Credited,
	}).Info("Bet settled")

	return result, nil
}

func (s *betService) GetBet(ctx context.Context, betID int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("%w: id %d", ErrBetNotFound, betID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

func (s *betService) ListBets(ctx context.Context, accountID int64, limit int) ([]*models.Bet, error) {
	if limit < 1 {
		limit = defaultPageSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bets, nil
}
