package service

import (
	"context"
	"fmt"

	"bookie/events"
	"bookie/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type accountService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance decimal.Decimal
	maxRetries      uint64
}

// NewAccountService creates a new account service. startingBalance is
// the welcome bonus credited to every new account; zero disables it.
func NewAccountService(uowFactory UnitOfWorkFactory, startingBalance decimal.Decimal, maxRetries uint64) AccountService {
	return &accountService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
		maxRetries:      maxRetries,
	}
}

func (s *accountService) CreateAccount(ctx context.Context, externalID string) (*models.Account, error) {
	if externalID == "" {
		return nil, fmt.Errorf("external id must not be empty")
	}

	var account *models.Account
	err := withRetry(ctx, s.maxRetries, func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback()

		var err error
		// The account is born with a zero balance; the welcome bonus
		// arrives as its first ledger entry, so the balance always
		// equals the sum of the account's transactions.
		account, err = uow.AccountRepository().Create(ctx, externalID, decimal.Zero)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		if s.startingBalance.IsPositive() {
			_, newBalance, err := creditAccount(ctx, uow, account.ID, models.TransactionTypeDeposit, s.startingBalance, "Welcome bonus")
			if err != nil {
				return err
			}
			account.Balance = newBalance
		}

		uow.EventBus().Publish(events.AccountCreatedEvent{
			AccountID:      account.ID,
			ExternalID:     externalID,
			InitialBalance: account.Balance,
		})

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID":  account.ID,
		"externalID": externalID,
	}).Info("Account created")

	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, externalID string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: external id %s", ErrAccountNotFound, externalID)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}
