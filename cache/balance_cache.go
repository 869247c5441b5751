package cache

import (
	"context"
	"fmt"
	"time"

	"bookie/events"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const balanceTTL = 5 * time.Minute

// ConnectRedis opens and pings a redis client.
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// BalanceCache is a read-through cache for account balances. It is only
// ever written from committed balance changes, so a hit is never fresher
// than the ledger. A miss or a redis failure falls back to storage.
type BalanceCache struct {
	client *redis.Client
}

func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{client: client}
}

func balanceKey(accountID int64) string {
	return fmt.Sprintf("balance:%d", accountID)
}

func (c *BalanceCache) Get(ctx context.Context, accountID int64) (decimal.Decimal, bool) {
	raw, err := c.client.Get(ctx, balanceKey(accountID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Warn("Balance cache read failed")
		}
		return decimal.Zero, false
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		log.WithFields(log.Fields{
			"accountID": accountID,
			"value":     raw,
		}).Warn("Discarding unparseable cached balance")
		return decimal.Zero, false
	}

	return balance, true
}

func (c *BalanceCache) Set(ctx context.Context, accountID int64, balance decimal.Decimal) {
	if err := c.client.Set(ctx, balanceKey(accountID), balance.String(), balanceTTL).Err(); err != nil {
		log.WithError(err).Warn("Balance cache write failed")
	}
}

// RegisterSubscribers keeps the cache in step with committed balance
// changes.
func (c *BalanceCache) RegisterSubscribers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		change, ok := e.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		c.Set(ctx, change.AccountID, change.NewBalance)
	})
}
