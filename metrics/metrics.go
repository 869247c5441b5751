package metrics

import (
	"context"

	"bookie/events"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the domain counters. They are fed from committed
// events only, so rolled-back work never shows up in the numbers.
type Collector struct {
	accountsCreated prometheus.Counter
	balanceChanges  *prometheus.CounterVec
	betsPlaced      prometheus.Counter
	betsSettled     *prometheus.CounterVec
}

// NewCollector creates and registers the domain counters.
func NewCollector() *Collector {
	c := &Collector{
		accountsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookie_accounts_created_total",
			Help: "Total accounts provisioned",
		}),
		balanceChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookie_balance_changes_total",
			Help: "Committed balance mutations by transaction type",
		}, []string{"type"}),
		betsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookie_bets_placed_total",
			Help: "Total bets placed",
		}),
		betsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookie_bets_settled_total",
			Help: "Total bets settled by outcome",
		}, []string{"outcome"}),
	}
	prometheus.MustRegister(c.accountsCreated, c.balanceChanges, c.betsPlaced, c.betsSettled)
	return c
}

// RegisterSubscribers wires the collector into the event bus.
func (c *Collector) RegisterSubscribers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, e events.Event) {
		c.accountsCreated.Inc()
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		change, ok := e.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		c.balanceChanges.WithLabelValues(string(change.TransactionType)).Inc()
	})
	bus.Subscribe(events.EventTypeBetPlaced, func(ctx context.Context, e events.Event) {
		c.betsPlaced.Inc()
	})
	bus.Subscribe(events.EventTypeBetSettled, func(ctx context.Context, e events.Event) {
		settled, ok := e.(events.BetSettledEvent)
		if !ok {
			return
		}
		c.betsSettled.WithLabelValues(string(settled.Outcome)).Inc()
	})
}
