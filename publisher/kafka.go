package publisher

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"bookie/events"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// envelope is the wire format for published domain events.
type envelope struct {
	Type       events.EventType `json:"type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    any              `json:"payload"`
}

// KafkaPublisher forwards committed domain events to a Kafka topic.
// Messages are keyed by account id so a consumer sees each account's
// events in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           10 * time.Second,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) publish(ctx context.Context, e events.Event, accountID int64) {
	value, err := json.Marshal(envelope{
		Type:       e.Type(),
		OccurredAt: time.Now().UTC(),
		Payload:    e,
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(accountID, 10)),
		Value: value,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.WithFields(log.Fields{
			"eventType": e.Type(),
			"error":     err,
		}).Error("Failed to publish event")
		return
	}

	log.WithField("eventType", e.Type()).Debug("Published event")
}

// RegisterSubscribers wires the publisher into the event bus. Only
// committed events reach the bus, so everything published here is
// durable in the ledger.
func (p *KafkaPublisher) RegisterSubscribers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.AccountCreatedEvent)
		if !ok {
			return
		}
		p.publish(ctx, e, ev.AccountID)
	})
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.BalanceChangeEvent)
		if !ok {
			return
		}
		p.publish(ctx, e, ev.AccountID)
	})
	bus.Subscribe(events.EventTypeBetPlaced, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.BetPlacedEvent)
		if !ok {
			return
		}
		p.publish(ctx, e, ev.AccountID)
	})
	bus.Subscribe(events.EventTypeBetSettled, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.BetSettledEvent)
		if !ok {
			return
		}
		p.publish(ctx, e, ev.AccountID)
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
