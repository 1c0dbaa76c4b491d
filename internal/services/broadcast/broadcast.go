package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/CourierDesk/internal/broker/messages"
	"github.com/BearBump/CourierDesk/internal/events"
	"github.com/BearBump/CourierDesk/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Consumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

// Broadcaster fans a confirmed shipment change out to this process's bus and,
// through Kafka, to every other console instance.
type Broadcaster struct {
	bus      *events.Bus
	producer Producer
	topic    string
	origin   string

	publishAttempts int
	retryStep       time.Duration

	wg        sync.WaitGroup
	published atomic.Int64
	received  atomic.Int64
	failed    atomic.Int64
}

func New(bus *events.Bus, producer Producer, topic string) *Broadcaster {
	return &Broadcaster{
		bus:             bus,
		producer:        producer,
		topic:           topic,
		origin:          uuid.NewString(),
		publishAttempts: 10,
		retryStep:       150 * time.Millisecond,
	}
}

func (b *Broadcaster) WithRetry(attempts int, step time.Duration) *Broadcaster {
	if attempts > 0 {
		b.publishAttempts = attempts
	}
	if step > 0 {
		b.retryStep = step
	}
	return b
}

func (b *Broadcaster) Origin() string { return b.origin }

// ShipmentUpdated signals local subscribers at once and publishes to Kafka in
// the background.
func (b *Broadcaster) ShipmentUpdated(ctx context.Context, shipmentID string, status models.Status, at time.Time) {
	b.bus.Publish(events.Event{Topic: events.ShipmentUpdated, ShipmentID: shipmentID, Status: string(status)})
	if b.producer == nil {
		return
	}

	msg := messages.ShipmentUpdated{
		ShipmentID: shipmentID,
		Status:     string(status),
		UpdatedAt:  at,
		Origin:     b.origin,
	}
	val, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal shipment updated", "shipment_id", shipmentID, "error", err.Error())
		return
	}

	pubCtx := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.publish(pubCtx, []byte(shipmentID), val); err != nil {
			b.failed.Add(1)
			slog.Error("publish shipment updated", "shipment_id", shipmentID, "error", err.Error())
			return
		}
		b.published.Add(1)
	}()
}

// Kafka может быть не готова сразу после старта docker compose, поэтому
// небольшой retry.
func (b *Broadcaster) publish(ctx context.Context, key, val []byte) error {
	var pubErr error
	for i := 0; i < b.publishAttempts; i++ {
		if pubErr = b.producer.Publish(ctx, b.topic, key, val); pubErr == nil {
			return nil
		}
		time.Sleep(time.Duration(i+1) * b.retryStep)
	}
	return pubErr
}

// HandleMessage republishes a remote change on the local bus. Messages from
// this instance and undecodable messages are skipped.
func (b *Broadcaster) HandleMessage(key, value []byte) error {
	var msg messages.ShipmentUpdated
	if err := json.Unmarshal(value, &msg); err != nil {
		slog.Warn("skip bad shipment updated message", "key", string(key), "error", err.Error())
		return nil
	}
	if msg.Origin == b.origin {
		return nil
	}
	b.received.Add(1)
	b.bus.Publish(events.Event{Topic: events.ShipmentUpdated, ShipmentID: msg.ShipmentID, Status: msg.Status})
	return nil
}

// Run consumes remote changes until ctx ends.
func (b *Broadcaster) Run(ctx context.Context, c Consumer) error {
	slog.Info("shipment broadcast consumer started", "topic", b.topic, "origin", b.origin)
	err := c.Consume(ctx, b.HandleMessage)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.Wrap(err, "consume shipment updates")
}

// Wait blocks until background publishes finish.
func (b *Broadcaster) Wait() {
	b.wg.Wait()
}

type Stats struct {
	Origin    string `json:"origin"`
	Published int64  `json:"published"`
	Received  int64  `json:"received"`
	Failed    int64  `json:"failed"`
}

func (b *Broadcaster) Stats() Stats {
	return Stats{
		Origin:    b.origin,
		Published: b.published.Load(),
		Received:  b.received.Load(),
		Failed:    b.failed.Load(),
	}
}
