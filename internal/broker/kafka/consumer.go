package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r messageReader
	// commit is false without a group: kafka-go refuses commits there.
	commit bool
}

// NewConsumer reads topic from the latest offset. Without a groupID the
// reader keeps no offsets and nothing is committed.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		StartOffset:       kafka.LastOffset,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}
	if groupID != "" {
		cfg.GroupTopics = []string{topic}
	} else {
		cfg.Topic = topic
	}
	return &Consumer{
		r:      kafka.NewReader(cfg),
		commit: groupID != "",
	}
}

func newConsumerWithReader(r messageReader, commit bool) *Consumer {
	return &Consumer{r: r, commit: commit}
}

// InstanceGroup returns a consumer group owned by one instance, so that
// every instance receives every message. An empty base disables groups.
func InstanceGroup(base, instance string) string {
	if base == "" || instance == "" {
		return base
	}
	return base + "-" + instance
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume runs handler for every message until ctx ends or handler fails.
// A message is committed only after handler succeeds.
func (c *Consumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(msg.Key, msg.Value); err != nil {
			return err
		}
		if !c.commit {
			continue
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}
