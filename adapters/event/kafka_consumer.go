package event

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TalentEventHandler processes one decoded talent event. Failed events are
// still committed; profiles left without an embedding are picked up by the
// backfill job.
type TalentEventHandler func(ctx context.Context, payload TalentEventPayload) error

type TalentConsumer struct {
	reader messageReader
	log    logger.Logger
}

func NewTalentConsumer(cfg config.Config, log logger.Logger) *TalentConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicTalentEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &TalentConsumer{reader: reader, log: log}
}

// Run blocks until ctx is cancelled.
func (c *TalentConsumer) Run(ctx context.Context, handle TalentEventHandler) error {
	c.log.Info("Worker listening", zap.String("topic", TopicTalentEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			c.log.Error("Failed to read message from Kafka", err)
			continue
		}

		var payload TalentEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			c.log.Warn("Failed to unmarshal event, skipping", zap.Error(err), zap.ByteString("key", msg.Key))
			c.commit(ctx, msg)
			continue
		}

		c.log.Info("Processing event", zap.String("event_type", payload.EventType), zap.String("profile_id", payload.ProfileID.String()))

		if err := handle(ctx, payload); err != nil {
			c.log.Error("Failed to process event", err, zap.String("profile_id", payload.ProfileID.String()))
		}
		c.commit(ctx, msg)
	}
}

func (c *TalentConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.log.Error("Failed to commit message", err)
	}
}

func (c *TalentConsumer) Close() error {
	return c.reader.Close()
}
