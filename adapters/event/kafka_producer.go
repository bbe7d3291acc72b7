package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/khoahotran/talent-match/internal/config"
	"github.com/khoahotran/talent-match/pkg/logger"
	"github.com/segmentio/kafka-go"
)

const (
	TopicTalentEvents      = "talent.events"
	TopicInvitationEvents  = "invitation.events"
	TopicApplicationEvents = "application.events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	TalentEventsWriter      messageWriter
	InvitationEventsWriter  messageWriter
	ApplicationEventsWriter messageWriter
	log                     logger.Logger
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	log.Info("Initialize Kafka Producers successfully.")

	return &KafkaProducerClient{
		TalentEventsWriter:      newWriter(brokers, TopicTalentEvents),
		InvitationEventsWriter:  newWriter(brokers, TopicInvitationEvents),
		ApplicationEventsWriter: newWriter(brokers, TopicApplicationEvents),
		log:                     log,
	}, nil
}

func publish(ctx context.Context, w messageWriter, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

// PublishTalentEvent keys by profile id so events for one profile stay ordered.
func (c *KafkaProducerClient) PublishTalentEvent(ctx context.Context, payload TalentEventPayload) error {
	return publish(ctx, c.TalentEventsWriter, payload.ProfileID.String(), payload)
}

func (c *KafkaProducerClient) PublishInvitationEvent(ctx context.Context, payload InvitationEventPayload) error {
	return publish(ctx, c.InvitationEventsWriter, payload.InvitationID.String(), payload)
}

func (c *KafkaProducerClient) PublishApplicationEvent(ctx context.Context, payload ApplicationEventPayload) error {
	return publish(ctx, c.ApplicationEventsWriter, payload.ApplicationID.String(), payload)
}

func (c *KafkaProducerClient) Close() {
	for _, w := range []messageWriter{c.TalentEventsWriter, c.InvitationEventsWriter, c.ApplicationEventsWriter} {
		if w != nil {
			w.Close()
		}
	}
	c.log.Info("Closed Kafka Producers")
}
