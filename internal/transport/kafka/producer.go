package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"service-booking/internal/domain"
	"service-booking/internal/logx"
)

var newSyncProducer = sarama.NewSyncProducer

type syncProducer interface {
	SendMessage(msg *sarama.ProducerMessage) (int32, int64, error)
	Close() error
}

// Producer publishes inbox messages to the notifications topic
type Producer struct {
	producer syncProducer
	topic    string
	logger   logx.Logger
}

// NewProducer creates a new Kafka producer. It returns nil when Kafka is not configured.
func NewProducer(logger logx.Logger, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Producer.Retry.Max = 3
	cfg.Net.MaxOpenRequests = 1

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: p, topic: topic, logger: logger}, nil
}

// Publish sends msgs in order, keyed by recipient, and returns the ids that were
// acknowledged. It stops at the first failure.
func (p *Producer) Publish(ctx context.Context, msgs []domain.InboxMessage) ([]string, error) {
	sent := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		b, err := json.Marshal(FromDomain(m))
		if err != nil {
			return sent, fmt.Errorf("encode notification %q: %w", m.ID, err)
		}
		partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(m.UserID),
			Value: sarama.ByteEncoder(b),
		})
		if err != nil {
			return sent, fmt.Errorf("publish notification %q: %w", m.ID, err)
		}
		p.logger.Debug("kafka notification published",
			logx.String("id", m.ID),
			logx.Any("partition", partition),
			logx.Int64("offset", offset),
		)
		sent = append(sent, m.ID)
	}
	return sent, nil
}

// Close closes the underlying producer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
