package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
)

// KafkaPublisher writes readings keyed by home id, so one home stays on one partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Publish(ctx context.Context, r domain.Reading) error {
	msg, err := kafkaMessage(r)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

func kafkaMessage(r domain.Reading) (kafka.Message, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal reading: %w", err)
	}
	return kafka.Message{Key: []byte(r.HomeID), Value: b, Time: r.GeneratedAt}, nil
}

// ConsumeKafka reads messages from topic in the given consumer group and passes
// each payload to handle until ctx is cancelled. Handler errors are logged and
// the message is still committed.
func ConsumeKafka(ctx context.Context, brokers []string, topic, groupID string, handle func(topic string, payload []byte) error) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer r.Close()

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("kafka read: %w", err)
		}
		if err := handle(m.Topic, m.Value); err != nil {
			log.Error().Err(err).Str("topic", m.Topic).Int64("offset", m.Offset).Msg("ingest failed")
		}
	}
}
