package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"socio-service/internal/domain"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	log "github.com/sirupsen/logrus"
)

// GatePublisher streams access verdicts to Kafka for downstream consumers
// (turnstile dashboards, fraud analysis). The Postgres audit log remains the
// durable record; this stream carries no additional truth.
type GatePublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewGatePublisher(bootstrapServers, topic string) (*GatePublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": bootstrapServers})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Gate event Kafka producer created successfully")

	return &GatePublisher{producer: p, topic: topic}, nil
}

func (p *GatePublisher) Publish(ctx context.Context, event domain.GateEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal gate event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	defer close(deliveryChan)

	if err := p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.MemberID),
		Value:          payload,
		Opaque:         deliveryChan,
	}, nil); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected event type: %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", msg.TopicPartition.Error)
		}
		return nil
	case <-time.After(10 * time.Second):
		return fmt.Errorf("delivery timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *GatePublisher) Close() {
	log.Info("Closing gate event Kafka producer...")
	p.producer.Flush(15 * 1000)
	p.producer.Close()
}
