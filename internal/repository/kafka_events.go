package repository

import (
	"context"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/domain/repository"
)

type eventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaModelPublisher announces trained models on a Kafka topic, keyed by coin.
type KafkaModelPublisher struct {
	producer eventProducer
	topic    string
}

// NewKafkaModelPublisher creates the model event publisher.
func NewKafkaModelPublisher(producer eventProducer, topic string) repository.ModelPublisher {
	return &KafkaModelPublisher{producer: producer, topic: topic}
}

func (p *KafkaModelPublisher) PublishModel(ctx context.Context, m *models.Model) error {
	return p.producer.Publish(ctx, p.topic, []byte(m.Coin), models.ModelEvent{
		Type:  models.EventModelTrained,
		Model: *m,
	})
}
