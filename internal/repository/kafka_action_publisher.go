package repository

import (
	"context"

	"StockPilot/internal/domain/models"
	"StockPilot/internal/domain/repository"
	pkgkafka "StockPilot/pkg/kafka"
)

// KafkaActionPublisher forwards sized actions to the execution topic.
// Messages are keyed by symbol so per-symbol ordering is preserved.
type KafkaActionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaActionPublisher(producer *pkgkafka.Producer, topic string) repository.ActionPublisher {
	return &KafkaActionPublisher{producer: producer, topic: topic}
}

func (p *KafkaActionPublisher) Publish(ctx context.Context, a models.Action) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Symbol), actionPayload(a))
}

func (p *KafkaActionPublisher) PublishBatch(ctx context.Context, actions []models.Action) error {
	if len(actions) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(actions))
	for i, a := range actions {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(a.Symbol),
			Value: actionPayload(a),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaActionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func actionPayload(a models.Action) map[string]interface{} {
	return map[string]interface{}{
		"symbol":      a.Symbol,
		"kind":        a.Kind,
		"qty_delta":   a.QuantityDelta,
		"price":       a.Price,
		"stop_loss":   a.StopLossPrice,
		"take_profit": a.TakeProfitPrice,
		"reason":      a.Reason,
	}
}
