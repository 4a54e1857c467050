// Package kafka publishes the engine's action stream to the external
// execution connector.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
)

// Message is one keyed payload. Value may be raw bytes, a string, or any
// JSON-marshalable value.
type Message struct {
	Key   []byte
	Value interface{}
}

// Producer writes messages to the action topic. Messages are balanced by
// key, so every action for a symbol lands in the same partition and the
// executor sees them in publish order.
type Producer struct {
	writer *kafka.Writer
	comp   string
}

// NewProducer builds a producer. Defaults favor delivery over latency:
// all-replica acks, synchronous writes, gzip.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: -1,
		Compression:  "gzip",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1048576,
		BatchTimeout: 1 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{}, // per-key ordering is load-bearing, not tunable
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  compressionCodec(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		BatchSize:    cfg.BatchSize,
		BatchBytes:   int64(cfg.BatchBytes),
		BatchTimeout: cfg.BatchTimeout,
		Async:        cfg.Async,
	}

	registerProducerMetrics()
	return &Producer{writer: writer, comp: cfg.Compression}, nil
}

// Publish sends one message to topic.
func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return p.PublishBatch(ctx, topic, []Message{{Key: key, Value: value}})
}

// PublishBatch sends messages to topic in one writer call. Encoding any
// message fails the whole batch before anything is written.
func (p *Producer) PublishBatch(ctx context.Context, topic string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	start := time.Now()
	msgs := make([]kafka.Message, 0, len(messages))
	var totalBytes int64
	for _, m := range messages {
		v, err := encodePayload(m.Value)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   m.Key,
			Value: v,
			Time:  time.Now(),
		})
		totalBytes += int64(len(v))
	}

	err := p.writer.WriteMessages(ctx, msgs...)
	observePublish(topic, p.comp, totalBytes, len(messages), time.Since(start), err)
	return err
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func encodePayload(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
		return b, nil
	}
}

func compressionCodec(s string) kafka.Compression {
	switch s {
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Gzip
	}
}

var (
	publishTotal   *prometheus.CounterVec
	publishErrors  *prometheus.CounterVec
	publishBytes   *prometheus.CounterVec
	publishSeconds *prometheus.HistogramVec
	metricsOnce    sync.Once
)

func registerProducerMetrics() {
	metricsOnce.Do(func() {
		publishTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_kafka_producer_messages_total",
				Help: "Total messages published to Kafka",
			},
			[]string{"topic", "compression", "result"},
		)
		publishErrors = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_kafka_producer_errors_total",
				Help: "Total producer errors",
			},
			[]string{"topic"},
		)
		publishBytes = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpilot_kafka_producer_bytes_total",
				Help: "Total payload bytes published",
			},
			[]string{"topic", "compression"},
		)
		publishSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpilot_kafka_producer_publish_seconds",
				Help:    "Publish latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"topic"},
		)
	})
}

func observePublish(topic, comp string, bytes int64, count int, dur time.Duration, err error) {
	if publishTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		publishErrors.WithLabelValues(topic).Inc()
	}
	publishTotal.WithLabelValues(topic, comp, result).Add(float64(count))
	publishBytes.WithLabelValues(topic, comp).Add(float64(bytes))
	publishSeconds.WithLabelValues(topic).Observe(dur.Seconds())
}
