package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Kafka is a Bus that publishes each (tupleID, value) event as a JSON
// message to a Kafka topic, grounded on the teacher's gateway batch
// producer: a single sharded writer tuned for low-latency delivery, with
// the same TEST MODE fallback when no brokers are configured.
type Kafka struct {
	writer *kafka.Writer
	topic  string
}

// KafkaConfig configures the Kafka-backed Bus.
type KafkaConfig struct {
	Brokers []string
	Topic   string // defaults to "topk.notifications"
}

// NewKafka constructs a Kafka-backed Bus. With no brokers configured, it
// runs in TEST MODE: Publish logs the event instead of sending it, matching
// the teacher's BatchProducer test-mode behavior.
func NewKafka(cfg KafkaConfig) *Kafka {
	topic := cfg.Topic
	if topic == "" {
		topic = "topk.notifications"
	}

	if len(cfg.Brokers) == 0 {
		log.Warn("bus: running in TEST MODE - notifications will be logged, not sent to Kafka")
		return &Kafka{topic: topic}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1000,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		MaxAttempts:  3,
	}

	log.Infof("bus: Kafka publisher initialized for topic %s", topic)

	return &Kafka{writer: writer, topic: topic}
}

type notification struct {
	TupleID int64   `json:"tuple_id"`
	Value   float64 `json:"value"`
}

// Subscribe is a no-op for the Kafka bus: subscription happens out of band,
// by consuming the configured topic.
func (k *Kafka) Subscribe(Subscriber) (unsubscribe func()) {
	return func() {}
}

// Publish writes a single JSON-encoded notification message to the
// configured topic, keyed by the tuple id for consistent partitioning.
func (k *Kafka) Publish(ctx context.Context, tupleID int64, value float64) error {
	if k.writer == nil {
		log.Debugf("TEST MODE: would publish tuple=%d value=%v to topic %s", tupleID, value, k.topic)
		return nil
	}

	data, err := json.Marshal(notification{TupleID: tupleID, Value: value})
	if err != nil {
		return fmt.Errorf("bus: marshal notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", tupleID)),
		Value: data,
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("bus: kafka write: %w", err)
	}
	return nil
}

// Close closes the underlying Kafka writer, if any.
func (k *Kafka) Close() error {
	if k.writer != nil {
		return k.writer.Close()
	}
	return nil
}

var _ Bus = (*Kafka)(nil)
