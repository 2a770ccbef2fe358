package audit

import (
	"context"
	"encoding/json"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

const DefaultKafkaTopic = "smshook.audit"

type kafkaSink struct {
	w *kafka.Writer
}

// NewKafka publishes records as JSON values keyed by request id. Without
// brokers it degrades to Noop.
func NewKafka(brokers []string, topic string) Sink {
	if len(brokers) == 0 {
		return NewNoop()
	}
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	// writer is safe for concurrent use
	w := &kafka.Writer{Addr: kafka.TCP(brokers...), Topic: topic, RequiredAcks: kafka.RequireOne, Balancer: &kafka.LeastBytes{}, BatchTimeout: 50 * time.Millisecond}
	return &kafkaSink{w: w}
}

func (s *kafkaSink) Emit(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return s.w.WriteMessages(ctx, kafka.Message{Key: []byte(rec.RequestID), Value: b})
}

func (s *kafkaSink) Close() error { return s.w.Close() }
