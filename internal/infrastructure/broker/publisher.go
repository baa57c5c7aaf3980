// Package broker wraps the kafka transport between the outbox publisher and
// the delivery consumer. Messages carry a retry attempt counter as a header
// so redeliveries stay bounded.
package broker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// AttemptHeader carries the delivery attempt count across redeliveries.
const AttemptHeader = "x-delivery-attempt"

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("broker publisher requires at least one broker")
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
	}, nil
}

// Publish writes payload to topic keyed by partitionKey; messages with the
// same key preserve order, which gives per-payment causal ordering.
func (p *Publisher) Publish(ctx context.Context, topic, partitionKey string, payload []byte, attempt int) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: AttemptHeader, Value: []byte(strconv.Itoa(attempt))},
		},
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
