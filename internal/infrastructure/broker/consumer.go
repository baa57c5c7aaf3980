package broker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is a consumed broker message. Attempt counts prior delivery
// attempts, parsed from the attempt header (0 for a first delivery).
type Message struct {
	Topic   string
	Key     string
	Payload []byte
	Attempt int

	raw kafka.Message
}

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string, maxInFlight int) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("broker consumer requires at least one broker")
	}
	if groupID == "" {
		return nil, fmt.Errorf("broker consumer requires group id")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		QueueCapacity:  maxInFlight,
		CommitInterval: 0, // explicit commits only
	})
	return &Consumer{reader: reader}, nil
}

// Fetch blocks until a message is available or ctx is cancelled. The message
// is not committed until Ack is called.
func (c *Consumer) Fetch(ctx context.Context) (*Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	attempt := 0
	for _, h := range msg.Headers {
		if h.Key == AttemptHeader {
			if n, err := strconv.Atoi(string(h.Value)); err == nil {
				attempt = n
			}
		}
	}

	return &Message{
		Topic:   msg.Topic,
		Key:     string(msg.Key),
		Payload: msg.Value,
		Attempt: attempt,
		raw:     msg,
	}, nil
}

// Ack commits the message offset; the broker will not redeliver it.
func (c *Consumer) Ack(ctx context.Context, m *Message) error {
	return c.reader.CommitMessages(ctx, m.raw)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
