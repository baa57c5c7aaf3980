package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"payflow/internal/application/notification"
	"payflow/internal/domain/outbox"
	"payflow/internal/domain/payment"
	"payflow/internal/infrastructure/broker"
	"payflow/internal/shared/config"
	"payflow/internal/shared/logger"
)

// MessageSource yields broker messages and acknowledges processed ones.
type MessageSource interface {
	Fetch(ctx context.Context) (*broker.Message, error)
	Ack(ctx context.Context, m *broker.Message) error
}

// DeliveryConsumer consumes payment events and notifies merchants. Each
// message runs the delivery policy; transient outcomes are republished with
// an incremented attempt header after an exponential backoff, permanent ones
// go to the dead-letter topic. The message is acknowledged in every case, so
// redelivery is always explicit.
type DeliveryConsumer struct {
	source          MessageSource
	publisher       BrokerPublisher
	deliverUC       *notification.DeliverUseCase
	topic           string
	deadLetterTopic string
	maxAttempts     int
	maxInFlight     int
	logger          logger.Interface
	stopChan        chan struct{}
	stopOnce        sync.Once
	wg              sync.WaitGroup
}

func NewDeliveryConsumer(
	source MessageSource,
	publisher BrokerPublisher,
	deliverUC *notification.DeliverUseCase,
	brokerCfg config.BrokerConfig,
	consumerCfg config.ConsumerConfig,
	logger logger.Interface,
) *DeliveryConsumer {
	maxInFlight := consumerCfg.MaxInFlight
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &DeliveryConsumer{
		source:          source,
		publisher:       publisher,
		deliverUC:       deliverUC,
		topic:           brokerCfg.Topic,
		deadLetterTopic: brokerCfg.DeadLetterTopic,
		maxAttempts:     consumerCfg.MaxAttempts,
		maxInFlight:     maxInFlight,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

// Start starts the fetch loop in a background goroutine.
func (c *DeliveryConsumer) Start(ctx context.Context) {
	c.logger.Infow("starting delivery consumer",
		"topic", c.topic,
		"max_in_flight", c.maxInFlight,
		"max_attempts", c.maxAttempts,
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runLoop(ctx)
	}()
}

// Stop stops the consumer and waits for in-flight deliveries to drain.
// Safe to call multiple times.
func (c *DeliveryConsumer) Stop() {
	c.stopOnce.Do(func() {
		c.logger.Infow("stopping delivery consumer")
		close(c.stopChan)
		c.wg.Wait()
		c.logger.Infow("delivery consumer stopped")
	})
}

func (c *DeliveryConsumer) runLoop(ctx context.Context) {
	// Semaphore bounding concurrent deliveries per instance.
	slots := make(chan struct{}, c.maxInFlight)
	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	for {
		select {
		case <-ctx.Done():
			c.logger.Infow("delivery consumer stopped due to context cancellation")
			return
		case <-c.stopChan:
			return
		default:
		}

		msg, err := c.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Errorw("failed to fetch broker message", "error", err)
			time.Sleep(time.Second)
			continue
		}

		slots <- struct{}{}
		inFlight.Add(1)
		go func(msg *broker.Message) {
			defer inFlight.Done()
			defer func() { <-slots }()
			c.handleMessage(ctx, msg)
		}(msg)
	}
}

func (c *DeliveryConsumer) handleMessage(ctx context.Context, msg *broker.Message) {
	var dto payment.DTO
	if err := json.Unmarshal(msg.Payload, &dto); err != nil {
		c.logger.Errorw("discarding malformed payment event",
			"error", err,
			"key", msg.Key,
		)
		c.deadLetter(ctx, msg)
		c.ack(ctx, msg)
		return
	}

	outcome, err := c.deliverUC.Execute(ctx, dto)
	if err != nil {
		c.logger.Errorw("delivery attempt errored",
			"error", err,
			"payment_id", dto.PaymentID,
			"attempt", msg.Attempt,
		)
	}

	switch outcome {
	case notification.OutcomeDelivered, notification.OutcomeDuplicate:
		c.logger.Infow("notification settled",
			"payment_id", dto.PaymentID,
			"merchant_id", dto.MerchantID,
			"outcome", outcome.String(),
			"attempt", msg.Attempt,
		)
		c.ack(ctx, msg)

	case notification.OutcomeRejected:
		c.logger.Warnw("merchant rejected notification, dead-lettering",
			"payment_id", dto.PaymentID,
			"merchant_id", dto.MerchantID,
		)
		c.deadLetter(ctx, msg)
		c.ack(ctx, msg)

	default:
		c.redeliver(ctx, msg, dto, outcome)
	}
}

// redeliver republishes the message with an incremented attempt counter after
// an exponential backoff, or dead-letters it once the attempt budget is
// spent. The original offset is committed either way.
func (c *DeliveryConsumer) redeliver(ctx context.Context, msg *broker.Message, dto payment.DTO, outcome notification.Outcome) {
	nextAttempt := msg.Attempt + 1
	if nextAttempt >= c.maxAttempts {
		c.logger.Errorw("notification retries exhausted, dead-lettering",
			"payment_id", dto.PaymentID,
			"merchant_id", dto.MerchantID,
			"attempts", nextAttempt,
			"outcome", outcome.String(),
		)
		c.deliverUC.MarkExhausted(ctx, dto.PaymentID, nextAttempt)
		c.deadLetter(ctx, msg)
		c.ack(ctx, msg)
		return
	}

	backoff := outbox.Backoff(nextAttempt)
	c.logger.Infow("notification redelivery scheduled",
		"payment_id", dto.PaymentID,
		"merchant_id", dto.MerchantID,
		"attempt", nextAttempt,
		"backoff", backoff,
		"outcome", outcome.String(),
	)

	select {
	case <-ctx.Done():
		// Shutdown before the backoff elapsed. Group offsets are a single
		// per-partition watermark, so a concurrent handler may already have
		// committed past this offset and the group would never redeliver it.
		// Flush the redelivery now on a detached context instead.
		c.flushRedelivery(msg, dto, nextAttempt)
		return
	case <-time.After(backoff):
	}

	if err := c.publisher.Publish(ctx, c.topic, msg.Key, msg.Payload, nextAttempt); err != nil {
		c.logger.Errorw("failed to republish notification",
			"error", err,
			"payment_id", dto.PaymentID,
		)
		// Leave the offset uncommitted so the group redelivers.
		return
	}
	c.ack(ctx, msg)
}

// flushRedelivery republishes a message whose backoff was cut short by
// shutdown, then commits its offset, on a context that outlives the
// consumer's own.
func (c *DeliveryConsumer) flushRedelivery(msg *broker.Message, dto payment.DTO, nextAttempt int) {
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.publisher.Publish(flushCtx, c.topic, msg.Key, msg.Payload, nextAttempt); err != nil {
		c.logger.Errorw("failed to flush redelivery during shutdown",
			"error", err,
			"payment_id", dto.PaymentID,
			"attempt", nextAttempt,
		)
		return
	}
	c.ack(flushCtx, msg)
}

func (c *DeliveryConsumer) deadLetter(ctx context.Context, msg *broker.Message) {
	if err := c.publisher.Publish(ctx, c.deadLetterTopic, msg.Key, msg.Payload, msg.Attempt); err != nil {
		c.logger.Errorw("failed to publish to dead-letter topic",
			"error", err,
			"key", msg.Key,
		)
	}
}

func (c *DeliveryConsumer) ack(ctx context.Context, msg *broker.Message) {
	if err := c.source.Ack(ctx, msg); err != nil {
		c.logger.Errorw("failed to commit message offset",
			"error", err,
			"key", msg.Key,
		)
	}
}
