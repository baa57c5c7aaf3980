// Package worker hosts the long-running background loops: the outbox
// publisher that drains pending broker events, and the delivery consumer
// that notifies merchants of resolved payments.
package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"payflow/internal/domain/outbox"
	"payflow/internal/shared/config"
	"payflow/internal/shared/logger"
)

// BrokerPublisher publishes a payload to a topic, partitioned by key.
type BrokerPublisher interface {
	Publish(ctx context.Context, topic, partitionKey string, payload []byte, attempt int) error
}

// OutboxPublisher polls the outbox store for pending BrokerOutbox rows and
// publishes their payloads to the payment events topic. Claimed rows are
// marked Processing so concurrent publisher instances never publish the
// same row twice; publish failures are rescheduled with exponential
// backoff until the retry budget runs out.
type OutboxPublisher struct {
	outboxRepo outbox.Repository
	publisher  BrokerPublisher
	topic      string
	interval   time.Duration
	batchSize  int
	maxRetries int
	logger     logger.Interface
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

func NewOutboxPublisher(
	outboxRepo outbox.Repository,
	publisher BrokerPublisher,
	topic string,
	cfg config.PublisherConfig,
	logger logger.Interface,
) *OutboxPublisher {
	return &OutboxPublisher{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		topic:      topic,
		interval:   time.Duration(cfg.PollIntervalSeconds) * time.Second,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start starts the poll loop in a background goroutine.
func (p *OutboxPublisher) Start(ctx context.Context) {
	p.logger.Infow("starting outbox publisher",
		"topic", p.topic,
		"interval", p.interval,
		"batch_size", p.batchSize,
	)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runLoop(ctx)
	}()
}

// Stop stops the publisher and waits for the in-flight batch to finish.
// Safe to call multiple times.
func (p *OutboxPublisher) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Infow("stopping outbox publisher")
		close(p.stopChan)
		p.wg.Wait()
		p.logger.Infow("outbox publisher stopped")
	})
}

func (p *OutboxPublisher) runLoop(ctx context.Context) {
	// Drain whatever is already pending before the first tick.
	p.processBatch(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Infow("outbox publisher stopped due to context cancellation")
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.processBatch(ctx)
		}
	}
}

func (p *OutboxPublisher) processBatch(ctx context.Context) {
	startTime := time.Now()

	entries, err := p.outboxRepo.ClaimBatch(ctx, outbox.EventBrokerOutbox, p.batchSize)
	if err != nil {
		p.logger.Errorw("failed to claim outbox batch", "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	published := 0
	for _, entry := range entries {
		if p.publishEntry(ctx, entry) {
			published++
		}
	}

	p.logger.Infow("outbox batch processed",
		"claimed", len(entries),
		"published", published,
		"duration", time.Since(startTime),
	)
}

// publishEntry publishes one claimed row and persists the result. The
// partition key is the payment id, so all events of one payment land on the
// same partition and keep their order.
func (p *OutboxPublisher) publishEntry(ctx context.Context, entry *outbox.Entry) bool {
	key := strconv.FormatUint(entry.PaymentID(), 10)

	err := p.publisher.Publish(ctx, p.topic, key, []byte(entry.Payload()), 0)
	if err == nil {
		entry.MarkPublished()
		if updateErr := p.outboxRepo.Update(ctx, entry); updateErr != nil {
			p.logger.Errorw("failed to mark outbox entry published",
				"error", updateErr,
				"entry_id", entry.ID(),
			)
		}
		return true
	}

	if entry.ScheduleRetry(p.maxRetries) {
		p.logger.Errorw("outbox entry failed permanently",
			"error", err,
			"entry_id", entry.ID(),
			"payment_id", entry.PaymentID(),
			"retry_count", entry.RetryCount(),
		)
	} else {
		p.logger.Warnw("outbox publish failed, retry scheduled",
			"error", err,
			"entry_id", entry.ID(),
			"payment_id", entry.PaymentID(),
			"retry_count", entry.RetryCount(),
			"next_retry_at", entry.NextRetryAt().Format(time.RFC3339),
		)
	}

	if updateErr := p.outboxRepo.Update(ctx, entry); updateErr != nil {
		p.logger.Errorw("failed to persist outbox retry state",
			"error", updateErr,
			"entry_id", entry.ID(),
		)
	}
	return false
}
