package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"splitship/internal/core/domain/model/job"
	"splitship/internal/core/ports"
)

const (
	headerEventID    = "X-Event-ID"
	headerShopDomain = "X-Shop-Domain"
	headerTopic      = "X-Topic"
)

// MessageReader is the slice of kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer pulls webhook events off Kafka and feeds them through the
// dispatcher. Every fetched message is committed exactly once: successes and
// skips are done, failures are parked in the durable retry queue first.
type Consumer struct {
	reader     MessageReader
	dispatcher *Dispatcher
	dedup      ports.DedupStore
	jobQueue   ports.JobQueueRepository
	workers    int
	logger     *slog.Logger
}

// NewConsumer creates the queue consumer with the given worker count.
func NewConsumer(
	reader MessageReader,
	dispatcher *Dispatcher,
	dedup ports.DedupStore,
	jobQueue ports.JobQueueRepository,
	workers int,
	logger *slog.Logger,
) (*Consumer, error) {
	if reader == nil {
		return nil, errors.New("reader must not be nil")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher must not be nil")
	}
	if workers <= 0 {
		workers = 5
	}

	return &Consumer{
		reader:     reader,
		dispatcher: dispatcher,
		dedup:      dedup,
		jobQueue:   jobQueue,
		workers:    workers,
		logger:     logger.With("component", "queue_consumer"),
	}, nil
}

// Run fetches and processes messages until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.workers; i++ {
		group.Go(func() error {
			return c.work(ctx)
		})
	}
	return group.Wait()
}

func (c *Consumer) work(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	eventID, shopDomain, topic := messageMeta(msg)

	if c.dedup != nil {
		seen, err := c.dedup.Seen(ctx, eventID)
		if err != nil {
			c.logger.WarnContext(ctx, "Dedup check failed, processing anyway",
				"event_id", eventID, "error", err)
		} else if seen {
			c.logger.DebugContext(ctx, "Dropping duplicate delivery", "event_id", eventID)
			return
		}
	}

	// The dedup mark goes in only after the outcome is durable: handled,
	// skipped, or parked in the retry queue. A crash before the mark means
	// the event is redelivered and reprocessed, which the per-order
	// checkpoint absorbs; the reverse order would lose the event for good.
	err := c.dispatcher.Dispatch(ctx, shopDomain, topic, eventID, msg.Value)
	switch {
	case err == nil:
		c.markProcessed(ctx, eventID)
	case IsSkip(err):
		c.logger.InfoContext(ctx, "Event skipped",
			"event_id", eventID, "topic", topic, "reason", err)
		c.markProcessed(ctx, eventID)
	default:
		c.logger.ErrorContext(ctx, "Event processing failed, queueing retry",
			"event_id", eventID, "topic", topic, "error", err)
		if c.enqueueRetry(ctx, eventID, shopDomain, topic, msg.Value, err) {
			c.markProcessed(ctx, eventID)
		}
	}
}

// enqueueRetry parks the failed event in the durable retry queue and reports
// whether the row was persisted.
func (c *Consumer) enqueueRetry(ctx context.Context, eventID, shopDomain, topic string, payload []byte, cause error) bool {
	retryJob, err := job.NewRetryJob(eventID, shopDomain, topic, payload, cause.Error())
	if err != nil {
		c.logger.ErrorContext(ctx, "Cannot build retry job, event lost",
			"event_id", eventID, "error", err)
		return false
	}
	if err := c.jobQueue.Enqueue(ctx, retryJob); err != nil {
		c.logger.ErrorContext(ctx, "Cannot persist retry job, event lost",
			"event_id", eventID, "error", err)
		return false
	}
	return true
}

func (c *Consumer) markProcessed(ctx context.Context, eventID string) {
	if c.dedup == nil {
		return
	}
	if err := c.dedup.MarkProcessed(ctx, eventID); err != nil {
		c.logger.WarnContext(ctx, "Cannot record dedup mark",
			"event_id", eventID, "error", err)
	}
}

// messageMeta extracts the event envelope from message headers, falling
// back to partition/offset and the Kafka topic when headers are absent.
func messageMeta(msg kafka.Message) (eventID, shopDomain, topic string) {
	for _, h := range msg.Headers {
		switch h.Key {
		case headerEventID:
			eventID = string(h.Value)
		case headerShopDomain:
			shopDomain = string(h.Value)
		case headerTopic:
			topic = string(h.Value)
		}
	}
	if eventID == "" {
		eventID = fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	}
	if topic == "" {
		topic = msg.Topic
	}
	return eventID, shopDomain, topic
}
