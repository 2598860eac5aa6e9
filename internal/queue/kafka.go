package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"planner/internal/cache"
	"planner/internal/config"
	"planner/internal/metrics"
	"planner/internal/models"
	"planner/pkg/logger"
)

// EnsureTopic creates the item-events topic with configured partitions (idempotent).
// Call at startup; if it fails (e.g. no broker or topic exists), app still runs.
func EnsureTopic(ctx context.Context) {
	cfg := config.Get()
	if len(cfg.KafkaBrokers) == 0 {
		return
	}
	conn, err := kafka.DialContext(ctx, "tcp", cfg.KafkaBrokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.KafkaTopic,
		NumPartitions:     cfg.KafkaPartitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", cfg.KafkaTopic, "partitions", cfg.KafkaPartitions)
}

var (
	writer *kafka.Writer
	wOnce  sync.Once
)

// Producer returns the global Kafka writer for item events (initialized on
// first use), or nil when no brokers are configured.
func Producer(ctx context.Context) *kafka.Writer {
	wOnce.Do(func() {
		cfg := config.Get()
		if len(cfg.KafkaBrokers) == 0 {
			logger.Info(ctx, "Kafka producer disabled (no brokers)")
			return
		}
		writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			BatchSize:    100,
			BatchTimeout: 0,
			Async:        true,
			RequiredAcks: kafka.RequireOne,
		}
		logger.Info(ctx, "Kafka producer initialized", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	})
	return writer
}

// EncodeEvent builds the message for ev. Keying by user keeps one user's
// events on one partition, in commit order.
func EncodeEvent(ev models.ItemEvent) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: []byte(ev.UserID), Value: payload}, nil
}

// DecodeEvent parses a message payload produced by EncodeEvent.
func DecodeEvent(payload []byte) (models.ItemEvent, error) {
	var ev models.ItemEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("decoding item event: %w", err)
	}
	return ev, nil
}

// MessageWriter is the part of *kafka.Writer the notifier uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// InvalidateDelay is how long after a mutation the second cache delete runs.
// A list read that started before the commit and repopulated the cache with
// stale rows is wiped by then.
const InvalidateDelay = 500 * time.Millisecond

// Invalidator drops a user's cached item list.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// Notifier drops the user's cached item list as soon as a mutation commits and
// publishes the event so the worker can drop it again once in-flight reads
// have settled. Without a writer the second delete runs in process instead.
type Notifier struct {
	writer MessageWriter
	cache  Invalidator
	delay  time.Duration
}

// NewNotifier wires a notifier. Either dependency may be nil.
func NewNotifier(w MessageWriter, c Invalidator) *Notifier {
	return &Notifier{writer: w, cache: c, delay: InvalidateDelay}
}

// DefaultNotifier builds a notifier from the global producer and cache.
func DefaultNotifier(ctx context.Context) *Notifier {
	var (
		w MessageWriter
		c Invalidator
	)
	if p := Producer(ctx); p != nil {
		w = p
	}
	if items := cache.Default(ctx); items != nil {
		c = items
	}
	return NewNotifier(w, c)
}

// Notify implements the service notifier. Failures are logged, never returned:
// the mutation has already committed.
func (n *Notifier) Notify(ctx context.Context, ev models.ItemEvent) {
	if n.cache != nil {
		if err := n.cache.Invalidate(ctx, ev.UserID); err != nil {
			logger.Warn(ctx, "Item cache invalidation failed", "error", err, "user_id", ev.UserID)
		}
	}
	if n.writer == nil {
		metrics.ItemEvent(ev.Action, "skipped")
		n.invalidateLater(ctx, ev.UserID)
		return
	}
	msg, err := EncodeEvent(ev)
	if err != nil {
		metrics.ItemEvent(ev.Action, "failed")
		logger.Error(ctx, "Encoding item event failed", "error", err)
		return
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		metrics.ItemEvent(ev.Action, "failed")
		logger.Error(ctx, "Publishing item event failed", "error", err, "action", ev.Action, "item_id", ev.ItemID)
		return
	}
	metrics.ItemEvent(ev.Action, "published")
}

// invalidateLater schedules the delayed second delete that the worker would
// otherwise run after consuming the event.
func (n *Notifier) invalidateLater(ctx context.Context, userID string) {
	if n.cache == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	time.AfterFunc(n.delay, func() {
		ctx, cancel := context.WithTimeout(bg, 2*time.Second)
		defer cancel()
		if err := n.cache.Invalidate(ctx, userID); err != nil {
			logger.Warn(ctx, "Delayed cache invalidation failed", "error", err, "user_id", userID)
			return
		}
		logger.Debug(ctx, "Item cache invalidated", "user_id", userID, "delayed", true)
	})
}

// Topic returns the item events topic name.
func Topic() string {
	return config.Get().KafkaTopic
}

// Brokers returns Kafka broker addresses.
func Brokers() []string {
	return config.Get().KafkaBrokers
}
