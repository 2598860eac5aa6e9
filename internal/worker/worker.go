package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"planner/internal/cache"
	"planner/internal/config"
	"planner/internal/queue"
	"planner/pkg/logger"
)

// Worker applies item events to the cache.
type Worker struct {
	cache queue.Invalidator
	delay time.Duration
}

// New builds a worker that invalidates through c, waiting delay after each
// event's commit time.
func New(c queue.Invalidator, delay time.Duration) *Worker {
	return &Worker{cache: c, delay: delay}
}

// Run starts the Kafka consumer: reads item events, invalidates the owner's cache.
// One consumer per process; scale by running more replicas (consumer group shares partitions).
func Run(ctx context.Context) {
	cfg := config.Get()
	brokers := queue.Brokers()
	if len(brokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	items := cache.Default(ctx)
	if items == nil {
		logger.Info(ctx, "Worker disabled (no Redis cache)")
		return
	}
	w := New(items, queue.InvalidateDelay)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    queue.Topic(),
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	var processed int64
	logger.Info(ctx, "Kafka consumer started", "topic", queue.Topic(), "group", cfg.KafkaGroupID)
	defer func() {
		logger.Info(ctx, "Kafka consumer stopped", "processed", atomic.LoadInt64(&processed))
	}()
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := w.handleMessage(ctx, msg.Value); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
		atomic.AddInt64(&processed, 1)
	}
}

func (w *Worker) handleMessage(ctx context.Context, payload []byte) error {
	ev, err := queue.DecodeEvent(payload)
	if err != nil {
		return err
	}
	if ev.UserID == "" {
		return errors.New("item event without user id")
	}
	if wait := time.Until(ev.OccurredAt.Add(w.delay)); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	if err := w.cache.Invalidate(ctx, ev.UserID); err != nil {
		return err
	}
	logger.Debug(ctx, "Item cache invalidated", "user_id", ev.UserID, "action", ev.Action, "item_id", ev.ItemID)
	return nil
}
