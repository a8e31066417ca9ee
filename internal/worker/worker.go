package worker

import (
	"context"
	"sync/atomic"

	"weddingplan/internal/queue"
	"weddingplan/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const consumerGroup = "weddingplan-mirror-workers"

// Run consumes mirror commands and applies them until ctx is done.
// One consumer per process; scale by running more replicas (consumer group shares partitions).
func Run(ctx context.Context, brokers []string, topic string, applier Applier) {
	if len(brokers) == 0 {
		logger.Info(ctx, "Mirror worker disabled (no Kafka brokers)")
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	var processed int64
	logger.Info(ctx, "Kafka consumer started", "topic", topic)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "Kafka consumer stopped", "processed", atomic.LoadInt64(&processed))
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := handleMessage(ctx, applier, msg); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "key", string(msg.Key))
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

func handleMessage(ctx context.Context, applier Applier, msg kafka.Message) error {
	cmd, err := queue.Decode(msg)
	if err != nil {
		return err
	}
	return applier.Apply(ctx, cmd)
}
