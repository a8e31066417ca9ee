package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"weddingplan/internal/models"
	"weddingplan/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// EnsureTopic creates the mirror topic with the given partitions (idempotent).
// Failures are logged; the publisher still works against an existing topic.
func EnsureTopic(ctx context.Context, brokers []string, topic string, partitions int) {
	if len(brokers) == 0 {
		return
	}
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
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
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", topic, "partitions", partitions)
}

// KafkaPublisher sends mirror commands keyed by record, so every write to
// one record lands on the same partition and is consumed in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn(context.Background(), "Kafka mirror write failed", "error", err, "messages", len(messages))
			}
		},
	}
	logger.Info(context.Background(), "Kafka producer initialized", "topic", topic, "brokers", brokers)
	return &KafkaPublisher{writer: w}
}

// Publish is non-blocking; delivery errors surface through the writer's
// completion callback.
func (p *KafkaPublisher) Publish(ctx context.Context, cmd models.MirrorCommand) error {
	msg, err := Encode(cmd)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Encode builds the Kafka message for cmd.
func Encode(cmd models.MirrorCommand) (kafka.Message, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode mirror command: %w", err)
	}
	return kafka.Message{Key: []byte(cmd.UserID + "/" + cmd.Key()), Value: payload}, nil
}

// Decode is the inverse of Encode.
func Decode(msg kafka.Message) (models.MirrorCommand, error) {
	var cmd models.MirrorCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		return cmd, fmt.Errorf("decode mirror command: %w", err)
	}
	return cmd, nil
}
