package utils

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/grcworks/requirement-gathering-backend/config"
)

var (
	kafkaWriter *kafka.Writer
	kafkaTopic  string
)

// InitializeKafka sets up the shared producer. Kafka is optional: when
// KAFKA_BROKERS is empty the notification pipeline delivers in-process.
func InitializeKafka(cfg *config.Config) {
	if cfg.KafkaBrokers == "" {
		log.Println("ℹ️ KAFKA_BROKERS not set, notification events will be delivered in-process")
		return
	}

	kafkaTopic = cfg.KafkaTopic
	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        kafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}

	log.Printf("✅ Kafka producer ready (brokers=%s topic=%s)", cfg.KafkaBrokers, kafkaTopic)
}

// KafkaEnabled reports whether the producer is configured.
func KafkaEnabled() bool {
	return kafkaWriter != nil
}

// PublishMessage writes one event to the notification topic.
func PublishMessage(key, value []byte) error {
	if kafkaWriter == nil {
		return errors.New("kafka not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return kafkaWriter.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

// NewKafkaReader builds a consumer for the notification topic.
func NewKafkaReader(cfg *config.Config, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		Topic:    cfg.KafkaTopic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
