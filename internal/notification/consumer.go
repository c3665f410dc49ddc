package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/grcworks/requirement-gathering-backend/config"
	"github.com/grcworks/requirement-gathering-backend/utils"
)

// StartKafkaConsumer reads notification events off the topic and delivers
// them. Runs until ctx is cancelled; a no-op when Kafka is not configured.
func StartKafkaConsumer(ctx context.Context, cfg *config.Config, svc *Service) {
	if cfg.KafkaBrokers == "" {
		return
	}

	reader := utils.NewKafkaReader(cfg, "notification-delivery")
	log.Printf("✅ Notification consumer started (topic=%s)", cfg.KafkaTopic)

	go func() {
		defer reader.Close()
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("⚠️ Notification consumer read error: %v", err)
				continue
			}

			var event Event
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("⚠️ Notification consumer: bad event payload: %v", err)
				continue
			}
			svc.Deliver(event)
		}
	}()
}
