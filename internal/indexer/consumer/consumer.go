// Package consumer reads index-complete events from Kafka and reloads the
// announced corpus generation from the shared artifact store.
package consumer

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
)

// Reloader is the part of indexer.Service the consumer drives.
type Reloader interface {
	Reload(ctx context.Context, generationID string) error
}

// ReloadConsumer wraps a Kafka consumer subscribed to index-complete events.
type ReloadConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates a ReloadConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *ReloadConsumer {
	return &ReloadConsumer{
		consumer: kafkaConsumer,
		logger:   logger.Component("reload-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (rc *ReloadConsumer) Start(ctx context.Context) error {
	rc.logger.Info("reload consumer starting")
	return rc.consumer.Start(ctx)
}

// HandleIndexComplete returns a MessageHandler that reloads each announced
// generation. Events from self (matching origin) and events of other types
// are acknowledged without work. Undecodable events are dropped; a failed
// reload is returned so the offset stays uncommitted.
func HandleIndexComplete(r Reloader, origin string) kafka.MessageHandler {
	log := logger.Component("reload-consumer")
	return func(ctx context.Context, msg kafka.Message) error {
		if msg.Type != "" && msg.Type != indexer.EventIndexComplete {
			log.Debug("ignoring event", "type", msg.Type)
			return nil
		}
		event, err := kafka.DecodeJSON[indexer.IndexCompleteEvent](msg.Value)
		if err != nil {
			log.Error("failed to decode index-complete event", "error", err, "key", string(msg.Key))
			return nil
		}
		if event.GenerationID == "" {
			log.Warn("index-complete event without generation id", "key", string(msg.Key))
			return nil
		}
		if origin != "" && event.Origin == origin {
			log.Debug("skipping own announcement", "generation", event.GenerationID)
			return nil
		}

		if err := r.Reload(ctx, event.GenerationID); err != nil {
			return err
		}
		log.Info("generation reloaded from announcement",
			"generation", event.GenerationID,
			"documents", event.Documents,
			"origin", event.Origin,
		)
		return nil
	}
}
