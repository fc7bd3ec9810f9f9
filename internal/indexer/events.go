package indexer

import "time"

// EventIndexComplete is the Kafka event type announcing a new persisted
// generation.
const EventIndexComplete = "index.complete"

// IndexCompleteEvent is published after a rebuild has been saved, so other
// replicas can load the same generation from the artifact store.
type IndexCompleteEvent struct {
	GenerationID string    `json:"generation_id"`
	Documents    int       `json:"documents"`
	Vocabulary   int       `json:"vocabulary"`
	BuiltAt      time.Time `json:"built_at"`
	Origin       string    `json:"origin,omitempty"`
}
