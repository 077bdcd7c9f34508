package processor

import (
	"time"

	"github.com/meeplemeet/meeplemeet/internal/metrics"
	"github.com/meeplemeet/meeplemeet/internal/pubsub"
)

// Processor handles the business logic of advancing game records through
// their processing pipeline.
type Processor struct {
	store    Store
	pubsub   pubsub.PubSubClient
	notifier Notifier
	metrics  metrics.Metrics

	now func() time.Time
}
