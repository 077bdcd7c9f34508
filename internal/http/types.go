package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/meeplemeet/meeplemeet/internal/config"
	"github.com/meeplemeet/meeplemeet/internal/identity"
	"github.com/meeplemeet/meeplemeet/internal/metrics"
	"github.com/meeplemeet/meeplemeet/internal/notifier"
	"github.com/meeplemeet/meeplemeet/internal/processor"
	"github.com/meeplemeet/meeplemeet/internal/pubsub"
	"github.com/meeplemeet/meeplemeet/internal/stats"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

type Server struct {
	Store          tracker.Store
	Identity       *identity.Service
	Stats          *stats.Service
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *mux.Router
	pubsub         pubsub.PubSubClient
}
