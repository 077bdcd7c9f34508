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

func NewServer(store tracker.Store, identitySvc *identity.Service, statsSvc *stats.Service, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Identity:       identitySvc,
		Stats:          statsSvc,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Processor:      processor,
		Router:         mux.NewRouter(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware via router.Use. This makes
	// it easy to add more middlewares in the future, like an
	// authentication middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)

	r := s.Router.NewRoute().Subrouter()
	r.Use(paramsMiddleware)

	r.Handle("/health", s.HealthCheckHandler()).Methods(http.MethodGet)
	r.Handle("/clear", s.ClearStoreHandler()).Methods(http.MethodPost, http.MethodGet)
	r.Handle("/process", s.ProcessRecordsHandler()).Methods(http.MethodPost, http.MethodGet)

	r.Handle("/players", s.ListPlayersHandler()).Methods(http.MethodGet)
	r.Handle("/players", s.CreatePlayerHandler()).Methods(http.MethodPost)
	r.Handle("/players/{id}", s.GetPlayerHandler()).Methods(http.MethodGet)
	r.Handle("/players/{id}", s.UpdatePlayerHandler()).Methods(http.MethodPut)
	r.Handle("/players/{id}", s.DeletePlayerHandler()).Methods(http.MethodDelete)
	r.Handle("/players/{id}/claim_records", s.ClaimRecordsHandler()).Methods(http.MethodPost)

	r.Handle("/games", s.ListGamesHandler()).Methods(http.MethodGet)
	r.Handle("/games", s.CreateGameHandler()).Methods(http.MethodPost)
	r.Handle("/games/{id}", s.GetGameHandler()).Methods(http.MethodGet)
	r.Handle("/games/{id}", s.UpdateGameHandler()).Methods(http.MethodPut)

	r.Handle("/meetings", s.ListMeetingsHandler()).Methods(http.MethodGet)
	r.Handle("/meetings", s.CreateMeetingHandler()).Methods(http.MethodPost)
	r.Handle("/meetings/{id}", s.GetMeetingHandler()).Methods(http.MethodGet)
	r.Handle("/meetings/{id}", s.UpdateMeetingHandler()).Methods(http.MethodPut)
	r.Handle("/meetings/{id}", s.DeleteMeetingHandler()).Methods(http.MethodDelete)
	r.Handle("/meetings/{id}/participants", s.UpsertParticipantHandler()).Methods(http.MethodPost)
	r.Handle("/meetings/{id}/records", s.ListMeetingRecordsHandler()).Methods(http.MethodGet)
	r.Handle("/meetings/{id}/records", s.CreateGameRecordHandler()).Methods(http.MethodPost)

	r.Handle("/game-records", s.CreateGameRecordHandler()).Methods(http.MethodPost)
	r.Handle("/game-records/{id}", s.GetGameRecordHandler()).Methods(http.MethodGet)

	r.Handle("/unregistered_records", s.UnregisteredRecordsHandler()).Methods(http.MethodGet)

	r.Handle("/stats", s.StatsHandler()).Methods(http.MethodGet)
	r.Handle("/stats/player/{id}", s.PlayerStatsHandler()).Methods(http.MethodGet)

	r.Handle("/slack/command/leaderboard", s.LeaderboardCommandHandler()).Methods(http.MethodPost, http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
