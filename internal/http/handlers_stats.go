package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/meeplemeet/meeplemeet/internal/stats"
)

// The aggregator returns full-precision values; responses round to one
// decimal here, at the display edge.
func roundedWinnerRows(rows []stats.WinnerRow) []stats.WinnerRow {
	out := make([]stats.WinnerRow, len(rows))
	for i, row := range rows {
		row.WinRate = stats.Round1(row.WinRate)
		out[i] = row
	}
	return out
}

func roundedGlobalStats(g stats.GlobalStats) stats.GlobalStats {
	g.TopWinners = roundedWinnerRows(g.TopWinners)
	return g
}

func roundedGameStats(g stats.GameStats) stats.GameStats {
	g.WinRate = stats.Round1(g.WinRate)
	g.AverageScore = stats.Round1(g.AverageScore)
	g.PerPlayer = roundedWinnerRows(g.PerPlayer)
	return g
}

func roundedPlayerStats(p stats.PlayerStats) stats.PlayerStats {
	p.WinRate = stats.Round1(p.WinRate)
	return p
}

func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncStatsRequests()
		global, err := s.Stats.Global()
		if err != nil {
			storeError(w, err, "Failed to compute stats")
			return
		}
		respondJSON(w, http.StatusOK, roundedGlobalStats(global))
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.Metrics.IncStatsRequests()

		// Stats for a player nobody has heard of are a 404, not zeros.
		if _, err := s.Store.GetPlayer(id); err != nil {
			storeError(w, err, "Failed to get player")
			return
		}

		playerStats, err := s.Stats.Player(id)
		if err != nil {
			storeError(w, err, "Failed to compute player stats")
			return
		}
		respondJSON(w, http.StatusOK, roundedPlayerStats(playerStats))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	respondJSON(w, http.StatusOK, msg)
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		global, err := s.Stats.Global()
		if err != nil {
			storeError(w, err, "Failed to compute stats")
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(roundedWinnerRows(global.TopWinners))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to format leaderboard")
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			respondError(w, http.StatusInternalServerError, "Invalid message format for Slack")
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}
