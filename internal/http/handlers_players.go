package http

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/meeplemeet/meeplemeet/internal/pubsub"
	"github.com/meeplemeet/meeplemeet/internal/stats"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// playerDetail is the player view with their stats and game history
// joined in.
type playerDetail struct {
	tracker.Player
	Stats   stats.PlayerStats      `json:"stats"`
	History []tracker.HistoryEntry `json:"history"`
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.ListPlayers()
		if err != nil {
			storeError(w, err, "Failed to list players")
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form tracker.PlayerForm
		if err := decodeBody(r, &form); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		form.Name = strings.TrimSpace(form.Name)
		if form.Name == "" {
			respondError(w, http.StatusBadRequest, "player name is required")
			return
		}

		player, err := s.Store.CreatePlayer(form)
		if err != nil {
			storeError(w, err, "Failed to create player")
			return
		}
		respondJSON(w, http.StatusCreated, player)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		player, err := s.Store.GetPlayer(id)
		if err != nil {
			storeError(w, err, "Failed to get player")
			return
		}
		playerStats, err := s.Stats.Player(id)
		if err != nil {
			storeError(w, err, "Failed to compute player stats")
			return
		}
		history, err := s.Store.PlayerHistory(id)
		if err != nil {
			storeError(w, err, "Failed to get player history")
			return
		}

		respondJSON(w, http.StatusOK, playerDetail{Player: player, Stats: roundedPlayerStats(playerStats), History: history})
	}
}

func (s *Server) UpdatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		var form tracker.PlayerForm
		if err := decodeBody(r, &form); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		form.Name = strings.TrimSpace(form.Name)
		if form.Name == "" {
			respondError(w, http.StatusBadRequest, "player name is required")
			return
		}

		player, err := s.Store.UpdatePlayer(id, form)
		if err != nil {
			storeError(w, err, "Failed to update player")
			return
		}
		respondJSON(w, http.StatusOK, player)
	}
}

func (s *Server) DeletePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Store.DeletePlayer(id); err != nil {
			storeError(w, err, "Failed to delete player")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClaimRecordsHandler re-points unregistered results at a registered
// player.
func (s *Server) ClaimRecordsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		var body struct {
			RecordIDs []int64 `json:"record_ids"`
		}
		if err := decodeBody(r, &body); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		claimed, err := s.Identity.Claim(id, body.RecordIDs)
		if err != nil {
			storeError(w, err, "Failed to claim records")
			return
		}

		if !isDryRunFromContext(r) && claimed > 0 {
			if err := s.pubsub.SendMessage(pubsub.EventRecordsClaimed, pubsub.RecordsClaimedEvent{PlayerID: id, Changed: claimed}); err != nil {
				log.Error("Failed to publish claim event", "error", err, "playerID", id)
			}
		}

		respondJSON(w, http.StatusOK, map[string]int64{"claimed": claimed})
	}
}
