package http

import (
	"net/http"
	"strings"

	"github.com/meeplemeet/meeplemeet/internal/stats"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// gameDetail is the game view with its aggregate stats joined in.
type gameDetail struct {
	tracker.Game
	Stats stats.GameStats `json:"stats"`
}

func (s *Server) ListGamesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := s.Store.ListGames()
		if err != nil {
			storeError(w, err, "Failed to list games")
			return
		}
		respondJSON(w, http.StatusOK, games)
	}
}

func (s *Server) CreateGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form tracker.GameForm
		if err := decodeBody(r, &form); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		form.Name = strings.TrimSpace(form.Name)
		if form.Name == "" {
			respondError(w, http.StatusBadRequest, "game name is required")
			return
		}

		game, err := s.Store.CreateGame(form)
		if err != nil {
			storeError(w, err, "Failed to create game")
			return
		}
		respondJSON(w, http.StatusCreated, game)
	}
}

func (s *Server) GetGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		game, err := s.Store.GetGame(id)
		if err != nil {
			storeError(w, err, "Failed to get game")
			return
		}
		gameStats, err := s.Stats.Game(id)
		if err != nil {
			storeError(w, err, "Failed to compute game stats")
			return
		}
		respondJSON(w, http.StatusOK, gameDetail{Game: game, Stats: roundedGameStats(gameStats)})
	}
}

func (s *Server) UpdateGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		var form tracker.GameForm
		if err := decodeBody(r, &form); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		form.Name = strings.TrimSpace(form.Name)
		if form.Name == "" {
			respondError(w, http.StatusBadRequest, "game name is required")
			return
		}

		game, err := s.Store.UpdateGame(id, form)
		if err != nil {
			storeError(w, err, "Failed to update game")
			return
		}
		respondJSON(w, http.StatusOK, game)
	}
}
