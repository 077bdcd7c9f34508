package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/meeplemeet/meeplemeet/internal/identity"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// storeError maps domain errors to HTTP statuses. Anything unrecognized
// is a 500 with a generic message so internals never leak to the client.
func storeError(w http.ResponseWriter, err error, fallback string) {
	var notFound *tracker.NotFoundError
	var conflict *tracker.ConflictError
	switch {
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &conflict):
		respondError(w, http.StatusConflict, conflict.Error())
	case errors.Is(err, identity.ErrUnknownPlayer):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrInvalidIdentity),
		errors.Is(err, tracker.ErrNoResults),
		errors.Is(err, tracker.ErrMissingDate):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// pathID extracts a positive numeric id from the route. Zero is the wire
// sentinel for "unregistered" and is never a valid path id.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
