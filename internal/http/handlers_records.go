package http

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/meeplemeet/meeplemeet/internal/pubsub"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

// CreateGameRecordHandler creates a game record with all its results.
// Mounted both standalone and under a meeting; the meeting id from the
// path wins over the one in the body.
func (s *Server) CreateGameRecordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec tracker.NewGameRecord
		if err := decodeBody(r, &rec); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if _, ok := mux.Vars(r)["id"]; ok {
			meetingID, err := pathID(r)
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			rec.MeetingID = &meetingID
		}

		record, err := s.Store.CreateGameRecord(rec)
		if err != nil {
			storeError(w, err, "Failed to create game record")
			return
		}

		s.Metrics.IncRecordsCreated()
		if !isDryRunFromContext(r) {
			event := pubsub.RecordCreatedEvent{
				RecordID:    record.ID,
				GameID:      record.GameID,
				MeetingID:   record.MeetingID,
				ResultCount: len(record.Results),
			}
			if err := s.pubsub.SendMessage(pubsub.EventRecordCreated, event); err != nil {
				log.Error("Failed to publish record event", "error", err, "recordID", record.ID)
			}
		}

		respondJSON(w, http.StatusCreated, record)
	}
}

func (s *Server) GetGameRecordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		record, err := s.Store.GetGameRecord(id)
		if err != nil {
			storeError(w, err, "Failed to get game record")
			return
		}
		respondJSON(w, http.StatusOK, record)
	}
}

func (s *Server) ListMeetingRecordsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		records, err := s.Store.ListMeetingRecords(id)
		if err != nil {
			storeError(w, err, "Failed to list meeting records")
			return
		}
		respondJSON(w, http.StatusOK, records)
	}
}

// UnregisteredRecordsHandler looks up the unclaimed results recorded
// under a display name, feeding the claim workflow.
func (s *Server) UnregisteredRecordsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			respondError(w, http.StatusBadRequest, "name query parameter is required")
			return
		}
		results, err := s.Store.UnregisteredResults(name)
		if err != nil {
			storeError(w, err, "Failed to look up unregistered records")
			return
		}
		respondJSON(w, http.StatusOK, results)
	}
}
