package http

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/meeplemeet/meeplemeet/internal/pubsub"
	"github.com/meeplemeet/meeplemeet/internal/tracker"
)

func (s *Server) ListMeetingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetings, err := s.Store.ListMeetings()
		if err != nil {
			storeError(w, err, "Failed to list meetings")
			return
		}
		respondJSON(w, http.StatusOK, meetings)
	}
}

func (s *Server) CreateMeetingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form tracker.MeetingForm
		if err := decodeBody(r, &form); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		form.Date = strings.TrimSpace(form.Date)
		form.Location = strings.TrimSpace(form.Location)
		if form.Date == "" || form.Location == "" {
			respondError(w, http.StatusBadRequest, "meeting date and location are required")
			return
		}

		meeting, err := s.Store.CreateMeeting(form)
		if err != nil {
			storeError(w, err, "Failed to create meeting")
			return
		}

		isDryRun := isDryRunFromContext(r)
		if err := s.Notifier.SendMeetingNotification(meeting, isDryRun); err != nil {
			log.Error("Failed to announce meeting", "error", err, "meetingID", meeting.ID)
		}
		if !isDryRun {
			event := pubsub.MeetingScheduledEvent{MeetingID: meeting.ID, Date: meeting.Date, Location: meeting.Location}
			if err := s.pubsub.SendMessage(pubsub.EventMeetingScheduled, event); err != nil {
				log.Error("Failed to publish meeting event", "error", err, "meetingID", meeting.ID)
			}
		}

		respondJSON(w, http.StatusCreated, meeting)
	}
}

func (s *Server) GetMeetingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		detail, err := s.Store.GetMeeting(id)
		if err != nil {
			storeError(w, err, "Failed to get meeting")
			return
		}
		respondJSON(w, http.StatusOK, detail)
	}
}

func (s *Server) UpdateMeetingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		var form tracker.MeetingForm
		if err := decodeBody(r, &form); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		form.Date = strings.TrimSpace(form.Date)
		form.Location = strings.TrimSpace(form.Location)
		if form.Date == "" || form.Location == "" {
			respondError(w, http.StatusBadRequest, "meeting date and location are required")
			return
		}

		meeting, err := s.Store.UpdateMeeting(id, form)
		if err != nil {
			storeError(w, err, "Failed to update meeting")
			return
		}
		respondJSON(w, http.StatusOK, meeting)
	}
}

func (s *Server) DeleteMeetingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.Store.DeleteMeeting(id); err != nil {
			storeError(w, err, "Failed to delete meeting")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) UpsertParticipantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		var form tracker.ParticipantForm
		if err := decodeBody(r, &form); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if form.PlayerID <= 0 {
			respondError(w, http.StatusBadRequest, "player_id is required")
			return
		}
		switch form.Status {
		case "", "confirmed", "maybe", "declined":
		default:
			respondError(w, http.StatusBadRequest, "status must be confirmed, maybe or declined")
			return
		}

		participant, err := s.Store.UpsertParticipant(id, form)
		if err != nil {
			storeError(w, err, "Failed to upsert participant")
			return
		}
		respondJSON(w, http.StatusOK, participant)
	}
}
