package server

import (
	"encoding/json"
	"net/http"

	"github.com/DrSkyle/cloudstamp/pkg/engine/event"
)

// POST /events
// Receives an Event Grid batch. The subscription validation handshake is
// answered inline; resource-write events each run one engine invocation.
// A transient gateway failure turns the whole delivery into a 500 so Event
// Grid redelivers; everything else (including skips) acknowledges with 200.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var batch []event.Envelope
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		http.Error(w, "Invalid event batch", http.StatusBadRequest)
		return
	}

	failed := 0
	for _, env := range batch {
		switch env.EventType {
		case event.TypeSubscriptionValidation:
			var data event.ValidationData
			if err := json.Unmarshal(env.Data, &data); err != nil {
				http.Error(w, "Invalid validation event", http.StatusBadRequest)
				return
			}
			s.logger.Info("Answering subscription validation", "id", env.ID)
			s.respondJSON(w, event.ValidationResponse{ValidationResponse: data.ValidationCode})
			return

		case event.TypeResourceWriteSuccess:
			ev, err := event.ParseChange(env)
			if err != nil {
				// Malformed payloads are skips, never delivery failures.
				s.logger.Info("Skipping event", "id", env.ID, "reason", err)
				continue
			}
			if _, err := s.engine.Process(r.Context(), ev); err != nil {
				failed++
			}

		default:
			s.logger.Info("Skipping event", "id", env.ID, "reason", "unhandled event type", "type", env.EventType)
		}
	}

	if failed > 0 {
		http.Error(w, "One or more events failed; redeliver", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
