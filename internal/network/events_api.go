// Package network - events_api.go
// JSON export of the simulation event history for external viewers.
package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ecosim-lab/ecosim/internal/events"
	"github.com/ecosim-lab/ecosim/internal/platform/logger"
)

// EventHistoryHandler exposes the in-memory event log over REST.
type EventHistoryHandler struct {
	log    *events.Log
	logger *logger.Logger
}

// NewEventHistoryHandler creates a new event history handler.
func NewEventHistoryHandler(log *events.Log, appLog *logger.Logger) *EventHistoryHandler {
	return &EventHistoryHandler{log: log, logger: appLog}
}

// HistoryResponse is the API response for the event history.
type HistoryResponse struct {
	TotalEvents int               `json:"total_events"`
	FilteredBy  string            `json:"filtered_by,omitempty"`
	GeneratedAt string            `json:"generated_at"`
	Events      []events.SimEvent `json:"events"`
}

// HandleHistory returns the recorded simulation events.
// GET /api/events?type=STEAL
func (eh *EventHistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	typeFilter := r.URL.Query().Get("type")

	var evts []events.SimEvent
	if typeFilter != "" {
		evts = eh.log.ByType(events.EventType(typeFilter))
	} else {
		evts = eh.log.Since(0)
	}

	resp := HistoryResponse{
		TotalEvents: len(evts),
		FilteredBy:  typeFilter,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      evts,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		eh.logger.Error("Failed to encode event history: " + err.Error())
	}
}
