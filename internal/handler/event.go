package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/chronoflow/internal/model"
	"github.com/sakif/chronoflow/internal/service"
)

type EventResponse struct {
	Message string      `json:"message"`
	Event   model.Event `json:"event"`
}

type EventsResponse struct {
	Message string        `json:"message"`
	Events  []model.Event `json:"events"`
}

// EventHandler serves the event CRUD routes.
type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

func NewEventHandler(svc *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: svc, logger: logger}
}

// HandleAdd → POST /add_event
func (h *EventHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var in service.AddEventInput
	if err := decodeJSON(w, r, &in, service.MsgEventFieldsRequired); err != nil {
		writeError(w, h.logger, err)
		return
	}

	event, err := h.events.AddEvent(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, EventResponse{
		Message: "Event added successfully",
		Event:   *event,
	})
}

// HandleList → GET /get_events?email=
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.GetEvents(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, EventsResponse{
		Message: "Events retrieved successfully",
		Events:  events,
	})
}

// HandleDelete → DELETE /delete_event/{id}
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

// HandleUpdate → PUT /update_event/{id}
//
// The id is checked before the body is read, so a malformed id is a 400
// even when the body is also bad.
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.events.CheckID(id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var patch model.EventPatch
	if err := decodeJSON(w, r, &patch, "Invalid request body"); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.events.UpdateEvent(r.Context(), id, patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, MessageResponse{Message: "Event updated successfully"})
}
