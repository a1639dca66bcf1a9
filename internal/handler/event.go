package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sijgeria/community-portal/internal/model"
	"github.com/sijgeria/community-portal/internal/service"
)

// EventHandler holds the HTTP handlers for participating events.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// CreateEvent handles POST /participating-events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	member := memberID(r)
	if member == "" {
		writeError(w, http.StatusUnauthorized, "member access required")
		return
	}

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), member, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "participating event created successfully", event)
}

// ListMemberEvents handles GET /participating-events
func (h *EventHandler) ListMemberEvents(w http.ResponseWriter, r *http.Request) {
	member := memberID(r)
	if member == "" {
		writeError(w, http.StatusUnauthorized, "member access required")
		return
	}

	events, err := h.svc.ListMemberEvents(r.Context(), member)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeSuccess(w, http.StatusOK, "success", events)
}

// ListAllEvents handles GET /participating-events/all
func (h *EventHandler) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListAllEvents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeSuccess(w, http.StatusOK, "success", events)
}

// ListOpenEvents handles GET /participating-events/open
func (h *EventHandler) ListOpenEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListOpenEvents(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeSuccess(w, http.StatusOK, "success", events)
}

// GetEvent handles GET /participating-events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "success", event)
}

// UpdateEvent handles PUT /participating-events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	member := memberID(r)
	if member == "" {
		writeError(w, http.StatusUnauthorized, "member access required")
		return
	}

	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.UpdateEvent(r.Context(), member, chi.URLParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "event updated successfully", event)
}

// DeleteEvent handles DELETE /participating-events/{id}
// Cascades to all participations and reports removal and notification
// counts.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	member := memberID(r)
	if member == "" {
		writeError(w, http.StatusUnauthorized, "member access required")
		return
	}

	report, err := h.svc.DeleteEvent(r.Context(), member, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "event deleted successfully", report)
}
