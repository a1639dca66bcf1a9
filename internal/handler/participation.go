package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sijgeria/community-portal/internal/model"
	"github.com/sijgeria/community-portal/internal/service"
)

// ParticipationHandler holds the HTTP handlers for registrations.
type ParticipationHandler struct {
	svc *service.ParticipationService
}

// NewParticipationHandler constructs a ParticipationHandler.
func NewParticipationHandler(svc *service.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{svc: svc}
}

// Register handles POST /participations
func (h *ParticipationHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		writeError(w, http.StatusUnauthorized, "user access required")
		return
	}

	var req model.RegisterParticipationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	participation, err := h.svc.Register(r.Context(), user, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "participation registered successfully", participation)
}

// ListMyParticipations handles GET /participations/my
func (h *ParticipationHandler) ListMyParticipations(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	if user == "" {
		writeError(w, http.StatusUnauthorized, "user access required")
		return
	}

	participations, err := h.svc.ListUserParticipations(r.Context(), user)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if participations == nil {
		participations = []model.Participation{}
	}
	writeSuccess(w, http.StatusOK, "success", participations)
}

// EventParticipants handles GET /participations/event/{eventID}/participants
func (h *ParticipationHandler) EventParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.svc.EventParticipants(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeSuccess(w, http.StatusOK, "success", participants)
}
