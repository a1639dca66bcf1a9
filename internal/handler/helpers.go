// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sijgeria/community-portal/internal/model"
	"github.com/sijgeria/community-portal/internal/repository"
	"github.com/sijgeria/community-portal/internal/service"
)

// apiResponse is the JSON envelope every endpoint returns.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, apiResponse{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps service outcomes to HTTP statuses: validation
// failures to 400 (duplicates to 409), missing resources to 404, ownership
// to 403, everything else to a logged generic 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		status := http.StatusBadRequest
		if verr.Code == model.CodeDuplicateParticipantRole {
			status = http.StatusConflict
		}
		writeJSON(w, status, apiResponse{
			Success: false,
			Message: verr.Detail,
			Code:    verr.Code,
		})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, service.ErrSubEventNotFound):
		writeError(w, http.StatusNotFound, "sub-event not found")
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// memberID extracts the authenticated member principal resolved by the
// identity layer upstream. Empty means the request was not authenticated.
func memberID(r *http.Request) string {
	return r.Header.Get("X-Member-ID")
}

// userID extracts the authenticated user principal.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
