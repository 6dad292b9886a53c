package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/clinova/consult/internal/model"
	"github.com/clinova/consult/internal/service"
)

// MeetingAPI is the meeting lifecycle surface the handler exposes
type MeetingAPI interface {
	GetOrCreate(ctx context.Context, req service.CreateMeetingRequest) (*model.Meeting, error)
	Get(ctx context.Context, consultationID string) (*service.MeetingView, error)
	Prepare(ctx context.Context, consultationID string) (*model.Meeting, error)
	Join(ctx context.Context, consultationID string, req service.JoinRequest) (*service.JoinResult, error)
	SendCustomerInvite(ctx context.Context, consultationID string, req service.InviteRequest) error
	Complete(ctx context.Context, consultationID string, req service.CompleteRequest) (*model.Meeting, error)
	Cancel(ctx context.Context, consultationID string) (*model.Meeting, error)
}

// MeetingHandler handles the consultation meeting endpoints
type MeetingHandler struct {
	service MeetingAPI
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(service MeetingAPI) *MeetingHandler {
	return &MeetingHandler{
		service: service,
	}
}

// GetOrCreate handles POST /api/v1/consultations/{id}/meeting
func (h *MeetingHandler) GetOrCreate(w http.ResponseWriter, r *http.Request, consultationID string) {
	var req service.CreateMeetingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	// The path is authoritative for the consultation identity.
	req.ConsultationID = consultationID

	meeting, err := h.service.GetOrCreate(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

// Get handles GET /api/v1/consultations/{id}/meeting
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request, consultationID string) {
	view, err := h.service.Get(r.Context(), consultationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Prepare handles POST /api/v1/consultations/{id}/meeting/prepare
func (h *MeetingHandler) Prepare(w http.ResponseWriter, r *http.Request, consultationID string) {
	meeting, err := h.service.Prepare(r.Context(), consultationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

// Join handles POST /api/v1/consultations/{id}/meeting/join
func (h *MeetingHandler) Join(w http.ResponseWriter, r *http.Request, consultationID string) {
	var req service.JoinRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.Join(r.Context(), consultationID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Invite handles POST /api/v1/consultations/{id}/meeting/invite
func (h *MeetingHandler) Invite(w http.ResponseWriter, r *http.Request, consultationID string) {
	var req service.InviteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.SendCustomerInvite(r.Context(), consultationID, req); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// Complete handles POST /api/v1/consultations/{id}/meeting/complete
func (h *MeetingHandler) Complete(w http.ResponseWriter, r *http.Request, consultationID string) {
	var req service.CompleteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	meeting, err := h.service.Complete(r.Context(), consultationID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

// Cancel handles POST /api/v1/consultations/{id}/meeting/cancel
func (h *MeetingHandler) Cancel(w http.ResponseWriter, r *http.Request, consultationID string) {
	meeting, err := h.service.Cancel(r.Context(), consultationID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

// decodeBody parses the JSON request body. An empty body decodes into the
// zero request, which the service-level validation then judges.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
