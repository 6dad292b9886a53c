package handler

import (
	"net/http"

	"github.com/clinova/consult/internal/model"
	"github.com/clinova/consult/internal/service"
)

// InviteHandler handles invite log queries
type InviteHandler struct {
	service *service.InviteLogService
}

// NewInviteHandler creates a new invite handler
func NewInviteHandler(service *service.InviteLogService) *InviteHandler {
	return &InviteHandler{
		service: service,
	}
}

// InviteListResponse represents the invite log list response
type InviteListResponse struct {
	Total   int64                    `json:"total"`
	Page    int                      `json:"page"`
	Limit   int                      `json:"limit"`
	Results []model.InviteLogSummary `json:"results"`
}

// List handles GET /api/v1/invites
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	consultationID := r.URL.Query().Get("consultation_id")
	finalStatus := r.URL.Query().Get("final_status")
	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)

	// Enforce max limit
	if limit > 100 {
		limit = 100
	}

	summaries, total, err := h.service.List(r.Context(), consultationID, finalStatus, page, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response := InviteListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: summaries,
	}

	writeJSON(w, http.StatusOK, response)
}
