package handler

import (
	"net/http"
	"strings"

	"github.com/clinova/consult/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	meetingHandler *MeetingHandler
	inviteHandler  *InviteHandler
	healthHandler  *HealthHandler
	corsConfig     middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	meetingHandler *MeetingHandler,
	inviteHandler *InviteHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		meetingHandler: meetingHandler,
		inviteHandler:  inviteHandler,
		healthHandler:  healthHandler,
		corsConfig:     corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (no middleware)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)

	// API endpoints
	mux.HandleFunc("/api/v1/consultations/", rt.handleConsultations)
	mux.HandleFunc("/api/v1/invites", rt.handleInvites)

	// Apply middleware (CORS first to handle preflight requests)
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

// handleConsultations routes /api/v1/consultations/{id}/meeting and the
// meeting action sub-paths
func (rt *Router) handleConsultations(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/consultations/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) < 2 || parts[0] == "" || parts[1] != "meeting" {
		writeError(w, http.StatusNotFound, "Endpoint not found")
		return
	}
	consultationID := parts[0]

	// /consultations/{id}/meeting
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			rt.meetingHandler.Get(w, r, consultationID)
		case http.MethodPost:
			rt.meetingHandler.GetOrCreate(w, r, consultationID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	// /consultations/{id}/meeting/{action}
	if len(parts) != 3 {
		writeError(w, http.StatusNotFound, "Endpoint not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch parts[2] {
	case "prepare":
		rt.meetingHandler.Prepare(w, r, consultationID)
	case "join":
		rt.meetingHandler.Join(w, r, consultationID)
	case "invite":
		rt.meetingHandler.Invite(w, r, consultationID)
	case "complete":
		rt.meetingHandler.Complete(w, r, consultationID)
	case "cancel":
		rt.meetingHandler.Cancel(w, r, consultationID)
	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// handleInvites routes the invite log collection endpoint
func (rt *Router) handleInvites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.inviteHandler.List(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
