package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/clinova/consult/internal/model"
	"github.com/clinova/consult/internal/service"
	"github.com/clinova/consult/pkg/middleware"
)

// stubMeetingAPI returns canned values; tests swap in errors per case
type stubMeetingAPI struct {
	meeting *model.Meeting
	view    *service.MeetingView
	join    *service.JoinResult
	err     error

	lastConsultationID string
	lastCreateReq      service.CreateMeetingRequest
}

func (s *stubMeetingAPI) GetOrCreate(_ context.Context, req service.CreateMeetingRequest) (*model.Meeting, error) {
	s.lastConsultationID = req.ConsultationID
	s.lastCreateReq = req
	return s.meeting, s.err
}

func (s *stubMeetingAPI) Get(_ context.Context, consultationID string) (*service.MeetingView, error) {
	s.lastConsultationID = consultationID
	return s.view, s.err
}

func (s *stubMeetingAPI) Prepare(_ context.Context, consultationID string) (*model.Meeting, error) {
	s.lastConsultationID = consultationID
	return s.meeting, s.err
}

func (s *stubMeetingAPI) Join(_ context.Context, consultationID string, _ service.JoinRequest) (*service.JoinResult, error) {
	s.lastConsultationID = consultationID
	return s.join, s.err
}

func (s *stubMeetingAPI) SendCustomerInvite(_ context.Context, consultationID string, _ service.InviteRequest) error {
	s.lastConsultationID = consultationID
	return s.err
}

func (s *stubMeetingAPI) Complete(_ context.Context, consultationID string, _ service.CompleteRequest) (*model.Meeting, error) {
	s.lastConsultationID = consultationID
	return s.meeting, s.err
}

func (s *stubMeetingAPI) Cancel(_ context.Context, consultationID string) (*model.Meeting, error) {
	s.lastConsultationID = consultationID
	return s.meeting, s.err
}

type stubInviteLogStore struct {
	logs []model.InviteLog
}

func (s *stubInviteLogStore) Create(_ context.Context, _ *model.InviteLog) error { return nil }

func (s *stubInviteLogStore) List(_ context.Context, _ bson.M, _, _ int) ([]model.InviteLog, int64, error) {
	return s.logs, int64(len(s.logs)), nil
}

func newTestRouter(api *stubMeetingAPI, invites *stubInviteLogStore) http.Handler {
	if invites == nil {
		invites = &stubInviteLogStore{}
	}
	rt := NewRouter(
		NewMeetingHandler(api),
		NewInviteHandler(service.NewInviteLogService(invites)),
		NewHealthHandler(nil, "test"),
		middleware.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET, POST, OPTIONS", AllowedHeaders: "*"},
	)
	return rt.Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterRoutesMeetingActions(t *testing.T) {
	api := &stubMeetingAPI{
		meeting: &model.Meeting{ConsultationID: "c-1", Status: model.MeetingScheduled},
		view:    &service.MeetingView{Meeting: &model.Meeting{ConsultationID: "c-1"}},
		join:    &service.JoinResult{MeetingLink: "https://meet.example/x", Password: "p", Provider: model.ProviderGoogle},
	}
	handler := newTestRouter(api, nil)

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/v1/consultations/c-1/meeting", `{"doctor_id":"d-1","scheduled_time":"2026-09-01 09:00"}`},
		{http.MethodGet, "/api/v1/consultations/c-1/meeting", ""},
		{http.MethodPost, "/api/v1/consultations/c-1/meeting/prepare", ""},
		{http.MethodPost, "/api/v1/consultations/c-1/meeting/join", `{"participant_type":"doctor"}`},
		{http.MethodPost, "/api/v1/consultations/c-1/meeting/invite", `{"contact":"+628123"}`},
		{http.MethodPost, "/api/v1/consultations/c-1/meeting/complete", `{"notes":"done"}`},
		{http.MethodPost, "/api/v1/consultations/c-1/meeting/cancel", ""},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := doRequest(t, handler, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "c-1", api.lastConsultationID)
		})
	}
}

func TestRouterPathOverridesBodyConsultationID(t *testing.T) {
	api := &stubMeetingAPI{meeting: &model.Meeting{ConsultationID: "c-path"}}
	handler := newTestRouter(api, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/consultations/c-path/meeting",
		`{"consultation_id":"c-body","doctor_id":"d-1","scheduled_time":"2026-09-01 09:00"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-path", api.lastCreateReq.ConsultationID)
	assert.Equal(t, "d-1", api.lastCreateReq.DoctorID)
}

func TestRouterUnknownPaths(t *testing.T) {
	handler := newTestRouter(&stubMeetingAPI{}, nil)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/consultations/c-1", http.StatusNotFound},
		{http.MethodPost, "/api/v1/consultations/c-1/meeting/unknown", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/consultations/c-1/meeting", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/consultations/c-1/meeting/join", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/v1/invites", http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := doRequest(t, handler, tc.method, tc.path, "")
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestErrorKindStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", model.NewValidationError("bad input"), http.StatusBadRequest},
		{"not found", model.NewNotFoundError("no meeting"), http.StatusNotFound},
		{"timing", model.NewTimingError("The meeting opens in 3 minute(s)"), http.StatusConflict},
		{"capacity", model.NewCapacityError("The meeting is full"), http.StatusConflict},
		{"transition", model.NewTransitionError("meeting is cancelled"), http.StatusConflict},
		{"provider", model.NewProviderError("all providers failed"), http.StatusBadGateway},
		{"dispatch", model.NewDispatchError("invite delivery failed"), http.StatusBadGateway},
		{"internal", model.NewInternalError("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestRouter(&stubMeetingAPI{err: tc.err}, nil)
			rec := doRequest(t, handler, http.MethodGet, "/api/v1/consultations/c-1/meeting", "")
			assert.Equal(t, tc.want, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tc.want == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body.Message)
			} else {
				assert.Equal(t, tc.err.Error(), body.Message)
			}
		})
	}
}

func TestJoinRejectsMalformedBody(t *testing.T) {
	handler := newTestRouter(&stubMeetingAPI{}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/consultations/c-1/meeting/join", `{"participant_type":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinResponseOmitsNothingNeeded(t *testing.T) {
	api := &stubMeetingAPI{join: &service.JoinResult{
		MeetingLink: "https://meet.google.com/abc",
		Password:    "5KdR9fQ2",
		Provider:    model.ProviderGoogle,
	}}
	handler := newTestRouter(api, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/consultations/c-1/meeting/join", `{"participant_type":"customer"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var result service.JoinResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "https://meet.google.com/abc", result.MeetingLink)
	assert.Equal(t, "5KdR9fQ2", result.Password)
	assert.Equal(t, model.ProviderGoogle, result.Provider)
}

func TestMeetingResponseNeverExposesPassword(t *testing.T) {
	api := &stubMeetingAPI{meeting: &model.Meeting{
		ConsultationID: "c-1",
		Password:       "secret",
		Status:         model.MeetingScheduled,
	}}
	handler := newTestRouter(api, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/consultations/c-1/meeting",
		`{"doctor_id":"d-1","scheduled_time":"2026-09-01 09:00"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestInviteListClampsLimit(t *testing.T) {
	handler := newTestRouter(&stubMeetingAPI{}, &stubInviteLogStore{})

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/invites?limit=500", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp InviteListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.Limit)
}

func TestCorrelationIDHeaderRoundTrip(t *testing.T) {
	api := &stubMeetingAPI{meeting: &model.Meeting{ConsultationID: "c-1"}}
	handler := newTestRouter(api, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/consultations/c-1/meeting/cancel", strings.NewReader(""))
	req.Header.Set("X-Correlation-ID", "corr-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "corr-42", rec.Header().Get("X-Correlation-ID"))
}
