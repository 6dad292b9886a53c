package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinova/consult/internal/model"
)

var scheduled = time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)

func newSelector(brokerURL string) *Selector {
	google := NewGoogleClient(brokerURL, "test-token", 2*time.Second)
	jitsi := NewJitsiBuilder("https://meet.example.org/")
	return NewSelector(google, jitsi)
}

func TestProvisionPrimarySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/meetings", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meet_link":"https://meet.google.com/abc-defg-hij","event_ref":"ev-1"}`))
	}))
	defer server.Close()

	room, fallbackUsed, err := newSelector(server.URL).Provision(context.Background(), "c-100", scheduled, model.ProviderGoogle)
	require.NoError(t, err)

	assert.False(t, fallbackUsed)
	assert.Equal(t, model.ProviderGoogle, room.Provider)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", room.Link)
	assert.Equal(t, "ev-1", room.Ref)
}

func TestProvisionFallsBackWhenPrimaryFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broker unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	room, fallbackUsed, err := newSelector(server.URL).Provision(context.Background(), "c-200", scheduled, model.ProviderGoogle)
	require.NoError(t, err, "fallback must keep the operation successful")

	assert.True(t, fallbackUsed)
	assert.Equal(t, model.ProviderJitsi, room.Provider)
	assert.Equal(t, "https://meet.example.org/clinic-c-200", room.Link)
}

func TestProvisionFallsBackWhenPrimaryUnreachable(t *testing.T) {
	// Closed server: transport-level failure rather than an HTTP error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	room, fallbackUsed, err := newSelector(server.URL).Provision(context.Background(), "c-201", scheduled, model.ProviderGoogle)
	require.NoError(t, err)

	assert.True(t, fallbackUsed)
	assert.Equal(t, model.ProviderJitsi, room.Provider)
	assert.NotEmpty(t, room.Link)
}

func TestProvisionPreferredJitsiSkipsPrimary(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	room, fallbackUsed, err := newSelector(server.URL).Provision(context.Background(), "c-300", scheduled, model.ProviderJitsi)
	require.NoError(t, err)

	assert.False(t, called, "preferred jitsi must not hit the broker")
	assert.False(t, fallbackUsed)
	assert.Equal(t, model.ProviderJitsi, room.Provider)
}

func TestGoogleClientRejectsEmptyLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meet_link":""}`))
	}))
	defer server.Close()

	client := NewGoogleClient(server.URL, "", 2*time.Second)
	_, err := client.CreateMeeting(context.Background(), "c-400", scheduled)

	require.Error(t, err)
	assert.Equal(t, model.KindProvider, model.KindOf(err))
}

func TestJitsiLinkIsDeterministic(t *testing.T) {
	builder := NewJitsiBuilder("https://meet.example.org")

	first, err := builder.CreateMeeting(context.Background(), "c-500", scheduled)
	require.NoError(t, err)
	second, err := builder.CreateMeeting(context.Background(), "c-500", scheduled)
	require.NoError(t, err)

	assert.Equal(t, first.Link, second.Link)
}
