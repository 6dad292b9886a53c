package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clinova/consult/internal/model"
)

// GoogleClient provisions Google Meet rooms through the clinic's hosted
// meet-broker endpoint
type GoogleClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGoogleClient creates a meet-broker client with connection pooling
func NewGoogleClient(baseURL, token string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

type createMeetingRequest struct {
	ConsultationID string    `json:"consultation_id"`
	ScheduledTime  time.Time `json:"scheduled_time"`
}

type createMeetingResponse struct {
	MeetLink string `json:"meet_link"`
	EventRef string `json:"event_ref"`
}

// CreateMeeting requests a Meet room for the consultation. Transport
// failures and non-2xx responses surface as provider errors so the
// selector can fall back.
func (c *GoogleClient) CreateMeeting(ctx context.Context, consultationID string, scheduled time.Time) (Room, error) {
	body, err := json.Marshal(createMeetingRequest{
		ConsultationID: consultationID,
		ScheduledTime:  scheduled,
	})
	if err != nil {
		return Room{}, fmt.Errorf("failed to marshal meet-broker request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/meetings", bytes.NewBuffer(body))
	if err != nil {
		return Room{}, fmt.Errorf("failed to create meet-broker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Room{}, model.NewProviderError("meet-broker request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Keep a short slice of the body for diagnostics.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Room{}, model.NewProviderError(
			fmt.Sprintf("meet-broker returned status %d: %s", resp.StatusCode, string(snippet)))
	}

	var result createMeetingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Room{}, model.NewProviderError("failed to decode meet-broker response", err)
	}
	if result.MeetLink == "" {
		return Room{}, model.NewProviderError("meet-broker returned an empty meeting link")
	}

	return Room{
		Provider: model.ProviderGoogle,
		Link:     result.MeetLink,
		Ref:      result.EventRef,
	}, nil
}
