// Package notify delivers customer invites through the clinic's
// notification gateway with retries and a circuit breaker, producing an
// audit log per dispatch.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clinova/consult/internal/model"
)

// Invite is the payload handed to the notification gateway. The password
// travels only here; the persisted audit log never contains it.
type Invite struct {
	Contact     string `json:"contact"`
	MeetingLink string `json:"meeting_link"`
	Password    string `json:"password"`
}

// Dispatcher handles invite delivery with retry logic
type Dispatcher struct {
	gatewayURL     string
	httpClient     *http.Client
	retryConfig    RetryConfig
	circuitBreaker *CircuitBreaker
}

// NewDispatcher creates a new invite dispatcher
func NewDispatcher(gatewayURL string, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		circuitBreaker: NewCircuitBreaker(),
	}
}

// WithRetryConfig overrides the default retry policy
func (d *Dispatcher) WithRetryConfig(config RetryConfig) *Dispatcher {
	d.retryConfig = config
	return d
}

// SendInvite delivers the invite with retries. The returned InviteLog is
// always populated, including on failure, so the caller can persist the
// audit trail either way.
func (d *Dispatcher) SendInvite(ctx context.Context, consultationID string, invite Invite, correlationID string) (*model.InviteLog, error) {
	inviteLog := &model.InviteLog{
		ID:             primitive.NewObjectID(),
		ConsultationID: consultationID,
		CorrelationID:  correlationID,
		Contact:        invite.Contact,
		MeetingLink:    invite.MeetingLink,
		Attempts:       make([]model.InviteAttempt, 0),
		FinalStatus:    "failed",
		CreatedAt:      time.Now().UTC(),
	}

	if !d.circuitBreaker.CanAttempt() {
		slog.Warn("Circuit breaker is open, skipping invite delivery",
			"correlation_id", correlationID,
			"consultation_id", consultationID,
			"circuit_state", d.circuitBreaker.GetStateName(),
		)
		inviteLog.CompletedAt = time.Now().UTC()
		return inviteLog, model.NewDispatchError("notification gateway circuit breaker is open")
	}

	retryStrategy := NewRetryStrategy(d.retryConfig)

	for attempt := 1; attempt <= retryStrategy.GetMaxAttempts(); attempt++ {
		slog.Info("Attempting invite delivery",
			"correlation_id", correlationID,
			"consultation_id", consultationID,
			"attempt", attempt,
			"max_attempts", retryStrategy.GetMaxAttempts(),
		)

		attemptResult, err := d.deliver(ctx, invite, attempt)
		inviteLog.Attempts = append(inviteLog.Attempts, attemptResult)

		if err == nil && attemptResult.StatusCode >= 200 && attemptResult.StatusCode < 300 {
			slog.Info("Invite delivered",
				"correlation_id", correlationID,
				"consultation_id", consultationID,
				"attempt", attempt,
				"status_code", attemptResult.StatusCode,
			)

			inviteLog.FinalStatus = "delivered"
			inviteLog.CompletedAt = time.Now().UTC()
			d.circuitBreaker.RecordSuccess()
			return inviteLog, nil
		}

		if !retryStrategy.ShouldRetry(attempt, attemptResult.StatusCode, err) {
			slog.Error("Invite delivery failed, no retry",
				"correlation_id", correlationID,
				"consultation_id", consultationID,
				"attempt", attempt,
				"status_code", attemptResult.StatusCode,
				"error", attemptResult.Error,
			)

			inviteLog.CompletedAt = time.Now().UTC()
			d.circuitBreaker.RecordFailure()
			return inviteLog, model.NewDispatchError(
				fmt.Sprintf("invite delivery failed after %d attempt(s)", attempt))
		}

		if attempt < retryStrategy.GetMaxAttempts() {
			delay := retryStrategy.CalculateDelay(attempt)
			slog.Warn("Invite delivery failed, retrying",
				"correlation_id", correlationID,
				"consultation_id", consultationID,
				"attempt", attempt,
				"next_retry_ms", delay.Milliseconds(),
				"error", attemptResult.Error,
			)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				inviteLog.CompletedAt = time.Now().UTC()
				return inviteLog, ctx.Err()
			}
		}
	}

	inviteLog.CompletedAt = time.Now().UTC()
	d.circuitBreaker.RecordFailure()
	return inviteLog, model.NewDispatchError(
		fmt.Sprintf("invite delivery failed after %d attempts", retryStrategy.GetMaxAttempts()))
}

// deliver performs a single delivery attempt
func (d *Dispatcher) deliver(ctx context.Context, invite Invite, attemptNumber int) (model.InviteAttempt, error) {
	start := time.Now()
	attempt := model.InviteAttempt{
		AttemptNumber: attemptNumber,
		Timestamp:     start.UTC(),
	}

	payload, err := json.Marshal(invite)
	if err != nil {
		attempt.Error = fmt.Sprintf("Failed to marshal payload: %v", err)
		attempt.DurationMs = time.Since(start).Milliseconds()
		return attempt, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.gatewayURL, bytes.NewBuffer(payload))
	if err != nil {
		attempt.Error = fmt.Sprintf("Failed to create request: %v", err)
		attempt.DurationMs = time.Since(start).Milliseconds()
		return attempt, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		attempt.Error = fmt.Sprintf("Request failed: %v", err)
		attempt.DurationMs = time.Since(start).Milliseconds()
		return attempt, err
	}
	defer resp.Body.Close()

	attempt.StatusCode = resp.StatusCode
	attempt.DurationMs = time.Since(start).Milliseconds()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		attempt.Error = fmt.Sprintf("Gateway returned status %d", resp.StatusCode)
		return attempt, nil
	}

	return attempt, nil
}

// GetCircuitBreakerState returns the current circuit breaker state
func (d *Dispatcher) GetCircuitBreakerState() string {
	return d.circuitBreaker.GetStateName()
}
