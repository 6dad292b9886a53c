package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/clinova/consult/internal/model"
)

// Selector implements the explicit two-branch provisioning strategy:
// try the preferred backend, fall back to the deterministic self-hosted
// room. It reports which branch was used so callers can log it.
type Selector struct {
	google Client
	jitsi  Client
}

// NewSelector creates a provider selector
func NewSelector(google, jitsi Client) *Selector {
	return &Selector{
		google: google,
		jitsi:  jitsi,
	}
}

// Provision creates a room with the preferred provider, falling back to
// jitsi when the primary branch fails. fallbackUsed is true when the
// result did not come from the requested branch. The operation only
// fails outright when the fallback itself fails.
func (s *Selector) Provision(ctx context.Context, consultationID string, scheduled time.Time, preferred model.Provider) (Room, bool, error) {
	if preferred == model.ProviderJitsi {
		room, err := s.jitsi.CreateMeeting(ctx, consultationID, scheduled)
		if err != nil {
			return Room{}, false, model.NewProviderError("jitsi room creation failed", err)
		}
		return room, false, nil
	}

	room, err := s.google.CreateMeeting(ctx, consultationID, scheduled)
	if err == nil {
		return room, false, nil
	}

	slog.Warn("Primary provider failed, falling back to self-hosted room",
		"consultation_id", consultationID,
		"error", err,
	)

	room, fallbackErr := s.jitsi.CreateMeeting(ctx, consultationID, scheduled)
	if fallbackErr != nil {
		return Room{}, true, model.NewProviderError("both providers failed", err, fallbackErr)
	}

	return room, true, nil
}
