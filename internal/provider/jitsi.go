package provider

import (
	"context"
	"strings"
	"time"

	"github.com/clinova/consult/internal/model"
)

// JitsiBuilder derives self-hosted room links deterministically from the
// consultation ID. It performs no network calls, so it never fails and is
// safe as the fallback branch.
type JitsiBuilder struct {
	baseURL string
}

// NewJitsiBuilder creates a jitsi link builder
func NewJitsiBuilder(baseURL string) *JitsiBuilder {
	return &JitsiBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateMeeting builds the room link. The room name embeds the
// consultation ID so repeated calls yield the same room.
func (b *JitsiBuilder) CreateMeeting(_ context.Context, consultationID string, _ time.Time) (Room, error) {
	return Room{
		Provider: model.ProviderJitsi,
		Link:     b.baseURL + "/clinic-" + consultationID,
	}, nil
}
