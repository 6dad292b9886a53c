// Package provider holds the video backend clients and the two-branch
// provisioning strategy that falls back from the hosted provider to a
// self-hosted room.
package provider

import (
	"context"
	"time"

	"github.com/clinova/consult/internal/model"
)

// Room is the result of provisioning a video session on a backend
type Room struct {
	Provider model.Provider
	Link     string
	Ref      string // backend-specific reference, if any
}

// Client creates meetings on a video backend
type Client interface {
	CreateMeeting(ctx context.Context, consultationID string, scheduled time.Time) (Room, error)
}
