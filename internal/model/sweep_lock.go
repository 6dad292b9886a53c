package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SweepLock is the run-guard document for the appointment sweeper.
// A single named lock with a TTL keeps overlapping sweeps across pods from
// stepping on each other; the status-guarded updates make overlap harmless
// anyway.
type SweepLock struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	LockedBy  string             `json:"locked_by" bson:"locked_by"`
	LockedAt  time.Time          `json:"locked_at" bson:"locked_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}
