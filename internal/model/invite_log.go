package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InviteAttempt records a single invite delivery attempt against the
// notification gateway
type InviteAttempt struct {
	AttemptNumber int       `json:"attempt_number" bson:"attempt_number"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
	StatusCode    int       `json:"status_code,omitempty" bson:"status_code,omitempty"`
	Error         string    `json:"error,omitempty" bson:"error,omitempty"`
	DurationMs    int64     `json:"duration_ms" bson:"duration_ms"`
}

// InviteLog is the audit document for one customer-invite dispatch.
// The meeting password travels in the dispatch payload only and is never
// persisted here.
type InviteLog struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConsultationID string             `json:"consultation_id" bson:"consultation_id"`
	CorrelationID  string             `json:"correlation_id" bson:"correlation_id"`
	Contact        string             `json:"contact" bson:"contact"`
	MeetingLink    string             `json:"meeting_link" bson:"meeting_link"`
	Attempts       []InviteAttempt    `json:"attempts" bson:"attempts"`
	FinalStatus    string             `json:"final_status" bson:"final_status"` // "delivered" | "failed"
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	CompletedAt    time.Time          `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// InviteLogSummary is the list-endpoint shape
type InviteLogSummary struct {
	ID             string `json:"id"`
	ConsultationID string `json:"consultation_id"`
	CorrelationID  string `json:"correlation_id"`
	Contact        string `json:"contact"`
	FinalStatus    string `json:"final_status"`
	AttemptsCount  int    `json:"attempts_count"`
	CreatedAt      string `json:"created_at"`
	CompletedAt    string `json:"completed_at,omitempty"`
}

// ToSummary converts InviteLog to InviteLogSummary
func (il *InviteLog) ToSummary() InviteLogSummary {
	var createdAt, completedAt string
	if !il.CreatedAt.IsZero() {
		createdAt = il.CreatedAt.Format(time.RFC3339)
	}
	if !il.CompletedAt.IsZero() {
		completedAt = il.CompletedAt.Format(time.RFC3339)
	}

	return InviteLogSummary{
		ID:             il.ID.Hex(),
		ConsultationID: il.ConsultationID,
		CorrelationID:  il.CorrelationID,
		Contact:        il.Contact,
		FinalStatus:    il.FinalStatus,
		AttemptsCount:  len(il.Attempts),
		CreatedAt:      createdAt,
		CompletedAt:    completedAt,
	}
}
