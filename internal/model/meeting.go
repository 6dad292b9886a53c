package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider identifies the video backend hosting a meeting
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderJitsi  Provider = "jitsi"
)

// Valid reports whether the provider is one of the known backends
func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderJitsi
}

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingScheduled       MeetingStatus = "scheduled"
	MeetingWaitingCustomer MeetingStatus = "waiting_customer"
	MeetingInviteSent      MeetingStatus = "invite_sent"
	MeetingInProgress      MeetingStatus = "in_progress"
	MeetingCompleted       MeetingStatus = "completed"
	MeetingCancelled       MeetingStatus = "cancelled"
)

// transitions is the full edge set of the meeting state machine.
// completed and cancelled are terminal.
var transitions = map[MeetingStatus][]MeetingStatus{
	MeetingScheduled:       {MeetingWaitingCustomer, MeetingInProgress, MeetingCancelled},
	MeetingWaitingCustomer: {MeetingInviteSent, MeetingInProgress, MeetingCancelled},
	MeetingInviteSent:      {MeetingInProgress, MeetingCancelled},
	MeetingInProgress:      {MeetingCompleted, MeetingCancelled},
	MeetingCompleted:       {},
	MeetingCancelled:       {},
}

// CanTransitionTo reports whether the state machine permits moving to the
// target status from this one
func (s MeetingStatus) CanTransitionTo(to MeetingStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions
func (s MeetingStatus) Terminal() bool {
	return s == MeetingCompleted || s == MeetingCancelled
}

// JoinableStatuses are the statuses from which a participant join is
// accepted, subject to the timing guard. A join against an already
// in_progress meeting is a second participant entering.
var JoinableStatuses = []MeetingStatus{
	MeetingScheduled,
	MeetingWaitingCustomer,
	MeetingInviteSent,
	MeetingInProgress,
}

// ParticipantType distinguishes who joined; both types count identically
// toward capacity
type ParticipantType string

const (
	ParticipantDoctor   ParticipantType = "doctor"
	ParticipantCustomer ParticipantType = "customer"
)

// Valid reports whether the participant type is known
func (t ParticipantType) Valid() bool {
	return t == ParticipantDoctor || t == ParticipantCustomer
}

// Participant is an audit entry for a single successful join
type Participant struct {
	Type     ParticipantType `json:"type" bson:"type"`
	JoinedAt time.Time       `json:"joined_at" bson:"joined_at"`
}

// Meeting represents the provisioned video session tied 1:1 to a
// consultation. The password is generated once at creation and never
// rotated; the document is never hard-deleted.
type Meeting struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConsultationID   string             `json:"consultation_id" bson:"consultation_id"`
	DoctorID         string             `json:"doctor_id" bson:"doctor_id"`
	Provider         Provider           `json:"provider" bson:"provider"`
	MeetingLink      string             `json:"meeting_link" bson:"meeting_link"`
	Password         string             `json:"-" bson:"password"`
	ScheduledTime    time.Time          `json:"scheduled_time" bson:"scheduled_time"`
	ActualStartTime  *time.Time         `json:"actual_start_time,omitempty" bson:"actual_start_time,omitempty"`
	Status           MeetingStatus      `json:"status" bson:"status"`
	ParticipantCount int                `json:"participant_count" bson:"participant_count"`
	MaxParticipants  int                `json:"max_participants" bson:"max_participants"`
	Participants     []Participant      `json:"participants,omitempty" bson:"participants,omitempty"`
	Notes            string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// DefaultCompletionNote is recorded when a completion call carries no notes
const DefaultCompletionNote = "Consultation completed"
