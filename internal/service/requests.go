package service

import (
	"strings"
	"time"

	"github.com/clinova/consult/internal/model"
)

// CreateMeetingRequest is the validated boundary record for meeting
// provisioning. ScheduledTime accepts RFC 3339 or the clinic's civil
// "2006-01-02 15:04" form, interpreted in the clinic offset.
type CreateMeetingRequest struct {
	ConsultationID    string `json:"consultation_id"`
	DoctorID          string `json:"doctor_id"`
	ScheduledTime     string `json:"scheduled_time"`
	PreferredProvider string `json:"preferred_provider,omitempty"`
}

// Validate checks the request and resolves the scheduled time and
// preferred provider
func (r *CreateMeetingRequest) Validate(loc *time.Location) (time.Time, model.Provider, error) {
	if strings.TrimSpace(r.ConsultationID) == "" {
		return time.Time{}, "", model.NewValidationError("consultation_id is required")
	}
	if strings.TrimSpace(r.DoctorID) == "" {
		return time.Time{}, "", model.NewValidationError("doctor_id is required")
	}

	scheduled, err := parseScheduledTime(r.ScheduledTime, loc)
	if err != nil {
		return time.Time{}, "", model.NewValidationError("malformed scheduled_time", err)
	}

	preferred := model.ProviderGoogle
	if r.PreferredProvider != "" {
		preferred = model.Provider(r.PreferredProvider)
		if !preferred.Valid() {
			return time.Time{}, "", model.NewValidationError("unknown provider: " + r.PreferredProvider)
		}
	}

	return scheduled, preferred, nil
}

func parseScheduledTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", value, loc)
}

// JoinRequest is the boundary record for a participant join
type JoinRequest struct {
	ParticipantType string `json:"participant_type"`
}

// Validate resolves the participant type
func (r *JoinRequest) Validate() (model.ParticipantType, error) {
	participantType := model.ParticipantType(r.ParticipantType)
	if !participantType.Valid() {
		return "", model.NewValidationError("participant_type must be doctor or customer")
	}
	return participantType, nil
}

// InviteRequest is the boundary record for sending the customer invite
type InviteRequest struct {
	Contact string `json:"contact"`
}

// Validate checks the contact is present
func (r *InviteRequest) Validate() error {
	if strings.TrimSpace(r.Contact) == "" {
		return model.NewValidationError("contact is required")
	}
	return nil
}

// CompleteRequest is the boundary record for completing a meeting
type CompleteRequest struct {
	Notes string `json:"notes,omitempty"`
}
