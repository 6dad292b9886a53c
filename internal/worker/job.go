package worker

import (
	"context"

	"github.com/clinova/consult/internal/model"
)

// Job is one appointment advancement submitted by the sweeper
type Job struct {
	Appointment   model.Appointment
	CorrelationID string
	Context       context.Context
}

// Result reports the outcome of one advancement. Advanced is false both
// on failure and when the status guard matched nothing (already swept).
type Result struct {
	AppointmentID string
	Advanced      bool
	Error         error
}
