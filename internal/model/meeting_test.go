package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from MeetingStatus
		to   MeetingStatus
		want bool
	}{
		{"scheduled to waiting_customer", MeetingScheduled, MeetingWaitingCustomer, true},
		{"scheduled to in_progress", MeetingScheduled, MeetingInProgress, true},
		{"scheduled to cancelled", MeetingScheduled, MeetingCancelled, true},
		{"scheduled to invite_sent skips prep", MeetingScheduled, MeetingInviteSent, false},
		{"scheduled to completed skips session", MeetingScheduled, MeetingCompleted, false},
		{"waiting_customer to invite_sent", MeetingWaitingCustomer, MeetingInviteSent, true},
		{"waiting_customer to in_progress", MeetingWaitingCustomer, MeetingInProgress, true},
		{"invite_sent to in_progress", MeetingInviteSent, MeetingInProgress, true},
		{"invite_sent back to waiting_customer", MeetingInviteSent, MeetingWaitingCustomer, false},
		{"in_progress to completed", MeetingInProgress, MeetingCompleted, true},
		{"in_progress to cancelled", MeetingInProgress, MeetingCancelled, true},
		{"completed is terminal", MeetingCompleted, MeetingCancelled, false},
		{"completed cannot restart", MeetingCompleted, MeetingInProgress, false},
		{"cancelled is terminal", MeetingCancelled, MeetingInProgress, false},
		{"cancelled cannot complete", MeetingCancelled, MeetingCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	all := []MeetingStatus{
		MeetingScheduled, MeetingWaitingCustomer, MeetingInviteSent,
		MeetingInProgress, MeetingCompleted, MeetingCancelled,
	}

	for _, terminal := range []MeetingStatus{MeetingCompleted, MeetingCancelled} {
		assert.True(t, terminal.Terminal())
		for _, to := range all {
			assert.False(t, terminal.CanTransitionTo(to),
				"terminal status %s must not transition to %s", terminal, to)
		}
	}
}

func TestJoinableStatusesExcludeTerminal(t *testing.T) {
	for _, s := range JoinableStatuses {
		assert.False(t, s.Terminal())
	}
	assert.Contains(t, JoinableStatuses, MeetingInProgress)
}

func TestParticipantTypeValid(t *testing.T) {
	assert.True(t, ParticipantDoctor.Valid())
	assert.True(t, ParticipantCustomer.Valid())
	assert.False(t, ParticipantType("nurse").Valid())
	assert.False(t, ParticipantType("").Valid())
}
