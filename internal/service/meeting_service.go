package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/consult/internal/model"
	"github.com/clinova/consult/internal/notify"
	"github.com/clinova/consult/internal/timing"
	"github.com/clinova/consult/pkg/middleware"
)

// MeetingService drives the online-consultation meeting lifecycle:
// idempotent provisioning, time-gated joins, invite dispatch, completion
// and cancellation. It holds no authoritative state of its own; every
// decision is recomputed from the persisted meeting and enforced through
// atomic store operations.
type MeetingService struct {
	meetings   MeetingStore
	inviteLogs InviteLogStore
	provider   Provisioner
	dispatcher InviteSender

	preJoin         time.Duration
	duration        time.Duration
	maxParticipants int
	loc             *time.Location
}

// NewMeetingService creates a new meeting service
func NewMeetingService(
	meetings MeetingStore,
	inviteLogs InviteLogStore,
	provisioner Provisioner,
	dispatcher InviteSender,
	preJoin, duration time.Duration,
	maxParticipants int,
	loc *time.Location,
) *MeetingService {
	return &MeetingService{
		meetings:        meetings,
		inviteLogs:      inviteLogs,
		provider:        provisioner,
		dispatcher:      dispatcher,
		preJoin:         preJoin,
		duration:        duration,
		maxParticipants: maxParticipants,
		loc:             loc,
	}
}

// GetOrCreate returns the meeting for the consultation, provisioning one
// on first call. Re-calls return the existing meeting unchanged: no new
// link, no new password. Provider failure falls back to the self-hosted
// room, so the operation only fails when both branches fail.
func (s *MeetingService) GetOrCreate(ctx context.Context, req CreateMeetingRequest) (*model.Meeting, error) {
	scheduled, preferred, err := req.Validate(s.loc)
	if err != nil {
		return nil, err
	}

	// Fast path: the common case after first provisioning.
	existing, err := s.meetings.GetByConsultationID(ctx, req.ConsultationID)
	if err == nil {
		return existing, nil
	}
	if !model.IsKind(err, model.KindNotFound) {
		return nil, err
	}

	room, fallbackUsed, err := s.provider.Provision(ctx, req.ConsultationID, scheduled, preferred)
	if err != nil {
		return nil, err
	}

	password, err := generatePassword()
	if err != nil {
		return nil, model.NewInternalError("failed to provision meeting", err)
	}

	now := time.Now().UTC()
	meeting := &model.Meeting{
		ConsultationID:  req.ConsultationID,
		DoctorID:        req.DoctorID,
		Provider:        room.Provider,
		MeetingLink:     room.Link,
		Password:        password,
		ScheduledTime:   scheduled,
		Status:          model.MeetingScheduled,
		MaxParticipants: s.maxParticipants,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	winner, created, err := s.meetings.CreateIfAbsent(ctx, meeting)
	if err != nil {
		return nil, err
	}

	if created {
		slog.Info("Provisioned meeting",
			"consultation_id", req.ConsultationID,
			"provider", winner.Provider,
			"fallback_used", fallbackUsed,
		)
	} else {
		// A concurrent call won the upsert; the provisioned room is
		// discarded and the winner's meeting is returned unchanged.
		slog.Debug("Meeting already provisioned concurrently",
			"consultation_id", req.ConsultationID,
		)
	}

	return winner, nil
}

// MeetingView is the UI-facing read model: the meeting plus the computed
// join window and button state
type MeetingView struct {
	Meeting *model.Meeting     `json:"meeting"`
	Window  timing.JoinWindow  `json:"join_window"`
	Button  timing.ButtonState `json:"button"`
	Message string             `json:"message"`
}

// Get returns the meeting with its current join window state
func (s *MeetingService) Get(ctx context.Context, consultationID string) (*MeetingView, error) {
	meeting, err := s.getMeeting(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	window := timing.ComputeJoinWindow(meeting.ScheduledTime, s.duration, s.preJoin)
	button := timing.StateAt(time.Now(), window)

	return &MeetingView{
		Meeting: meeting,
		Window:  window,
		Button:  button,
		Message: button.Message(),
	}, nil
}

// Prepare is the doctor-side preparation step, scheduled → waiting_customer
func (s *MeetingService) Prepare(ctx context.Context, consultationID string) (*model.Meeting, error) {
	meeting, err := s.getMeeting(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	ok, err := s.meetings.UpdateStatus(ctx, meeting.ID,
		[]model.MeetingStatus{model.MeetingScheduled}, model.MeetingWaitingCustomer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewTransitionError("meeting is not in scheduled state")
	}

	return s.getMeeting(ctx, consultationID)
}

// JoinResult is returned to a participant who passed the timing and
// capacity guards
type JoinResult struct {
	MeetingLink string         `json:"meeting_link"`
	Password    string         `json:"password"`
	Provider    model.Provider `json:"provider"`
}

// Join admits a participant: the timing guard runs first and rejected
// joins never mutate state; the capacity check-and-increment and the
// status flip to in_progress are both atomic store operations.
func (s *MeetingService) Join(ctx context.Context, consultationID string, req JoinRequest) (*JoinResult, error) {
	participantType, err := req.Validate()
	if err != nil {
		return nil, err
	}

	meeting, err := s.getMeeting(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	if meeting.Status.Terminal() {
		return nil, model.NewTransitionError("meeting is " + string(meeting.Status))
	}

	now := time.Now()
	window := timing.ComputeJoinWindow(meeting.ScheduledTime, s.duration, s.preJoin)
	if !timing.CanJoin(now, window) {
		return nil, model.NewTimingError(timing.StateAt(now, window).Message())
	}

	admitted, err := s.meetings.AddParticipant(ctx, meeting.ID, model.Participant{
		Type:     participantType,
		JoinedAt: now.UTC(),
	})
	if err != nil {
		return nil, err
	}
	if !admitted {
		// The guard covers both capacity and a concurrent cancel; re-read
		// to report the right error.
		current, readErr := s.getMeeting(ctx, consultationID)
		if readErr == nil && current.Status.Terminal() {
			return nil, model.NewTransitionError("meeting is " + string(current.Status))
		}
		return nil, model.NewCapacityError("The meeting is full")
	}

	started, err := s.meetings.StartInProgress(ctx, meeting.ID, now.UTC())
	if err != nil {
		return nil, err
	}
	if started {
		slog.Info("Meeting started",
			"consultation_id", consultationID,
			"participant_type", participantType,
		)
	}

	return &JoinResult{
		MeetingLink: meeting.MeetingLink,
		Password:    meeting.Password,
		Provider:    meeting.Provider,
	}, nil
}

// SendCustomerInvite dispatches the invite (link and password) to the
// customer. The status only moves waiting_customer → invite_sent after
// the dispatch succeeded; the audit log is persisted either way.
func (s *MeetingService) SendCustomerInvite(ctx context.Context, consultationID string, req InviteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	meeting, err := s.getMeeting(ctx, consultationID)
	if err != nil {
		return err
	}

	if meeting.Status != model.MeetingWaitingCustomer {
		return model.NewTransitionError("invite can only be sent while waiting for the customer")
	}

	correlationID := middleware.GetCorrelationID(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	inviteLog, dispatchErr := s.dispatcher.SendInvite(ctx, consultationID, notify.Invite{
		Contact:     req.Contact,
		MeetingLink: meeting.MeetingLink,
		Password:    meeting.Password,
	}, correlationID)

	if inviteLog != nil {
		if err := s.inviteLogs.Create(ctx, inviteLog); err != nil {
			slog.Error("Failed to persist invite log",
				"consultation_id", consultationID,
				"correlation_id", correlationID,
				"error", err,
			)
		}
	}

	if dispatchErr != nil {
		return dispatchErr
	}

	ok, err := s.meetings.UpdateStatus(ctx, meeting.ID,
		[]model.MeetingStatus{model.MeetingWaitingCustomer}, model.MeetingInviteSent)
	if err != nil {
		return err
	}
	if !ok {
		return model.NewTransitionError("meeting state changed during invite dispatch")
	}

	return nil
}

// Complete closes an in_progress meeting with the given notes, or the
// default note when omitted. Completing an already-completed meeting is
// an idempotent no-op: success, nothing mutated, notes untouched.
func (s *MeetingService) Complete(ctx context.Context, consultationID string, req CompleteRequest) (*model.Meeting, error) {
	meeting, err := s.getMeeting(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		notes = model.DefaultCompletionNote
	}

	ok, err := s.meetings.Complete(ctx, meeting.ID, notes, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		current, readErr := s.getMeeting(ctx, consultationID)
		if readErr != nil {
			return nil, readErr
		}
		if current.Status == model.MeetingCompleted {
			return current, nil
		}
		return nil, model.NewTransitionError("meeting is not in progress")
	}

	return s.getMeeting(ctx, consultationID)
}

// Cancel is the unconditional administrative override from any
// non-terminal state
func (s *MeetingService) Cancel(ctx context.Context, consultationID string) (*model.Meeting, error) {
	meeting, err := s.getMeeting(ctx, consultationID)
	if err != nil {
		return nil, err
	}

	ok, err := s.meetings.Cancel(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewTransitionError("meeting is " + string(meeting.Status))
	}

	return s.getMeeting(ctx, consultationID)
}

func (s *MeetingService) getMeeting(ctx context.Context, consultationID string) (*model.Meeting, error) {
	if strings.TrimSpace(consultationID) == "" {
		return nil, model.NewValidationError("consultation id is required")
	}
	return s.meetings.GetByConsultationID(ctx, consultationID)
}
