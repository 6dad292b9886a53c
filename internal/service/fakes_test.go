package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clinova/consult/internal/model"
	"github.com/clinova/consult/internal/notify"
	"github.com/clinova/consult/internal/provider"
)

// fakeMeetingStore reproduces the repository's atomic semantics in memory:
// every operation holds the mutex for its whole check-and-mutate, the way
// a single MongoDB update is atomic.
type fakeMeetingStore struct {
	mu       sync.Mutex
	meetings map[string]*model.Meeting // keyed by consultation ID
}

func newFakeMeetingStore() *fakeMeetingStore {
	return &fakeMeetingStore{meetings: make(map[string]*model.Meeting)}
}

func copyMeeting(m *model.Meeting) *model.Meeting {
	out := *m
	out.Participants = append([]model.Participant(nil), m.Participants...)
	if m.ActualStartTime != nil {
		t := *m.ActualStartTime
		out.ActualStartTime = &t
	}
	return &out
}

func (f *fakeMeetingStore) GetByConsultationID(_ context.Context, consultationID string) (*model.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.meetings[consultationID]
	if !ok {
		return nil, model.NewNotFoundError("meeting not found for consultation " + consultationID)
	}
	return copyMeeting(m), nil
}

func (f *fakeMeetingStore) CreateIfAbsent(_ context.Context, meeting *model.Meeting) (*model.Meeting, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if existing, ok := f.meetings[meeting.ConsultationID]; ok {
		return copyMeeting(existing), false, nil
	}
	stored := copyMeeting(meeting)
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	f.meetings[meeting.ConsultationID] = stored
	return copyMeeting(stored), true, nil
}

func (f *fakeMeetingStore) byID(id primitive.ObjectID) *model.Meeting {
	for _, m := range f.meetings {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (f *fakeMeetingStore) AddParticipant(_ context.Context, id primitive.ObjectID, participant model.Participant) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := f.byID(id)
	if m == nil {
		return false, nil
	}
	joinable := false
	for _, s := range model.JoinableStatuses {
		if m.Status == s {
			joinable = true
			break
		}
	}
	if !joinable || m.ParticipantCount >= m.MaxParticipants {
		return false, nil
	}
	m.ParticipantCount++
	m.Participants = append(m.Participants, participant)
	return true, nil
}

func (f *fakeMeetingStore) UpdateStatus(_ context.Context, id primitive.ObjectID, from []model.MeetingStatus, to model.MeetingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := f.byID(id)
	if m == nil {
		return false, nil
	}
	for _, s := range from {
		if m.Status == s {
			m.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMeetingStore) StartInProgress(_ context.Context, id primitive.ObjectID, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := f.byID(id)
	if m == nil {
		return false, nil
	}
	switch m.Status {
	case model.MeetingScheduled, model.MeetingWaitingCustomer, model.MeetingInviteSent:
		m.Status = model.MeetingInProgress
		if m.ActualStartTime == nil {
			t := now
			m.ActualStartTime = &t
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeMeetingStore) Complete(_ context.Context, id primitive.ObjectID, notes string, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := f.byID(id)
	if m == nil || m.Status != model.MeetingInProgress {
		return false, nil
	}
	m.Status = model.MeetingCompleted
	m.Notes = notes
	return true, nil
}

func (f *fakeMeetingStore) Cancel(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := f.byID(id)
	if m == nil || m.Status.Terminal() {
		return false, nil
	}
	m.Status = model.MeetingCancelled
	return true, nil
}

// setStatus is a test hook to force a meeting into a given state
func (f *fakeMeetingStore) setStatus(consultationID string, status model.MeetingStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meetings[consultationID].Status = status
}

type fakeInviteLogStore struct {
	mu   sync.Mutex
	logs []*model.InviteLog
}

func (f *fakeInviteLogStore) Create(_ context.Context, log *model.InviteLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeInviteLogStore) List(_ context.Context, _ bson.M, _, _ int) ([]model.InviteLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.InviteLog, len(f.logs))
	for i, l := range f.logs {
		out[i] = *l
	}
	return out, int64(len(out)), nil
}

type stubProvisioner struct {
	mu       sync.Mutex
	calls    int
	room     provider.Room
	fallback bool
	err      error
}

func (s *stubProvisioner) Provision(_ context.Context, consultationID string, _ time.Time, _ model.Provider) (provider.Room, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return provider.Room{}, s.fallback, s.err
	}
	room := s.room
	if room.Link == "" {
		room = provider.Room{
			Provider: model.ProviderGoogle,
			Link:     "https://meet.google.com/room-" + consultationID,
		}
	}
	return room, s.fallback, nil
}

func (s *stubProvisioner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubDispatcher struct {
	mu      sync.Mutex
	invites []notify.Invite
	fail    bool
}

func (s *stubDispatcher) SendInvite(_ context.Context, consultationID string, invite notify.Invite, correlationID string) (*model.InviteLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invites = append(s.invites, invite)

	log := &model.InviteLog{
		ConsultationID: consultationID,
		CorrelationID:  correlationID,
		Contact:        invite.Contact,
		MeetingLink:    invite.MeetingLink,
		FinalStatus:    "delivered",
		CreatedAt:      time.Now().UTC(),
	}
	if s.fail {
		log.FinalStatus = "failed"
		return log, model.NewDispatchError("invite delivery failed after 3 attempts")
	}
	return log, nil
}
