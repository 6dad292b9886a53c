package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/clinova/consult/internal/model"
	"github.com/clinova/consult/internal/notify"
	"github.com/clinova/consult/internal/provider"
)

// MeetingStore is the atomic persistence contract the meeting service
// needs: unique-key upsert, bounded conditional increment, and
// status-predicate-guarded updates. Implemented by database.MeetingRepository.
type MeetingStore interface {
	GetByConsultationID(ctx context.Context, consultationID string) (*model.Meeting, error)
	CreateIfAbsent(ctx context.Context, meeting *model.Meeting) (*model.Meeting, bool, error)
	AddParticipant(ctx context.Context, id primitive.ObjectID, participant model.Participant) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from []model.MeetingStatus, to model.MeetingStatus) (bool, error)
	StartInProgress(ctx context.Context, id primitive.ObjectID, now time.Time) (bool, error)
	Complete(ctx context.Context, id primitive.ObjectID, notes string, now time.Time) (bool, error)
	Cancel(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// InviteLogStore persists invite dispatch audit documents. Implemented by
// database.InviteLogRepository.
type InviteLogStore interface {
	Create(ctx context.Context, log *model.InviteLog) error
	List(ctx context.Context, filter bson.M, page, limit int) ([]model.InviteLog, int64, error)
}

// Provisioner is the two-branch provider strategy. Implemented by
// provider.Selector.
type Provisioner interface {
	Provision(ctx context.Context, consultationID string, scheduled time.Time, preferred model.Provider) (provider.Room, bool, error)
}

// InviteSender delivers customer invites. Implemented by notify.Dispatcher.
type InviteSender interface {
	SendInvite(ctx context.Context, consultationID string, invite notify.Invite, correlationID string) (*model.InviteLog, error)
}
