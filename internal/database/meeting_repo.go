package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinova/consult/internal/model"
)

// MeetingRepository handles meeting document operations. Every mutation
// that carries an invariant (one meeting per consultation, bounded
// participant count, legal status edges) is a single atomic operation
// against the collection; the repository never read-modify-writes.
type MeetingRepository struct {
	collection *mongo.Collection
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *MongoDB) *MeetingRepository {
	return &MeetingRepository{
		collection: db.GetCollection(CollectionMeetings),
	}
}

// GetByConsultationID retrieves the meeting attached to a consultation
func (r *MeetingRepository) GetByConsultationID(ctx context.Context, consultationID string) (*model.Meeting, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var meeting model.Meeting
	err := r.collection.FindOne(ctxTimeout, bson.M{"consultation_id": consultationID}).Decode(&meeting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.NewNotFoundError("meeting not found for consultation " + consultationID)
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	return &meeting, nil
}

// CreateIfAbsent atomically inserts the meeting unless one already exists
// for the consultation, and returns the winning document. The $setOnInsert
// upsert keyed on consultation_id (backed by a unique index) guarantees
// concurrent callers cannot create duplicates. The returned bool is true
// when this call created the document.
func (r *MeetingRepository) CreateIfAbsent(ctx context.Context, meeting *model.Meeting) (*model.Meeting, bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if meeting.ID.IsZero() {
		meeting.ID = primitive.NewObjectID()
	}

	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":               meeting.ID,
			"consultation_id":   meeting.ConsultationID,
			"doctor_id":         meeting.DoctorID,
			"provider":          meeting.Provider,
			"meeting_link":      meeting.MeetingLink,
			"password":          meeting.Password,
			"scheduled_time":    meeting.ScheduledTime,
			"status":            meeting.Status,
			"participant_count": meeting.ParticipantCount,
			"max_participants":  meeting.MaxParticipants,
			"created_at":        meeting.CreatedAt,
			"updated_at":        meeting.UpdatedAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result model.Meeting
	err := r.collection.FindOneAndUpdate(ctxTimeout, bson.M{"consultation_id": meeting.ConsultationID}, update, opts).Decode(&result)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert meeting: %w", err)
	}

	// The password is random per call, so it only matches when our insert won.
	created := result.Password == meeting.Password
	return &result, created, nil
}

// AddParticipant increments the participant count only while it is below
// max_participants and the meeting is in a joinable status, recording the
// joiner for audit in the same atomic update. Returns false when the guard
// did not match (capacity reached, or a concurrent cancel/complete).
func (r *MeetingRepository) AddParticipant(ctx context.Context, id primitive.ObjectID, participant model.Participant) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": model.JoinableStatuses},
		"$expr":  bson.M{"$lt": bson.A{"$participant_count", "$max_participants"}},
	}
	update := bson.M{
		"$inc":  bson.M{"participant_count": 1},
		"$push": bson.M{"participants": participant},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to add participant: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

// UpdateStatus moves the meeting to the target status only if its current
// status is one of from. Returns false when the guard did not match, which
// callers translate into an invalid-transition error or an idempotent
// no-op after re-reading the document.
func (r *MeetingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from []model.MeetingStatus, to model.MeetingStatus) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update meeting status: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

// StartInProgress flips any pre-session status to in_progress, setting
// actual_start_time only on the first join. The pipeline update keeps the
// set-if-unset decision inside the single atomic operation.
func (r *MeetingRepository) StartInProgress(ctx context.Context, id primitive.ObjectID, now time.Time) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"status": bson.M{"$in": []model.MeetingStatus{
			model.MeetingScheduled,
			model.MeetingWaitingCustomer,
			model.MeetingInviteSent,
		}},
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"status":            model.MeetingInProgress,
			"actual_start_time": bson.M{"$ifNull": bson.A{"$actual_start_time", now}},
			"updated_at":        now,
		}},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to start meeting: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

// Complete moves an in_progress meeting to completed with the given notes.
// Returns false when the meeting was not in_progress; the caller decides
// whether that is the idempotent completed case or an invalid transition.
func (r *MeetingRepository) Complete(ctx context.Context, id primitive.ObjectID, notes string, now time.Time) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": model.MeetingInProgress,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.MeetingCompleted,
			"notes":      notes,
			"updated_at": now,
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to complete meeting: %w", err)
	}

	return result.ModifiedCount == 1, nil
}

// Cancel moves any non-terminal meeting to cancelled
func (r *MeetingRepository) Cancel(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"status": bson.M{"$nin": []model.MeetingStatus{
			model.MeetingCompleted,
			model.MeetingCancelled,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.MeetingCancelled,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to cancel meeting: %w", err)
	}

	return result.ModifiedCount == 1, nil
}
