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

// InviteLogRepository handles invite dispatch audit documents
type InviteLogRepository struct {
	collection *mongo.Collection
}

// NewInviteLogRepository creates a new invite log repository
func NewInviteLogRepository(db *MongoDB) *InviteLogRepository {
	return &InviteLogRepository{
		collection: db.GetCollection(CollectionInviteLogs),
	}
}

// Create inserts a new invite log
func (r *InviteLogRepository) Create(ctx context.Context, log *model.InviteLog) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, log)
	if err != nil {
		return fmt.Errorf("failed to create invite log: %w", err)
	}

	return nil
}

// GetByID retrieves an invite log by ID
func (r *InviteLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.InviteLog, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var log model.InviteLog
	err := r.collection.FindOne(ctxTimeout, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.NewNotFoundError("invite log not found")
		}
		return nil, fmt.Errorf("failed to get invite log: %w", err)
	}

	return &log, nil
}

// List retrieves invite logs with filtering and pagination
func (r *InviteLogRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.InviteLog, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count invite logs: %w", err)
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invite logs: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var logs []model.InviteLog
	if err := cursor.All(ctxTimeout, &logs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode invite logs: %w", err)
	}

	return logs, total, nil
}
