package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes creates all necessary indexes for the collections
func CreateIndexes(ctx context.Context, db *MongoDB) error {
	slog.Info("Creating MongoDB indexes")

	if err := createMeetingIndexes(ctx, db); err != nil {
		return err
	}
	if err := createAppointmentIndexes(ctx, db); err != nil {
		return err
	}
	if err := createInviteLogIndexes(ctx, db); err != nil {
		return err
	}
	if err := createSweepLockIndexes(ctx, db); err != nil {
		return err
	}

	slog.Info("Successfully created all MongoDB indexes")
	return nil
}

func createMeetingIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionMeetings)

	indexes := []mongo.IndexModel{
		{
			// Backs the one-meeting-per-consultation invariant.
			Keys:    bson.D{{Key: "consultation_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_consultation_id_unique"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "scheduled_time", Value: 1},
			},
			Options: options.Index().SetName("idx_status_scheduled_time"),
		},
		{
			Keys:    bson.D{{Key: "doctor_id", Value: 1}},
			Options: options.Index().SetName("idx_doctor_id"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created meetings indexes")
	return nil
}

func createAppointmentIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionAppointments)

	indexes := []mongo.IndexModel{
		{
			// Backs the sweeper's due-appointment scan.
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "appointment_date", Value: 1},
			},
			Options: options.Index().SetName("idx_status_appointment_date"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created appointments indexes")
	return nil
}

func createInviteLogIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionInviteLogs)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "consultation_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_consultation_id_created_at"),
		},
		{
			Keys:    bson.D{{Key: "correlation_id", Value: 1}},
			Options: options.Index().SetName("idx_correlation_id"),
		},
		{
			Keys: bson.D{
				{Key: "final_status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_final_status_created_at"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created invite_logs indexes")
	return nil
}

func createSweepLockIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionSweepLocks)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_name_unique"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created sweep_locks indexes")
	return nil
}
