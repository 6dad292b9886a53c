package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinova/consult/internal/model"
)

// LockRepository handles named run-guard locks for the sweeper
type LockRepository struct {
	collection *mongo.Collection
}

// NewLockRepository creates a new lock repository
func NewLockRepository(db *MongoDB) *LockRepository {
	return &LockRepository{
		collection: db.GetCollection(CollectionSweepLocks),
	}
}

// Acquire attempts to take the named lock for this pod. Returns true when
// the lock was taken, false when another pod holds an unexpired lock.
// FindOneAndUpdate with upsert keeps acquisition atomic; a duplicate-key
// error on the unique name index means the race was lost.
func (r *LockRepository) Acquire(ctx context.Context, name, podID string, ttl time.Duration) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	// Match either an expired lock or no lock at all for this name.
	filter := bson.M{
		"name": name,
		"$or": []bson.M{
			{"expires_at": bson.M{"$lt": now}},
			{"expires_at": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"name":       name,
			"locked_by":  podID,
			"locked_at":  now,
			"expires_at": expiresAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result model.SweepLock
	err := r.collection.FindOneAndUpdate(ctxTimeout, filter, update, opts).Decode(&result)
	if err != nil {
		// An unexpired lock held elsewhere makes the upsert collide with
		// the unique name index.
		if mongo.IsDuplicateKeyError(err) || err == mongo.ErrNoDocuments {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if result.LockedBy != podID {
		return false, nil
	}

	slog.Debug("Acquired sweep lock",
		"name", name,
		"pod_id", podID,
		"expires_at", expiresAt,
	)

	return true, nil
}

// Release drops the named lock, but only if this pod owns it
func (r *LockRepository) Release(ctx context.Context, name, podID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"name":      name,
		"locked_by": podID,
	}

	result, err := r.collection.DeleteOne(ctxTimeout, filter)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if result.DeletedCount > 0 {
		slog.Debug("Released sweep lock", "name", name, "pod_id", podID)
	}

	return nil
}

// CleanExpired removes locks whose TTL has passed. Covers pods that
// crashed while holding a lock; the TTL index does the same lazily.
func (r *LockRepository) CleanExpired(ctx context.Context) (int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	}

	result, err := r.collection.DeleteMany(ctxTimeout, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired locks: %w", err)
	}

	return result.DeletedCount, nil
}
