package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clinova/consult/internal/model"
)

// AppointmentRepository reads and conditionally advances booking-side
// appointment records for the sweeper
type AppointmentRepository struct {
	collection *mongo.Collection
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *MongoDB) *AppointmentRepository {
	return &AppointmentRepository{
		collection: db.GetCollection(CollectionAppointments),
	}
}

// FindDueConfirmed retrieves confirmed appointments whose date is on or
// before maxDate ("2006-01-02", lexicographic order matches civil order).
// The precise date+time comparison against now happens in the sweeper,
// where the fixed clinic offset is applied.
func (r *AppointmentRepository) FindDueConfirmed(ctx context.Context, maxDate string) ([]model.Appointment, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status":           model.AppointmentConfirmed,
		"appointment_date": bson.M{"$lte": maxDate},
	}

	cursor, err := r.collection.Find(ctxTimeout, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find due appointments: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var appointments []model.Appointment
	if err := cursor.All(ctxTimeout, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode due appointments: %w", err)
	}

	return appointments, nil
}

// MarkConsulting advances a confirmed appointment to consulting. The
// current-status predicate lives in the update itself, so reruns and
// overlapping sweeps modify nothing and report false.
func (r *AppointmentRepository) MarkConsulting(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": model.AppointmentConfirmed,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     model.AppointmentConsulting,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark appointment consulting: %w", err)
	}

	return result.ModifiedCount == 1, nil
}
