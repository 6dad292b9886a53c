package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AppointmentStatus represents the booking-side lifecycle of an appointment
type AppointmentStatus string

const (
	AppointmentPending    AppointmentStatus = "pending"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentConsulting AppointmentStatus = "consulting"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
)

// Appointment is owned by the booking flow. This service only reads
// confirmed rows and conditionally advances them to consulting once their
// scheduled civil time has elapsed; terminal rows are never touched.
type Appointment struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Status          AppointmentStatus  `json:"status" bson:"status"`
	AppointmentDate string             `json:"appointment_date" bson:"appointment_date"` // "2006-01-02"
	AppointmentTime string             `json:"appointment_time" bson:"appointment_time"` // "15:04"
	ServiceType     string             `json:"service_type,omitempty" bson:"service_type,omitempty"`
	LocationType    string             `json:"location_type,omitempty" bson:"location_type,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
