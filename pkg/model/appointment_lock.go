package model

import "time"

// AppointmentLock is an advisory lock preventing two concurrent booking
// requests from admitting the same slot. The ID encodes the slot
// coordinates (service type, date bucket, start minute); the unique _id
// index makes the second insert fail with a duplicate key error.
type AppointmentLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
