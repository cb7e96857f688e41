package model

import "time"

// AvailabilityRule is a recurring, day-of-week scoped statement of open
// hours. ServiceTypeID is nil for general rules; a non-nil value scopes
// the rule to one service type, which then overrides general rules for
// that day. Rules are written by administrators and read-only to the
// booking flow.
type AvailabilityRule struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	DayOfWeek         int       `json:"day_of_week" bson:"day_of_week" validate:"min=0,max=6"`
	IsAvailable       bool      `json:"is_available" bson:"is_available"`
	StartTime         string    `json:"start_time" bson:"start_time" validate:"required,valid_time_range"`
	EndTime           string    `json:"end_time" bson:"end_time" validate:"required,valid_time_range"`
	ServiceTypeID     *string   `json:"service_type_id,omitempty" bson:"service_type_id,omitempty" validate:"omitempty,min=1"`
	BufferMinutes     int       `json:"buffer_minutes" bson:"buffer_minutes" validate:"min=0,max=480"`
	MaxBookingsPerDay int       `json:"max_bookings_per_day" bson:"max_bookings_per_day" validate:"min=1,max=200"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// AvailabilityRulePatch carries partial updates; nil fields are left
// untouched.
type AvailabilityRulePatch struct {
	DayOfWeek         *int    `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	IsAvailable       *bool   `json:"is_available,omitempty"`
	StartTime         *string `json:"start_time,omitempty" validate:"omitempty,valid_time_range"`
	EndTime           *string `json:"end_time,omitempty" validate:"omitempty,valid_time_range"`
	ServiceTypeID     *string `json:"service_type_id,omitempty" validate:"omitempty,min=1"`
	BufferMinutes     *int    `json:"buffer_minutes,omitempty" validate:"omitempty,min=0,max=480"`
	MaxBookingsPerDay *int    `json:"max_bookings_per_day,omitempty" validate:"omitempty,min=1,max=200"`
}
