package model

import (
	"slices"
	"time"
)

// ServiceType is the bookable offering (e.g. gutter cleaning, furnace
// inspection). The booking engine treats these records as read-only
// configuration; they are managed through the admin surface.
type ServiceType struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	Name             string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMinutes  int       `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=15,max=480"`
	BufferMinutes    int       `json:"buffer_minutes" bson:"buffer_minutes" validate:"min=0,max=480"`
	AllowedDays      []int     `json:"allowed_days" bson:"allowed_days" validate:"required,min=1,max=7,dive,min=0,max=6"`
	IsExclusive      bool      `json:"is_exclusive" bson:"is_exclusive"`
	ExclusiveDays    []int     `json:"exclusive_days,omitempty" bson:"exclusive_days,omitempty" validate:"omitempty,max=7,dive,min=0,max=6"`
	MaxBookingsPerDay int      `json:"max_bookings_per_day" bson:"max_bookings_per_day" validate:"required,min=1,max=200"`
	MinAdvanceHours  int       `json:"min_advance_hours" bson:"min_advance_hours" validate:"min=0,max=720"`
	MaxAdvanceDays   int       `json:"max_advance_days" bson:"max_advance_days" validate:"required,min=1,max=365"`
	RequiresApproval bool      `json:"requires_approval" bson:"requires_approval"`
	IsActive         bool      `json:"is_active" bson:"is_active"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// AllowsDay reports whether dayOfWeek (0=Sunday..6=Saturday) is in the
// service type's allowed days.
func (st *ServiceType) AllowsDay(dayOfWeek int) bool {
	return slices.Contains(st.AllowedDays, dayOfWeek)
}

// IsExclusiveOn reports whether the service type claims exclusivity on
// the given day.
func (st *ServiceType) IsExclusiveOn(dayOfWeek int) bool {
	return st.IsExclusive && slices.Contains(st.ExclusiveDays, dayOfWeek)
}

// ServiceTypePatch carries partial updates to a service type.
type ServiceTypePatch struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DurationMinutes  *int    `json:"duration_minutes,omitempty" validate:"omitempty,min=15,max=480"`
	BufferMinutes    *int    `json:"buffer_minutes,omitempty" validate:"omitempty,min=0,max=480"`
	AllowedDays      []int   `json:"allowed_days,omitempty" validate:"omitempty,min=1,max=7,dive,min=0,max=6"`
	IsExclusive      *bool   `json:"is_exclusive,omitempty"`
	ExclusiveDays    []int   `json:"exclusive_days,omitempty" validate:"omitempty,max=7,dive,min=0,max=6"`
	MaxBookingsPerDay *int   `json:"max_bookings_per_day,omitempty" validate:"omitempty,min=1,max=200"`
	MinAdvanceHours  *int    `json:"min_advance_hours,omitempty" validate:"omitempty,min=0,max=720"`
	MaxAdvanceDays   *int    `json:"max_advance_days,omitempty" validate:"omitempty,min=1,max=365"`
	RequiresApproval *bool   `json:"requires_approval,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}
