package model

import "time"

// AppointmentStatus is the lifecycle state of an appointment. The legal
// transitions are PENDING -> {CONFIRMED, CANCELLED} and
// CONFIRMED -> {COMPLETED, CANCELLED}; COMPLETED and CANCELLED are
// terminal.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the appointment still occupies its time
// slot. Only PENDING and CONFIRMED appointments block availability.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transitions are possible.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment is a customer booking for a service type at an instant.
// DurationMinutes is a snapshot of the service type's duration at
// booking time and is never recomputed afterwards.
type Appointment struct {
	ID               string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	ServiceTypeID    string            `json:"service_type_id" bson:"service_type_id" validate:"required"`
	CustomerID       string            `json:"customer_id,omitempty" bson:"customer_id,omitempty" validate:"omitempty"`
	CustomerName     string            `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail    string            `json:"customer_email" bson:"customer_email" validate:"required,loose_email"`
	CustomerPhone    string            `json:"customer_phone,omitempty" bson:"customer_phone,omitempty" validate:"omitempty,loose_phone"`
	PropertyAddress  string            `json:"property_address" bson:"property_address" validate:"required,min=10,max=200"`
	TimeZone         string            `json:"time_zone,omitempty" bson:"time_zone,omitempty" validate:"omitempty,timezone"`
	ScheduledDate    time.Time         `json:"scheduled_date" bson:"scheduled_date" validate:"required"`
	DurationMinutes  int               `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=15,max=480"`
	Status           AppointmentStatus `json:"status" bson:"status" validate:"required,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	Notes            string            `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	ConfirmationCode string            `json:"confirmation_code,omitempty" bson:"confirmation_code,omitempty"`
	CreatedAt        time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt        time.Time         `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// EndDate is the instant the appointment's interval ends.
func (a *Appointment) EndDate() time.Time {
	return a.ScheduledDate.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// AppointmentUpdate carries partial updates. Status changes route
// through the state machine in the appointments service; duration is
// deliberately absent because it is immutable post-creation.
type AppointmentUpdate struct {
	CustomerName    *string            `json:"customer_name,omitempty" validate:"omitempty,min=2,max=100"`
	CustomerEmail   *string            `json:"customer_email,omitempty" validate:"omitempty,loose_email"`
	CustomerPhone   *string            `json:"customer_phone,omitempty" validate:"omitempty,loose_phone"`
	PropertyAddress *string            `json:"property_address,omitempty" validate:"omitempty,min=10,max=200"`
	TimeZone        *string            `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	ScheduledDate   *time.Time         `json:"scheduled_date,omitempty"`
	ServiceTypeID   *string            `json:"service_type_id,omitempty" validate:"omitempty,min=1"`
	Status          *AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	Notes           *string            `json:"notes,omitempty" validate:"omitempty,max=2000"`
}
