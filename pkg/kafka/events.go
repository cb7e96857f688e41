package kafka

import "time"

// Topics carrying appointment lifecycle events. The availability service
// consumes the events topic to invalidate cached slot listings.
const (
	TopicAppointmentEvents    = "fixwell.appointments.events"
	TopicAppointmentEventsDLQ = "fixwell.appointments.events.dlq"
)

// Appointment event types
const (
	EventAppointmentCreated     = "appointment.created"
	EventAppointmentConfirmed   = "appointment.confirmed"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentCompleted   = "appointment.completed"
)

// AppointmentEvent is the payload published on every appointment state
// change. Dates and times are in the business timezone.
type AppointmentEvent struct {
	AppointmentID   string    `json:"appointment_id"`
	ServiceTypeID   string    `json:"service_type_id"`
	CustomerEmail   string    `json:"customer_email"`
	AppointmentDate string    `json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime string    `json:"appointment_time"` // HH:MM
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	PreviousDate    string    `json:"previous_date,omitempty"` // set on reschedule
	OccurredAt      time.Time `json:"occurred_at"`
}

// NewAppointmentMessage builds a Kafka message for an appointment event,
// keyed by appointment ID so all events for one appointment stay ordered.
func NewAppointmentMessage(eventType string, event AppointmentEvent, source string) Message {
	return NewMessage().
		WithKey(event.AppointmentID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion("1").
		WithSource(source).
		Build()
}
