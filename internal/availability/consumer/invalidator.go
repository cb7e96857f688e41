// Package consumer wires appointment lifecycle events into slot cache
// invalidation, so cached listings converge well before their TTL when
// a booking lands on another instance.
package consumer

import (
	"context"

	"fixwell/pkg/kafka"
	"fixwell/pkg/logger"
)

// CacheInvalidator abstracts the availability service's invalidation
// entry point.
type CacheInvalidator interface {
	InvalidateDate(ctx context.Context, date string)
}

// NewInvalidationHandler returns the message handler for the
// appointment events topic. Unparseable payloads are returned as errors
// so the consumer's retry and DLQ machinery handles them.
func NewInvalidationHandler(invalidator CacheInvalidator, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event kafka.AppointmentEvent
		if err := msg.DecodeValue(&event); err != nil {
			log.Error("Failed to decode appointment event",
				"event_id", msg.GetEventID(),
				"error", err,
			)
			return err
		}

		invalidator.InvalidateDate(ctx, event.AppointmentDate)
		if event.PreviousDate != "" && event.PreviousDate != event.AppointmentDate {
			// Reschedules vacate a slot on the old date too.
			invalidator.InvalidateDate(ctx, event.PreviousDate)
		}
		log.Debug("Invalidated slot cache for date",
			"date", event.AppointmentDate,
			"event_type", msg.GetEventType(),
			"appointment_id", event.AppointmentID,
		)
		return nil
	}
}
