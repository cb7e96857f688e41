package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	apptserrors "fixwell/internal/appointments/errors"
	"fixwell/internal/appointments/repository"
	"fixwell/internal/appointments/validator"
	"fixwell/pkg/clock"
	"fixwell/pkg/config"
	apperrors "fixwell/pkg/errors"
	httputil "fixwell/pkg/http"
	"fixwell/pkg/kafka"
	"fixwell/pkg/locale"
	"fixwell/pkg/model"
	"fixwell/pkg/sanitizer"
	"fixwell/pkg/sealer"
	"fixwell/pkg/timeutil"
)

// errLockHeld marks a slot lock held by a concurrent request. Unlike a
// genuine overlap, lock contention can clear within milliseconds, so it
// is the only admission failure worth retrying.
var errLockHeld = errors.New("slot lock held by another request")

// RuleResolver yields the effective availability rules for a day.
type RuleResolver interface {
	ResolveForDay(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error)
}

// ServiceTypeSource provides the service type catalog and its booking
// date policy.
type ServiceTypeSource interface {
	GetActive(ctx context.Context, id string) (*model.ServiceType, error)
	ValidateBookingDate(st *model.ServiceType, date string, startTime string) error
}

// SlotSuggester proposes the next open slot for a service type. The
// availability service implements it; a nil suggester just disables
// suggestions on conflict responses.
type SlotSuggester interface {
	NextAvailable(ctx context.Context, serviceTypeID string, from time.Time) (*model.Slot, error)
}

// EventPublisher emits appointment lifecycle events. Satisfied by
// *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// CacheInvalidator drops cached slot listings for a date. The
// availability service implements it; when the two run in one process
// the shared cache converges immediately instead of waiting for the
// Kafka round trip. Nil disables local invalidation.
type CacheInvalidator interface {
	InvalidateDate(ctx context.Context, date string)
}

type AppointmentService interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetByConfirmationCode(ctx context.Context, code string) (*model.Appointment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error)
	GetForDate(ctx context.Context, date string, serviceTypeID string, limit int, offset int64) ([]*model.Appointment, int64, error)
	GetForCustomer(ctx context.Context, email string, limit int, offset int64) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error)
	Confirm(ctx context.Context, id string) (*model.Appointment, error)
	Cancel(ctx context.Context, id string, reason string) (*model.Appointment, error)
	Complete(ctx context.Context, id string, notes string) (*model.Appointment, error)
}

type appointmentService struct {
	repo         repository.AppointmentRepository
	lockRepo     repository.AppointmentLockRepository
	validator    *validator.AppointmentValidator
	rules        RuleResolver
	serviceTypes ServiceTypeSource
	suggester    SlotSuggester
	invalidator  CacheInvalidator
	events       EventPublisher
	sealer       *sealer.Sealer
	cfg          *config.Config
	clock        clock.Clock
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.AppointmentLockRepository,
	validator *validator.AppointmentValidator,
	rules RuleResolver,
	serviceTypes ServiceTypeSource,
	suggester SlotSuggester,
	invalidator CacheInvalidator,
	events EventPublisher,
	sealer *sealer.Sealer,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:         repo,
		lockRepo:     lockRepo,
		validator:    validator,
		rules:        rules,
		serviceTypes: serviceTypes,
		suggester:    suggester,
		invalidator:  invalidator,
		events:       events,
		sealer:       sealer,
		cfg:          cfg,
		clock:        clock.System(),
	}
}

func (s *appointmentService) Create(ctx context.Context, appt *model.Appointment) error {
	s.sanitize(appt)

	st, err := s.serviceTypes.GetActive(ctx, appt.ServiceTypeID)
	if err != nil {
		return err
	}

	// Duration is always snapshotted from the catalog; client-supplied
	// values are ignored.
	appt.DurationMinutes = st.DurationMinutes

	// The engine owns the status; anything the client sent is discarded.
	appt.Status = model.StatusConfirmed
	if st.RequiresApproval {
		appt.Status = model.StatusPending
	}

	if err := s.validator.Validate(appt); err != nil {
		s.cfg.Log.Warn("Appointment validation failed",
			"service_type_id", appt.ServiceTypeID,
			"error", err,
		)
		return apperrors.Validation("Appointment validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.admit(ctx, appt, st); err != nil {
		return err
	}

	appt.ID = uuid.New().String()
	if s.sealer != nil {
		code, err := s.sealer.Seal(appt.ID, appt.CustomerEmail)
		if err != nil {
			return apperrors.Internal("Failed to generate confirmation code", err)
		}
		appt.ConfirmationCode = code
	}

	if err := s.book(ctx, appt, st, ""); err != nil {
		return err
	}

	s.cfg.Log.Info("Appointment created",
		"appointment_id", appt.ID,
		"service_type_id", appt.ServiceTypeID,
		"scheduled_date", appt.ScheduledDate,
		"status", appt.Status,
	)
	s.invalidateDay(ctx, appt.ScheduledDate)
	s.publishEvent(ctx, kafka.EventAppointmentCreated, appt, "")
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, apptserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Appointment", id)
		case errors.Is(err, apptserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		default:
			s.cfg.Log.Error("Failed to get appointment", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to get appointment", err)
		}
	}
	return appt, nil
}

// GetByConfirmationCode resolves a sealed confirmation code back to its
// appointment. The embedded email must still match; a code for a
// reassigned or mistyped appointment reads as not found rather than
// leaking another customer's booking.
func (s *appointmentService) GetByConfirmationCode(ctx context.Context, code string) (*model.Appointment, error) {
	if s.sealer == nil {
		return nil, apperrors.InvalidInput("Confirmation codes are not enabled")
	}

	id, email, err := s.sealer.Open(code)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid confirmation code")
	}

	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(appt.CustomerEmail, email) {
		return nil, apperrors.NotFound("Appointment")
	}

	return appt, nil
}

func (s *appointmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var (
		wg         sync.WaitGroup
		appts      []*model.Appointment
		totalCount int64
		findErr    error
		countErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		totalCount, countErr = s.repo.Count(ctx)
	}()
	go func() {
		defer wg.Done()
		appts, findErr = s.repo.FindAll(ctx, limit, offset)
	}()
	wg.Wait()

	if countErr != nil {
		s.cfg.Log.Error("Failed to count appointments", "error", countErr)
		return nil, 0, apperrors.Internal("Failed to count appointments", countErr)
	}
	if findErr != nil {
		s.cfg.Log.Error("Failed to list appointments", "error", findErr)
		return nil, 0, apperrors.Internal("Failed to list appointments", findErr)
	}

	return appts, totalCount, nil
}

func (s *appointmentService) GetForDate(ctx context.Context, date string, serviceTypeID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	loc := s.cfg.Location()
	day, err := time.ParseInLocation(httputil.DateLayout, date, loc)
	if err != nil {
		return nil, 0, apperrors.InvalidInput("invalid date parameter: " + date)
	}
	from, to := timeutil.DayBounds(day, loc)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var (
		wg         sync.WaitGroup
		appts      []*model.Appointment
		totalCount int64
		findErr    error
		countErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		totalCount, countErr = s.repo.CountInRange(ctx, from, to, serviceTypeID)
	}()
	go func() {
		defer wg.Done()
		appts, findErr = s.repo.FindInRange(ctx, from, to, serviceTypeID, limit, offset)
	}()
	wg.Wait()

	if countErr != nil {
		s.cfg.Log.Error("Failed to count appointments for date", "date", date, "error", countErr)
		return nil, 0, apperrors.Internal("Failed to count appointments", countErr)
	}
	if findErr != nil {
		s.cfg.Log.Error("Failed to list appointments for date", "date", date, "error", findErr)
		return nil, 0, apperrors.Internal("Failed to list appointments", findErr)
	}

	return appts, totalCount, nil
}

func (s *appointmentService) GetForCustomer(ctx context.Context, email string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	email = sanitizer.NormalizeEmail(email)
	if email == "" {
		return nil, 0, apperrors.InvalidInput("customer_email parameter is required")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var (
		wg         sync.WaitGroup
		appts      []*model.Appointment
		totalCount int64
		findErr    error
		countErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		totalCount, countErr = s.repo.CountByCustomerEmail(ctx, email)
	}()
	go func() {
		defer wg.Done()
		appts, findErr = s.repo.FindByCustomerEmail(ctx, email, limit, offset)
	}()
	wg.Wait()

	if countErr != nil {
		s.cfg.Log.Error("Failed to count appointments for customer", "error", countErr)
		return nil, 0, apperrors.Internal("Failed to count appointments", countErr)
	}
	if findErr != nil {
		s.cfg.Log.Error("Failed to list appointments for customer", "error", findErr)
		return nil, 0, apperrors.Internal("Failed to list appointments", findErr)
	}

	return appts, totalCount, nil
}

func (s *appointmentService) Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error) {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Appointment update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if updates.Status != nil {
		return nil, apperrors.InvalidInput("Status cannot be patched directly; use the confirm, cancel or complete operations")
	}

	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if appt.Status.IsTerminal() {
		return nil, apperrors.InvalidStatusTransition(
			fmt.Sprintf("appointment in status %s cannot be modified", appt.Status))
	}

	previousDate := appt.ScheduledDate
	rescheduled := s.applyUpdates(appt, updates)
	s.sanitize(appt)

	st, err := s.serviceTypes.GetActive(ctx, appt.ServiceTypeID)
	if err != nil {
		return nil, err
	}

	if rescheduled {
		appt.DurationMinutes = st.DurationMinutes
		if err := s.admit(ctx, appt, st); err != nil {
			return nil, err
		}
		if err := s.bookUpdate(ctx, appt, st); err != nil {
			return nil, err
		}
		s.invalidateDay(ctx, previousDate)
		s.invalidateDay(ctx, appt.ScheduledDate)
		s.publishRescheduled(ctx, appt, previousDate)
	} else {
		if _, err := s.repo.Update(ctx, id, appt); err != nil {
			return nil, s.mapRepoError(err, id, "update appointment")
		}
	}

	return s.GetByID(ctx, id)
}

func (s *appointmentService) Confirm(ctx context.Context, id string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusConfirmed, kafka.EventAppointmentConfirmed, "")
}

func (s *appointmentService) Complete(ctx context.Context, id string, notes string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.StatusCompleted, kafka.EventAppointmentCompleted, notes)
}

func (s *appointmentService) Cancel(ctx context.Context, id string, reason string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appt.Status.CanTransitionTo(model.StatusCancelled) {
		return nil, apperrors.CannotCancel(string(appt.Status))
	}

	note := ""
	if reason != "" {
		note = "Cancelled: " + reason
	}
	return s.commitTransition(ctx, appt, model.StatusCancelled, kafka.EventAppointmentCancelled, note)
}

func (s *appointmentService) transition(ctx context.Context, id string, target model.AppointmentStatus, eventType string, note string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appt.Status.CanTransitionTo(target) {
		return nil, apperrors.InvalidStatusTransition(
			fmt.Sprintf("cannot transition appointment from %s to %s", appt.Status, target))
	}

	return s.commitTransition(ctx, appt, target, eventType, note)
}

func (s *appointmentService) commitTransition(ctx context.Context, appt *model.Appointment, target model.AppointmentStatus, eventType string, note string) (*model.Appointment, error) {
	previous := appt.Status

	var notes *string
	if note != "" {
		combined := sanitizer.NormalizeNotes(note)
		if appt.Notes != "" {
			combined = appt.Notes + "\n" + combined
		}
		appt.Notes = combined
		notes = &combined
	}

	if _, err := s.repo.UpdateStatus(ctx, appt.ID, target, notes); err != nil {
		return nil, s.mapRepoError(err, appt.ID, "update appointment status")
	}
	appt.Status = target

	s.cfg.Log.Info("Appointment status changed",
		"appointment_id", appt.ID,
		"from", previous,
		"to", target,
	)
	if target == model.StatusCancelled {
		// Cancelling frees the slot, so cached listings are stale.
		s.invalidateDay(ctx, appt.ScheduledDate)
	}
	s.publishEvent(ctx, eventType, appt, previous)
	return appt, nil
}

// admit runs the cheap, lock-free admission checks: the date policy of
// the service type and the availability rule window. The authoritative
// conflict checks run again under the slot lock in book.
func (s *appointmentService) admit(ctx context.Context, appt *model.Appointment, st *model.ServiceType) error {
	date, startMinutes := s.slotCoordinates(appt)

	if err := s.serviceTypes.ValidateBookingDate(st, date, timeutil.MinutesToTime(startMinutes)); err != nil {
		return err
	}

	loc := s.cfg.Location()
	weekday := int(appt.ScheduledDate.In(loc).Weekday())

	rules, err := s.rules.ResolveForDay(ctx, weekday, st.ID)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return apperrors.DayNotAllowed(weekday)
	}

	end := startMinutes + appt.DurationMinutes
	for _, rule := range rules {
		ruleStart, err := timeutil.TimeToMinutes(rule.StartTime)
		if err != nil {
			continue
		}
		ruleEnd, err := timeutil.TimeToMinutes(rule.EndTime)
		if err != nil {
			continue
		}
		if startMinutes >= ruleStart && end <= ruleEnd {
			return nil
		}
	}

	return apperrors.BookingConflict(
		"requested time falls outside the available hours for this day",
		s.suggestion(ctx, st.ID, appt.ScheduledDate),
	)
}

// book serializes admission for one slot through an advisory lock, then
// re-checks conflicts and inserts inside a transaction. Lock contention
// is retried; a confirmed overlap is returned to the caller immediately.
func (s *appointmentService) book(ctx context.Context, appt *model.Appointment, st *model.ServiceType, excludeID string) error {
	attempts := 1 + s.cfg.BookingConflictRetry

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		err = s.tryBook(ctx, appt, st, excludeID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errLockHeld) {
			return err
		}
		s.cfg.Log.Warn("Slot lock contention, retrying",
			"scheduled_date", appt.ScheduledDate,
			"attempt", attempt+1,
		)
		time.Sleep(50 * time.Millisecond)
	}

	return apperrors.BookingConflict(
		"this time slot is currently being booked by another request, please try again",
		s.suggestion(ctx, st.ID, appt.ScheduledDate),
	)
}

func (s *appointmentService) tryBook(ctx context.Context, appt *model.Appointment, st *model.ServiceType, excludeID string) error {
	lockID := s.lockID(appt)

	if err := s.acquireSlotLock(ctx, lockID); err != nil {
		return err
	}
	defer s.releaseSlotLock(ctx, lockID)

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkConflicts(sessCtx, appt, st, excludeID); err != nil {
			return err
		}
		if excludeID != "" {
			_, err := s.repo.Update(sessCtx, appt.ID, appt)
			return err
		}
		return s.repo.Create(sessCtx, appt)
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to persist appointment", "error", err)
		return apperrors.Internal("Failed to persist appointment", err)
	}
	return nil
}

func (s *appointmentService) bookUpdate(ctx context.Context, appt *model.Appointment, st *model.ServiceType) error {
	return s.book(ctx, appt, st, appt.ID)
}

// checkConflicts is the authoritative admission pass. It runs inside
// the booking transaction with the slot lock held, so the day's active
// appointments cannot change underneath it.
func (s *appointmentService) checkConflicts(ctx context.Context, appt *model.Appointment, st *model.ServiceType, excludeID string) error {
	loc := s.cfg.Location()
	dayStart, dayEnd := timeutil.DayBounds(appt.ScheduledDate, loc)

	dayAppts, err := s.repo.FindActiveInRange(ctx, dayStart, dayEnd)
	if err != nil {
		return apperrors.Internal("Failed to load appointments for conflict check", err)
	}

	active := dayAppts[:0]
	excludedSameType := false
	for _, existing := range dayAppts {
		if existing.ID == excludeID {
			excludedSameType = existing.ServiceTypeID == st.ID
			continue
		}
		active = append(active, existing)
	}

	start := appt.ScheduledDate
	end := appt.EndDate()
	for _, existing := range active {
		if start.Before(existing.EndDate()) && end.After(existing.ScheduledDate) {
			return apperrors.BookingConflict(
				"the requested time overlaps an existing appointment",
				s.suggestion(ctx, st.ID, appt.ScheduledDate),
			)
		}
	}

	sameTypeCount, err := s.repo.CountActiveForService(ctx, st.ID, dayStart, dayEnd)
	if err != nil {
		return apperrors.Internal("Failed to count appointments for the daily cap", err)
	}
	if excludedSameType {
		// A same-day reschedule must not count its own booking.
		sameTypeCount--
	}
	if sameTypeCount >= int64(st.MaxBookingsPerDay) {
		return apperrors.DailyCapExceeded(st.MaxBookingsPerDay)
	}

	return s.checkExclusivity(appt, st, active)
}

// checkExclusivity enforces the single-visit rule: on its exclusive
// days an exclusive service type admits at most one active appointment,
// regardless of the daily cap.
func (s *appointmentService) checkExclusivity(appt *model.Appointment, st *model.ServiceType, dayAppts []*model.Appointment) error {
	weekday := int(appt.ScheduledDate.In(s.cfg.Location()).Weekday())
	if !st.IsExclusiveOn(weekday) {
		return nil
	}

	for _, existing := range dayAppts {
		if existing.ServiceTypeID == st.ID {
			return apperrors.BookingConflict(
				fmt.Sprintf("%s is limited to a single visit on this day and one is already booked", st.Name),
				nil,
			)
		}
	}
	return nil
}

func (s *appointmentService) acquireSlotLock(ctx context.Context, lockID string) error {
	lock := &model.AppointmentLock{
		ID:        lockID,
		ExpiresAt: s.clock.Now().UTC().Add(s.cfg.SlotLockTTL),
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", errLockHeld, lockID)
		}
		return apperrors.Internal("Failed to acquire slot lock", err)
	}
	return nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		// The TTL index reclaims stale locks, so a failed release only
		// delays the slot, it cannot wedge it.
		s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", err)
	}
}

func (s *appointmentService) slotCoordinates(appt *model.Appointment) (string, int) {
	loc := s.cfg.Location()
	start := appt.ScheduledDate.In(loc)
	return start.Format(httputil.DateLayout), start.Hour()*60 + start.Minute()
}

// lockID keys the advisory lock by day, not by start minute. Admission
// accepts any start time inside a rule window, so two overlapping
// requests need not share a start minute; only a day-wide lock
// guarantees they serialize before the conflict re-check.
func (s *appointmentService) lockID(appt *model.Appointment) string {
	loc := s.cfg.Location()
	return fmt.Sprintf("day_%s", appt.ScheduledDate.In(loc).Format(httputil.DateLayout))
}

func (s *appointmentService) suggestion(ctx context.Context, serviceTypeID string, from time.Time) map[string]any {
	if s.suggester == nil {
		return nil
	}

	slot, err := s.suggester.NextAvailable(ctx, serviceTypeID, from)
	if err != nil || slot == nil {
		if err != nil {
			s.cfg.Log.Warn("Failed to compute slot suggestion", "service_type_id", serviceTypeID, "error", err)
		}
		return nil
	}

	return map[string]any{
		"date":             slot.Date,
		"time":             slot.Time,
		"duration_minutes": slot.DurationMinutes,
	}
}

func (s *appointmentService) publishEvent(ctx context.Context, eventType string, appt *model.Appointment, previous model.AppointmentStatus) {
	if s.events == nil {
		return
	}

	loc := s.cfg.Location()
	start := appt.ScheduledDate.In(loc)
	event := kafka.AppointmentEvent{
		AppointmentID:   appt.ID,
		ServiceTypeID:   appt.ServiceTypeID,
		CustomerEmail:   appt.CustomerEmail,
		AppointmentDate: start.Format(httputil.DateLayout),
		AppointmentTime: timeutil.MinutesToTime(start.Hour()*60 + start.Minute()),
		DurationMinutes: appt.DurationMinutes,
		Status:          string(appt.Status),
		PreviousStatus:  string(previous),
		OccurredAt:      s.clock.Now().UTC(),
	}

	s.send(ctx, eventType, event)
}

// publishRescheduled carries the vacated date alongside the new one so
// consumers can invalidate both.
func (s *appointmentService) publishRescheduled(ctx context.Context, appt *model.Appointment, previousDate time.Time) {
	if s.events == nil {
		return
	}

	loc := s.cfg.Location()
	start := appt.ScheduledDate.In(loc)
	event := kafka.AppointmentEvent{
		AppointmentID:   appt.ID,
		ServiceTypeID:   appt.ServiceTypeID,
		CustomerEmail:   appt.CustomerEmail,
		AppointmentDate: start.Format(httputil.DateLayout),
		AppointmentTime: timeutil.MinutesToTime(start.Hour()*60 + start.Minute()),
		DurationMinutes: appt.DurationMinutes,
		Status:          string(appt.Status),
		PreviousDate:    previousDate.In(loc).Format(httputil.DateLayout),
		OccurredAt:      s.clock.Now().UTC(),
	}

	s.send(ctx, kafka.EventAppointmentRescheduled, event)
}

func (s *appointmentService) invalidateDay(ctx context.Context, at time.Time) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateDate(ctx, at.In(s.cfg.Location()).Format(httputil.DateLayout))
}

func (s *appointmentService) send(ctx context.Context, eventType string, event kafka.AppointmentEvent) {
	msg := kafka.NewAppointmentMessage(eventType, event, "appointments-service")
	if err := s.events.Publish(ctx, msg); err != nil {
		// Events drive cache invalidation and notifications, not
		// correctness; the booking stands either way.
		s.cfg.Log.Warn("Failed to publish appointment event",
			"appointment_id", event.AppointmentID,
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *appointmentService) applyUpdates(appt *model.Appointment, updates *model.AppointmentUpdate) bool {
	rescheduled := false

	if updates.CustomerName != nil {
		appt.CustomerName = *updates.CustomerName
	}
	if updates.CustomerEmail != nil {
		appt.CustomerEmail = *updates.CustomerEmail
	}
	if updates.CustomerPhone != nil {
		appt.CustomerPhone = *updates.CustomerPhone
	}
	if updates.PropertyAddress != nil {
		appt.PropertyAddress = *updates.PropertyAddress
	}
	if updates.TimeZone != nil {
		appt.TimeZone = *updates.TimeZone
	}
	if updates.Notes != nil {
		appt.Notes = *updates.Notes
	}
	if updates.ScheduledDate != nil && !updates.ScheduledDate.Equal(appt.ScheduledDate) {
		appt.ScheduledDate = *updates.ScheduledDate
		rescheduled = true
	}
	if updates.ServiceTypeID != nil && *updates.ServiceTypeID != appt.ServiceTypeID {
		appt.ServiceTypeID = *updates.ServiceTypeID
		rescheduled = true
	}

	return rescheduled
}

func (s *appointmentService) sanitize(appt *model.Appointment) {
	appt.ServiceTypeID = strings.TrimSpace(appt.ServiceTypeID)
	appt.CustomerName = sanitizer.NormalizeName(appt.CustomerName)
	appt.CustomerEmail = sanitizer.NormalizeEmail(appt.CustomerEmail)
	appt.PropertyAddress = sanitizer.NormalizeAddress(appt.PropertyAddress)
	appt.Notes = sanitizer.NormalizeNotes(appt.Notes)
	appt.ScheduledDate = appt.ScheduledDate.Truncate(time.Minute)

	phone := strings.TrimSpace(appt.CustomerPhone)
	if normalized := sanitizer.NormalizePhone(phone); normalized != "" {
		phone = normalized
	}
	appt.CustomerPhone = phone

	if appt.TimeZone == "" && appt.CustomerPhone != "" {
		appt.TimeZone = locale.InferTimezoneFromPhone(appt.CustomerPhone)
	}
}

func (s *appointmentService) mapRepoError(err error, id string, action string) error {
	switch {
	case errors.Is(err, apptserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Appointment", id)
	case errors.Is(err, apptserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid appointment ID format")
	default:
		s.cfg.Log.Error("Failed to "+action, "id", id, "error", err)
		return apperrors.Internal("Failed to "+action, err)
	}
}
