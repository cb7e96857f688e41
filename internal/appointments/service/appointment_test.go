package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"fixwell/internal/appointments/repository"
	"fixwell/internal/appointments/validator"
	"fixwell/pkg/clock"
	"fixwell/pkg/config"
	mongotx "fixwell/pkg/db/mongo"
	apperrors "fixwell/pkg/errors"
	"fixwell/pkg/kafka"
	"fixwell/pkg/logger"
	"fixwell/pkg/model"
	"fixwell/pkg/sealer"
)

type mockAppointmentRepository struct {
	createFunc                func(ctx context.Context, appt *model.Appointment) error
	findByIDFunc              func(ctx context.Context, id string) (*model.Appointment, error)
	findActiveInRangeFunc     func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	countActiveForServiceFunc func(ctx context.Context, serviceTypeID string, from, to time.Time) (int64, error)
	findByCustomerEmailFunc   func(ctx context.Context, email string, limit int, offset int64) ([]*model.Appointment, error)
	countByCustomerEmailFunc  func(ctx context.Context, email string) (int64, error)
	updateFunc                func(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error)
	updateStatusFunc          func(ctx context.Context, id string, status model.AppointmentStatus, notes *string) (*mongo.UpdateResult, error)
}

var _ repository.AppointmentRepository = (*mockAppointmentRepository)(nil)

func (m *mockAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, appt)
	}
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Appointment, error) {
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	if m.findActiveInRangeFunc != nil {
		return m.findActiveInRangeFunc(ctx, from, to)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) CountActiveForService(ctx context.Context, serviceTypeID string, from, to time.Time) (int64, error) {
	if m.countActiveForServiceFunc != nil {
		return m.countActiveForServiceFunc(ctx, serviceTypeID, from, to)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) FindInRange(ctx context.Context, from, to time.Time, serviceTypeID string, limit int, offset int64) ([]*model.Appointment, error) {
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) CountInRange(ctx context.Context, from, to time.Time, serviceTypeID string) (int64, error) {
	return 0, nil
}

func (m *mockAppointmentRepository) FindByCustomerEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findByCustomerEmailFunc != nil {
		return m.findByCustomerEmailFunc(ctx, email, limit, offset)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) CountByCustomerEmail(ctx context.Context, email string) (int64, error) {
	if m.countByCustomerEmailFunc != nil {
		return m.countByCustomerEmailFunc(ctx, email)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) Update(ctx context.Context, id string, appt *model.Appointment) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, appt)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockAppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus, notes *string) (*mongo.UpdateResult, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, notes)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockAppointmentRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.AppointmentLock) error
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.AppointmentLock) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return nil
}

func (m *mockLockRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockRuleResolver struct {
	resolveFunc func(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error)
}

func (m *mockRuleResolver) ResolveForDay(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, dayOfWeek, serviceTypeID)
	}
	return []*model.AvailabilityRule{
		{ID: "r1", DayOfWeek: dayOfWeek, IsAvailable: true, StartTime: "09:00", EndTime: "17:00"},
	}, nil
}

type mockServiceTypeSource struct {
	getActiveFunc func(ctx context.Context, id string) (*model.ServiceType, error)
	validateFunc  func(st *model.ServiceType, date string, startTime string) error
}

func (m *mockServiceTypeSource) GetActive(ctx context.Context, id string) (*model.ServiceType, error) {
	if m.getActiveFunc != nil {
		return m.getActiveFunc(ctx, id)
	}
	return gutterCleaning(), nil
}

func (m *mockServiceTypeSource) ValidateBookingDate(st *model.ServiceType, date string, startTime string) error {
	if m.validateFunc != nil {
		return m.validateFunc(st, date, startTime)
	}
	return nil
}

type mockSuggester struct {
	slot *model.Slot
}

func (m *mockSuggester) NextAvailable(ctx context.Context, serviceTypeID string, from time.Time) (*model.Slot, error) {
	return m.slot, nil
}

type mockPublisher struct {
	published []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return nil
}

type mockInvalidator struct {
	dates []string
}

func (m *mockInvalidator) InvalidateDate(_ context.Context, date string) {
	m.dates = append(m.dates, date)
}

func gutterCleaning() *model.ServiceType {
	return &model.ServiceType{
		ID:                "st-gutter",
		Name:              "Gutter Cleaning",
		DurationMinutes:   60,
		BufferMinutes:     30,
		AllowedDays:       []int{1, 2, 3, 4, 5},
		MaxBookingsPerDay: 3,
		MinAdvanceHours:   2,
		MaxAdvanceDays:    30,
		IsActive:          true,
	}
}

// Monday, inside the default 09:00-17:00 window.
func bookingStart() time.Time {
	return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
}

func validAppointment() *model.Appointment {
	return &model.Appointment{
		ServiceTypeID:   "st-gutter",
		CustomerName:    "Pat Quill",
		CustomerEmail:   "pat@example.com",
		PropertyAddress: "12 Maple Street, Springfield",
		ScheduledDate:   bookingStart(),
	}
}

type fixture struct {
	repo        *mockAppointmentRepository
	locks       *mockLockRepository
	types       *mockServiceTypeSource
	rules       *mockRuleResolver
	events      *mockPublisher
	invalidator *mockInvalidator
	svc         *appointmentService
}

func newFixture() *fixture {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		TimeZone:             "UTC",
		ReadTimeout:          5 * time.Second,
		WriteTimeout:         5 * time.Second,
		SlotLockTTL:          10 * time.Second,
		BookingConflictRetry: 1,
	}

	f := &fixture{
		repo:        &mockAppointmentRepository{},
		locks:       &mockLockRepository{},
		types:       &mockServiceTypeSource{},
		rules:       &mockRuleResolver{},
		events:      &mockPublisher{},
		invalidator: &mockInvalidator{},
	}
	f.svc = &appointmentService{
		repo:         f.repo,
		lockRepo:     f.locks,
		validator:    validator.NewAppointmentValidator(cfg.Log),
		rules:        f.rules,
		serviceTypes: f.types,
		invalidator:  f.invalidator,
		events:       f.events,
		cfg:          cfg,
		clock:        clock.System(),
	}
	return f
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000}},
	}
}

func TestCreate_AutoConfirmsWithoutApproval(t *testing.T) {
	f := newFixture()

	appt := validAppointment()
	if err := f.svc.Create(context.Background(), appt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appt.Status != model.StatusConfirmed {
		t.Fatalf("expected status CONFIRMED, got %s", appt.Status)
	}
	if appt.DurationMinutes != 60 {
		t.Fatalf("expected snapshotted duration 60, got %d", appt.DurationMinutes)
	}
	if appt.ID == "" {
		t.Fatal("expected an ID to be assigned")
	}
	if len(f.events.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(f.events.published))
	}
}

func TestCreate_PendingWhenApprovalRequired(t *testing.T) {
	f := newFixture()
	f.types.getActiveFunc = func(ctx context.Context, id string) (*model.ServiceType, error) {
		st := gutterCleaning()
		st.RequiresApproval = true
		return st, nil
	}

	appt := validAppointment()
	if err := f.svc.Create(context.Background(), appt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appt.Status != model.StatusPending {
		t.Fatalf("expected status PENDING, got %s", appt.Status)
	}
}

func TestCreate_IgnoresClientSuppliedDuration(t *testing.T) {
	f := newFixture()

	appt := validAppointment()
	appt.DurationMinutes = 480
	if err := f.svc.Create(context.Background(), appt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appt.DurationMinutes != 60 {
		t.Fatalf("expected catalog duration 60, got %d", appt.DurationMinutes)
	}
}

func TestCreate_OverlappingAppointmentRejected(t *testing.T) {
	f := newFixture()
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "existing",
				ServiceTypeID:   "st-other",
				ScheduledDate:   time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	err := f.svc.Create(context.Background(), validAppointment())
	if !apperrors.HasCode(err, apperrors.CodeBookingConflict) {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", err)
	}
}

func TestCreate_AdjacentAppointmentAllowed(t *testing.T) {
	f := newFixture()
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "existing",
				ServiceTypeID:   "st-other",
				ScheduledDate:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	// Existing appointment ends exactly at 10:00, the requested start.
	if err := f.svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_CancelledAppointmentsDoNotBlock(t *testing.T) {
	f := newFixture()
	// The repository query already filters by active status, so the
	// service sees an empty day.
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{}, nil
	}

	if err := f.svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_DailyCapExceeded(t *testing.T) {
	f := newFixture()
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		day := []*model.Appointment{}
		for hour := 12; hour < 15; hour++ {
			day = append(day, &model.Appointment{
				ID:              "existing",
				ServiceTypeID:   "st-gutter",
				ScheduledDate:   time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			})
		}
		return day, nil
	}
	f.repo.countActiveForServiceFunc = func(ctx context.Context, serviceTypeID string, from, to time.Time) (int64, error) {
		return 3, nil
	}

	err := f.svc.Create(context.Background(), validAppointment())
	if !apperrors.HasCode(err, apperrors.CodeDailyCapExceeded) {
		t.Fatalf("expected DAILY_CAP_EXCEEDED, got %v", err)
	}
}

func TestUpdate_SameDayRescheduleNotCountedAgainstCap(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusConfirmed
	stored.DurationMinutes = 60
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{stored}, nil
	}
	f.types.getActiveFunc = func(ctx context.Context, id string) (*model.ServiceType, error) {
		st := gutterCleaning()
		st.MaxBookingsPerDay = 1
		return st, nil
	}
	f.repo.countActiveForServiceFunc = func(ctx context.Context, serviceTypeID string, from, to time.Time) (int64, error) {
		return 1, nil
	}

	newStart := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	_, err := f.svc.Update(context.Background(), stored.ID, &model.AppointmentUpdate{
		ScheduledDate: &newStart,
	})
	if err != nil {
		t.Fatalf("expected own booking excluded from the cap, got %v", err)
	}
}

func TestCreate_OutsideRuleWindowRejected(t *testing.T) {
	f := newFixture()
	f.rules.resolveFunc = func(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
		return []*model.AvailabilityRule{
			{ID: "r1", DayOfWeek: dayOfWeek, IsAvailable: true, StartTime: "13:00", EndTime: "17:00"},
		}, nil
	}

	err := f.svc.Create(context.Background(), validAppointment())
	if !apperrors.HasCode(err, apperrors.CodeBookingConflict) {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", err)
	}
}

func TestCreate_NoRulesMeansDayClosed(t *testing.T) {
	f := newFixture()
	f.rules.resolveFunc = func(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
		return []*model.AvailabilityRule{}, nil
	}

	err := f.svc.Create(context.Background(), validAppointment())
	if !apperrors.HasCode(err, apperrors.CodeDayNotAllowed) {
		t.Fatalf("expected DAY_NOT_ALLOWED, got %v", err)
	}
}

func TestCreate_LockContentionEventuallyConflicts(t *testing.T) {
	f := newFixture()
	attempts := 0
	f.locks.createFunc = func(ctx context.Context, lock *model.AppointmentLock) error {
		attempts++
		return duplicateKeyError()
	}

	err := f.svc.Create(context.Background(), validAppointment())
	if !apperrors.HasCode(err, apperrors.CodeBookingConflict) {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 lock attempts (1 + 1 retry), got %d", attempts)
	}
}

func TestCreate_OverlappingUnalignedStartsShareTheDayLock(t *testing.T) {
	f := newFixture()

	// Held locks are never released, standing in for a concurrent
	// writer that has not committed yet. The repository always reads an
	// empty snapshot, so only lock contention can reject the overlap.
	held := map[string]bool{}
	f.locks.createFunc = func(ctx context.Context, lock *model.AppointmentLock) error {
		if held[lock.ID] {
			return duplicateKeyError()
		}
		held[lock.ID] = true
		return nil
	}
	f.locks.deleteFunc = func(ctx context.Context, id string) error {
		return nil
	}

	first := validAppointment()
	if err := f.svc.Create(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := validAppointment()
	second.ScheduledDate = bookingStart().Add(30 * time.Minute)
	err := f.svc.Create(context.Background(), second)
	if !apperrors.HasCode(err, apperrors.CodeBookingConflict) {
		t.Fatalf("expected BOOKING_CONFLICT for the 10:30 overlap, got %v", err)
	}
}

func TestCreate_LockContentionClearsOnRetry(t *testing.T) {
	f := newFixture()
	attempts := 0
	f.locks.createFunc = func(ctx context.Context, lock *model.AppointmentLock) error {
		attempts++
		if attempts == 1 {
			return duplicateKeyError()
		}
		return nil
	}

	if err := f.svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_LockReleasedAfterBooking(t *testing.T) {
	f := newFixture()
	released := ""
	f.locks.deleteFunc = func(ctx context.Context, id string) error {
		released = id
		return nil
	}

	if err := f.svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released != "day_2026-03-02" {
		t.Fatalf("expected lock day_2026-03-02 released, got %q", released)
	}
}

func TestCreate_ExclusiveSecondVisitRejected(t *testing.T) {
	f := newFixture()
	f.types.getActiveFunc = func(ctx context.Context, id string) (*model.ServiceType, error) {
		st := gutterCleaning()
		st.IsExclusive = true
		st.ExclusiveDays = []int{1}
		return st, nil
	}
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "existing",
				ServiceTypeID:   "st-gutter",
				ScheduledDate:   time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	err := f.svc.Create(context.Background(), validAppointment())
	if !apperrors.HasCode(err, apperrors.CodeBookingConflict) {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", err)
	}
}

func TestCreate_ExclusiveRuleIgnoresOtherTypes(t *testing.T) {
	f := newFixture()
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "existing",
				ServiceTypeID:   "st-fumigation",
				ScheduledDate:   time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
				DurationMinutes: 120,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	if err := f.svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_ConflictCarriesSuggestion(t *testing.T) {
	f := newFixture()
	f.svc.suggester = &mockSuggester{
		slot: &model.Slot{Date: "2026-03-03", Time: "09:00", EndTime: "10:00", DurationMinutes: 60},
	}
	f.repo.findActiveInRangeFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "existing",
				ServiceTypeID:   "st-other",
				ScheduledDate:   bookingStart(),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	err := f.svc.Create(context.Background(), validAppointment())
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeBookingConflict {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", err)
	}
	suggestion, ok := appErr.Details["suggestion"].(map[string]any)
	if !ok {
		t.Fatalf("expected a suggestion in details, got %+v", appErr.Details)
	}
	if suggestion["date"] != "2026-03-03" || suggestion["time"] != "09:00" {
		t.Fatalf("unexpected suggestion: %+v", suggestion)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	f := newFixture()

	appt := validAppointment()
	appt.CustomerEmail = "not-an-email"
	err := f.svc.Create(context.Background(), appt)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreate_SealedConfirmationCode(t *testing.T) {
	f := newFixture()
	sl, err := sealer.New("lfQVRuulcL2iOhOJ2r8BYTweoSKwVAJnIF9U+AL+M60=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.svc.sealer = sl

	appt := validAppointment()
	if err := f.svc.Create(context.Background(), appt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.ConfirmationCode == "" {
		t.Fatal("expected a confirmation code")
	}

	id, email, err := sl.Open(appt.ConfirmationCode)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != appt.ID || email != appt.CustomerEmail {
		t.Fatalf("code decodes to (%s, %s), want (%s, %s)", id, email, appt.ID, appt.CustomerEmail)
	}
}

func TestGetByConfirmationCode_EmailMustMatch(t *testing.T) {
	f := newFixture()
	sl, _ := sealer.New("lfQVRuulcL2iOhOJ2r8BYTweoSKwVAJnIF9U+AL+M60=")
	f.svc.sealer = sl

	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.CustomerEmail = "someone-else@example.com"
	stored.Status = model.StatusConfirmed
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	code, err := sl.Seal(stored.ID, "pat@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.GetByConfirmationCode(context.Background(), code)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetForCustomer_NormalizesEmailAndCounts(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"

	var queriedEmail string
	f.repo.findByCustomerEmailFunc = func(ctx context.Context, email string, limit int, offset int64) ([]*model.Appointment, error) {
		queriedEmail = email
		return []*model.Appointment{stored}, nil
	}
	f.repo.countByCustomerEmailFunc = func(ctx context.Context, email string) (int64, error) {
		return 7, nil
	}

	appts, total, err := f.svc.GetForCustomer(context.Background(), "  Pat@Example.COM ", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queriedEmail != "pat@example.com" {
		t.Fatalf("expected normalized email, got %q", queriedEmail)
	}
	if len(appts) != 1 || total != 7 {
		t.Fatalf("expected 1 appointment and total 7, got %d and %d", len(appts), total)
	}
}

func TestGetForCustomer_EmptyEmailRejected(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.GetForCustomer(context.Background(), "   ", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestConfirm_PendingBecomesConfirmed(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusPending
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	appt, err := f.svc.Confirm(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != model.StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", appt.Status)
	}
	if len(f.events.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(f.events.published))
	}
}

func TestComplete_FromPendingRejected(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusPending
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	_, err := f.svc.Complete(context.Background(), stored.ID, "")
	if !apperrors.HasCode(err, apperrors.CodeInvalidStatusTransition) {
		t.Fatalf("expected INVALID_STATUS_TRANSITION, got %v", err)
	}
}

func TestCancel_CompletedRejected(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusCompleted
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	_, err := f.svc.Cancel(context.Background(), stored.ID, "changed my mind")
	if !apperrors.HasCode(err, apperrors.CodeCannotCancel) {
		t.Fatalf("expected CANNOT_CANCEL, got %v", err)
	}
}

func TestCancel_RecordsReason(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusConfirmed
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	var savedNotes *string
	f.repo.updateStatusFunc = func(ctx context.Context, id string, status model.AppointmentStatus, notes *string) (*mongo.UpdateResult, error) {
		savedNotes = notes
		return &mongo.UpdateResult{MatchedCount: 1}, nil
	}

	appt, err := f.svc.Cancel(context.Background(), stored.ID, "customer moved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != model.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", appt.Status)
	}
	if savedNotes == nil || *savedNotes != "Cancelled: customer moved" {
		t.Fatalf("unexpected notes: %v", savedNotes)
	}
}

func TestUpdate_RescheduleReadmits(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusConfirmed
	stored.DurationMinutes = 60
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	lockAcquired := ""
	f.locks.createFunc = func(ctx context.Context, lock *model.AppointmentLock) error {
		lockAcquired = lock.ID
		return nil
	}

	newStart := time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)
	_, err := f.svc.Update(context.Background(), stored.ID, &model.AppointmentUpdate{
		ScheduledDate: &newStart,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lockAcquired != "day_2026-03-03" {
		t.Fatalf("expected reschedule to take the day lock, got %q", lockAcquired)
	}

	if len(f.events.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(f.events.published))
	}
	msg := f.events.published[0]
	if msg.GetEventType() != kafka.EventAppointmentRescheduled {
		t.Fatalf("expected %s event, got %s", kafka.EventAppointmentRescheduled, msg.GetEventType())
	}
	var event kafka.AppointmentEvent
	if err := msg.DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if event.AppointmentDate != "2026-03-03" || event.PreviousDate != "2026-03-02" {
		t.Fatalf("expected old and new dates on the event, got %+v", event)
	}
}

func TestCreate_LockExpiryAndEventTimeFollowTheClock(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.clock = clock.Fixed{Instant: now}

	var lockExpiry time.Time
	f.locks.createFunc = func(ctx context.Context, lock *model.AppointmentLock) error {
		lockExpiry = lock.ExpiresAt
		return nil
	}

	if err := f.svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lockExpiry.Equal(now.Add(10 * time.Second)) {
		t.Fatalf("expected lock to expire at %v, got %v", now.Add(10*time.Second), lockExpiry)
	}

	if len(f.events.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(f.events.published))
	}
	var event kafka.AppointmentEvent
	if err := f.events.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if !event.OccurredAt.Equal(now) {
		t.Fatalf("expected event stamped at %v, got %v", now, event.OccurredAt)
	}
}

func TestCreate_DropsCachedSlotsForBookedDate(t *testing.T) {
	f := newFixture()

	if err := f.svc.Create(context.Background(), validAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.invalidator.dates) != 1 || f.invalidator.dates[0] != "2026-03-02" {
		t.Fatalf("expected booked date dropped from the slot cache, got %v", f.invalidator.dates)
	}
}

func TestUpdate_RescheduleDropsCachedSlotsForBothDates(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusConfirmed
	stored.DurationMinutes = 60
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	newStart := time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)
	_, err := f.svc.Update(context.Background(), stored.ID, &model.AppointmentUpdate{
		ScheduledDate: &newStart,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"2026-03-02", "2026-03-03"}
	if len(f.invalidator.dates) != 2 || f.invalidator.dates[0] != want[0] || f.invalidator.dates[1] != want[1] {
		t.Fatalf("expected both dates dropped from the slot cache, got %v", f.invalidator.dates)
	}
}

func TestCancel_DropsCachedSlotsForFreedDate(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusConfirmed
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	if _, err := f.svc.Cancel(context.Background(), stored.ID, "customer moved"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.invalidator.dates) != 1 || f.invalidator.dates[0] != "2026-03-02" {
		t.Fatalf("expected freed date dropped from the slot cache, got %v", f.invalidator.dates)
	}
}

func TestUpdate_DirectStatusPatchRejected(t *testing.T) {
	f := newFixture()
	status := model.StatusCancelled

	_, err := f.svc.Update(context.Background(), "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1", &model.AppointmentUpdate{
		Status: &status,
	})
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUpdate_TerminalAppointmentRejected(t *testing.T) {
	f := newFixture()
	stored := validAppointment()
	stored.ID = "2f1f9f3a-1f43-4b84-9a58-0347e1e3a8a1"
	stored.Status = model.StatusCancelled
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Appointment, error) {
		return stored, nil
	}

	notes := "please add a gate code"
	_, err := f.svc.Update(context.Background(), stored.ID, &model.AppointmentUpdate{
		Notes: &notes,
	})
	if !apperrors.HasCode(err, apperrors.CodeInvalidStatusTransition) {
		t.Fatalf("expected INVALID_STATUS_TRANSITION, got %v", err)
	}
}
