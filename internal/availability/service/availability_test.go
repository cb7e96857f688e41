package service

import (
	"context"
	"testing"
	"time"

	"fixwell/internal/availability/cache"
	"fixwell/pkg/clock"
	"fixwell/pkg/config"
	apperrors "fixwell/pkg/errors"
	"fixwell/pkg/logger"
	"fixwell/pkg/model"
)

type mockRuleResolver struct {
	resolveFunc func(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error)
	calls       int
}

func (m *mockRuleResolver) ResolveForDay(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
	m.calls++
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, dayOfWeek, serviceTypeID)
	}
	return []*model.AvailabilityRule{
		{ID: "r1", DayOfWeek: dayOfWeek, IsAvailable: true, StartTime: "09:00", EndTime: "17:00"},
	}, nil
}

type mockServiceTypeSource struct {
	getByIDFunc func(ctx context.Context, id string) (*model.ServiceType, error)
}

func (m *mockServiceTypeSource) GetByID(ctx context.Context, id string) (*model.ServiceType, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return gutterCleaning(), nil
}

type mockAppointmentReader struct {
	findFunc func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
}

func (m *mockAppointmentReader) FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, from, to)
	}
	return []*model.Appointment{}, nil
}

func gutterCleaning() *model.ServiceType {
	return &model.ServiceType{
		ID:                "st-gutter",
		Name:              "Gutter Cleaning",
		DurationMinutes:   60,
		BufferMinutes:     30,
		AllowedDays:       []int{1, 2, 3, 4, 5},
		MaxBookingsPerDay: 10,
		MinAdvanceHours:   2,
		MaxAdvanceDays:    30,
		IsActive:          true,
	}
}

// Sunday, two days before the Tuesday used in most tests, so advance
// window checks never interfere.
var testNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	rules        *mockRuleResolver
	types        *mockServiceTypeSource
	appointments *mockAppointmentReader
	svc          *availabilityService
}

func newFixture() *fixture {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		TimeZone:           "UTC",
		SlotCacheTTL:       2 * time.Minute,
		SuggestionScanDays: 14,
	}

	f := &fixture{
		rules:        &mockRuleResolver{},
		types:        &mockServiceTypeSource{},
		appointments: &mockAppointmentReader{},
	}
	f.svc = &availabilityService{
		rules:        f.rules,
		serviceTypes: f.types,
		appointments: f.appointments,
		cfg:          cfg,
		clock:        clock.Fixed{Instant: testNow},
	}
	return f
}

func slotTimes(slots []*model.Slot) []string {
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Time)
	}
	return times
}

func assertTimes(t *testing.T, slots []*model.Slot, want ...string) {
	t.Helper()
	got := slotTimes(slots)
	if len(got) != len(want) {
		t.Fatalf("expected slots %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected slots %v, got %v", want, got)
		}
	}
}

func TestGetAvailableSlots_SteppedByDurationAndBuffer(t *testing.T) {
	f := newFixture()

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 60 minute jobs with a 30 minute buffer in a 09:00-17:00 window.
	assertTimes(t, slots, "09:00", "10:30", "12:00", "13:30", "15:00")
	if slots[0].EndTime != "10:00" || slots[0].DurationMinutes != 60 {
		t.Fatalf("unexpected first slot: %+v", slots[0])
	}
}

func TestGetAvailableSlots_BookedIntervalsExcluded(t *testing.T) {
	f := newFixture()
	f.appointments.findFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "a1",
				ServiceTypeID:   "st-gutter",
				ScheduledDate:   time.Date(2026, 3, 3, 10, 30, 0, 0, time.UTC),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The grid stays anchored at 09:00; only the occupied 10:30 slot
	// drops out.
	assertTimes(t, slots, "09:00", "12:00", "13:30", "15:00")
}

func TestGetAvailableSlots_DayNotAllowedIsEmpty(t *testing.T) {
	f := newFixture()

	// 2026-03-08 is a Sunday, outside AllowedDays {1..5}.
	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-08", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slotTimes(slots))
	}
}

func TestGetAvailableSlots_NoRulesIsEmpty(t *testing.T) {
	f := newFixture()
	f.rules.resolveFunc = func(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
		return []*model.AvailabilityRule{}, nil
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slotTimes(slots))
	}
}

func TestGetAvailableSlots_MinAdvanceFiltersSameDay(t *testing.T) {
	f := newFixture()
	// Scan the current day: now is 08:00, min advance 2h, so slots
	// before 10:00 are gone. Sunday is not allowed for gutters, so use
	// a Monday clock.
	f.svc.clock = clock.Fixed{Instant: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-02", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertTimes(t, slots, "10:30", "12:00", "13:30", "15:00")
}

func TestGetAvailableSlots_BeyondMaxAdvanceIsEmpty(t *testing.T) {
	f := newFixture()

	// now + 30 days = 2026-03-31; April 2nd is past the horizon.
	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-04-02", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slotTimes(slots))
	}
}

func TestGetAvailableSlots_TypeDailyCapClosesDay(t *testing.T) {
	f := newFixture()
	f.types.getByIDFunc = func(ctx context.Context, id string) (*model.ServiceType, error) {
		st := gutterCleaning()
		st.MaxBookingsPerDay = 1
		return st, nil
	}
	f.appointments.findFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "a1",
				ServiceTypeID:   "st-gutter",
				ScheduledDate:   time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slotTimes(slots))
	}
}

func TestGetAvailableSlots_RuleCapClosesRule(t *testing.T) {
	f := newFixture()
	f.rules.resolveFunc = func(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
		return []*model.AvailabilityRule{
			{ID: "r1", DayOfWeek: dayOfWeek, IsAvailable: true, StartTime: "09:00", EndTime: "17:00", MaxBookingsPerDay: 2},
		}, nil
	}
	f.appointments.findFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{ID: "a1", ServiceTypeID: "st-other", ScheduledDate: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), DurationMinutes: 60, Status: model.StatusConfirmed},
			{ID: "a2", ServiceTypeID: "st-other", ScheduledDate: time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC), DurationMinutes: 60, Status: model.StatusConfirmed},
		}, nil
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots once the rule cap is reached, got %v", slotTimes(slots))
	}
}

func TestGetAvailableSlots_ExclusiveDayWithVisitIsEmpty(t *testing.T) {
	f := newFixture()
	f.types.getByIDFunc = func(ctx context.Context, id string) (*model.ServiceType, error) {
		st := gutterCleaning()
		st.IsExclusive = true
		st.ExclusiveDays = []int{2}
		return st, nil
	}
	f.appointments.findFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		return []*model.Appointment{
			{
				ID:              "a1",
				ServiceTypeID:   "st-gutter",
				ScheduledDate:   time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
				DurationMinutes: 60,
				Status:          model.StatusConfirmed,
			},
		}, nil
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no further slots after the exclusive visit, got %v", slotTimes(slots))
	}
}

func TestGetAvailableSlots_CachedListingSkipsRecomputation(t *testing.T) {
	f := newFixture()
	f.svc.cache = cache.NewMemorySlotCache()
	defer f.svc.cache.Stop()

	if _, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := f.rules.calls

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.rules.calls != first {
		t.Fatalf("expected cache hit, rules resolved again (%d -> %d)", first, f.rules.calls)
	}
	assertTimes(t, slots, "09:00", "10:30", "12:00", "13:30", "15:00")
}

func TestGetAvailableSlots_InvalidationForcesRecomputation(t *testing.T) {
	f := newFixture()
	f.svc.cache = cache.NewMemorySlotCache()
	defer f.svc.cache.Stop()

	if _, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := f.rules.calls

	f.svc.InvalidateDate(context.Background(), "2026-03-03")

	if _, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.rules.calls == first {
		t.Fatal("expected recomputation after invalidation")
	}
}

func TestGetAvailableSlots_InactiveTypeListsEmpty(t *testing.T) {
	f := newFixture()
	f.types.getByIDFunc = func(ctx context.Context, id string) (*model.ServiceType, error) {
		st := gutterCleaning()
		st.IsActive = false
		return st, nil
	}

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots for an inactive type, got %v", slotTimes(slots))
	}
}

func TestGetAvailableSlots_UnknownTypeErrors(t *testing.T) {
	f := newFixture()
	f.types.getByIDFunc = func(ctx context.Context, id string) (*model.ServiceType, error) {
		return nil, apperrors.NotFoundWithID("Service type", id)
	}

	_, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "st-missing", 0)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestGetAvailableSlots_TypelessUsesRequestedDuration(t *testing.T) {
	f := newFixture()

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "", 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTimes(t, slots, "09:00", "10:30", "12:00", "13:30", "15:00")
}

func TestGetAvailableSlots_TypelessDefaultsDuration(t *testing.T) {
	f := newFixture()

	slots, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTimes(t, slots, "09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00")
}

func TestGetAvailableSlots_TypelessDurationOutOfRange(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetAvailableSlots(context.Background(), "2026-03-03", "", 500)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGetSlotsRange_CoversEachDay(t *testing.T) {
	f := newFixture()

	days, err := f.svc.GetSlotsRange(context.Background(), "2026-03-02", "2026-03-04", "st-gutter", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Date != "2026-03-02" || days[2].Date != "2026-03-04" {
		t.Fatalf("unexpected day ordering: %s .. %s", days[0].Date, days[2].Date)
	}
}

func TestGetSlotsRange_TooWideRejected(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetSlotsRange(context.Background(), "2026-03-01", "2026-04-15", "st-gutter", 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestNextAvailable_SkipsFullDays(t *testing.T) {
	f := newFixture()
	f.appointments.findFunc = func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
		// Monday the 2nd is fully booked; every other day is open.
		if from.Day() == 2 {
			appts := []*model.Appointment{}
			for _, hhmm := range []string{"09:00", "10:30", "12:00", "13:30", "15:00"} {
				start, _ := time.ParseInLocation("2006-01-02 15:04", "2026-03-02 "+hhmm, time.UTC)
				appts = append(appts, &model.Appointment{
					ID:              "a-" + hhmm,
					ServiceTypeID:   "st-gutter",
					ScheduledDate:   start,
					DurationMinutes: 60,
					Status:          model.StatusConfirmed,
				})
			}
			return appts, nil
		}
		return []*model.Appointment{}, nil
	}

	slot, err := f.svc.NextAvailable(context.Background(), "st-gutter", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot == nil || slot.Date != "2026-03-03" || slot.Time != "09:00" {
		t.Fatalf("expected 2026-03-03 09:00, got %+v", slot)
	}
}

func TestNextAvailable_StrictlyAfterFrom(t *testing.T) {
	f := newFixture()

	from := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	slot, err := f.svc.NextAvailable(context.Background(), "st-gutter", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot == nil || slot.Date != "2026-03-03" || slot.Time != "10:30" {
		t.Fatalf("expected 2026-03-03 10:30, got %+v", slot)
	}
}

func TestNextAvailable_NothingInHorizon(t *testing.T) {
	f := newFixture()
	f.rules.resolveFunc = func(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error) {
		return []*model.AvailabilityRule{}, nil
	}

	slot, err := f.svc.NextAvailable(context.Background(), "st-gutter", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot != nil {
		t.Fatalf("expected no slot, got %+v", slot)
	}
}
