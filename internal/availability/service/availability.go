package service

import (
	"context"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"

	"fixwell/internal/availability/cache"
	"fixwell/pkg/clock"
	"fixwell/pkg/config"
	apperrors "fixwell/pkg/errors"
	httputil "fixwell/pkg/http"
	"fixwell/pkg/model"
	"fixwell/pkg/timeutil"
)

// MaxRangeDays bounds a single range query.
const MaxRangeDays = 31

// Bounds for the requested duration on typeless queries. When a service
// type is given its catalog duration applies instead.
const (
	DefaultSlotDuration = 60
	MinSlotDuration     = 15
	MaxSlotDuration     = 480
)

// RuleResolver yields the effective availability rules for a day.
type RuleResolver interface {
	ResolveForDay(ctx context.Context, dayOfWeek int, serviceTypeID string) ([]*model.AvailabilityRule, error)
}

// ServiceTypeSource provides the service type catalog. Lookup is by
// bare ID: a retired type must surface here so slot queries can list
// it as closed instead of erroring.
type ServiceTypeSource interface {
	GetByID(ctx context.Context, id string) (*model.ServiceType, error)
}

// AppointmentReader exposes the bookings that occupy slots. Satisfied
// by the appointments repository.
type AppointmentReader interface {
	FindActiveInRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
}

type AvailabilityService interface {
	GetAvailableSlots(ctx context.Context, date string, serviceTypeID string, requestedDuration int) ([]*model.Slot, error)
	GetSlotsRange(ctx context.Context, start string, end string, serviceTypeID string, requestedDuration int) ([]model.DayAvailability, error)
	NextAvailable(ctx context.Context, serviceTypeID string, from time.Time) (*model.Slot, error)
	InvalidateDate(ctx context.Context, date string)
}

type availabilityService struct {
	rules        RuleResolver
	serviceTypes ServiceTypeSource
	appointments AppointmentReader
	cache        cache.SlotCache
	cfg          *config.Config
	clock        clock.Clock
}

func NewAvailabilityService(
	rules RuleResolver,
	serviceTypes ServiceTypeSource,
	appointments AppointmentReader,
	slotCache cache.SlotCache,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		rules:        rules,
		serviceTypes: serviceTypes,
		appointments: appointments,
		cache:        slotCache,
		cfg:          cfg,
		clock:        clock.System(),
	}
}

func (s *availabilityService) GetAvailableSlots(ctx context.Context, date string, serviceTypeID string, requestedDuration int) ([]*model.Slot, error) {
	loc := s.cfg.Location()
	day, err := time.ParseInLocation(httputil.DateLayout, date, loc)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid date parameter: " + date)
	}

	var st *model.ServiceType
	duration := requestedDuration
	if serviceTypeID != "" {
		st, err = s.serviceTypes.GetByID(ctx, serviceTypeID)
		if err != nil {
			return nil, err
		}
		if !st.IsActive {
			// A retired offering has no open slots; only unknown IDs
			// are an error.
			return []*model.Slot{}, nil
		}
		// Catalog parameters win over whatever the caller asked for.
		duration = st.DurationMinutes
	} else {
		if duration == 0 {
			duration = DefaultSlotDuration
		}
		if duration < MinSlotDuration || duration > MaxSlotDuration {
			return nil, apperrors.InvalidInput("duration must be between 15 and 480 minutes")
		}
	}

	key := cache.Key(date, cacheQualifier(serviceTypeID, duration))
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var slots []*model.Slot
			if err := json.Unmarshal(cached, &slots); err == nil {
				return slots, nil
			}
			// A corrupt entry falls through to recomputation and gets
			// overwritten below.
		}
	}

	slots, err := s.computeDaySlots(ctx, day, st, duration)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(slots); err == nil {
			s.cache.Set(ctx, key, encoded, s.cfg.SlotCacheTTL)
		}
	}

	return slots, nil
}

func (s *availabilityService) GetSlotsRange(ctx context.Context, start string, end string, serviceTypeID string, requestedDuration int) ([]model.DayAvailability, error) {
	loc := s.cfg.Location()

	from, err := time.ParseInLocation(httputil.DateLayout, start, loc)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid start parameter: " + start)
	}
	to, err := time.ParseInLocation(httputil.DateLayout, end, loc)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid end parameter: " + end)
	}

	if to.Before(from) {
		return nil, apperrors.InvalidInput("end must not be before start")
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, apperrors.InvalidInput("range queries are limited to 31 days")
	}

	result := make([]model.DayAvailability, 0, days)
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i).Format(httputil.DateLayout)
		slots, err := s.GetAvailableSlots(ctx, date, serviceTypeID, requestedDuration)
		if err != nil {
			return nil, err
		}
		result = append(result, model.DayAvailability{Date: date, Slots: slots})
	}

	return result, nil
}

// NextAvailable scans forward from the given instant and returns the
// first open slot that starts strictly after it, or nil when the scan
// horizon holds nothing.
func (s *availabilityService) NextAvailable(ctx context.Context, serviceTypeID string, from time.Time) (*model.Slot, error) {
	loc := s.cfg.Location()
	from = from.In(loc)

	for i := 0; i < s.cfg.SuggestionScanDays; i++ {
		day := from.AddDate(0, 0, i)
		date := day.Format(httputil.DateLayout)

		slots, err := s.GetAvailableSlots(ctx, date, serviceTypeID, 0)
		if err != nil {
			return nil, err
		}

		for _, slot := range slots {
			startMinutes, err := timeutil.TimeToMinutes(slot.Time)
			if err != nil {
				continue
			}
			if timeutil.AtMinutes(day, startMinutes, loc).After(from) {
				return slot, nil
			}
		}
	}

	return nil, nil
}

// cacheQualifier keeps typeless lookups of different durations in
// separate cache entries. Invalidation works on the date prefix, so
// both kinds of entry are dropped together.
func cacheQualifier(serviceTypeID string, duration int) string {
	if serviceTypeID != "" {
		return serviceTypeID
	}
	return "any-" + strconv.Itoa(duration)
}

func (s *availabilityService) InvalidateDate(ctx context.Context, date string) {
	if s.cache != nil {
		s.cache.InvalidateDate(ctx, date)
	}
}

// computeDaySlots derives the open slots of one day from the resolved
// rules and the day's active appointments. With a service type it
// applies, in order: allowed days, advance windows, exclusivity, the
// per-type daily cap, per-rule caps, and finally interval subtraction
// of booked time. Without one (st == nil) only the general rules, the
// per-rule caps, and booked time constrain the result.
func (s *availabilityService) computeDaySlots(ctx context.Context, day time.Time, st *model.ServiceType, duration int) ([]*model.Slot, error) {
	loc := s.cfg.Location()
	weekday := int(day.In(loc).Weekday())
	slots := []*model.Slot{}

	now := s.clock.Now().In(loc)
	earliest := now

	serviceTypeID := ""
	if st != nil {
		serviceTypeID = st.ID
		if !st.AllowsDay(weekday) {
			return slots, nil
		}
		earliest = now.Add(time.Duration(st.MinAdvanceHours) * time.Hour)
		if st.MaxAdvanceDays > 0 {
			latestDay, _ := timeutil.DayBounds(now.AddDate(0, 0, st.MaxAdvanceDays), loc)
			requestedDay, _ := timeutil.DayBounds(day, loc)
			if requestedDay.After(latestDay) {
				return slots, nil
			}
		}
	}

	rules, err := s.rules.ResolveForDay(ctx, weekday, serviceTypeID)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return slots, nil
	}

	dayStart, dayEnd := timeutil.DayBounds(day, loc)
	appts, err := s.appointments.FindActiveInRange(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, apperrors.Internal("Failed to load appointments for slot generation", err)
	}

	if st != nil && s.dayBlocked(st, weekday, appts) {
		return slots, nil
	}

	booked := make([]timeutil.Interval, 0, len(appts))
	sameTypeCount := 0
	for _, appt := range appts {
		start := timeutil.MinutesOfDay(appt.ScheduledDate, loc)
		booked = append(booked, timeutil.Interval{Start: start, End: start + appt.DurationMinutes})
		if st != nil && appt.ServiceTypeID == st.ID {
			sameTypeCount++
		}
	}
	if st != nil && sameTypeCount >= st.MaxBookingsPerDay {
		return slots, nil
	}

	for _, rule := range rules {
		if rule.MaxBookingsPerDay > 0 && len(appts) >= rule.MaxBookingsPerDay {
			continue
		}
		slots = append(slots, s.generateRuleSlots(day, rule, st, duration, booked, earliest, loc)...)
	}

	slices.SortFunc(slots, func(a, b *model.Slot) int {
		return strings.Compare(a.Time, b.Time)
	})
	return slots, nil
}

// generateRuleSlots walks the rule window in duration+buffer steps. The
// grid is anchored at the window start and does not re-anchor around
// booked time, so offered slots stay stable as the day fills up.
func (s *availabilityService) generateRuleSlots(day time.Time, rule *model.AvailabilityRule, st *model.ServiceType, duration int, booked []timeutil.Interval, earliest time.Time, loc *time.Location) []*model.Slot {
	windowStart, err := timeutil.TimeToMinutes(rule.StartTime)
	if err != nil {
		return nil
	}
	windowEnd, err := timeutil.TimeToMinutes(rule.EndTime)
	if err != nil {
		return nil
	}

	buffer := rule.BufferMinutes
	if st != nil && st.BufferMinutes > buffer {
		buffer = st.BufferMinutes
	}

	date := day.In(loc).Format(httputil.DateLayout)

	var slots []*model.Slot
	for current := windowStart; current+duration <= windowEnd; current += duration + buffer {
		if timeutil.AtMinutes(day, current, loc).Before(earliest) {
			continue
		}
		if timeutil.HasConflict(current, current+duration, booked) {
			continue
		}
		slots = append(slots, &model.Slot{
			Date:            date,
			Time:            timeutil.MinutesToTime(current),
			EndTime:         timeutil.MinutesToTime(current + duration),
			DurationMinutes: duration,
		})
	}
	return slots
}

// dayBlocked reports whether the single-visit rule closes the whole day
// for this service type: an exclusive type with one active appointment
// on one of its exclusive days offers no further slots that day.
func (s *availabilityService) dayBlocked(st *model.ServiceType, weekday int, appts []*model.Appointment) bool {
	if !st.IsExclusiveOn(weekday) {
		return false
	}
	for _, appt := range appts {
		if appt.ServiceTypeID == st.ID {
			return true
		}
	}
	return false
}
