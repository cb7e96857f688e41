package service

import (
	"fmt"
	"time"

	apperrors "fixwell/pkg/errors"
	httputil "fixwell/pkg/http"
	"fixwell/pkg/model"
	"fixwell/pkg/timeutil"
)

// ValidateBookingDate runs the admission checks that depend only on the
// service type and the requested instant: not in the past, inside the
// minimum and maximum advance window, and on an allowed weekday. All
// arithmetic happens in the business timezone.
func (s *serviceTypeService) ValidateBookingDate(st *model.ServiceType, date string, startTime string) error {
	loc := s.cfg.Location()

	day, err := time.ParseInLocation(httputil.DateLayout, date, loc)
	if err != nil {
		return apperrors.InvalidInput("appointment_date must be in YYYY-MM-DD format")
	}

	startMinutes, err := timeutil.TimeToMinutes(startTime)
	if err != nil {
		return apperrors.InvalidInput("appointment_time must be in HH:MM 24-hour format")
	}

	start := timeutil.AtMinutes(day, startMinutes, loc)
	now := s.clock.Now().In(loc)

	if !start.After(now) {
		return apperrors.PastDate("appointment start must be in the future")
	}

	if st.MinAdvanceHours > 0 {
		earliest := now.Add(time.Duration(st.MinAdvanceHours) * time.Hour)
		if start.Before(earliest) {
			return apperrors.AdvanceWindow(
				fmt.Sprintf("this service requires at least %d hours notice", st.MinAdvanceHours),
				map[string]any{
					"min_advance_hours": st.MinAdvanceHours,
					"earliest_start":    earliest.Format(time.RFC3339),
				},
			)
		}
	}

	latestDay, _ := timeutil.DayBounds(now.AddDate(0, 0, st.MaxAdvanceDays), loc)
	requestedDay, _ := timeutil.DayBounds(start, loc)
	if requestedDay.After(latestDay) {
		return apperrors.AdvanceWindow(
			fmt.Sprintf("this service can be booked at most %d days ahead", st.MaxAdvanceDays),
			map[string]any{
				"max_advance_days": st.MaxAdvanceDays,
				"latest_date":      latestDay.Format(httputil.DateLayout),
			},
		)
	}

	if !st.AllowsDay(int(day.Weekday())) {
		return apperrors.DayNotAllowed(int(day.Weekday()))
	}

	return nil
}
