package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"fixwell/pkg/model"
)

// ServiceTypeBuilder assembles service type documents for seeding.
type ServiceTypeBuilder struct {
	st model.ServiceType
}

func NewServiceTypeBuilder() *ServiceTypeBuilder {
	now := time.Now().UTC()
	return &ServiceTypeBuilder{
		st: model.ServiceType{
			ID:                uuid.New().String(),
			Name:              "Gutter Cleaning",
			DurationMinutes:   60,
			BufferMinutes:     30,
			AllowedDays:       []int{0, 1, 2, 3, 4, 5, 6},
			MaxBookingsPerDay: 50,
			MinAdvanceHours:   0,
			MaxAdvanceDays:    60,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

func (b *ServiceTypeBuilder) WithName(name string) *ServiceTypeBuilder {
	b.st.Name = name
	return b
}

func (b *ServiceTypeBuilder) WithDuration(minutes, buffer int) *ServiceTypeBuilder {
	b.st.DurationMinutes = minutes
	b.st.BufferMinutes = buffer
	return b
}

func (b *ServiceTypeBuilder) WithAllowedDays(days ...int) *ServiceTypeBuilder {
	b.st.AllowedDays = days
	return b
}

func (b *ServiceTypeBuilder) WithDailyCap(cap int) *ServiceTypeBuilder {
	b.st.MaxBookingsPerDay = cap
	return b
}

func (b *ServiceTypeBuilder) WithAdvanceWindow(minHours, maxDays int) *ServiceTypeBuilder {
	b.st.MinAdvanceHours = minHours
	b.st.MaxAdvanceDays = maxDays
	return b
}

func (b *ServiceTypeBuilder) WithExclusiveDays(days ...int) *ServiceTypeBuilder {
	b.st.IsExclusive = true
	b.st.ExclusiveDays = days
	return b
}

func (b *ServiceTypeBuilder) WithApprovalRequired() *ServiceTypeBuilder {
	b.st.RequiresApproval = true
	return b
}

func (b *ServiceTypeBuilder) Build() model.ServiceType {
	return b.st
}

// Seed inserts the service type and returns its ID.
func (b *ServiceTypeBuilder) Seed(t *testing.T, mongo *MongoHelper) string {
	t.Helper()
	mongo.Insert(t, ServiceTypesCollection, b.st)
	return b.st.ID
}

// RuleBuilder assembles availability rule documents for seeding.
type RuleBuilder struct {
	rule model.AvailabilityRule
}

func NewRuleBuilder(dayOfWeek int) *RuleBuilder {
	now := time.Now().UTC()
	return &RuleBuilder{
		rule: model.AvailabilityRule{
			ID:                uuid.New().String(),
			DayOfWeek:         dayOfWeek,
			IsAvailable:       true,
			StartTime:         "09:00",
			EndTime:           "17:00",
			MaxBookingsPerDay: 50,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

func (b *RuleBuilder) WithWindow(start, end string) *RuleBuilder {
	b.rule.StartTime = start
	b.rule.EndTime = end
	return b
}

func (b *RuleBuilder) WithServiceType(id string) *RuleBuilder {
	b.rule.ServiceTypeID = &id
	return b
}

func (b *RuleBuilder) WithBuffer(minutes int) *RuleBuilder {
	b.rule.BufferMinutes = minutes
	return b
}

func (b *RuleBuilder) WithDailyCap(cap int) *RuleBuilder {
	b.rule.MaxBookingsPerDay = cap
	return b
}

func (b *RuleBuilder) Build() model.AvailabilityRule {
	return b.rule
}

func (b *RuleBuilder) Seed(t *testing.T, mongo *MongoHelper) string {
	t.Helper()
	mongo.Insert(t, RulesCollection, b.rule)
	return b.rule.ID
}

// AppointmentRequest builds the JSON body for a booking request.
func AppointmentRequest(serviceTypeID string, scheduledDate time.Time) map[string]any {
	return map[string]any{
		"service_type_id":  serviceTypeID,
		"customer_name":    "Dana Whitfield",
		"customer_email":   "dana.whitfield@example.com",
		"customer_phone":   "+12065550147",
		"property_address": "1180 Cedar Hollow Lane, Tacoma",
		"scheduled_date":   scheduledDate.Format(time.RFC3339),
	}
}

// NextBookableDay returns the upcoming occurrence of weekday at the
// given hour, far enough out to clear minimum advance windows.
func NextBookableDay(weekday time.Weekday, hour int) time.Time {
	day := time.Now().UTC().AddDate(0, 0, 2)
	for day.Weekday() != weekday {
		day = day.AddDate(0, 0, 1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}
