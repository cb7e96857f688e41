package sanitizer

const (
	// Bookable appointment duration bounds in minutes.
	MinDurationMinutes = 15

	MaxDurationMinutes = 480
)

// ClampDurationMinutes forces an explicit requested duration into the
// bookable range. Zero means "use the service type's duration" and is
// passed through untouched.
func ClampDurationMinutes(minutes int) int {
	if minutes == 0 {
		return 0
	}
	if minutes < MinDurationMinutes {
		return MinDurationMinutes
	}
	if minutes > MaxDurationMinutes {
		return MaxDurationMinutes
	}
	return minutes
}
