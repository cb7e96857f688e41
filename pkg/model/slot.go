package model

// Slot is a derived, non-persisted candidate booking interval. Slots
// are recomputed on demand and cached with a short TTL; they are never
// the source of truth, admission always re-validates against live
// appointment data.
type Slot struct {
	Date            string `json:"date"`     // YYYY-MM-DD in the engine's timezone
	Time            string `json:"time"`     // HH:MM start
	EndTime         string `json:"end_time"` // HH:MM end, may read "24:00" at the day boundary
	DurationMinutes int    `json:"duration_minutes"`
}

// DayAvailability groups the open slots of one calendar day, used by
// range queries.
type DayAvailability struct {
	Date  string  `json:"date"`
	Slots []*Slot `json:"slots"`
}
