package domain

import (
	"time"

	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// WithinSalonHours reports whether a time of day lies within salon operating
// hours. Both boundaries are inclusive: a 10:00 start and a 20:00 end are
// both allowed.
func WithinSalonHours(t types.TimeString) bool {
	return !t.IsBefore(OpeningTime) && !t.IsAfter(ClosingTime)
}

// MeetsLeadTime reports whether an appointment at date+start is far enough in
// the future relative to now. The boundary is inclusive: exactly now plus the
// minimum lead time is allowed. now must be injected by the caller so the
// policy stays deterministic.
func MeetsLeadTime(date time.Time, start types.TimeString, now time.Time) bool {
	// The date carries only a calendar day; the instant must live in the
	// same location as now, otherwise the comparison shifts by the UTC offset
	target := CombineDateTime(date, start, now.Location())
	return !target.Before(now.Add(MinLeadTimeMinutes * time.Minute))
}

// CombineDateTime builds an instant from a calendar date and an HH:MM time of
// day, in the given location. An invalid time of day maps to midnight; the
// callers validate the time string first.
func CombineDateTime(date time.Time, t types.TimeString, loc *time.Location) time.Time {
	parsed, err := time.Parse(TimeFormat, t.String())
	if err != nil {
		parsed = time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, loc)
}
