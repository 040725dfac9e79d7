package domain

import "github.com/d-nekrasov/SalonBookingService/pkg/types"

// Salon operating rules. The salon runs a single shared calendar, so these
// are fixed constants rather than per-venue configuration.
const (
	// OpeningTime is the earliest time an appointment may start (inclusive)
	OpeningTime = types.TimeString("10:00")

	// ClosingTime is the latest time an appointment may start or end (inclusive)
	ClosingTime = types.TimeString("20:00")

	// MinLeadTimeMinutes is the minimum advance notice between booking and
	// appointment start
	MinLeadTimeMinutes = 120
)

// Business validation constants
const (
	MaxNotesLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ConflictPolicy selects how the ledger decides that a requested slot
// collides with an existing one.
type ConflictPolicy string

const (
	// PolicyExactStart treats only an exact (date, start time) match as a
	// conflict. This mirrors the original booking rules: a request starting
	// 15 minutes into an occupied interval is not detected. Kept as the
	// default, documented limitation.
	PolicyExactStart ConflictPolicy = "exact_start"

	// PolicyOverlap treats any interval overlap as a conflict
	// (newStart < existingEnd && newEnd > existingStart).
	PolicyOverlap ConflictPolicy = "overlap"
)

// ParseConflictPolicy validates and converts a config string into a ConflictPolicy
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case PolicyExactStart, PolicyOverlap:
		return ConflictPolicy(s), nil
	case "":
		return PolicyExactStart, nil
	default:
		return "", ErrUnknownConflictPolicy
	}
}
