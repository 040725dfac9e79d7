package domain

import (
	"fmt"
	"time"

	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// BookingSlot is one interval of the shared salon calendar and the durable
// record of its occupancy. Slot rows are never deleted: releasing a slot
// flips it back to available and the next booking at the same start time
// reclaims the row in place.
type BookingSlot struct {
	ID            int64
	Date          time.Time
	StartTime     types.TimeString
	EndTime       types.TimeString
	IsAvailable   bool
	AppointmentID *int64 // cleared when the linked appointment is cancelled
}

// Validate enforces the slot invariants: start before end, both bounds
// within salon hours
func (s *BookingSlot) Validate() error {
	if err := s.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSlotInterval, err)
	}
	if err := s.EndTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSlotInterval, err)
	}
	if !s.StartTime.IsBefore(s.EndTime) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidSlotInterval, s.StartTime, s.EndTime)
	}
	if !WithinSalonHours(s.StartTime) || !WithinSalonHours(s.EndTime) {
		return fmt.Errorf("%w: %s-%s is outside %s-%s", ErrSlotOutsideSalonHours,
			s.StartTime, s.EndTime, OpeningTime, ClosingTime)
	}
	return nil
}

// Overlaps reports whether the slot interval genuinely overlaps
// [start, end). Touching intervals do not overlap.
func (s *BookingSlot) Overlaps(start, end types.TimeString) bool {
	return s.StartTime.IsBefore(end) && s.EndTime.IsAfter(start)
}
