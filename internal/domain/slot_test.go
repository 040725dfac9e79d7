package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

func TestBookingSlot_Validate(t *testing.T) {
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   types.TimeString
		end     types.TimeString
		wantErr error
	}{
		{"valid midday slot", "11:00", "12:00", nil},
		{"full day slot", "10:00", "20:00", nil},
		{"slot ending at closing", "19:00", "20:00", nil},
		{"start equals end", "11:00", "11:00", ErrInvalidSlotInterval},
		{"start after end", "12:00", "11:00", ErrInvalidSlotInterval},
		{"starts before opening", "09:00", "11:00", ErrSlotOutsideSalonHours},
		{"ends after closing", "19:30", "20:30", ErrSlotOutsideSalonHours},
		{"invalid start time", "bad", "11:00", ErrInvalidSlotInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &BookingSlot{Date: date, StartTime: tt.start, EndTime: tt.end}
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBookingSlot_Overlaps(t *testing.T) {
	s := &BookingSlot{StartTime: "11:00", EndTime: "12:00"}

	assert.True(t, s.Overlaps("11:30", "12:30"))
	assert.True(t, s.Overlaps("10:30", "11:30"))
	assert.True(t, s.Overlaps("11:00", "12:00"))
	assert.True(t, s.Overlaps("10:00", "13:00"))

	// touching intervals are not overlapping
	assert.False(t, s.Overlaps("12:00", "13:00"))
	assert.False(t, s.Overlaps("10:00", "11:00"))
	assert.False(t, s.Overlaps("13:00", "14:00"))
}

func TestParseConflictPolicy(t *testing.T) {
	p, err := ParseConflictPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, PolicyExactStart, p)

	p, err = ParseConflictPolicy("exact_start")
	assert.NoError(t, err)
	assert.Equal(t, PolicyExactStart, p)

	p, err = ParseConflictPolicy("overlap")
	assert.NoError(t, err)
	assert.Equal(t, PolicyOverlap, p)

	_, err = ParseConflictPolicy("something")
	assert.ErrorIs(t, err, ErrUnknownConflictPolicy)
}
