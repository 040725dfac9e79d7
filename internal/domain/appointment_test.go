package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointment_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, true},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"confirmed back to pending", StatusConfirmed, StatusPending, false},
		{"completed to cancelled", StatusCompleted, StatusCancelled, false},
		{"completed to confirmed", StatusCompleted, StatusConfirmed, false},
		{"cancelled to pending", StatusCancelled, StatusPending, false},
		{"cancelled to confirmed", StatusCancelled, StatusConfirmed, false},
		{"same status is not a transition", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Appointment{Status: tt.from}
			assert.Equal(t, tt.want, a.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointment_IsTerminal(t *testing.T) {
	assert.False(t, (&Appointment{Status: StatusPending}).IsTerminal())
	assert.False(t, (&Appointment{Status: StatusConfirmed}).IsTerminal())
	assert.True(t, (&Appointment{Status: StatusCompleted}).IsTerminal())
	assert.True(t, (&Appointment{Status: StatusCancelled}).IsTerminal())
}

func TestAppointment_CanBeCancelled(t *testing.T) {
	assert.True(t, (&Appointment{Status: StatusPending}).CanBeCancelled())
	assert.True(t, (&Appointment{Status: StatusConfirmed}).CanBeCancelled())
	assert.False(t, (&Appointment{Status: StatusCompleted}).CanBeCancelled())
	assert.False(t, (&Appointment{Status: StatusCancelled}).CanBeCancelled())
}

func TestAllowedSources(t *testing.T) {
	assert.ElementsMatch(t,
		[]AppointmentStatus{StatusPending},
		AllowedSources(StatusConfirmed))
	assert.ElementsMatch(t,
		[]AppointmentStatus{StatusPending, StatusConfirmed},
		AllowedSources(StatusCompleted))
	assert.ElementsMatch(t,
		[]AppointmentStatus{StatusPending, StatusConfirmed},
		AllowedSources(StatusCancelled))

	// Nothing transitions back into pending
	assert.Empty(t, AllowedSources(StatusPending))
}
