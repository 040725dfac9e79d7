package domain

import (
	"time"

	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// transitions is the only source of truth for the appointment lifecycle.
// Nothing leads out of completed or cancelled; only staff actions move state.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Appointment represents one customer's request to receive a service package
// at a specific date and time
type Appointment struct {
	ID         int64
	CustomerID int64
	PackageID  int64

	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int // snapshot of the package duration at creation time
	Status          AppointmentStatus

	// Denormalized data for history; later catalog or profile edits never
	// rewrite past appointments
	CustomerName  string
	CustomerPhone *string
	PackageName   string
	PackagePrice  float64

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransitionTo returns true if the lifecycle allows moving to next
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[a.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedSources returns every status from which the lifecycle permits
// moving to target. Storage uses it to guard status writes so that a row
// changed by a concurrent action cannot leave a terminal state.
func AllowedSources(target AppointmentStatus) []AppointmentStatus {
	sources := make([]AppointmentStatus, 0, len(transitions))
	for from, allowed := range transitions {
		for _, next := range allowed {
			if next == target {
				sources = append(sources, from)
				break
			}
		}
	}
	return sources
}

// CanBeCancelled returns true if the appointment can still be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.CanTransitionTo(StatusCancelled)
}

// IsTerminal returns true if no further transitions are defined
func (a *Appointment) IsTerminal() bool {
	return len(transitions[a.Status]) == 0
}

// ValidStatuses lists every recognised appointment status
var ValidStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusCompleted,
	StatusCancelled,
}

// AppointmentsFilter narrows admin listings of appointments
type AppointmentsFilter struct {
	Status     *AppointmentStatus // optional status filter
	SearchText *string            // matches customer name, phone or package name
}
