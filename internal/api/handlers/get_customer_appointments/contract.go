package get_customer_appointments

import (
	"context"

	"github.com/d-nekrasov/SalonBookingService/internal/service/appointments/models"
)

type AppointmentService interface {
	GetCustomerAppointments(ctx context.Context, customerID int64, status *string, actor models.Actor) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
