package complete_appointment

import (
	"context"

	"github.com/d-nekrasov/SalonBookingService/internal/service/appointments/models"
)

type AppointmentService interface {
	Complete(ctx context.Context, id int64, actor models.Actor) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
