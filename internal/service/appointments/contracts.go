package appointments

import (
	"context"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей о визитах
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByCustomerID(ctx context.Context, customerID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, from []domain.AppointmentStatus) error
	CountByStatus(ctx context.Context) (map[domain.AppointmentStatus]int64, error)
	TotalRevenue(ctx context.Context) (float64, error)
}

// SlotRepository интерфейс журнала занятости
type SlotRepository interface {
	Release(ctx context.Context, appointmentID int64) error
	GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.BookingSlot, error)
}

// TransactionManager интерфейс для управления транзакциями
// Отмена записи меняет статус и освобождает слот одной транзакцией
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
