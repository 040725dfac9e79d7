package book_appointment

import (
	"context"
	"time"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	"github.com/d-nekrasov/SalonBookingService/internal/integrations/catalogservice"
	"github.com/d-nekrasov/SalonBookingService/internal/integrations/identityservice"
	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей о визитах
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
}

// SlotRepository интерфейс журнала занятости
type SlotRepository interface {
	IsTaken(ctx context.Context, date time.Time, startTime types.TimeString) (bool, error)
	CountOverlapping(ctx context.Context, date time.Time, startTime, endTime types.TimeString) (int, error)
	Reserve(ctx context.Context, s *domain.BookingSlot) (*domain.BookingSlot, error)
}

// CatalogServiceClient интерфейс клиента каталога пакетов услуг
type CatalogServiceClient interface {
	GetPackage(ctx context.Context, packageID int64) (*catalogservice.ServicePackage, error)
}

// IdentityServiceClient интерфейс клиента IdentityService
type IdentityServiceClient interface {
	GetCustomer(ctx context.Context, customerID int64) (*identityservice.Customer, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
