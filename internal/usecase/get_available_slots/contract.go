package get_available_slots

import (
	"context"
	"time"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	"github.com/d-nekrasov/SalonBookingService/internal/integrations/catalogservice"
)

// SlotRepository интерфейс журнала занятости
type SlotRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]*domain.BookingSlot, error)
}

// CatalogServiceClient интерфейс клиента каталога пакетов услуг
type CatalogServiceClient interface {
	GetPackage(ctx context.Context, packageID int64) (*catalogservice.ServicePackage, error)
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
