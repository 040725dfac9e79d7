package book_appointment

import (
	"time"

	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// Request модель запроса на бронирование визита
type Request struct {
	CustomerID int64            // ID клиента (из аутентификации)
	PackageID  int64            // ID пакета услуг
	Date       time.Time        // Дата визита (без времени)
	StartTime  types.TimeString // Время начала (например, "11:00")
	Notes      *string          // Пожелания клиента (опционально)
}

// Response модель ответа с созданной записью о визите
type Response struct {
	ID              int64            // ID созданной записи
	CustomerID      int64            // ID клиента
	PackageID       int64            // ID пакета услуг
	Date            time.Time        // Дата визита
	StartTime       types.TimeString // Время начала
	EndTime         types.TimeString // Время окончания (start + duration)
	DurationMinutes int              // Длительность, зафиксированная при создании
	Status          string           // Статус записи (всегда pending при создании)

	// Денормализованные данные
	CustomerName string  // Имя клиента
	PackageName  string  // Название пакета
	PackagePrice float64 // Цена пакета на момент бронирования
	Notes        *string // Пожелания

	CreatedAt time.Time // Время создания
	UpdatedAt time.Time // Время обновления
}
