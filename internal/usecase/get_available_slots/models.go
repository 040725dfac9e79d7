package get_available_slots

import (
	"time"

	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// Request модель запроса сетки доступности
type Request struct {
	Date      time.Time // Дата, на которую строится сетка
	PackageID int64     // Пакет услуг, задающий шаг сетки
}

// Slot один элемент сетки доступности
type Slot struct {
	StartTime types.TimeString // Время начала слота
	EndTime   types.TimeString // Время окончания слота
	Available bool             // Свободен ли слот для бронирования
}

// Response модель ответа с сеткой доступности на день
type Response struct {
	Date            time.Time // Дата сетки
	PackageID       int64     // Пакет услуг
	DurationMinutes int       // Шаг сетки (длительность пакета)
	Slots           []Slot    // Слоты от открытия до закрытия салона
}
