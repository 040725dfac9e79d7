package models

import (
	"errors"
	"time"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Роли пользователей, приходящие из шлюза аутентификации
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

// Actor пользователь, выполняющий действие
type Actor struct {
	UserID int64
	Role   string
}

// IsStaff возвращает true для сотрудника салона
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}

// Request модели

// ListAppointmentsRequest запрос админ-списка записей с фильтрацией
type ListAppointmentsRequest struct {
	Actor      Actor
	Status     *string // Фильтр по статусу (опционально)
	SearchText *string // Поиск по имени/телефону клиента и названию пакета
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		SearchText: r.SearchText,
	}

	if r.Status != nil {
		status, err := ToDomainStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи о визите
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	CustomerID      int64  `json:"customerId"`
	PackageID       int64  `json:"packageId"`
	Date            string `json:"date"`      // "2024-01-01"
	StartTime       string `json:"startTime"` // "11:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	// Денормализованные данные
	CustomerName  string  `json:"customerName"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	PackageName   string  `json:"packageName"`
	PackagePrice  float64 `json:"packagePrice"`
	Notes         *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// DashboardStatsResponse агрегаты для дашборда администратора
type DashboardStatsResponse struct {
	PendingCount   int64   `json:"pendingCount"`
	ConfirmedCount int64   `json:"confirmedCount"`
	CompletedCount int64   `json:"completedCount"`
	CancelledCount int64   `json:"cancelledCount"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:              a.ID,
		CustomerID:      a.CustomerID,
		PackageID:       a.PackageID,
		Date:            a.Date.Format(domain.DateFormat),
		StartTime:       a.StartTime.String(),
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		CustomerName:    a.CustomerName,
		CustomerPhone:   a.CustomerPhone,
		PackageName:     a.PackageName,
		PackagePrice:    a.PackagePrice,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if dto := FromDomainAppointment(a); dto != nil {
			resp.Appointments = append(resp.Appointments, *dto)
		}
	}

	return resp
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)

	for _, valid := range domain.ValidStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
