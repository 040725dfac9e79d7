package create_appointment

import (
	"time"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	bookAppointment "github.com/d-nekrasov/SalonBookingService/internal/usecase/book_appointment"
	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	PackageID int64   `json:"packageId"`
	Date      string  `json:"date"`      // YYYY-MM-DD
	StartTime string  `json:"startTime"` // HH:MM
	Notes     *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
// с парсингом даты и времени
func (r *CreateAppointmentRequest) ToUseCaseRequest(customerID int64) (*bookAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &bookAppointment.Request{
		CustomerID: customerID,
		PackageID:  r.PackageID,
		Date:       date,
		StartTime:  startTime,
		Notes:      r.Notes,
	}, nil
}

// CreateAppointmentResponse HTTP response model
type CreateAppointmentResponse struct {
	ID              int64   `json:"id"`
	CustomerID      int64   `json:"customerId"`
	PackageID       int64   `json:"packageId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	CustomerName    string  `json:"customerName"`
	PackageName     string  `json:"packageName"`
	PackagePrice    float64 `json:"packagePrice"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// FromUseCaseResponse конвертирует модель use case в HTTP response
func FromUseCaseResponse(resp *bookAppointment.Response) *CreateAppointmentResponse {
	return &CreateAppointmentResponse{
		ID:              resp.ID,
		CustomerID:      resp.CustomerID,
		PackageID:       resp.PackageID,
		Date:            resp.Date.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		EndTime:         resp.EndTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		CustomerName:    resp.CustomerName,
		PackageName:     resp.PackageName,
		PackagePrice:    resp.PackagePrice,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
