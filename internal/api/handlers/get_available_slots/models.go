package get_available_slots

import (
	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	getAvailableSlots "github.com/d-nekrasov/SalonBookingService/internal/usecase/get_available_slots"
)

// SlotResponse один слот сетки доступности
type SlotResponse struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// GetAvailableSlotsResponse HTTP response model
type GetAvailableSlotsResponse struct {
	Date            string         `json:"date"`
	PackageID       int64          `json:"packageId"`
	DurationMinutes int            `json:"durationMinutes"`
	Slots           []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует модель use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *GetAvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			StartTime: s.StartTime.String(),
			EndTime:   s.EndTime.String(),
			Available: s.Available,
		})
	}

	return &GetAvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		PackageID:       resp.PackageID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
