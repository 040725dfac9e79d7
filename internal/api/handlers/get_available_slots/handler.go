package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/d-nekrasov/SalonBookingService/internal/api/handlers"
	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	getAvailableSlots "github.com/d-nekrasov/SalonBookingService/internal/usecase/get_available_slots"
)

const (
	msgMissingDate      = "не указана дата, ожидается параметр date=YYYY-MM-DD"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidPackageID = "некорректный ID пакета услуг"
	msgPackageNotFound  = "пакет услуг не найден"
	msgPackageInactive  = "пакет услуг недоступен для записи"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/available-slots?date=2024-06-01&packageId=3
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /available-slots - Missing date parameter")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	packageID, err := strconv.ParseInt(query.Get("packageId"), 10, 64)
	if err != nil || packageID <= 0 {
		h.logger.Warn("GET /available-slots - Invalid package ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPackageID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		Date:      date,
		PackageID: packageID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrPackageNotFound):
			h.logger.Warn("GET /available-slots - Package not found: package_id=%d", packageID)
			handlers.RespondNotFound(w, msgPackageNotFound)

		case errors.Is(err, getAvailableSlots.ErrPackageInactive):
			h.logger.Warn("GET /available-slots - Package inactive: package_id=%d", packageID)
			handlers.RespondBadRequest(w, msgPackageInactive)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /available-slots - Invalid input: date=%s, package_id=%d", dateStr, packageID)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("GET /available-slots - Failed to get slots: date=%s, package_id=%d, error=%v",
				dateStr, packageID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /available-slots - Retrieved %d slots: date=%s, package_id=%d",
		len(response.Slots), dateStr, packageID)
	handlers.RespondJSON(w, http.StatusOK, response)
}
