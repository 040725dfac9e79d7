package create_appointment

import (
	"errors"
	"net/http"

	"github.com/d-nekrasov/SalonBookingService/internal/api/handlers"
	"github.com/d-nekrasov/SalonBookingService/internal/api/middleware"
	bookAppointment "github.com/d-nekrasov/SalonBookingService/internal/usecase/book_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные записи"
	msgPackageNotFound    = "пакет услуг не найден"
	msgPackageInactive    = "пакет услуг недоступен для записи"
	msgCustomerNotFound   = "клиент не найден"
	msgTooSoon            = "до визита осталось меньше двух часов"
	msgOutsideSalonHours  = "выбранное время вне рабочих часов салона"
	msgSlotTaken          = "выбранное время уже занято"
)

type Handler struct {
	useCase BookAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase BookAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем customerID из контекста (через middleware Auth)
	customerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case
	useCaseReq, err := req.ToUseCaseRequest(customerID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, bookAppointment.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: customer_id=%d, date=%s, time=%s",
				customerID, req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, bookAppointment.ErrPackageNotFound):
			h.logger.Warn("POST /appointments - Package not found: package_id=%d", req.PackageID)
			handlers.RespondNotFound(w, msgPackageNotFound)

		case errors.Is(err, bookAppointment.ErrPackageInactive):
			h.logger.Warn("POST /appointments - Package inactive: package_id=%d", req.PackageID)
			handlers.RespondBadRequest(w, msgPackageInactive)

		case errors.Is(err, bookAppointment.ErrCustomerNotFound):
			h.logger.Warn("POST /appointments - Customer not found: customer_id=%d", customerID)
			handlers.RespondNotFound(w, msgCustomerNotFound)

		case errors.Is(err, bookAppointment.ErrTooSoon):
			h.logger.Warn("POST /appointments - Too soon: customer_id=%d, date=%s, time=%s",
				customerID, req.Date, req.StartTime)
			handlers.RespondBadRequest(w, msgTooSoon)

		case errors.Is(err, bookAppointment.ErrOutsideSalonHours):
			h.logger.Warn("POST /appointments - Outside salon hours: customer_id=%d, time=%s",
				customerID, req.StartTime)
			handlers.RespondBadRequest(w, msgOutsideSalonHours)

		case errors.Is(err, bookAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: customer_id=%d, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to book appointment: customer_id=%d, error=%v",
				customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /appointments - Appointment booked successfully: appointment_id=%d, customer_id=%d",
		result.ID, customerID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
