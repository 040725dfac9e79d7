package book_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	slotRepo "github.com/d-nekrasov/SalonBookingService/internal/infra/storage/slot"
	catalogClient "github.com/d-nekrasov/SalonBookingService/internal/integrations/catalogservice"
	identityClient "github.com/d-nekrasov/SalonBookingService/internal/integrations/identityservice"
	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// UseCase use case бронирования визита (оркестратор)
// Политики времени и проверка конфликта слота скомпонованы в одну логически
// атомарную операцию: проверка занятости, создание записи и резервирование
// слота выполняются в одной сериализуемой транзакции, поэтому при проигрыше
// гонки запись о визите откатывается вместе со слотом
type UseCase struct {
	appointmentRepo AppointmentRepository
	slotRepo        SlotRepository
	catalogClient   CatalogServiceClient
	identityClient  IdentityServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	conflictPolicy  domain.ConflictPolicy
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	slotRepo SlotRepository,
	catalogClient CatalogServiceClient,
	identityClient IdentityServiceClient,
	txManager TransactionManager,
	conflictPolicy domain.ConflictPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		slotRepo:        slotRepo,
		catalogClient:   catalogClient,
		identityClient:  identityClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		conflictPolicy:  conflictPolicy,
		logger:          logger,
	}
}

// Execute выполняет бронирование визита
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookAppointment: customer=%d, package=%d, date=%s, time=%s",
		req.CustomerID, req.PackageID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем пакет услуг из каталога
	pkg, err := uc.catalogClient.GetPackage(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrPackageNotFound) {
			uc.logger.Warn("BookAppointment: package id=%d not found", req.PackageID)
			return nil, ErrPackageNotFound
		}
		uc.logger.Error("BookAppointment: failed to get package id=%d: %v", req.PackageID, err)
		return nil, fmt.Errorf("%w: failed to get package: %v", ErrInternal, err)
	}

	if !pkg.IsActive {
		uc.logger.Warn("BookAppointment: package id=%d is inactive", req.PackageID)
		return nil, ErrPackageInactive
	}

	// Длительность приходит из внешнего сервиса и обязана быть положительной
	if pkg.DurationMinutes <= 0 {
		uc.logger.Error("BookAppointment: package id=%d has invalid duration %d",
			req.PackageID, pkg.DurationMinutes)
		return nil, fmt.Errorf("%w: package duration must be positive, got %d",
			ErrInternal, pkg.DurationMinutes)
	}

	// 4. Вычисляем время окончания: start + длительность пакета
	// Длительность фиксируется в записи раз и навсегда - последующие правки
	// пакета в каталоге не меняют историю.
	// Переход через полночь не поддерживается и считается некорректным вводом
	endTime, err := req.StartTime.AddMinutes(pkg.DurationMinutes)
	if err != nil {
		uc.logger.Warn("BookAppointment: end time overflows the day: start=%s, duration=%d",
			req.StartTime, pkg.DurationMinutes)
		return nil, fmt.Errorf("%w: appointment cannot run past midnight", ErrInvalidInput)
	}

	// 5. Политика запаса времени: не раньше, чем now + 2 часа (граница включительно)
	if !domain.MeetsLeadTime(req.Date, req.StartTime, now) {
		uc.logger.Warn("BookAppointment: lead time violated: date=%s, time=%s, now=%s",
			req.Date.Format(domain.DateFormat), req.StartTime, now.Format("2006-01-02 15:04"))
		return nil, ErrTooSoon
	}

	// 6. Политика рабочих часов проверяется только для времени начала.
	// Время окончания здесь сознательно не проверяется: выход за время
	// закрытия отсечёт инвариант слота при его сохранении (шаг 8)
	if !domain.WithinSalonHours(req.StartTime) {
		uc.logger.Warn("BookAppointment: start time %s outside salon hours", req.StartTime)
		return nil, ErrOutsideSalonHours
	}

	// 7. Получаем профиль клиента для денормализации
	customer, err := uc.identityClient.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, identityClient.ErrCustomerNotFound) {
			uc.logger.Warn("BookAppointment: customer id=%d not found", req.CustomerID)
			return nil, ErrCustomerNotFound
		}
		uc.logger.Error("BookAppointment: failed to get customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
	}

	// Переменная для хранения результата
	var result *domain.Appointment

	// 8. Проверка занятости + создание записи + резервирование слота
	// в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 8.1. Проверяем занятость слота согласно настроенной политике
		taken, err := uc.slotTaken(txCtx, req, endTime)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to check slot: %v", err)
			return fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
		}
		if taken {
			uc.logger.Warn("BookAppointment: slot %s %s already taken",
				req.Date.Format(domain.DateFormat), req.StartTime)
			return ErrSlotTaken
		}

		// 8.2. Создаем запись о визите в статусе pending
		appointment := &domain.Appointment{
			CustomerID:      req.CustomerID,
			PackageID:       req.PackageID,
			Date:            req.Date,
			StartTime:       req.StartTime,
			DurationMinutes: pkg.DurationMinutes,
			Status:          domain.StatusPending,
			// Денормализация данных клиента и пакета
			CustomerName:  customer.Name,
			CustomerPhone: customer.Phone,
			PackageName:   pkg.Name,
			PackagePrice:  pkg.Price,
			Notes:         req.Notes,
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		// 8.3. Резервируем слот, привязанный к записи
		_, err = uc.slotRepo.Reserve(txCtx, &domain.BookingSlot{
			Date:          req.Date,
			StartTime:     req.StartTime,
			EndTime:       endTime,
			AppointmentID: &created.ID,
		})
		if err != nil {
			switch {
			case errors.Is(err, slotRepo.ErrSlotTaken):
				// Проигранная гонка: транзакция откатится целиком,
				// осиротевшей записи не останется
				uc.logger.Warn("BookAppointment: lost reserve race for %s %s",
					req.Date.Format(domain.DateFormat), req.StartTime)
				return ErrSlotTaken
			case errors.Is(err, slotRepo.ErrInvalidSlot):
				// Инвариант слота: например, окончание позже закрытия салона
				uc.logger.Warn("BookAppointment: slot invariant rejected %s-%s: %v",
					req.StartTime, endTime, err)
				return ErrOutsideSalonHours
			default:
				uc.logger.Error("BookAppointment: failed to reserve slot: %v", err)
				return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
			}
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("BookAppointment: successfully created appointment id=%d", result.ID)

	return &Response{
		ID:              result.ID,
		CustomerID:      result.CustomerID,
		PackageID:       result.PackageID,
		Date:            result.Date,
		StartTime:       result.StartTime,
		EndTime:         endTime,
		DurationMinutes: result.DurationMinutes,
		Status:          string(result.Status),
		CustomerName:    result.CustomerName,
		PackageName:     result.PackageName,
		PackagePrice:    result.PackagePrice,
		Notes:           result.Notes,
		CreatedAt:       result.CreatedAt,
		UpdatedAt:       result.UpdatedAt,
	}, nil
}

// slotTaken проверяет занятость слота согласно настроенной политике конфликтов
func (uc *UseCase) slotTaken(ctx context.Context, req *Request, endTime types.TimeString) (bool, error) {
	if uc.conflictPolicy == domain.PolicyOverlap {
		count, err := uc.slotRepo.CountOverlapping(ctx, req.Date, req.StartTime, endTime)
		if err != nil {
			return false, err
		}
		return count > 0, nil
	}

	// Политика по умолчанию: конфликт только при точном совпадении начала
	return uc.slotRepo.IsTaken(ctx, req.Date, req.StartTime)
}
