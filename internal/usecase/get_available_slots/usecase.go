package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	catalogClient "github.com/d-nekrasov/SalonBookingService/internal/integrations/catalogservice"
)

// UseCase use case построения сетки доступности на день
// Читает журнал занятости вне транзакции: результат носит справочный
// характер (для выбора времени в форме бронирования) и может устареть
// к моменту самого бронирования
type UseCase struct {
	slotRepo       SlotRepository
	catalogClient  CatalogServiceClient
	timeProvider   TimeProvider
	conflictPolicy domain.ConflictPolicy
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	catalogClient CatalogServiceClient,
	conflictPolicy domain.ConflictPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:       slotRepo,
		catalogClient:  catalogClient,
		timeProvider:   &RealTimeProvider{},
		conflictPolicy: conflictPolicy,
		logger:         logger,
	}
}

// Execute строит сетку доступности на указанную дату
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s, package=%d",
		req.Date.Format(domain.DateFormat), req.PackageID)

	// 1. Валидация входных данных
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.PackageID <= 0 {
		return nil, fmt.Errorf("%w: packageID must be positive", ErrInvalidInput)
	}

	// 2. Получаем пакет - его длительность задаёт шаг сетки
	pkg, err := uc.catalogClient.GetPackage(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrPackageNotFound) {
			uc.logger.Warn("GetAvailableSlots: package id=%d not found", req.PackageID)
			return nil, ErrPackageNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get package id=%d: %v", req.PackageID, err)
		return nil, fmt.Errorf("%w: failed to get package: %v", ErrInternal, err)
	}

	if !pkg.IsActive {
		uc.logger.Warn("GetAvailableSlots: package id=%d is inactive", req.PackageID)
		return nil, ErrPackageInactive
	}

	// Длительность приходит из внешнего сервиса и обязана быть положительной,
	// иначе шаг сетки не продвигается
	if pkg.DurationMinutes <= 0 {
		uc.logger.Error("GetAvailableSlots: package id=%d has invalid duration %d",
			req.PackageID, pkg.DurationMinutes)
		return nil, fmt.Errorf("%w: package duration must be positive, got %d",
			ErrInternal, pkg.DurationMinutes)
	}

	// 3. Генерируем кандидатов с учетом рабочих часов и запаса времени
	now := uc.timeProvider.Now()
	candidates, err := generateTimeSlots(pkg.DurationMinutes, req.Date, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 4. Читаем журнал занятости на дату
	ledger, err := uc.slotRepo.GetByDate(ctx, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get ledger: %v", err)
		return nil, fmt.Errorf("%w: failed to get ledger: %v", ErrInternal, err)
	}

	// 5. Размечаем кандидатов по журналу
	slots := markAvailability(candidates, pkg.DurationMinutes, ledger, uc.conflictPolicy)

	uc.logger.Info("GetAvailableSlots: %d slots on %s for package=%d",
		len(slots), req.Date.Format(domain.DateFormat), req.PackageID)

	return &Response{
		Date:            req.Date,
		PackageID:       req.PackageID,
		DurationMinutes: pkg.DurationMinutes,
		Slots:           slots,
	}, nil
}
