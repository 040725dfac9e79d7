package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	appointmentRepo "github.com/d-nekrasov/SalonBookingService/internal/infra/storage/appointment"
	"github.com/d-nekrasov/SalonBookingService/internal/service/appointments/models"
)

// Service сервис жизненного цикла записей о визитах
// Все переходы статусов идут через таблицу переходов domain.Appointment:
// pending -> confirmed -> completed, pending|confirmed -> cancelled.
// Переходы выполняют только сотрудники (отмену - также владелец записи)
type Service struct {
	appointmentRepo AppointmentRepository
	slotRepo        SlotRepository
	txManager       TransactionManager
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		slotRepo:        slotRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// GetByID получает запись по ID
// Клиент видит только свою запись, сотрудник - любую
func (s *Service) GetByID(ctx context.Context, id int64, actor models.Actor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, actor.UserID)

	appointment, err := s.getAppointment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if appointment.CustomerID != actor.UserID && !actor.IsStaff() {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainAppointment(appointment), nil
}

// GetCustomerAppointments получает историю записей клиента, новые первыми
// Клиент видит только свою историю, сотрудник - историю любого клиента
func (s *Service) GetCustomerAppointments(ctx context.Context, customerID int64, status *string, actor models.Actor) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetCustomerAppointments: customer=%d, user=%d", customerID, actor.UserID)

	if customerID != actor.UserID && !actor.IsStaff() {
		s.logger.Warn("GetCustomerAppointments: access denied for user=%d to customer=%d", actor.UserID, customerID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.AppointmentStatus
	if status != nil {
		converted, err := models.ToDomainStatus(*status)
		if err != nil {
			s.logger.Warn("GetCustomerAppointments: invalid status=%s", *status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &converted
	}

	appointments, err := s.appointmentRepo.GetByCustomerID(ctx, customerID, domainStatus)
	if err != nil {
		s.logger.Error("GetCustomerAppointments: repository error for customer=%d: %v", customerID, err)
		return nil, fmt.Errorf("%w: GetCustomerAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerAppointments: fetched %d appointments for customer=%d", len(appointments), customerID)
	return models.FromDomainAppointmentList(appointments), nil
}

// List получает записи для админ-панели с фильтром по статусу и поиском
// Доступно только сотрудникам
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: user=%d, status=%v", req.Actor.UserID, req.Status)

	if !req.Actor.IsStaff() {
		s.logger.Warn("List: access denied for user=%d", req.Actor.UserID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d appointments", len(appointments))
	return models.FromDomainAppointmentList(appointments), nil
}

// Stats возвращает агрегаты дашборда: количество записей по статусам и
// выручку по завершённым визитам. Доступно только сотрудникам
func (s *Service) Stats(ctx context.Context, actor models.Actor) (*models.DashboardStatsResponse, error) {
	s.logger.Info("Stats: user=%d", actor.UserID)

	if !actor.IsStaff() {
		s.logger.Warn("Stats: access denied for user=%d", actor.UserID)
		return nil, ErrAccessDenied
	}

	counts, err := s.appointmentRepo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Stats: failed to count by status: %v", err)
		return nil, fmt.Errorf("%w: Stats - repository error: %v", ErrInternal, err)
	}

	revenue, err := s.appointmentRepo.TotalRevenue(ctx)
	if err != nil {
		s.logger.Error("Stats: failed to get revenue: %v", err)
		return nil, fmt.Errorf("%w: Stats - repository error: %v", ErrInternal, err)
	}

	return &models.DashboardStatsResponse{
		PendingCount:   counts[domain.StatusPending],
		ConfirmedCount: counts[domain.StatusConfirmed],
		CompletedCount: counts[domain.StatusCompleted],
		CancelledCount: counts[domain.StatusCancelled],
		TotalRevenue:   revenue,
	}, nil
}

// Approve подтверждает запись: pending -> confirmed
// Журнал занятости не меняется. Доступно только сотрудникам
func (s *Service) Approve(ctx context.Context, id int64, actor models.Actor) error {
	return s.transition(ctx, "Approve", id, domain.StatusConfirmed, actor)
}

// Complete завершает визит: pending|confirmed -> completed
// Журнал занятости не меняется. Доступно только сотрудникам
func (s *Service) Complete(ctx context.Context, id int64, actor models.Actor) error {
	return s.transition(ctx, "Complete", id, domain.StatusCompleted, actor)
}

// Cancel отменяет запись: pending|confirmed -> cancelled
// Привязанный слот освобождается в той же транзакции: флаг занятости
// сбрасывается, ссылка на запись обнуляется, строка слота сохраняется.
// Сотрудник может отменить любую запись, клиент - только свою
func (s *Service) Cancel(ctx context.Context, id int64, actor models.Actor) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, actor.UserID)

	appointment, err := s.getAppointment(ctx, "Cancel", id)
	if err != nil {
		return err
	}

	if appointment.CustomerID != actor.UserID && !actor.IsStaff() {
		s.logger.Warn("Cancel: access denied for user=%d to appointment id=%d", actor.UserID, id)
		return ErrAccessDenied
	}

	if !appointment.CanBeCancelled() {
		s.logger.Warn("Cancel: invalid transition %s -> %s for appointment id=%d",
			appointment.Status, domain.StatusCancelled, id)
		return ErrInvalidTransition
	}

	// Смена статуса и освобождение слота - одна транзакция.
	// Переход фиксируется через CAS в хранилище: предварительная проверка
	// выше не защищает от параллельного изменения статуса
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		err := s.appointmentRepo.UpdateStatus(txCtx, id, domain.StatusCancelled,
			domain.AllowedSources(domain.StatusCancelled))
		if err != nil {
			switch {
			case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
				return ErrAppointmentNotFound
			case errors.Is(err, appointmentRepo.ErrStatusConflict):
				return ErrInvalidTransition
			}
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		// Отсутствие привязанного слота допустимо - Release идемпотентен
		if err := s.slotRepo.Release(txCtx, id); err != nil {
			return fmt.Errorf("%w: Cancel - failed to release slot: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		s.logger.Error("Cancel: failed for appointment id=%d: %v", id, err)
		return err
	}

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", id)
	return nil
}

// transition выполняет переход статуса без побочных эффектов на журнал
func (s *Service) transition(ctx context.Context, op string, id int64, target domain.AppointmentStatus, actor models.Actor) error {
	s.logger.Info("%s: appointment id=%d -> %s by user=%d", op, id, target, actor.UserID)

	if !actor.IsStaff() {
		s.logger.Warn("%s: access denied for user=%d", op, actor.UserID)
		return ErrAccessDenied
	}

	appointment, err := s.getAppointment(ctx, op, id)
	if err != nil {
		return err
	}

	if !appointment.CanTransitionTo(target) {
		s.logger.Warn("%s: invalid transition %s -> %s for appointment id=%d",
			op, appointment.Status, target, id)
		return ErrInvalidTransition
	}

	// Переход фиксируется через CAS в хранилище: проверка выше даёт ранний
	// ответ, но от параллельной смены статуса защищает только условный UPDATE
	err = s.appointmentRepo.UpdateStatus(ctx, id, target, domain.AllowedSources(target))
	if err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
			s.logger.Warn("%s: appointment id=%d not found during update", op, id)
			return ErrAppointmentNotFound
		case errors.Is(err, appointmentRepo.ErrStatusConflict):
			s.logger.Warn("%s: lost transition race for appointment id=%d", op, id)
			return ErrInvalidTransition
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: appointment id=%d is now %s", op, id, target)
	return nil
}

// getAppointment загружает запись, транслируя ошибку репозитория
func (s *Service) getAppointment(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appointment, nil
}
