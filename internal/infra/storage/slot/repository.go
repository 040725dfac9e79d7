package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	"github.com/d-nekrasov/SalonBookingService/pkg/dbmetrics"
	"github.com/d-nekrasov/SalonBookingService/pkg/psqlbuilder"
	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

var slotColumns = []string{
	"id",
	"slot_date",
	"start_time",
	"end_time",
	"is_available",
	"appointment_id",
}

// Repository репозиторий журнала занятости (availability ledger)
// Таблица booking_slots с UNIQUE (slot_date, start_time) - единственный
// источник истины о том, занято ли время
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// IsTaken проверяет, занят ли слот с точным совпадением (дата, время начала)
// Вне транзакции результат носит справочный характер и может устареть;
// оркестратор всегда вызывает проверку внутри сериализуемой транзакции
func (r *Repository) IsTaken(ctx context.Context, date time.Time, startTime types.TimeString) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("booking_slots").
		Where(squirrel.Eq{
			"slot_date":    date,
			"start_time":   startTime,
			"is_available": false,
		}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: IsTaken - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: IsTaken - scan row: %v", ErrScanRow, err)
	}

	return true, nil
}

// CountOverlapping подсчитывает занятые слоты, пересекающиеся с интервалом
// [startTime, endTime). Граничащие интервалы пересечением не считаются.
// Используется при conflict_policy = "overlap"
func (r *Repository) CountOverlapping(ctx context.Context, date time.Time, startTime, endTime types.TimeString) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("booking_slots").
		Where(squirrel.Eq{
			"slot_date":    date,
			"is_available": false,
		}).
		Where(squirrel.Lt{"start_time": endTime}).
		Where(squirrel.Gt{"end_time": startTime}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountOverlapping - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// Reserve атомарно занимает слот для записи о визите
// Выполняется как upsert по уникальному ключу (slot_date, start_time):
// - если строки нет, она создаётся занятой;
// - если строка есть и свободна (освобождена отменой), она переиспользуется
//   на месте - строки слотов никогда не удаляются;
// - если строка есть и занята, условие WHERE не пропускает обновление,
//   запрос не возвращает строку и Reserve завершается ErrSlotTaken.
// Инварианты интервала проверяются здесь, на границе хранилища
func (r *Repository) Reserve(ctx context.Context, s *domain.BookingSlot) (*domain.BookingSlot, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: Reserve - %v", ErrInvalidSlot, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_slots").
		Columns(
			"slot_date",
			"start_time",
			"end_time",
			"is_available",
			"appointment_id",
		).
		Values(
			s.Date,
			s.StartTime,
			s.EndTime,
			false,
			s.AppointmentID,
		).
		Suffix(`ON CONFLICT (slot_date, start_time) DO UPDATE
			SET end_time = EXCLUDED.end_time,
			    is_available = FALSE,
			    appointment_id = EXCLUDED.appointment_id
			WHERE booking_slots.is_available
			RETURNING id`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - build upsert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotTaken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Reserve - execute upsert: %v", ErrExecQuery, err)
	}

	s.IsAvailable = false
	return s, nil
}

// Release освобождает слот, привязанный к записи о визите
// Флаг занятости сбрасывается, ссылка на запись обнуляется, строка остаётся.
// Идемпотентна: отсутствие привязанного слота - не ошибка
func (r *Repository) Release(ctx context.Context, appointmentID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_slots").
		Set("is_available", true).
		Set("appointment_id", nil).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Release - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByAppointmentID получает слот, привязанный к записи о визите
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.BookingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("booking_slots").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.BookingSlot
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.IsAvailable,
		&s.AppointmentID,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - scan slot: %v", ErrScanRow, err)
	}

	return &s, nil
}

// GetByDate получает все слоты на дату, по возрастанию времени начала
// Используется для построения сетки доступности
func (r *Repository) GetByDate(ctx context.Context, date time.Time) ([]*domain.BookingSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("booking_slots").
		Where(squirrel.Eq{"slot_date": date}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.BookingSlot, 0)
	for rows.Next() {
		var s domain.BookingSlot
		err := rows.Scan(
			&s.ID,
			&s.Date,
			&s.StartTime,
			&s.EndTime,
			&s.IsAvailable,
			&s.AppointmentID,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByDate - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByDate - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
