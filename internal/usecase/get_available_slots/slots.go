package get_available_slots

import (
	"fmt"
	"time"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// generateTimeSlots генерирует кандидатов слотов на день: от открытия салона
// с шагом durationMinutes, пока окончание слота не выходит за время закрытия.
// Для прошедших дат возвращается пустой список; для сегодняшней даты слоты
// дополнительно фильтруются по минимальному запасу времени до визита
func generateTimeSlots(durationMinutes int, requestDate time.Time, now time.Time) ([]types.TimeString, error) {
	// Неположительный шаг не продвигает сетку
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}

	if isDateInPast(requestDate, now) {
		return []types.TimeString{}, nil
	}

	allSlots := make([]types.TimeString, 0)
	current := domain.OpeningTime

	for {
		slotEnd, err := current.AddMinutes(durationMinutes)
		if err != nil {
			// Шаг перевалил за полночь - дальше слотов нет
			break
		}
		if slotEnd.IsAfter(domain.ClosingTime) {
			break
		}

		allSlots = append(allSlots, current)

		current, err = current.AddMinutes(durationMinutes)
		if err != nil {
			break
		}
	}

	// Для будущих дат запас времени не ограничивает сетку
	if !isSameDay(requestDate, now) {
		return allSlots, nil
	}

	// Сегодня: оставляем только слоты, до которых остаётся минимальный запас
	minAllowed, err := types.NewTimeString(now).AddMinutes(domain.MinLeadTimeMinutes)
	if err != nil {
		// now + запас уже за полночью - сегодня бронировать поздно
		return []types.TimeString{}, nil
	}

	availableSlots := make([]types.TimeString, 0)
	for _, slot := range allSlots {
		if !slot.IsBefore(minAllowed) {
			availableSlots = append(availableSlots, slot)
		}
	}

	return availableSlots, nil
}

// markAvailability размечает кандидатов по журналу занятости согласно
// политике конфликтов
func markAvailability(
	candidates []types.TimeString,
	durationMinutes int,
	ledger []*domain.BookingSlot,
	policy domain.ConflictPolicy,
) []Slot {
	result := make([]Slot, 0, len(candidates))

	for _, start := range candidates {
		end, err := start.AddMinutes(durationMinutes)
		if err != nil {
			continue
		}

		result = append(result, Slot{
			StartTime: start,
			EndTime:   end,
			Available: !slotTaken(start, end, ledger, policy),
		})
	}

	return result
}

// slotTaken проверяет занятость кандидата по журналу
func slotTaken(start, end types.TimeString, ledger []*domain.BookingSlot, policy domain.ConflictPolicy) bool {
	for _, s := range ledger {
		if s.IsAvailable {
			continue
		}

		if policy == domain.PolicyOverlap {
			if s.Overlaps(start, end) {
				return true
			}
			continue
		}

		// Политика по умолчанию: точное совпадение времени начала
		if s.StartTime == start {
			return true
		}
	}

	return false
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата раньше сегодняшнего дня
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
