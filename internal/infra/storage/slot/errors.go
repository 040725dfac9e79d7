package slot

import "errors"

var (
	// ErrSlotTaken возвращается, когда слот на это дату и время уже занят
	ErrSlotTaken = errors.New("slot.repository: slot is already taken")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot.repository: slot not found")

	// ErrInvalidSlot возвращается, когда интервал слота нарушает инварианты
	// (start >= end или выход за рабочие часы салона)
	ErrInvalidSlot = errors.New("slot.repository: invalid slot")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("slot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("slot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("slot.repository: failed to scan row")
)
