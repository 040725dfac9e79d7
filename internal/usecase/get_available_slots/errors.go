package get_available_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrPackageNotFound возвращается, когда пакет услуг не найден в каталоге
	ErrPackageNotFound = errors.New("get_available_slots: service package not found")

	// ErrPackageInactive возвращается, когда пакет услуг снят с продажи
	ErrPackageInactive = errors.New("get_available_slots: service package is inactive")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
