package book_appointment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных,
	// включая длительность, переводящую визит через полночь
	ErrInvalidInput = errors.New("book_appointment: invalid input data")

	// ErrPackageNotFound возвращается, когда пакет услуг не найден в каталоге
	ErrPackageNotFound = errors.New("book_appointment: service package not found")

	// ErrPackageInactive возвращается, когда пакет услуг снят с продажи
	ErrPackageInactive = errors.New("book_appointment: service package is inactive")

	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = errors.New("book_appointment: customer not found")

	// ErrTooSoon возвращается, когда до визита меньше минимального запаса времени
	ErrTooSoon = errors.New("book_appointment: booking is too soon")

	// ErrOutsideSalonHours возвращается, когда время визита вне рабочих часов салона
	ErrOutsideSalonHours = errors.New("book_appointment: outside salon hours")

	// ErrSlotTaken возвращается, когда выбранный слот уже занят
	// (как при проверке, так и при проигрыше гонки на фиксации)
	ErrSlotTaken = errors.New("book_appointment: slot is already taken")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_appointment: internal error")
)
