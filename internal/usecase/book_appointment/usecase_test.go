package book_appointment

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	catalogClient "github.com/d-nekrasov/SalonBookingService/internal/integrations/catalogservice"
	identityClient "github.com/d-nekrasov/SalonBookingService/internal/integrations/identityservice"
	slotStorage "github.com/d-nekrasov/SalonBookingService/internal/infra/storage/slot"
	"github.com/d-nekrasov/SalonBookingService/pkg/ptr"
	"github.com/d-nekrasov/SalonBookingService/pkg/types"
)

// Mocks

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) IsTaken(ctx context.Context, date time.Time, startTime types.TimeString) (bool, error) {
	args := m.Called(ctx, date, startTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockSlotRepository) CountOverlapping(ctx context.Context, date time.Time, startTime, endTime types.TimeString) (int, error) {
	args := m.Called(ctx, date, startTime, endTime)
	return args.Int(0), args.Error(1)
}

func (m *MockSlotRepository) Reserve(ctx context.Context, s *domain.BookingSlot) (*domain.BookingSlot, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSlot), args.Error(1)
}

type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) GetPackage(ctx context.Context, packageID int64) (*catalogClient.ServicePackage, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogClient.ServicePackage), args.Error(1)
}

type MockIdentityClient struct {
	mock.Mock
}

func (m *MockIdentityClient) GetCustomer(ctx context.Context, customerID int64) (*identityClient.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityClient.Customer), args.Error(1)
}

// fakeTxManager выполняет функцию без настоящей транзакции
type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixedTimeProvider возвращает заранее заданное время
type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type noopLogger struct{}

func (l *noopLogger) Info(format string, v ...interface{})  {}
func (l *noopLogger) Warn(format string, v ...interface{})  {}
func (l *noopLogger) Error(format string, v ...interface{}) {}

// Test fixtures

var (
	testDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
)

func activePackage() *catalogClient.ServicePackage {
	return &catalogClient.ServicePackage{
		ID:              3,
		Name:            "Маникюр + покрытие",
		Category:        "nails",
		Price:           2500,
		DurationMinutes: 60,
		IsActive:        true,
	}
}

func testCustomer() *identityClient.Customer {
	return &identityClient.Customer{
		ID:    7,
		Name:  "Анна",
		Phone: ptr.Ptr("+79990001122"),
	}
}

func newTestUseCase(
	appointmentRepo AppointmentRepository,
	slotRepo SlotRepository,
	catalog CatalogServiceClient,
	identity IdentityServiceClient,
	policy domain.ConflictPolicy,
) *UseCase {
	uc := NewUseCase(appointmentRepo, slotRepo, catalog, identity, &fakeTxManager{}, policy, &noopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}
	return uc
}

func validRequest() *Request {
	return &Request{
		CustomerID: 7,
		PackageID:  3,
		Date:       testDate,
		StartTime:  "11:00",
	}
}

// Tests

func TestExecute_Success(t *testing.T) {
	appointmentRepo := new(MockAppointmentRepository)
	slotRepo := new(MockSlotRepository)
	catalog := new(MockCatalogClient)
	identity := new(MockIdentityClient)

	catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)
	identity.On("GetCustomer", mock.Anything, int64(7)).Return(testCustomer(), nil)
	slotRepo.On("IsTaken", mock.Anything, testDate, types.TimeString("11:00")).Return(false, nil)

	appointmentRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.Status == domain.StatusPending &&
			a.DurationMinutes == 60 &&
			a.CustomerName == "Анна" &&
			a.PackageName == "Маникюр + покрытие" &&
			a.PackagePrice == 2500
	})).Return(&domain.Appointment{
		ID:              42,
		CustomerID:      7,
		PackageID:       3,
		Date:            testDate,
		StartTime:       "11:00",
		DurationMinutes: 60,
		Status:          domain.StatusPending,
		CustomerName:    "Анна",
		PackageName:     "Маникюр + покрытие",
		PackagePrice:    2500,
	}, nil)

	slotRepo.On("Reserve", mock.Anything, mock.MatchedBy(func(s *domain.BookingSlot) bool {
		return s.StartTime == "11:00" && s.EndTime == "12:00" &&
			s.AppointmentID != nil && *s.AppointmentID == 42
	})).Return(&domain.BookingSlot{ID: 1}, nil)

	uc := newTestUseCase(appointmentRepo, slotRepo, catalog, identity, domain.PolicyExactStart)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, types.TimeString("12:00"), resp.EndTime)
	assert.Equal(t, 60, resp.DurationMinutes)

	appointmentRepo.AssertExpectations(t)
	slotRepo.AssertExpectations(t)
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := newTestUseCase(nil, nil, nil, nil, domain.PolicyExactStart)

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"non-positive customer", func(r *Request) { r.CustomerID = 0 }},
		{"non-positive package", func(r *Request) { r.PackageID = -1 }},
		{"zero date", func(r *Request) { r.Date = time.Time{} }},
		{"empty start time", func(r *Request) { r.StartTime = "" }},
		{"malformed start time", func(r *Request) { r.StartTime = "11:00:00" }},
		{"notes too long", func(r *Request) { r.Notes = ptr.Ptr(strings.Repeat("x", 501)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_PackageNotFound(t *testing.T) {
	catalog := new(MockCatalogClient)
	catalog.On("GetPackage", mock.Anything, int64(3)).Return(nil, catalogClient.ErrPackageNotFound)

	uc := newTestUseCase(nil, nil, catalog, nil, domain.PolicyExactStart)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestExecute_PackageInactive(t *testing.T) {
	pkg := activePackage()
	pkg.IsActive = false

	catalog := new(MockCatalogClient)
	catalog.On("GetPackage", mock.Anything, int64(3)).Return(pkg, nil)

	uc := newTestUseCase(nil, nil, catalog, nil, domain.PolicyExactStart)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPackageInactive)
}

func TestExecute_InvalidPackageDuration(t *testing.T) {
	pkg := activePackage()
	pkg.DurationMinutes = 0

	catalog := new(MockCatalogClient)
	catalog.On("GetPackage", mock.Anything, int64(3)).Return(pkg, nil)

	uc := newTestUseCase(nil, nil, catalog, nil, domain.PolicyExactStart)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_LeadTimeBoundary(t *testing.T) {
	// now = 08:00, минимальный запас 2 часа

	t.Run("one minute inside the window is rejected", func(t *testing.T) {
		catalog := new(MockCatalogClient)
		catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)

		uc := newTestUseCase(nil, nil, catalog, nil, domain.PolicyExactStart)

		req := validRequest()
		req.StartTime = "09:59"

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrTooSoon)
	})

	t.Run("exactly now plus two hours is allowed", func(t *testing.T) {
		appointmentRepo := new(MockAppointmentRepository)
		slotRepo := new(MockSlotRepository)
		catalog := new(MockCatalogClient)
		identity := new(MockIdentityClient)

		catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)
		identity.On("GetCustomer", mock.Anything, int64(7)).Return(testCustomer(), nil)
		slotRepo.On("IsTaken", mock.Anything, testDate, types.TimeString("10:00")).Return(false, nil)
		appointmentRepo.On("Create", mock.Anything, mock.Anything).
			Return(&domain.Appointment{ID: 1, StartTime: "10:00", Status: domain.StatusPending}, nil)
		slotRepo.On("Reserve", mock.Anything, mock.Anything).Return(&domain.BookingSlot{ID: 1}, nil)

		uc := newTestUseCase(appointmentRepo, slotRepo, catalog, identity, domain.PolicyExactStart)

		req := validRequest()
		req.StartTime = "10:00"

		_, err := uc.Execute(context.Background(), req)
		assert.NoError(t, err)
	})
}

func TestExecute_OutsideSalonHours(t *testing.T) {
	catalog := new(MockCatalogClient)
	catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)

	uc := newTestUseCase(nil, nil, catalog, nil, domain.PolicyExactStart)
	// Раннее now, чтобы запас времени не срабатывал раньше проверки часов
	uc.timeProvider = &fixedTimeProvider{now: testDate}

	for _, startTime := range []types.TimeString{"09:00", "09:59", "20:30", "21:00"} {
		req := validRequest()
		req.StartTime = startTime

		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrOutsideSalonHours, "start %s", startTime)
	}
}

func TestExecute_PastMidnightRejected(t *testing.T) {
	pkg := activePackage()
	pkg.DurationMinutes = 90

	catalog := new(MockCatalogClient)
	catalog.On("GetPackage", mock.Anything, int64(3)).Return(pkg, nil)

	uc := newTestUseCase(nil, nil, catalog, nil, domain.PolicyExactStart)

	req := validRequest()
	req.StartTime = "23:00"

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_SlotAlreadyTaken(t *testing.T) {
	appointmentRepo := new(MockAppointmentRepository)
	slotRepo := new(MockSlotRepository)
	catalog := new(MockCatalogClient)
	identity := new(MockIdentityClient)

	catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)
	identity.On("GetCustomer", mock.Anything, int64(7)).Return(testCustomer(), nil)
	slotRepo.On("IsTaken", mock.Anything, testDate, types.TimeString("11:00")).Return(true, nil)

	uc := newTestUseCase(appointmentRepo, slotRepo, catalog, identity, domain.PolicyExactStart)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Запись не должна создаваться при занятом слоте
	appointmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_OverlapPolicy(t *testing.T) {
	appointmentRepo := new(MockAppointmentRepository)
	slotRepo := new(MockSlotRepository)
	catalog := new(MockCatalogClient)
	identity := new(MockIdentityClient)

	catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)
	identity.On("GetCustomer", mock.Anything, int64(7)).Return(testCustomer(), nil)
	slotRepo.On("CountOverlapping", mock.Anything, testDate,
		types.TimeString("11:00"), types.TimeString("12:00")).Return(1, nil)

	uc := newTestUseCase(appointmentRepo, slotRepo, catalog, identity, domain.PolicyOverlap)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)

	slotRepo.AssertNotCalled(t, "IsTaken", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_LostReserveRace(t *testing.T) {
	appointmentRepo := new(MockAppointmentRepository)
	slotRepo := new(MockSlotRepository)
	catalog := new(MockCatalogClient)
	identity := new(MockIdentityClient)

	catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)
	identity.On("GetCustomer", mock.Anything, int64(7)).Return(testCustomer(), nil)
	slotRepo.On("IsTaken", mock.Anything, testDate, types.TimeString("11:00")).Return(false, nil)
	appointmentRepo.On("Create", mock.Anything, mock.Anything).
		Return(&domain.Appointment{ID: 42, Status: domain.StatusPending}, nil)
	slotRepo.On("Reserve", mock.Anything, mock.Anything).Return(nil, slotStorage.ErrSlotTaken)

	uc := newTestUseCase(appointmentRepo, slotRepo, catalog, identity, domain.PolicyExactStart)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_ReserveRejectsInvalidSlot(t *testing.T) {
	// Пакет на 90 минут со стартом в 19:00 заканчивается в 20:30,
	// инвариант слота отклоняет интервал за временем закрытия
	pkg := activePackage()
	pkg.DurationMinutes = 90

	appointmentRepo := new(MockAppointmentRepository)
	slotRepo := new(MockSlotRepository)
	catalog := new(MockCatalogClient)
	identity := new(MockIdentityClient)

	catalog.On("GetPackage", mock.Anything, int64(3)).Return(pkg, nil)
	identity.On("GetCustomer", mock.Anything, int64(7)).Return(testCustomer(), nil)
	slotRepo.On("IsTaken", mock.Anything, testDate, types.TimeString("19:00")).Return(false, nil)
	appointmentRepo.On("Create", mock.Anything, mock.Anything).
		Return(&domain.Appointment{ID: 42, Status: domain.StatusPending}, nil)
	slotRepo.On("Reserve", mock.Anything, mock.Anything).Return(nil, slotStorage.ErrInvalidSlot)

	uc := newTestUseCase(appointmentRepo, slotRepo, catalog, identity, domain.PolicyExactStart)

	req := validRequest()
	req.StartTime = "19:00"

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideSalonHours)
}

func TestExecute_CustomerNotFound(t *testing.T) {
	catalog := new(MockCatalogClient)
	identity := new(MockIdentityClient)

	catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)
	identity.On("GetCustomer", mock.Anything, int64(7)).Return(nil, identityClient.ErrCustomerNotFound)

	uc := newTestUseCase(nil, nil, catalog, identity, domain.PolicyExactStart)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

// memorySlotLedger потокобезопасный журнал занятости для проверки гонок
type memorySlotLedger struct {
	mu    sync.Mutex
	taken map[string]bool
}

func newMemorySlotLedger() *memorySlotLedger {
	return &memorySlotLedger{taken: make(map[string]bool)}
}

func (l *memorySlotLedger) key(date time.Time, start types.TimeString) string {
	return date.Format("2006-01-02") + " " + start.String()
}

func (l *memorySlotLedger) IsTaken(ctx context.Context, date time.Time, startTime types.TimeString) (bool, error) {
	// Проверка вне CAS сознательно даёт шанс гонке,
	// которую обязан разрешить Reserve
	return false, nil
}

func (l *memorySlotLedger) CountOverlapping(ctx context.Context, date time.Time, startTime, endTime types.TimeString) (int, error) {
	return 0, nil
}

func (l *memorySlotLedger) Reserve(ctx context.Context, s *domain.BookingSlot) (*domain.BookingSlot, error) {
	if err := s.Validate(); err != nil {
		return nil, slotStorage.ErrInvalidSlot
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	k := l.key(s.Date, s.StartTime)
	if l.taken[k] {
		return nil, slotStorage.ErrSlotTaken
	}
	l.taken[k] = true
	return s, nil
}

type memoryAppointmentRepo struct {
	mu     sync.Mutex
	nextID int64
}

func (r *memoryAppointmentRepo) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	created := *a
	created.ID = r.nextID
	return &created, nil
}

func TestExecute_ConcurrentBookings_SingleWinner(t *testing.T) {
	const workers = 16

	catalog := new(MockCatalogClient)
	identity := new(MockIdentityClient)
	catalog.On("GetPackage", mock.Anything, int64(3)).Return(activePackage(), nil)
	identity.On("GetCustomer", mock.Anything, mock.Anything).Return(testCustomer(), nil)

	uc := newTestUseCase(&memoryAppointmentRepo{}, newMemorySlotLedger(), catalog, identity, domain.PolicyExactStart)

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), validRequest())
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrSlotTaken):
			losses++
		}
	}

	assert.Equal(t, 1, wins, "exactly one booking must win the slot")
	assert.Equal(t, workers-1, losses)
}
