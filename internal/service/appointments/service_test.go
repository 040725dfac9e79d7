package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/d-nekrasov/SalonBookingService/internal/domain"
	appointmentRepo "github.com/d-nekrasov/SalonBookingService/internal/infra/storage/appointment"
	"github.com/d-nekrasov/SalonBookingService/internal/service/appointments/models"
	"github.com/d-nekrasov/SalonBookingService/pkg/ptr"
)

// Mocks

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) GetByCustomerID(ctx context.Context, customerID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	args := m.Called(ctx, customerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, from []domain.AppointmentStatus) error {
	args := m.Called(ctx, id, status, from)
	return args.Error(0)
}

func (m *MockAppointmentRepository) CountByStatus(ctx context.Context) (map[domain.AppointmentStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.AppointmentStatus]int64), args.Error(1)
}

func (m *MockAppointmentRepository) TotalRevenue(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) Release(ctx context.Context, appointmentID int64) error {
	args := m.Called(ctx, appointmentID)
	return args.Error(0)
}

func (m *MockSlotRepository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.BookingSlot, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingSlot), args.Error(1)
}

type fakeTxManager struct{}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (l *noopLogger) Info(format string, v ...interface{})  {}
func (l *noopLogger) Warn(format string, v ...interface{})  {}
func (l *noopLogger) Error(format string, v ...interface{}) {}

// Fixtures

var (
	staff    = models.Actor{UserID: 100, Role: models.RoleStaff}
	customer = models.Actor{UserID: 7, Role: models.RoleCustomer}
	stranger = models.Actor{UserID: 8, Role: models.RoleCustomer}
)

func pendingAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              42,
		CustomerID:      7,
		PackageID:       3,
		Date:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime:       "11:00",
		DurationMinutes: 60,
		Status:          domain.StatusPending,
		CustomerName:    "Анна",
		PackageName:     "Стрижка",
		PackagePrice:    1500,
	}
}

func newTestService(ar AppointmentRepository, sr SlotRepository) *Service {
	return NewService(ar, sr, &fakeTxManager{}, &noopLogger{})
}

func containsStatus(list []domain.AppointmentStatus, s domain.AppointmentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Tests

func TestGetByID_OwnerAndStaffAllowed(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)

	svc := newTestService(repo, nil)

	for _, actor := range []models.Actor{customer, staff} {
		resp, err := svc.GetByID(context.Background(), 42, actor)
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
	}
}

func TestGetByID_StrangerDenied(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)

	svc := newTestService(repo, nil)

	_, err := svc.GetByID(context.Background(), 42, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("GetByID", mock.Anything, int64(42)).Return(nil, appointmentRepo.ErrAppointmentNotFound)

	svc := newTestService(repo, nil)

	_, err := svc.GetByID(context.Background(), 42, staff)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestApprove_PendingToConfirmed(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)
	repo.On("UpdateStatus", mock.Anything, int64(42), domain.StatusConfirmed, mock.Anything).Return(nil)

	svc := newTestService(repo, nil)

	err := svc.Approve(context.Background(), 42, staff)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestApprove_CustomerDenied(t *testing.T) {
	repo := new(MockAppointmentRepository)

	svc := newTestService(repo, nil)

	err := svc.Approve(context.Background(), 42, customer)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// Статус не должен меняться без прав
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_TerminalStatusRejected(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{domain.StatusCompleted, domain.StatusCancelled} {
		a := pendingAppointment()
		a.Status = status

		repo := new(MockAppointmentRepository)
		repo.On("GetByID", mock.Anything, int64(42)).Return(a, nil)

		svc := newTestService(repo, nil)

		err := svc.Approve(context.Background(), 42, staff)
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestApprove_ConfirmedRejected(t *testing.T) {
	a := pendingAppointment()
	a.Status = domain.StatusConfirmed

	repo := new(MockAppointmentRepository)
	repo.On("GetByID", mock.Anything, int64(42)).Return(a, nil)

	svc := newTestService(repo, nil)

	err := svc.Approve(context.Background(), 42, staff)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComplete_FromPendingAndConfirmed(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{domain.StatusPending, domain.StatusConfirmed} {
		a := pendingAppointment()
		a.Status = status

		repo := new(MockAppointmentRepository)
		repo.On("GetByID", mock.Anything, int64(42)).Return(a, nil)
		repo.On("UpdateStatus", mock.Anything, int64(42), domain.StatusCompleted, mock.Anything).Return(nil)

		svc := newTestService(repo, nil)

		err := svc.Complete(context.Background(), 42, staff)
		assert.NoError(t, err, "status %s", status)
	}
}

func TestComplete_ConcurrentStatusChange(t *testing.T) {
	// Между чтением и условным UPDATE статус поменяла другая операция
	repo := new(MockAppointmentRepository)
	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)
	repo.On("UpdateStatus", mock.Anything, int64(42), domain.StatusCompleted, mock.MatchedBy(func(from []domain.AppointmentStatus) bool {
		return containsStatus(from, domain.StatusPending) && containsStatus(from, domain.StatusConfirmed)
	})).Return(appointmentRepo.ErrStatusConflict)

	svc := newTestService(repo, nil)

	err := svc.Complete(context.Background(), 42, staff)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_ReleasesSlot(t *testing.T) {
	repo := new(MockAppointmentRepository)
	slots := new(MockSlotRepository)

	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)
	repo.On("UpdateStatus", mock.Anything, int64(42), domain.StatusCancelled, mock.Anything).Return(nil)
	slots.On("Release", mock.Anything, int64(42)).Return(nil)

	svc := newTestService(repo, slots)

	err := svc.Cancel(context.Background(), 42, staff)
	require.NoError(t, err)

	repo.AssertExpectations(t)
	slots.AssertExpectations(t)
}

func TestCancel_OwnerAllowed(t *testing.T) {
	repo := new(MockAppointmentRepository)
	slots := new(MockSlotRepository)

	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)
	repo.On("UpdateStatus", mock.Anything, int64(42), domain.StatusCancelled, mock.Anything).Return(nil)
	slots.On("Release", mock.Anything, int64(42)).Return(nil)

	svc := newTestService(repo, slots)

	assert.NoError(t, svc.Cancel(context.Background(), 42, customer))
}

func TestCancel_ConcurrentStatusChange(t *testing.T) {
	repo := new(MockAppointmentRepository)
	slots := new(MockSlotRepository)

	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)
	repo.On("UpdateStatus", mock.Anything, int64(42), domain.StatusCancelled, mock.Anything).
		Return(appointmentRepo.ErrStatusConflict)

	svc := newTestService(repo, slots)

	err := svc.Cancel(context.Background(), 42, staff)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Слот не освобождается, если запись уже в другом статусе
	slots.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestCancel_StrangerDenied(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("GetByID", mock.Anything, int64(42)).Return(pendingAppointment(), nil)

	svc := newTestService(repo, nil)

	err := svc.Cancel(context.Background(), 42, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	for _, status := range []domain.AppointmentStatus{domain.StatusCompleted, domain.StatusCancelled} {
		a := pendingAppointment()
		a.Status = status

		repo := new(MockAppointmentRepository)
		slots := new(MockSlotRepository)
		repo.On("GetByID", mock.Anything, int64(42)).Return(a, nil)

		svc := newTestService(repo, slots)

		err := svc.Cancel(context.Background(), 42, staff)
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)
		slots.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	}
}

func TestGetCustomerAppointments_SelfAndStaff(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("GetByCustomerID", mock.Anything, int64(7), (*domain.AppointmentStatus)(nil)).
		Return([]*domain.Appointment{pendingAppointment()}, nil)

	svc := newTestService(repo, nil)

	for _, actor := range []models.Actor{customer, staff} {
		resp, err := svc.GetCustomerAppointments(context.Background(), 7, nil, actor)
		require.NoError(t, err)
		assert.Len(t, resp.Appointments, 1)
	}

	_, err := svc.GetCustomerAppointments(context.Background(), 7, nil, stranger)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetCustomerAppointments_InvalidStatus(t *testing.T) {
	svc := newTestService(new(MockAppointmentRepository), nil)

	_, err := svc.GetCustomerAppointments(context.Background(), 7, ptr.Ptr("unknown"), customer)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestList_StaffOnly(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(f domain.AppointmentsFilter) bool {
		return f.Status != nil && *f.Status == domain.StatusPending &&
			f.SearchText != nil && *f.SearchText == "Анна"
	})).Return([]*domain.Appointment{pendingAppointment()}, nil)

	svc := newTestService(repo, nil)

	resp, err := svc.List(context.Background(), &models.ListAppointmentsRequest{
		Actor:      staff,
		Status:     ptr.Ptr("pending"),
		SearchText: ptr.Ptr("Анна"),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)

	_, err = svc.List(context.Background(), &models.ListAppointmentsRequest{Actor: customer})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestStats_StaffOnly(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("CountByStatus", mock.Anything).Return(map[domain.AppointmentStatus]int64{
		domain.StatusPending:   2,
		domain.StatusConfirmed: 3,
		domain.StatusCompleted: 5,
		domain.StatusCancelled: 1,
	}, nil)
	repo.On("TotalRevenue", mock.Anything).Return(12500.0, nil)

	svc := newTestService(repo, nil)

	stats, err := svc.Stats(context.Background(), staff)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.PendingCount)
	assert.Equal(t, int64(3), stats.ConfirmedCount)
	assert.Equal(t, int64(5), stats.CompletedCount)
	assert.Equal(t, int64(1), stats.CancelledCount)
	assert.Equal(t, 12500.0, stats.TotalRevenue)

	_, err = svc.Stats(context.Background(), customer)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
