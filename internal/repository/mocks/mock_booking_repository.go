package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) booking(args mock.Arguments) (*model.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingRepository) CreateWithCapacity(ctx context.Context, b *model.Booking) (*model.Booking, error) {
	return m.booking(m.Called(ctx, b))
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, intentID))
}

func (m *MockBookingRepository) FindByIdempotencyKey(ctx context.Context, guestID, key string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, guestID, key))
}

func (m *MockBookingRepository) SetPaymentIntent(ctx context.Context, id, intentID string, ps model.PaymentStatus) error {
	return m.Called(ctx, id, intentID, ps).Error(0)
}

func (m *MockBookingRepository) Transition(ctx context.Context, id string, from []model.BookingStatus, t repository.BookingTransition) (*model.Booking, error) {
	return m.booking(m.Called(ctx, id, from, t))
}

func (m *MockBookingRepository) List(ctx context.Context, f repository.BookingFilter, pq repository.PageQuery) (*repository.PageResult[model.Booking], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Booking]), args.Error(1)
}

func (m *MockBookingRepository) ListDue(ctx context.Context, status model.BookingStatus, column repository.DueColumn, before time.Time, limit int) ([]model.Booking, error) {
	args := m.Called(ctx, status, column, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingRepository) ReservedSeats(ctx context.Context, experienceID string, date time.Time) (int, error) {
	args := m.Called(ctx, experienceID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) CountForExperience(ctx context.Context, experienceID string) (int, int, error) {
	args := m.Called(ctx, experienceID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockBookingRepository) CountByStatus(ctx context.Context, hostID string) (map[model.BookingStatus]int, error) {
	args := m.Called(ctx, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.BookingStatus]int), args.Error(1)
}

func (m *MockBookingRepository) SumHostPayouts(ctx context.Context, hostID string, statuses []model.BookingStatus) (int64, error) {
	args := m.Called(ctx, hostID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) CountUpcoming(ctx context.Context, hostID string, now time.Time) (int, error) {
	args := m.Called(ctx, hostID, now)
	return args.Int(0), args.Error(1)
}
