package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/repository"
	"marketapi/internal/service"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) booking(args mock.Arguments) (*model.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) list(args mock.Arguments) (*service.ListResult[model.Booking], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Booking]), args.Error(1)
}

func (m *MockBookingService) Create(ctx context.Context, guestID string, req service.BookingRequest) (*service.Checkout, error) {
	args := m.Called(ctx, guestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Checkout), args.Error(1)
}

func (m *MockBookingService) ConfirmPayment(ctx context.Context, guestID, bookingID string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, guestID, bookingID))
}

func (m *MockBookingService) MarkAuthorized(ctx context.Context, intentID string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, intentID))
}

func (m *MockBookingService) MarkPaymentFailed(ctx context.Context, intentID string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, intentID))
}

func (m *MockBookingService) Approve(ctx context.Context, actor service.Actor, bookingID string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, actor, bookingID))
}

func (m *MockBookingService) Decline(ctx context.Context, actor service.Actor, bookingID, reason string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, actor, bookingID, reason))
}

func (m *MockBookingService) Cancel(ctx context.Context, actor service.Actor, bookingID, reason string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, actor, bookingID, reason))
}

func (m *MockBookingService) Complete(ctx context.Context, bookingID string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, bookingID))
}

func (m *MockBookingService) Payout(ctx context.Context, bookingID string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, bookingID))
}

func (m *MockBookingService) ExpireStale(ctx context.Context, now time.Time) (service.SweepResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(service.SweepResult), args.Error(1)
}

func (m *MockBookingService) CompleteDue(ctx context.Context, now time.Time) (service.SweepResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(service.SweepResult), args.Error(1)
}

func (m *MockBookingService) PayoutDue(ctx context.Context, now time.Time) (service.SweepResult, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(service.SweepResult), args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, actor service.Actor, id string) (*model.Booking, error) {
	return m.booking(m.Called(ctx, actor, id))
}

func (m *MockBookingService) ListForGuest(ctx context.Context, guestID string, status model.BookingStatus, limit, offset int) (*service.ListResult[model.Booking], error) {
	return m.list(m.Called(ctx, guestID, status, limit, offset))
}

func (m *MockBookingService) ListForHost(ctx context.Context, hostID string, status model.BookingStatus, limit, offset int) (*service.ListResult[model.Booking], error) {
	return m.list(m.Called(ctx, hostID, status, limit, offset))
}

func (m *MockBookingService) List(ctx context.Context, f repository.BookingFilter, limit, offset int) (*service.ListResult[model.Booking], error) {
	return m.list(m.Called(ctx, f, limit, offset))
}
