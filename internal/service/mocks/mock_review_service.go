package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/service"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, guestID, bookingID string, rating int, comment string) (*model.Review, error) {
	args := m.Called(ctx, guestID, bookingID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewService) Reply(ctx context.Context, hostID, reviewID, text string) (*model.Review, error) {
	args := m.Called(ctx, hostID, reviewID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewService) ListForExperience(ctx context.Context, experienceID string, limit, offset int) (*service.ListResult[model.Review], error) {
	args := m.Called(ctx, experienceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Review]), args.Error(1)
}

func (m *MockReviewService) ListForHost(ctx context.Context, hostID string, limit, offset int) (*service.ListResult[model.Review], error) {
	args := m.Called(ctx, hostID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Review]), args.Error(1)
}
