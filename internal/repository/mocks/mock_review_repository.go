package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, r *model.Review) (*model.Review, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewRepository) FindByID(ctx context.Context, id string) (*model.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewRepository) SetReply(ctx context.Context, id, reply string, at time.Time) (*model.Review, error) {
	args := m.Called(ctx, id, reply, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByExperience(ctx context.Context, experienceID string, pq repository.PageQuery) (*repository.PageResult[model.Review], error) {
	args := m.Called(ctx, experienceID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Review]), args.Error(1)
}

func (m *MockReviewRepository) ListByHost(ctx context.Context, hostID string, pq repository.PageQuery) (*repository.PageResult[model.Review], error) {
	args := m.Called(ctx, hostID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Review]), args.Error(1)
}

func (m *MockReviewRepository) AverageForHost(ctx context.Context, hostID string) (float64, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).(float64), args.Error(1)
}
