package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

type MockExperienceRepository struct {
	mock.Mock
}

func (m *MockExperienceRepository) Create(ctx context.Context, e *model.Experience) (*model.Experience, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Experience), args.Error(1)
}

func (m *MockExperienceRepository) FindByID(ctx context.Context, id string) (*model.Experience, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Experience), args.Error(1)
}

func (m *MockExperienceRepository) Update(ctx context.Context, e *model.Experience) (*model.Experience, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Experience), args.Error(1)
}

func (m *MockExperienceRepository) SetStatus(ctx context.Context, id string, status model.ExperienceStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockExperienceRepository) SetImages(ctx context.Context, id string, images []string) error {
	return m.Called(ctx, id, images).Error(0)
}

func (m *MockExperienceRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockExperienceRepository) Archive(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockExperienceRepository) Search(ctx context.Context, f model.ExperienceFilter, pq repository.PageQuery) (*repository.PageResult[model.Experience], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Experience]), args.Error(1)
}

func (m *MockExperienceRepository) RefreshRating(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockExperienceRepository) CountByStatus(ctx context.Context) (map[model.ExperienceStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.ExperienceStatus]int), args.Error(1)
}
