package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/service"
	"marketapi/internal/storage"
)

type MockExperienceService struct {
	mock.Mock
}

func (m *MockExperienceService) experience(args mock.Arguments) (*model.Experience, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Experience), args.Error(1)
}

func (m *MockExperienceService) Create(ctx context.Context, hostID string, in service.ExperienceInput) (*model.Experience, error) {
	return m.experience(m.Called(ctx, hostID, in))
}

func (m *MockExperienceService) Update(ctx context.Context, actor service.Actor, id string, in service.ExperienceInput) (*model.Experience, error) {
	return m.experience(m.Called(ctx, actor, id, in))
}

func (m *MockExperienceService) Delete(ctx context.Context, actor service.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockExperienceService) SetStatus(ctx context.Context, actor service.Actor, id string, status model.ExperienceStatus) (*model.Experience, error) {
	return m.experience(m.Called(ctx, actor, id, status))
}

func (m *MockExperienceService) AddImage(ctx context.Context, actor service.Actor, id string, r io.Reader, contentType string, size int64) (*model.Experience, error) {
	return m.experience(m.Called(ctx, actor, id, r, contentType, size))
}

func (m *MockExperienceService) RemoveImage(ctx context.Context, actor service.Actor, id string, index int) (*model.Experience, error) {
	return m.experience(m.Called(ctx, actor, id, index))
}

func (m *MockExperienceService) Get(ctx context.Context, viewer service.Actor, id string) (*model.Experience, error) {
	return m.experience(m.Called(ctx, viewer, id))
}

func (m *MockExperienceService) Image(ctx context.Context, viewer service.Actor, id string, index int) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, viewer, id, index)
	if args.Get(0) == nil {
		return nil, storage.ObjectInfo{}, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockExperienceService) Search(ctx context.Context, q service.SearchQuery) (*service.ListResult[model.Experience], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Experience]), args.Error(1)
}

func (m *MockExperienceService) ListMine(ctx context.Context, hostID string, limit, offset int) (*service.ListResult[model.Experience], error) {
	args := m.Called(ctx, hostID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Experience]), args.Error(1)
}

func (m *MockExperienceService) Availability(ctx context.Context, id string, date time.Time) (*service.Availability, error) {
	args := m.Called(ctx, id, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Availability), args.Error(1)
}
