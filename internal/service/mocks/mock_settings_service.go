package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
)

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context) (model.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Settings), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, kv map[string]string) (model.Settings, error) {
	args := m.Called(ctx, kv)
	return args.Get(0).(model.Settings), args.Error(1)
}
