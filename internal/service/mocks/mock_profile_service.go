package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/service"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) profile(args mock.Arguments) (*model.Profile, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileService) Ensure(ctx context.Context, userID, email string) (*model.Profile, error) {
	return m.profile(m.Called(ctx, userID, email))
}

func (m *MockProfileService) GetMe(ctx context.Context, userID string) (*model.Profile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *MockProfileService) Get(ctx context.Context, id string) (*model.PublicProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicProfile), args.Error(1)
}

func (m *MockProfileService) UpdateMe(ctx context.Context, userID string, in service.ProfileUpdate) (*model.Profile, error) {
	return m.profile(m.Called(ctx, userID, in))
}

func (m *MockProfileService) UploadAvatar(ctx context.Context, userID string, r io.Reader, contentType string, size int64) (*model.Profile, error) {
	return m.profile(m.Called(ctx, userID, r, contentType, size))
}

func (m *MockProfileService) BecomeHost(ctx context.Context, userID string) (*model.Profile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *MockProfileService) StartPayoutOnboarding(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockProfileService) RefreshPayoutStatus(ctx context.Context, userID string) (*model.Profile, error) {
	return m.profile(m.Called(ctx, userID))
}
