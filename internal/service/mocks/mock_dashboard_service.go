package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/service"
)

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) HostDashboard(ctx context.Context, hostID string) (*service.HostDashboard, error) {
	args := m.Called(ctx, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HostDashboard), args.Error(1)
}

func (m *MockDashboardService) Stats(ctx context.Context) (*service.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlatformStats), args.Error(1)
}

func (m *MockDashboardService) ListUsers(ctx context.Context, role model.Role, limit, offset int) (*service.ListResult[model.Profile], error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Profile]), args.Error(1)
}

func (m *MockDashboardService) SetUserRole(ctx context.Context, adminID, userID string, role model.Role) error {
	args := m.Called(ctx, adminID, userID, role)
	return args.Error(0)
}

func (m *MockDashboardService) ListTransactions(ctx context.Context, txType model.TransactionType, limit, offset int) (*service.ListResult[model.FinancialTransaction], error) {
	args := m.Called(ctx, txType, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.FinancialTransaction]), args.Error(1)
}
