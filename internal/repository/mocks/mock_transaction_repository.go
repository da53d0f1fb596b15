package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *model.FinancialTransaction) (*model.FinancialTransaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByBooking(ctx context.Context, bookingID string) ([]model.FinancialTransaction, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FinancialTransaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, txType model.TransactionType, pq repository.PageQuery) (*repository.PageResult[model.FinancialTransaction], error) {
	args := m.Called(ctx, txType, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.FinancialTransaction]), args.Error(1)
}

func (m *MockTransactionRepository) SumByType(ctx context.Context, userID string) (map[model.TransactionType]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.TransactionType]int64), args.Error(1)
}
