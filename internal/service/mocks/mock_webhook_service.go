package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) Handle(ctx context.Context, payload []byte, signature string) (string, error) {
	args := m.Called(ctx, payload, signature)
	return args.String(0), args.Error(1)
}
