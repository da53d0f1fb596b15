package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/mailer"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}
