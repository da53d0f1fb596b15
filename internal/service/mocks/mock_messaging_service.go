package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"marketapi/internal/model"
	"marketapi/internal/service"
)

type MockMessagingService struct {
	mock.Mock
}

func (m *MockMessagingService) StartConversation(ctx context.Context, userID string, req service.ConversationRequest) (*model.Conversation, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Conversation), args.Error(1)
}

func (m *MockMessagingService) Send(ctx context.Context, senderID, conversationID, body string) (*model.Message, error) {
	args := m.Called(ctx, senderID, conversationID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MockMessagingService) ListConversations(ctx context.Context, userID string, limit, offset int) (*service.ListResult[model.ConversationSummary], error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.ConversationSummary]), args.Error(1)
}

func (m *MockMessagingService) ListMessages(ctx context.Context, userID, conversationID string, limit, offset int) (*service.ListResult[model.Message], error) {
	args := m.Called(ctx, userID, conversationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Message]), args.Error(1)
}

func (m *MockMessagingService) MarkRead(ctx context.Context, userID, conversationID string) (int64, error) {
	args := m.Called(ctx, userID, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessagingService) UnreadCount(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
