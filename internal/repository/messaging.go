package repository

import (
	"context"
	"time"

	"marketapi/internal/model"
)

// ConversationRepository persists conversations.
type ConversationRepository interface {
	// Create returns ErrConflict when the participants already share a thread for the experience.
	Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error)
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
	FindByParticipants(ctx context.Context, guestID, hostID, experienceID string) (*model.Conversation, error)
	ListForUser(ctx context.Context, userID string, pq PageQuery) (*PageResult[model.ConversationSummary], error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// MessageRepository persists messages.
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) (*model.Message, error)
	List(ctx context.Context, conversationID string, pq PageQuery) (*PageResult[model.Message], error)
	// MarkRead marks messages not sent by readerID as read and returns how many changed.
	MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}
