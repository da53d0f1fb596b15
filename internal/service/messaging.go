package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketapi/internal/mailer"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const maxMessageLength = 4000

// ConversationRequest starts a thread with a host about an experience or booking.
type ConversationRequest struct {
	HostID       string
	ExperienceID string
	BookingID    string
}

// MessagingService manages guest/host conversations.
type MessagingService interface {
	// StartConversation returns the existing thread for the participants and experience, or creates one.
	StartConversation(ctx context.Context, userID string, req ConversationRequest) (*model.Conversation, error)
	Send(ctx context.Context, senderID, conversationID, body string) (*model.Message, error)
	ListConversations(ctx context.Context, userID string, limit, offset int) (*ListResult[model.ConversationSummary], error)
	ListMessages(ctx context.Context, userID, conversationID string, limit, offset int) (*ListResult[model.Message], error)
	MarkRead(ctx context.Context, userID, conversationID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type messagingService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	experiences   repository.ExperienceRepository
	bookings      repository.BookingRepository
	profiles      repository.ProfileRepository
	notifier      Notifier
	log           zerolog.Logger
}

// NewMessagingService constructs a MessagingService.
func NewMessagingService(conversations repository.ConversationRepository, messages repository.MessageRepository, experiences repository.ExperienceRepository, bookings repository.BookingRepository, profiles repository.ProfileRepository, notifier Notifier, log zerolog.Logger) MessagingService {
	return &messagingService{
		conversations: conversations,
		messages:      messages,
		experiences:   experiences,
		bookings:      bookings,
		profiles:      profiles,
		notifier:      notifier,
		log:           log,
	}
}

func (s *messagingService) StartConversation(ctx context.Context, userID string, req ConversationRequest) (*model.Conversation, error) {
	guestID, hostID := userID, req.HostID

	if req.BookingID != "" {
		b, err := s.bookings.FindByID(ctx, req.BookingID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("booking_id", "booking not found")
			}
			return nil, fmt.Errorf("get booking: %w", err)
		}
		if !b.IsParticipant(userID) {
			return nil, ErrForbidden
		}
		guestID, hostID = b.GuestID, b.HostID
		req.ExperienceID = b.ExperienceID
	} else if req.ExperienceID != "" {
		exp, err := s.experiences.FindByID(ctx, req.ExperienceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("experience_id", "experience not found")
			}
			return nil, fmt.Errorf("get experience: %w", err)
		}
		hostID = exp.HostID
	}
	if hostID == "" {
		return nil, invalid("host_id", "host_id, experience_id or booking_id is required")
	}
	if guestID == hostID {
		return nil, invalid("host_id", "you cannot message yourself")
	}
	if req.BookingID == "" {
		if _, err := s.profiles.FindByID(ctx, hostID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("host_id", "user not found")
			}
			return nil, fmt.Errorf("get host: %w", err)
		}
	}

	existing, err := s.conversations.FindByParticipants(ctx, guestID, hostID, req.ExperienceID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	now := utcNow()
	c, err := s.conversations.Create(ctx, &model.Conversation{
		ID:            uuid.NewString(),
		GuestID:       guestID,
		HostID:        hostID,
		ExperienceID:  req.ExperienceID,
		BookingID:     req.BookingID,
		LastMessageAt: now,
		CreatedAt:     now,
	})
	if errors.Is(err, repository.ErrConflict) {
		// Created concurrently.
		return s.conversations.FindByParticipants(ctx, guestID, hostID, req.ExperienceID)
	}
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return c, nil
}

func (s *messagingService) participant(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	c, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return nil, notFound(err, "get conversation")
	}
	if !c.IsParticipant(userID) {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *messagingService) Send(ctx context.Context, senderID, conversationID, body string) (*model.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" || len([]rune(body)) > maxMessageLength {
		return nil, invalid("body", fmt.Sprintf("must be 1 to %d characters", maxMessageLength))
	}
	c, err := s.participant(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}
	now := utcNow()
	m, err := s.messages.Create(ctx, &model.Message{
		ID:             uuid.NewString(),
		ConversationID: c.ID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if err := s.conversations.Touch(ctx, c.ID, now); err != nil {
		s.log.Warn().Err(err).Str("event", "conversation_touch_failed").Str("conversation_id", c.ID).Msg("could not bump conversation")
	}

	data := &mailer.Data{Note: preview(body, 200)}
	if p, err := s.profiles.FindByID(ctx, senderID); err == nil {
		data.Counterpart = p.FullName
	}
	s.notifier.Notify(ctx, Notice{
		UserID: c.OtherParticipant(senderID),
		Type:   model.NotifyNewMessage,
		Title:  "New message",
		Body:   preview(body, 140),
		Link:   "/conversations/" + c.ID,
		Email:  data,
	})
	return m, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func (s *messagingService) ListConversations(ctx context.Context, userID string, limit, offset int) (*ListResult[model.ConversationSummary], error) {
	res, err := s.conversations.ListForUser(ctx, userID, pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return listResult(res), nil
}

func (s *messagingService) ListMessages(ctx context.Context, userID, conversationID string, limit, offset int) (*ListResult[model.Message], error) {
	if _, err := s.participant(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	res, err := s.messages.List(ctx, conversationID, pageQuery(limit, offset, 50, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return listResult(res), nil
}

func (s *messagingService) MarkRead(ctx context.Context, userID, conversationID string) (int64, error) {
	if _, err := s.participant(ctx, userID, conversationID); err != nil {
		return 0, err
	}
	n, err := s.messages.MarkRead(ctx, conversationID, userID, utcNow())
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return n, nil
}

func (s *messagingService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.messages.UnreadCount(ctx, userID)
}
