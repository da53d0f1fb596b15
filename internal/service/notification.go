package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketapi/internal/mailer"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const emailTimeout = 15 * time.Second

// Notice is a notification to deliver to one user. Email is sent when set and the type has a template.
type Notice struct {
	UserID string
	Type   model.NotificationType
	Title  string
	Body   string
	Link   string
	Email  *mailer.Data
}

// Notifier delivers notices. Delivery failures are logged, never returned.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotificationService manages in-app notifications.
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*ListResult[model.Notification], error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

type notificationService struct {
	repo     repository.NotificationRepository
	profiles repository.ProfileRepository
	renderer *mailer.Renderer
	sender   mailer.Sender
	baseURL  string
	log      zerolog.Logger
	now      func() time.Time
}

// NewNotificationService constructs a NotificationService. A nil renderer or sender disables email.
// Email links are made absolute with baseURL.
func NewNotificationService(repo repository.NotificationRepository, profiles repository.ProfileRepository, renderer *mailer.Renderer, sender mailer.Sender, baseURL string, log zerolog.Logger) NotificationService {
	return &notificationService{
		repo:     repo,
		profiles: profiles,
		renderer: renderer,
		sender:   sender,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
		now:      utcNow,
	}
}

func (s *notificationService) Notify(ctx context.Context, n Notice) {
	log := s.log.With().Str("user_id", n.UserID).Str("type", string(n.Type)).Logger()

	_, err := s.repo.Create(ctx, &model.Notification{
		ID:        uuid.NewString(),
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		CreatedAt: s.now(),
	})
	if err != nil {
		log.Error().Err(err).Str("event", "notification_failed").Msg("could not store notification")
	}

	if n.Email == nil || s.renderer == nil || s.sender == nil || !s.renderer.Has(n.Type) {
		return
	}
	if err := s.email(ctx, n); err != nil {
		log.Error().Err(err).Str("event", "email_failed").Msg("could not send email")
	}
}

func (s *notificationService) email(ctx context.Context, n Notice) error {
	p, err := s.profiles.FindByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("load recipient: %w", err)
	}
	if p.Email == "" {
		return nil
	}
	data := *n.Email
	if data.Name == "" {
		data.Name = p.FullName
	}
	if data.Link == "" && n.Link != "" {
		data.Link = s.baseURL + n.Link
	}
	msg, err := s.renderer.Render(n.Type, p.Email, data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, emailTimeout)
	defer cancel()
	return s.sender.Send(ctx, msg)
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*ListResult[model.Notification], error) {
	res, err := s.repo.List(ctx, userID, unreadOnly, pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return listResult(res), nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.MarkRead(ctx, userID, id, s.now()); err != nil {
		return notFound(err, "mark notification read")
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}
