package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// ReviewService manages guest reviews and host replies.
type ReviewService interface {
	Create(ctx context.Context, guestID, bookingID string, rating int, comment string) (*model.Review, error)
	Reply(ctx context.Context, hostID, reviewID, text string) (*model.Review, error)
	ListForExperience(ctx context.Context, experienceID string, limit, offset int) (*ListResult[model.Review], error)
	ListForHost(ctx context.Context, hostID string, limit, offset int) (*ListResult[model.Review], error)
}

type reviewService struct {
	repo        repository.ReviewRepository
	bookings    repository.BookingRepository
	experiences repository.ExperienceRepository
	notifier    Notifier
	log         zerolog.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(repo repository.ReviewRepository, bookings repository.BookingRepository, experiences repository.ExperienceRepository, notifier Notifier, log zerolog.Logger) ReviewService {
	return &reviewService{repo: repo, bookings: bookings, experiences: experiences, notifier: notifier, log: log}
}

func (s *reviewService) Create(ctx context.Context, guestID, bookingID string, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, invalid("rating", "must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if len([]rune(comment)) > 2000 {
		return nil, invalid("comment", "must be at most 2000 characters")
	}
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	if b.GuestID != guestID {
		return nil, ErrNotFound
	}
	if b.Status != model.BookingCompleted && b.Status != model.BookingPaidOut {
		return nil, invalid("booking_id", "only completed bookings can be reviewed")
	}

	r, err := s.repo.Create(ctx, &model.Review{
		ID:           uuid.NewString(),
		BookingID:    b.ID,
		ExperienceID: b.ExperienceID,
		GuestID:      b.GuestID,
		HostID:       b.HostID,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    utcNow(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	if err := s.experiences.RefreshRating(ctx, b.ExperienceID); err != nil {
		s.log.Error().Err(err).Str("event", "rating_refresh_failed").Str("experience_id", b.ExperienceID).Msg("could not refresh rating")
	}
	s.notifier.Notify(ctx, Notice{
		UserID: b.HostID,
		Type:   model.NotifyNewReview,
		Title:  "New review",
		Body:   fmt.Sprintf("A guest rated your experience %d out of 5.", rating),
		Link:   "/host/reviews",
	})
	return r, nil
}

func (s *reviewService) Reply(ctx context.Context, hostID, reviewID, text string) (*model.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > 2000 {
		return nil, invalid("reply", "must be 1 to 2000 characters")
	}
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, notFound(err, "get review")
	}
	if r.HostID != hostID {
		return nil, ErrForbidden
	}
	if r.HostReply != "" {
		return nil, ErrAlreadyReplied
	}
	updated, err := s.repo.SetReply(ctx, reviewID, text, utcNow())
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrAlreadyReplied
		}
		return nil, notFound(err, "reply to review")
	}
	return updated, nil
}

func (s *reviewService) ListForExperience(ctx context.Context, experienceID string, limit, offset int) (*ListResult[model.Review], error) {
	res, err := s.repo.ListByExperience(ctx, experienceID, pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list experience reviews: %w", err)
	}
	return listResult(res), nil
}

func (s *reviewService) ListForHost(ctx context.Context, hostID string, limit, offset int) (*ListResult[model.Review], error) {
	res, err := s.repo.ListByHost(ctx, hostID, pageQuery(limit, offset, defaultPageLimit, maxPageLimit))
	if err != nil {
		return nil, fmt.Errorf("list host reviews: %w", err)
	}
	return listResult(res), nil
}
