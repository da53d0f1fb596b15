package repository

import (
	"context"
	"time"

	"marketapi/internal/model"
)

// ReviewRepository persists reviews.
type ReviewRepository interface {
	// Create returns ErrConflict when the booking already has a review.
	Create(ctx context.Context, r *model.Review) (*model.Review, error)
	FindByID(ctx context.Context, id string) (*model.Review, error)
	// SetReply stores the host reply once; a second reply returns ErrStaleStatus.
	SetReply(ctx context.Context, id, reply string, at time.Time) (*model.Review, error)
	ListByExperience(ctx context.Context, experienceID string, pq PageQuery) (*PageResult[model.Review], error)
	ListByHost(ctx context.Context, hostID string, pq PageQuery) (*PageResult[model.Review], error)
	AverageForHost(ctx context.Context, hostID string) (float64, error)
}
