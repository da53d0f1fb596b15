package repository

import (
	"context"

	"marketapi/internal/model"
)

// ExperienceRepository persists experiences.
type ExperienceRepository interface {
	Create(ctx context.Context, e *model.Experience) (*model.Experience, error)
	FindByID(ctx context.Context, id string) (*model.Experience, error)
	// Update writes the host-editable fields.
	Update(ctx context.Context, e *model.Experience) (*model.Experience, error)
	SetStatus(ctx context.Context, id string, status model.ExperienceStatus) error
	SetImages(ctx context.Context, id string, images []string) error
	// Delete returns ErrConflict when bookings still reference the experience.
	Delete(ctx context.Context, id string) error
	// Archive soft-deletes an experience; FindByID and Search no longer return it.
	Archive(ctx context.Context, id string) error
	Search(ctx context.Context, f model.ExperienceFilter, pq PageQuery) (*PageResult[model.Experience], error)
	// RefreshRating recomputes rating_avg and review_count from the reviews table.
	RefreshRating(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[model.ExperienceStatus]int, error)
}
