package repository

import (
	"context"

	"marketapi/internal/model"
)

// CategoryRepository persists experience categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	// Create returns ErrConflict when the slug is taken.
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}
