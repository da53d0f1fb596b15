package repository

import (
	"context"

	"marketapi/internal/model"
)

// ProfileRepository persists marketplace profiles.
type ProfileRepository interface {
	// Ensure creates the profile on first sight of a user and returns the stored row.
	// An existing row keeps its data; only an empty email is filled in.
	Ensure(ctx context.Context, id, email string) (*model.Profile, error)
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	FindByPayoutAccount(ctx context.Context, accountID string) (*model.Profile, error)
	// Update writes the editable fields (name, bio, phone, location, avatar path).
	Update(ctx context.Context, p *model.Profile) (*model.Profile, error)
	SetRole(ctx context.Context, id string, role model.Role) error
	SetPayoutAccount(ctx context.Context, id, accountID string, enabled bool) error
	List(ctx context.Context, role model.Role, pq PageQuery) (*PageResult[model.Profile], error)
	CountByRole(ctx context.Context) (map[model.Role]int, error)
}
