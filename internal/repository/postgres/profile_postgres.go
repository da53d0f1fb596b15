package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const profileColumns = `id, email, full_name, avatar_path, bio, phone, location, role,
	stripe_account_id, payouts_enabled, created_at, updated_at`

// ProfilePostgres is a PostgreSQL implementation of repository.ProfileRepository.
type ProfilePostgres struct {
	db *sql.DB
}

// NewProfilePostgres creates a new ProfilePostgres repository.
func NewProfilePostgres(db *sql.DB) *ProfilePostgres {
	return &ProfilePostgres{db: db}
}

var _ repository.ProfileRepository = (*ProfilePostgres)(nil)

func scanProfile(s scanner) (*model.Profile, error) {
	var p model.Profile
	var role string
	if err := s.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.AvatarPath,
		&p.Bio,
		&p.Phone,
		&p.Location,
		&role,
		&p.StripeAccountID,
		&p.PayoutsEnabled,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	p.Role = model.Role(role)
	return &p, nil
}

// Ensure inserts the profile if missing and returns the stored row.
func (r *ProfilePostgres) Ensure(ctx context.Context, id, email string) (*model.Profile, error) {
	const q = `
		INSERT INTO profiles (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE
			SET email = CASE WHEN profiles.email = '' THEN EXCLUDED.email ELSE profiles.email END
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, q, id, email))
}

// FindByID fetches a single profile by its ID.
func (r *ProfilePostgres) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, id))
}

func (r *ProfilePostgres) FindByPayoutAccount(ctx context.Context, accountID string) (*model.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE stripe_account_id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, q, accountID))
}

// Update writes the editable profile fields.
func (r *ProfilePostgres) Update(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	const q = `
		UPDATE profiles
		SET full_name = $2, bio = $3, phone = $4, location = $5, avatar_path = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + profileColumns
	return scanProfile(r.db.QueryRowContext(ctx, q, p.ID, p.FullName, p.Bio, p.Phone, p.Location, p.AvatarPath))
}

// SetRole changes the marketplace role of a profile.
func (r *ProfilePostgres) SetRole(ctx context.Context, id string, role model.Role) error {
	const q = `UPDATE profiles SET role = $2, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, string(role))
}

// SetPayoutAccount stores the host's connected payment account.
func (r *ProfilePostgres) SetPayoutAccount(ctx context.Context, id, accountID string, enabled bool) error {
	const q = `UPDATE profiles SET stripe_account_id = $2, payouts_enabled = $3, updated_at = now() WHERE id = $1`
	return r.execOne(ctx, q, id, accountID, enabled)
}

func (r *ProfilePostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns profiles, optionally restricted to one role, newest first.
func (r *ProfilePostgres) List(ctx context.Context, role model.Role, pq repository.PageQuery) (*repository.PageResult[model.Profile], error) {
	pq = normalizePage(pq)

	const qCount = `SELECT COUNT(*) FROM profiles WHERE ($1 = '' OR role = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, string(role)).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, string(role), pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Profile]{Items: items, Total: total}, nil
}

// CountByRole returns the number of profiles per role.
func (r *ProfilePostgres) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[model.Role(role)] = n
	}
	return out, rows.Err()
}
