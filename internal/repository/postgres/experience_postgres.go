package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const experienceColumns = `e.id, e.host_id, e.category_id, e.title, e.description, e.location, e.meeting_point,
	e.price_cents, e.currency, e.duration_minutes, e.min_guests, e.max_guests, e.instant_booking,
	e.highlights, e.images, e.status, e.rating_avg, e.review_count, e.created_at, e.updated_at`

// ExperiencePostgres is a PostgreSQL implementation of repository.ExperienceRepository.
type ExperiencePostgres struct {
	db *sql.DB
}

// NewExperiencePostgres creates a new ExperiencePostgres repository.
func NewExperiencePostgres(db *sql.DB) *ExperiencePostgres {
	return &ExperiencePostgres{db: db}
}

var _ repository.ExperienceRepository = (*ExperiencePostgres)(nil)

func scanExperience(s scanner) (*model.Experience, error) {
	var e model.Experience
	var categoryID sql.NullString
	var status string
	if err := s.Scan(
		&e.ID,
		&e.HostID,
		&categoryID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.MeetingPoint,
		&e.PriceCents,
		&e.Currency,
		&e.DurationMinutes,
		&e.MinGuests,
		&e.MaxGuests,
		&e.InstantBooking,
		pq.Array(&e.Highlights),
		pq.Array(&e.Images),
		&status,
		&e.RatingAvg,
		&e.ReviewCount,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	e.CategoryID = categoryID.String
	e.Status = model.ExperienceStatus(status)
	if e.Highlights == nil {
		e.Highlights = []string{}
	}
	if e.Images == nil {
		e.Images = []string{}
	}
	return &e, nil
}

// Create inserts a new experience row and returns the stored record.
func (r *ExperiencePostgres) Create(ctx context.Context, e *model.Experience) (*model.Experience, error) {
	const q = `
		INSERT INTO experiences AS e (id, host_id, category_id, title, description, location, meeting_point,
			price_cents, currency, duration_minutes, min_guests, max_guests, instant_booking,
			highlights, images, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		RETURNING ` + experienceColumns
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		e.HostID,
		nullString(e.CategoryID),
		e.Title,
		e.Description,
		e.Location,
		e.MeetingPoint,
		e.PriceCents,
		e.Currency,
		e.DurationMinutes,
		e.MinGuests,
		e.MaxGuests,
		e.InstantBooking,
		pq.Array(e.Highlights),
		pq.Array(e.Images),
		string(e.Status),
		e.CreatedAt,
	)
	return scanExperience(row)
}

// FindByID fetches a single experience by its ID.
func (r *ExperiencePostgres) FindByID(ctx context.Context, id string) (*model.Experience, error) {
	const q = `SELECT ` + experienceColumns + ` FROM experiences e WHERE e.id = $1 AND e.deleted_at IS NULL`
	return scanExperience(r.db.QueryRowContext(ctx, q, id))
}

// Update writes the host-editable fields.
func (r *ExperiencePostgres) Update(ctx context.Context, e *model.Experience) (*model.Experience, error) {
	const q = `
		UPDATE experiences AS e
		SET category_id = $2, title = $3, description = $4, location = $5, meeting_point = $6,
			price_cents = $7, currency = $8, duration_minutes = $9, min_guests = $10, max_guests = $11,
			instant_booking = $12, highlights = $13, updated_at = now()
		WHERE e.id = $1
		RETURNING ` + experienceColumns
	row := r.db.QueryRowContext(ctx, q,
		e.ID,
		nullString(e.CategoryID),
		e.Title,
		e.Description,
		e.Location,
		e.MeetingPoint,
		e.PriceCents,
		e.Currency,
		e.DurationMinutes,
		e.MinGuests,
		e.MaxGuests,
		e.InstantBooking,
		pq.Array(e.Highlights),
	)
	return scanExperience(row)
}

// SetStatus changes the visibility status of an experience.
func (r *ExperiencePostgres) SetStatus(ctx context.Context, id string, status model.ExperienceStatus) error {
	return r.execOne(ctx, `UPDATE experiences SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
}

// SetImages replaces the ordered list of image storage keys.
func (r *ExperiencePostgres) SetImages(ctx context.Context, id string, images []string) error {
	return r.execOne(ctx, `UPDATE experiences SET images = $2, updated_at = now() WHERE id = $1`, id, pq.Array(images))
}

// Delete removes an experience. Bookings referencing it block the delete.
func (r *ExperiencePostgres) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM experiences WHERE id = $1`, id)
}

// Archive hides an experience that still has booking history.
func (r *ExperiencePostgres) Archive(ctx context.Context, id string) error {
	const q = `
		UPDATE experiences
		SET status = 'inactive', deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.execOne(ctx, q, id)
}

func (r *ExperiencePostgres) execOne(ctx context.Context, q string, args ...any) error {
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

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var experienceOrder = map[model.ExperienceSort]string{
	model.SortNewest:    "e.created_at DESC, e.id DESC",
	model.SortPriceAsc:  "e.price_cents ASC, e.id DESC",
	model.SortPriceDesc: "e.price_cents DESC, e.id DESC",
	model.SortRating:    "e.rating_avg DESC, e.review_count DESC, e.id DESC",
}

// buildExperienceWhere renders the filter into a WHERE clause and its positional args.
func buildExperienceWhere(f model.ExperienceFilter) (string, []any) {
	conds := []string{"e.deleted_at IS NULL"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CategorySlug != "" {
		add("e.category_id = (SELECT id FROM categories WHERE slug = $%d)", f.CategorySlug)
	}
	if f.Location != "" {
		add(`e.location ILIKE '%%' || $%d || '%%' ESCAPE '\'`, escapeLike(f.Location))
	}
	if f.Query != "" {
		add(`(e.title ILIKE '%%' || $%[1]d || '%%' ESCAPE '\' OR e.description ILIKE '%%' || $%[1]d || '%%' ESCAPE '\')`, escapeLike(f.Query))
	}
	if f.MinPriceCents > 0 {
		add("e.price_cents >= $%d", f.MinPriceCents)
	}
	if f.MaxPriceCents > 0 {
		add("e.price_cents <= $%d", f.MaxPriceCents)
	}
	if f.Guests > 0 {
		add("e.max_guests >= $%d", f.Guests)
	}
	if f.HostID != "" {
		add("e.host_id = $%d", f.HostID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		add("e.status = ANY($%d)", pq.Array(statuses))
	}
	return strings.Join(conds, " AND "), args
}

// Search returns experiences matching the filter with a total count.
func (r *ExperiencePostgres) Search(ctx context.Context, f model.ExperienceFilter, page repository.PageQuery) (*repository.PageResult[model.Experience], error) {
	page = normalizePage(page)
	where, args := buildExperienceWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiences e WHERE `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	order, ok := experienceOrder[f.Sort]
	if !ok {
		order = experienceOrder[model.SortNewest]
	}
	listArgs := append(append([]any{}, args...), page.Limit, page.Offset)
	q := fmt.Sprintf(`SELECT %s FROM experiences e WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		experienceColumns, where, order, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, q, listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Experience, 0)
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Experience]{Items: items, Total: total}, nil
}

// RefreshRating recomputes the aggregate rating from reviews.
func (r *ExperiencePostgres) RefreshRating(ctx context.Context, id string) error {
	const q = `
		UPDATE experiences
		SET rating_avg = COALESCE((SELECT ROUND(AVG(rating)::numeric, 2) FROM reviews WHERE experience_id = $1), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE experience_id = $1),
			updated_at = now()
		WHERE id = $1
	`
	return r.execOne(ctx, q, id)
}

// CountByStatus returns the number of experiences per status.
func (r *ExperiencePostgres) CountByStatus(ctx context.Context) (map[model.ExperienceStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM experiences WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.ExperienceStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.ExperienceStatus(status)] = n
	}
	return out, rows.Err()
}
