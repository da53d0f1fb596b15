package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const reviewColumns = `r.id, r.booking_id, r.experience_id, r.guest_id, r.host_id, r.rating, r.comment,
	r.host_reply, r.replied_at, r.created_at, COALESCE(p.full_name, '')`

const reviewFrom = ` FROM reviews r LEFT JOIN profiles p ON p.id = r.guest_id `

// ReviewPostgres is a PostgreSQL implementation of repository.ReviewRepository.
type ReviewPostgres struct {
	db *sql.DB
}

// NewReviewPostgres creates a new ReviewPostgres repository.
func NewReviewPostgres(db *sql.DB) *ReviewPostgres {
	return &ReviewPostgres{db: db}
}

var _ repository.ReviewRepository = (*ReviewPostgres)(nil)

func scanReview(s scanner) (*model.Review, error) {
	var rv model.Review
	var repliedAt sql.NullTime
	if err := s.Scan(
		&rv.ID,
		&rv.BookingID,
		&rv.ExperienceID,
		&rv.GuestID,
		&rv.HostID,
		&rv.Rating,
		&rv.Comment,
		&rv.HostReply,
		&repliedAt,
		&rv.CreatedAt,
		&rv.GuestName,
	); err != nil {
		return nil, mapError(err)
	}
	rv.RepliedAt = timePtr(repliedAt)
	return &rv, nil
}

// Create inserts a review. A second review for the same booking is a conflict.
func (r *ReviewPostgres) Create(ctx context.Context, rv *model.Review) (*model.Review, error) {
	const q = `
		INSERT INTO reviews (id, booking_id, experience_id, guest_id, host_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, q,
		rv.ID,
		rv.BookingID,
		rv.ExperienceID,
		rv.GuestID,
		rv.HostID,
		rv.Rating,
		rv.Comment,
		rv.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return r.FindByID(ctx, rv.ID)
}

// FindByID fetches a single review by its ID.
func (r *ReviewPostgres) FindByID(ctx context.Context, id string) (*model.Review, error) {
	return scanReview(r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+reviewFrom+`WHERE r.id = $1`, id))
}

// SetReply stores the host's reply if none exists yet.
func (r *ReviewPostgres) SetReply(ctx context.Context, id, reply string, at time.Time) (*model.Review, error) {
	const q = `UPDATE reviews SET host_reply = $2, replied_at = $3 WHERE id = $1 AND host_reply = ''`
	res, err := r.db.ExecContext(ctx, q, id, reply, at)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, findErr := r.FindByID(ctx, id); errors.Is(findErr, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, repository.ErrStaleStatus
	}
	return r.FindByID(ctx, id)
}

func (r *ReviewPostgres) list(ctx context.Context, column, value string, page repository.PageQuery) (*repository.PageResult[model.Review], error) {
	page = normalizePage(page)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews r WHERE r.`+column+` = $1`, value).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + reviewColumns + reviewFrom + `WHERE r.` + column + ` = $1
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, value, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Review]{Items: items, Total: total}, nil
}

// ListByExperience returns an experience's reviews, newest first.
func (r *ReviewPostgres) ListByExperience(ctx context.Context, experienceID string, page repository.PageQuery) (*repository.PageResult[model.Review], error) {
	return r.list(ctx, "experience_id", experienceID, page)
}

// ListByHost returns reviews across all of a host's experiences, newest first.
func (r *ReviewPostgres) ListByHost(ctx context.Context, hostID string, page repository.PageQuery) (*repository.PageResult[model.Review], error) {
	return r.list(ctx, "host_id", hostID, page)
}

// AverageForHost returns the mean rating over all of a host's reviews, 0 when there are none.
func (r *ReviewPostgres) AverageForHost(ctx context.Context, hostID string) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE host_id = $1`, hostID).Scan(&avg)
	return avg, err
}
