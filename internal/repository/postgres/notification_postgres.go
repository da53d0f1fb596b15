package postgres

import (
	"context"
	"database/sql"
	"time"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const notificationColumns = `id, user_id, type, title, body, link, read_at, created_at`

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func scanNotification(s scanner) (*model.Notification, error) {
	var n model.Notification
	var readAt sql.NullTime
	if err := s.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Link, &readAt, &n.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	n.ReadAt = timePtr(readAt)
	return &n, nil
}

// Create inserts a notification.
func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (id, user_id, type, title, body, link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + notificationColumns
	return scanNotification(r.db.QueryRowContext(ctx, q,
		n.ID, n.UserID, n.Type, n.Title, n.Body, n.Link, n.CreatedAt))
}

// List returns the user's notifications, newest first.
func (r *NotificationPostgres) List(ctx context.Context, userID string, unreadOnly bool, page repository.PageQuery) (*repository.PageResult[model.Notification], error) {
	page = normalizePage(page)

	const where = ` WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+where, userID, unreadOnly).
		Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + notificationColumns + ` FROM notifications` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, q, userID, unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Notification]{Items: items, Total: total}, nil
}

// MarkRead marks one of the user's notifications as read. Already read rows keep their timestamp.
func (r *NotificationPostgres) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	const q = `UPDATE notifications SET read_at = COALESCE(read_at, $3) WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID, at)
	if err != nil {
		return err
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

// MarkAllRead marks every unread notification of the user as read.
func (r *NotificationPostgres) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`, userID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnreadCount counts the user's unread notifications.
func (r *NotificationPostgres) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`, userID).Scan(&n)
	return n, err
}
