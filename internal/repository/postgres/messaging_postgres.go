package postgres

import (
	"context"
	"database/sql"
	"time"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

const conversationColumns = `c.id, c.guest_id, c.host_id, c.experience_id, c.booking_id, c.last_message_at, c.created_at`

// ConversationPostgres is a PostgreSQL implementation of repository.ConversationRepository.
type ConversationPostgres struct {
	db *sql.DB
}

// NewConversationPostgres creates a new ConversationPostgres repository.
func NewConversationPostgres(db *sql.DB) *ConversationPostgres {
	return &ConversationPostgres{db: db}
}

var _ repository.ConversationRepository = (*ConversationPostgres)(nil)

func scanConversation(s scanner, extra ...any) (*model.Conversation, error) {
	var c model.Conversation
	var experienceID, bookingID sql.NullString
	dest := append([]any{
		&c.ID,
		&c.GuestID,
		&c.HostID,
		&experienceID,
		&bookingID,
		&c.LastMessageAt,
		&c.CreatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, mapError(err)
	}
	c.ExperienceID = experienceID.String
	c.BookingID = bookingID.String
	return &c, nil
}

// Create inserts a conversation.
func (r *ConversationPostgres) Create(ctx context.Context, c *model.Conversation) (*model.Conversation, error) {
	const q = `
		INSERT INTO conversations AS c (id, guest_id, host_id, experience_id, booking_id, last_message_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING ` + conversationColumns
	return scanConversation(r.db.QueryRowContext(ctx, q,
		c.ID, c.GuestID, c.HostID, nullString(c.ExperienceID), nullString(c.BookingID), c.CreatedAt))
}

// FindByID fetches a single conversation by its ID.
func (r *ConversationPostgres) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	return scanConversation(r.db.QueryRowContext(ctx, `SELECT `+conversationColumns+` FROM conversations c WHERE c.id = $1`, id))
}

// FindByParticipants fetches the thread between a guest and host about an experience.
// An empty experienceID matches the general thread.
func (r *ConversationPostgres) FindByParticipants(ctx context.Context, guestID, hostID, experienceID string) (*model.Conversation, error) {
	const q = `
		SELECT ` + conversationColumns + `
		FROM conversations c
		WHERE c.guest_id = $1 AND c.host_id = $2 AND COALESCE(c.experience_id::text, '') = $3
	`
	return scanConversation(r.db.QueryRowContext(ctx, q, guestID, hostID, experienceID))
}

// ListForUser returns the user's conversations with last message preview and unread count.
func (r *ConversationPostgres) ListForUser(ctx context.Context, userID string, page repository.PageQuery) (*repository.PageResult[model.ConversationSummary], error) {
	page = normalizePage(page)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversations WHERE guest_id = $1 OR host_id = $1`, userID).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT ` + conversationColumns + `,
			COALESCE((SELECT m.body FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC LIMIT 1), ''),
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.sender_id <> $1 AND m.read_at IS NULL)
		FROM conversations c
		WHERE c.guest_id = $1 OR c.host_id = $1
		ORDER BY c.last_message_at DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ConversationSummary, 0)
	for rows.Next() {
		var last string
		var unread int
		c, err := scanConversation(rows, &last, &unread)
		if err != nil {
			return nil, err
		}
		items = append(items, model.ConversationSummary{Conversation: *c, LastMessage: last, UnreadCount: unread})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.ConversationSummary]{Items: items, Total: total}, nil
}

// Touch bumps last_message_at.
func (r *ConversationPostgres) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversations SET last_message_at = $2 WHERE id = $1`, id, at)
	return err
}

// MessagePostgres is a PostgreSQL implementation of repository.MessageRepository.
type MessagePostgres struct {
	db *sql.DB
}

// NewMessagePostgres creates a new MessagePostgres repository.
func NewMessagePostgres(db *sql.DB) *MessagePostgres {
	return &MessagePostgres{db: db}
}

var _ repository.MessageRepository = (*MessagePostgres)(nil)

func scanMessage(s scanner) (*model.Message, error) {
	var m model.Message
	var readAt sql.NullTime
	if err := s.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &readAt, &m.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	m.ReadAt = timePtr(readAt)
	return &m, nil
}

// Create inserts a message.
func (r *MessagePostgres) Create(ctx context.Context, m *model.Message) (*model.Message, error) {
	const q = `
		INSERT INTO messages (id, conversation_id, sender_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, conversation_id, sender_id, body, read_at, created_at
	`
	return scanMessage(r.db.QueryRowContext(ctx, q, m.ID, m.ConversationID, m.SenderID, m.Body, m.CreatedAt))
}

// List returns a conversation's messages, newest first.
func (r *MessagePostgres) List(ctx context.Context, conversationID string, page repository.PageQuery) (*repository.PageResult[model.Message], error) {
	page = normalizePage(page)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).
		Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, conversation_id, sender_id, body, read_at, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, conversationID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Message]{Items: items, Total: total}, nil
}

// MarkRead marks the other participant's unread messages as read.
func (r *MessagePostgres) MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	const q = `
		UPDATE messages SET read_at = $3
		WHERE conversation_id = $1 AND sender_id <> $2 AND read_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, q, conversationID, readerID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnreadCount counts unread messages addressed to the user across all conversations.
func (r *MessagePostgres) UnreadCount(ctx context.Context, userID string) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.guest_id = $1 OR c.host_id = $1) AND m.sender_id <> $1 AND m.read_at IS NULL
	`
	var n int
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}
