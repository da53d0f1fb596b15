package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/database"
	"marketapi/internal/repository"
)

// SettingsPostgres is a PostgreSQL implementation of repository.SettingsRepository.
type SettingsPostgres struct {
	db *sql.DB
}

// NewSettingsPostgres creates a new SettingsPostgres repository.
func NewSettingsPostgres(db *sql.DB) *SettingsPostgres {
	return &SettingsPostgres{db: db}
}

var _ repository.SettingsRepository = (*SettingsPostgres)(nil)

// All returns every stored setting.
func (r *SettingsPostgres) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM platform_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Set upserts the given pairs in one transaction.
func (r *SettingsPostgres) Set(ctx context.Context, kv map[string]string) error {
	const q = `
		INSERT INTO platform_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for k, v := range kv {
			if _, err := tx.ExecContext(ctx, q, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// WebhookEventPostgres is a PostgreSQL implementation of repository.WebhookEventRepository.
type WebhookEventPostgres struct {
	db *sql.DB
}

// NewWebhookEventPostgres creates a new WebhookEventPostgres repository.
func NewWebhookEventPostgres(db *sql.DB) *WebhookEventPostgres {
	return &WebhookEventPostgres{db: db}
}

var _ repository.WebhookEventRepository = (*WebhookEventPostgres)(nil)

// Exists reports whether the event id was already processed.
func (r *WebhookEventPostgres) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM webhook_events WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

// Record stores a processed event id. Recording the same id twice is a no-op.
func (r *WebhookEventPostgres) Record(ctx context.Context, id, eventType string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO webhook_events (id, type) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, id, eventType)
	return err
}
