package repository

import "context"

// SettingsRepository persists platform settings as key/value pairs.
type SettingsRepository interface {
	All(ctx context.Context) (map[string]string, error)
	// Set upserts all pairs atomically.
	Set(ctx context.Context, kv map[string]string) error
}

// WebhookEventRepository remembers processed gateway events.
type WebhookEventRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Record(ctx context.Context, id, eventType string) error
}
