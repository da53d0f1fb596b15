package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"marketapi/internal/model"
	"marketapi/internal/repository"
	"marketapi/internal/storage"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role model.Role
}

func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }

// ListResult is the paginated shape returned to handlers.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

func listResult[T any](res *repository.PageResult[T]) *ListResult[T] {
	return &ListResult[T]{Items: res.Items, Total: res.Total}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func pageQuery(limit, offset, def, max int) repository.PageQuery {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset}
}

// notFound maps repository.ErrNotFound to ErrNotFound and wraps everything else.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

func utcNow() time.Time { return time.Now().UTC() }

func formatMoney(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s %d.%02d", sign, strings.ToUpper(currency), cents/100, cents%100)
}

// URLSigner turns storage keys into presigned URLs for responses.
type URLSigner struct {
	store  storage.Storage
	expiry time.Duration
	log    zerolog.Logger
}

// NewURLSigner returns a signer whose URLs live for expiry.
func NewURLSigner(store storage.Storage, expiry time.Duration, log zerolog.Logger) URLSigner {
	return URLSigner{store: store, expiry: expiry, log: log}
}

func (s URLSigner) sign(ctx context.Context, key string) string {
	if key == "" || s.store == nil {
		return ""
	}
	u, err := s.store.PresignGet(ctx, key, s.expiry)
	if err != nil {
		s.log.Warn().Err(err).Str("event", "presign_failed").Str("key", key).Msg("could not presign object")
		return ""
	}
	return u
}

func (s URLSigner) signAll(ctx context.Context, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if u := s.sign(ctx, k); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func trimmedLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

const dateLayout = "2006-01-02"

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
