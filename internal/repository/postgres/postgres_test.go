package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"marketapi/internal/repository"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(sql.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: pgUniqueViolation}), repository.ErrConflict)
	assert.ErrorIs(t, mapError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgForeignKeyViolation})), repository.ErrConflict)

	other := errors.New("connection refused")
	assert.Equal(t, other, mapError(other))
}

func TestNormalizePage(t *testing.T) {
	assert.Equal(t, repository.PageQuery{Limit: 20, Offset: 0}, normalizePage(repository.PageQuery{Limit: -1, Offset: -5}))
	assert.Equal(t, repository.PageQuery{Limit: 5, Offset: 10}, normalizePage(repository.PageQuery{Limit: 5, Offset: 10}))
}
