package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

var reviewColumnNames = []string{
	"id", "booking_id", "experience_id", "guest_id", "host_id", "rating", "comment",
	"host_reply", "replied_at", "created_at", "full_name",
}

func TestReviewPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReviewPostgres(db)

	now := time.Now().UTC()
	rv := &model.Review{ID: "r-1", BookingID: "b-1", ExperienceID: "e-1", GuestID: "g-1", HostID: "h-1", Rating: 5, Comment: "great", CreatedAt: now}

	mock.ExpectExec(`INSERT INTO reviews`).
		WithArgs(rv.ID, rv.BookingID, rv.ExperienceID, rv.GuestID, rv.HostID, rv.Rating, rv.Comment, rv.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM reviews r LEFT JOIN profiles p`).
		WithArgs("r-1").
		WillReturnRows(sqlmock.NewRows(reviewColumnNames).
			AddRow("r-1", "b-1", "e-1", "g-1", "h-1", 5, "great", "", nil, now, "Gina"))

	got, err := repo.Create(context.Background(), rv)
	require.NoError(t, err)
	assert.Equal(t, "Gina", got.GuestName)
	assert.Nil(t, got.RepliedAt)

	mock.ExpectExec(`INSERT INTO reviews`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	_, err = repo.Create(context.Background(), rv)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewPostgres_SetReply(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewReviewPostgres(db)

	now := time.Now().UTC()
	t.Run("first reply", func(t *testing.T) {
		mock.ExpectExec(`UPDATE reviews SET host_reply`).
			WithArgs("r-1", "thanks", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM reviews`).
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows(reviewColumnNames).
				AddRow("r-1", "b-1", "e-1", "g-1", "h-1", 4, "", "thanks", now, now, ""))

		got, err := repo.SetReply(context.Background(), "r-1", "thanks", now)
		require.NoError(t, err)
		assert.Equal(t, "thanks", got.HostReply)
		require.NotNil(t, got.RepliedAt)
	})

	t.Run("already replied", func(t *testing.T) {
		mock.ExpectExec(`UPDATE reviews SET host_reply`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM reviews`).
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows(reviewColumnNames).
				AddRow("r-1", "b-1", "e-1", "g-1", "h-1", 4, "", "thanks", now, now, ""))

		_, err := repo.SetReply(context.Background(), "r-1", "again", now)
		assert.ErrorIs(t, err, repository.ErrStaleStatus)
	})

	t.Run("missing review", func(t *testing.T) {
		mock.ExpectExec(`UPDATE reviews SET host_reply`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM reviews`).
			WithArgs("r-404").
			WillReturnRows(sqlmock.NewRows(reviewColumnNames))

		_, err := repo.SetReply(context.Background(), "r-404", "hi", now)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
