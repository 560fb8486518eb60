package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookandgo/booking-backend/internal/models"
)

func TestGetReviewByUserAndTour(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewReviewRepository(db)

	userID := uuid.New().String()
	tourID := uuid.New().String()

	t.Run("Includes Soft Deleted", func(t *testing.T) {
		now := time.Now()
		deletedAt := now.Add(-time.Hour)

		mock.ExpectQuery(`SELECT (.+) FROM reviews WHERE user_id = \$1 AND tour_id = \$2`).
			WithArgs(userID, tourID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "tour_id", "booking_id", "agency_id", "rating",
				"title", "comment", "service_rating", "value_rating", "guide_rating",
				"is_verified", "is_approved", "helpful_count", "created_at",
				"updated_at", "deleted_at",
			}).AddRow(
				uuid.New().String(), userID, tourID, nil, uuid.New().String(), 4,
				nil, "Great guide, stunning views along the whole route", nil, nil, nil,
				true, true, 0, now,
				now, deletedAt,
			))

		review, err := repo.GetByUserAndTour(userID, tourID)
		require.NoError(t, err)
		require.NotNil(t, review.DeletedAt)
		assert.WithinDuration(t, deletedAt, *review.DeletedAt, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM reviews`).
			WithArgs(userID, tourID).
			WillReturnError(sql.ErrNoRows)

		review, err := repo.GetByUserAndTour(userID, tourID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, review)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRestoreReview(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewReviewRepository(db)

	deletedAt := time.Now().Add(-time.Hour)
	review := &models.Review{
		ID:        uuid.New().String(),
		Rating:    5,
		Comment:   "Coming back changed my mind, everything ran perfectly",
		DeletedAt: &deletedAt,
	}

	mock.ExpectQuery(`UPDATE reviews`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	err := repo.Restore(db, review)
	require.NoError(t, err)
	assert.Nil(t, review.DeletedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFavorite(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewFavoriteRepository(db)

	userID := uuid.New().String()
	tourID := uuid.New().String()

	t.Run("Adds When Missing", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM favorites`).
			WithArgs(userID, tourID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO favorites`).
			WithArgs(userID, tourID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		favorite, err := repo.Toggle(userID, tourID)
		require.NoError(t, err)
		assert.True(t, favorite)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Removes When Present", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM favorites`).
			WithArgs(userID, tourID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		favorite, err := repo.Toggle(userID, tourID)
		require.NoError(t, err)
		assert.False(t, favorite)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
