package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookandgo/booking-backend/internal/models"
)

func TestCreateBooking(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)

	booking := &models.Booking{
		BookingNumber:  "BG-0011aabbccdd",
		UserID:         uuid.New().String(),
		TourID:         uuid.New().String(),
		AgencyID:       uuid.New().String(),
		BookingDate:    time.Now().AddDate(0, 0, 7),
		NumberOfPeople: 2,
		PricePerPerson: 75,
		Subtotal:       150,
		Discount:       15,
		Tax:            24.3,
		TotalPrice:     159.3,
		CustomerName:   "Maria Quispe",
		CustomerEmail:  "maria@example.com",
		Status:         models.BookingStatusPending,
	}

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := repo.Create(db, booking)
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.WithinDuration(t, now, booking.CreatedAt, time.Second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBookingStatus(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)

	t.Run("Success", func(t *testing.T) {
		booking := &models.Booking{
			ID:     uuid.New().String(),
			Status: models.BookingStatusPending,
		}
		require.NoError(t, booking.Confirm())

		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(
				booking.ID, string(models.BookingStatusConfirmed), booking.ConfirmedAt,
				nil, nil, nil, nil, string(models.BookingStatusPending),
			).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

		err := repo.UpdateStatus(db, booking, models.BookingStatusPending)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Status Changed Concurrently", func(t *testing.T) {
		booking := &models.Booking{
			ID:          uuid.New().String(),
			Status:      models.BookingStatusPending,
			BookingDate: time.Now().AddDate(0, 0, 3),
		}
		require.NoError(t, booking.Cancel(nil))

		// the guarded WHERE matches no row when another transition won
		mock.ExpectQuery(`UPDATE bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		err := repo.UpdateStatus(db, booking, models.BookingStatusPending)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update booking status")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHasCompletedBookingForTour(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewBookingRepository(db)

	userID := uuid.New().String()
	tourID := uuid.New().String()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID, tourID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasCompletedBookingForTour(userID, tourID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
