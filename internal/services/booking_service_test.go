package services

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
)

func newBookingTestService(db database.DB, taxRate float64) *BookingService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewBookingService(
		db,
		database.NewBookingRepository(db),
		database.NewTourRepository(db),
		database.NewCouponRepository(db),
		taxRate,
		logger,
	)
}

var serviceTourColumns = []string{
	"id", "agency_id", "category_id", "title", "slug", "description", "itinerary",
	"includes", "excludes", "requirements", "price", "discount_price", "duration_days",
	"duration_hours", "max_people", "min_people", "difficulty", "city", "region", "country",
	"latitude", "longitude", "featured_image", "rating", "total_reviews", "total_bookings",
	"is_featured", "is_active", "is_published", "published_at", "created_at", "updated_at", "deleted_at",
}

func mockBookableTourRow(tourID, agencyID string, price float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(serviceTourColumns).AddRow(
		tourID, agencyID, "b2a1f6de-0000-4000-8000-000000000001", "Valle Sagrado Full Day",
		"valle-sagrado-full-day", "Guided day trip through the Sacred Valley", nil,
		nil, nil, nil, price, nil, 1,
		nil, 10, 1, "easy", "Cusco", nil, "Peru",
		nil, nil, nil, 4.5, 12, 40,
		false, true, true, now, now, now, nil,
	)
}

var serviceCouponColumns = []string{
	"id", "code", "description", "type", "value", "min_purchase", "max_uses",
	"used_count", "valid_from", "valid_until", "is_active", "created_by", "created_at", "updated_at",
}

func TestCreateBooking_TaxAppliesToSubtotal(t *testing.T) {
	db, mock := newServiceTestDB(t)
	service := newBookingTestService(db, 0.18)

	user := &models.User{ID: "9c1a0d8e-0000-4000-8000-000000000002", Email: "maria@example.com"}
	tourID := "5f0b2c4d-0000-4000-8000-000000000003"
	agencyID := "7d3e1f2a-0000-4000-8000-000000000004"
	couponID := "1a2b3c4d-0000-4000-8000-000000000005"
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM tours WHERE id = \$1`).
		WithArgs(tourID).
		WillReturnRows(mockBookableTourRow(tourID, agencyID, 100))

	mock.ExpectQuery(`SELECT (.+) FROM coupons WHERE code = UPPER\(\$1\)`).
		WithArgs("VERANO10").
		WillReturnRows(sqlmock.NewRows(serviceCouponColumns).AddRow(
			couponID, "VERANO10", nil, "percentage", 10.0, nil, nil,
			0, nil, nil, true, nil, now, now,
		))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE coupons SET used_count = used_count \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE tours SET total_bookings = total_bookings \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	code := "VERANO10"
	booking, err := service.Create(user, &models.CreateBookingRequest{
		TourID:         tourID,
		BookingDate:    time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		NumberOfPeople: 2,
		CouponCode:     &code,
		CustomerName:   "Maria Torres",
		CustomerEmail:  "maria@example.com",
	})
	require.NoError(t, err)

	// tax is based on the subtotal, the discount only reduces the total
	assert.Equal(t, 200.0, booking.Subtotal)
	assert.Equal(t, 20.0, booking.Discount)
	assert.Equal(t, 36.0, booking.Tax)
	assert.Equal(t, 216.0, booking.TotalPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_InvalidDateSentinel(t *testing.T) {
	db, mock := newServiceTestDB(t)
	service := newBookingTestService(db, 0)

	_, err := service.Create(&models.User{ID: "u1"}, &models.CreateBookingRequest{
		TourID:         "t1",
		BookingDate:    "not-a-date",
		NumberOfPeople: 2,
	})
	assert.True(t, errors.Is(err, ErrInvalidBookingDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}
