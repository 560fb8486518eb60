package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/internal/services"
)

func setupBookingTestHandler(db database.DB) *BookingHandler {
	bookingRepo := database.NewBookingRepository(db)
	tourRepo := database.NewTourRepository(db)
	couponRepo := database.NewCouponRepository(db)
	bookingService := services.NewBookingService(db, bookingRepo, tourRepo, couponRepo, 0.18, testLogger())

	return NewBookingHandler(
		bookingService,
		bookingRepo,
		database.NewUserRepository(db),
		database.NewAgencyRepository(db),
		testLogger(),
	)
}

func mockBookingRow(bookingID, userID, agencyID string, status models.BookingStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "booking_number", "user_id", "tour_id", "agency_id", "coupon_id",
		"booking_date", "booking_time", "number_of_people", "price_per_person", "subtotal",
		"discount", "tax", "total_price", "customer_name", "customer_email", "customer_phone",
		"special_requirements", "status", "confirmed_at", "checked_in_at", "completed_at",
		"cancelled_at", "cancellation_reason", "created_at", "updated_at",
	}).AddRow(
		bookingID, "BG-3F9A01B2C4D5", userID, uuid.New().String(), agencyID, nil,
		now.AddDate(0, 0, 7), nil, 2, 150.0, 300.0,
		0.0, 54.0, 354.0, "Maria Torres", "maria@example.com", nil,
		nil, string(status), nil, nil, nil,
		nil, nil, now, now,
	)
}

func TestCreateBooking_TourNotFound(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()
	tourID := uuid.New().String()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(mockUserRow(t, userID.String(), "maria@example.com", "secret-password", true))
	mock.ExpectQuery(`SELECT (.+) FROM tours WHERE id = \$1`).
		WithArgs(tourID).
		WillReturnError(sql.ErrNoRows)

	handler := setupBookingTestHandler(db)
	c, w := setupAuthenticatedContext(userID, models.RoleCustomer)

	payload, err := json.Marshal(gin.H{
		"tour_id":          tourID,
		"booking_date":     time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		"number_of_people": 2,
		"customer_name":    "Maria Torres",
		"customer_email":   "maria@example.com",
	})
	require.NoError(t, err)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "not_found", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBooking_PastDate(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(mockUserRow(t, userID.String(), "maria@example.com", "secret-password", true))

	handler := setupBookingTestHandler(db)
	c, w := setupAuthenticatedContext(userID, models.RoleCustomer)

	payload, err := json.Marshal(gin.H{
		"tour_id":          uuid.New().String(),
		"booking_date":     "2020-01-15",
		"number_of_people": 2,
		"customer_name":    "Maria Torres",
		"customer_email":   "maria@example.com",
	})
	require.NoError(t, err)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "validation_error", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking_OwnerCanView(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()
	bookingID := uuid.New().String()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
		WithArgs(bookingID).
		WillReturnRows(mockBookingRow(bookingID, userID.String(), uuid.New().String(), models.BookingStatusConfirmed))

	handler := setupBookingTestHandler(db)
	c, w := setupAuthenticatedContext(userID, models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: bookingID}}
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/bookings/"+bookingID, nil)

	handler.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Booking models.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, bookingID, response.Booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking_StrangerForbidden(t *testing.T) {
	db, mock := setupTestDB(t)

	bookingID := uuid.New().String()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
		WithArgs(bookingID).
		WillReturnRows(mockBookingRow(bookingID, uuid.New().String(), uuid.New().String(), models.BookingStatusConfirmed))

	handler := setupBookingTestHandler(db)
	c, w := setupAuthenticatedContext(uuid.New(), models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: bookingID}}
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/bookings/"+bookingID, nil)

	handler.Get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "forbidden", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBooking_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)

	bookingID := uuid.New().String()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
		WithArgs(bookingID).
		WillReturnError(sql.ErrNoRows)

	handler := setupBookingTestHandler(db)
	c, w := setupAuthenticatedContext(uuid.New(), models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: bookingID}}
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/bookings/"+bookingID, nil)

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
