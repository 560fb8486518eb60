package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookandgo/booking-backend/internal/database"
)

func validateCouponRequest(t *testing.T, body map[string]interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/coupons/validate", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	return c, w
}

func mockCouponRow(code, couponType string, value float64, usedCount int, maxUses *int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "code", "description", "type", "value", "min_purchase", "max_uses",
		"used_count", "valid_from", "valid_until", "is_active", "created_by",
		"created_at", "updated_at",
	}).AddRow(
		uuid.New().String(), code, nil, couponType, value, nil, maxUses,
		usedCount, nil, nil, true, nil,
		now, now,
	)
}

func TestValidateCoupon_Percentage(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM coupons WHERE code = UPPER\(\$1\)`).
		WithArgs("VERANO10").
		WillReturnRows(mockCouponRow("VERANO10", "percentage", 10, 3, nil))

	handler := NewCouponHandler(database.NewCouponRepository(db), testLogger())
	c, w := validateCouponRequest(t, map[string]interface{}{
		"code":   "VERANO10",
		"amount": 200.0,
	})

	handler.Validate(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Valid       bool   `json:"valid"`
		Code        string `json:"code"`
		Calculation struct {
			OriginalAmount float64 `json:"original_amount"`
			Discount       float64 `json:"discount"`
			FinalAmount    float64 `json:"final_amount"`
		} `json:"calculation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Valid)
	assert.Equal(t, "VERANO10", response.Code)
	assert.Equal(t, 200.0, response.Calculation.OriginalAmount)
	assert.Equal(t, 20.0, response.Calculation.Discount)
	assert.Equal(t, 180.0, response.Calculation.FinalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateCoupon_FixedCappedAtAmount(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM coupons WHERE code = UPPER\(\$1\)`).
		WithArgs("DESCUENTO50").
		WillReturnRows(mockCouponRow("DESCUENTO50", "fixed", 50, 0, nil))

	handler := NewCouponHandler(database.NewCouponRepository(db), testLogger())
	c, w := validateCouponRequest(t, map[string]interface{}{
		"code":   "DESCUENTO50",
		"amount": 30.0,
	})

	handler.Validate(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Calculation struct {
			Discount    float64 `json:"discount"`
			FinalAmount float64 `json:"final_amount"`
		} `json:"calculation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	// fixed discount never exceeds the amount
	assert.Equal(t, 30.0, response.Calculation.Discount)
	assert.Equal(t, 0.0, response.Calculation.FinalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateCoupon_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM coupons WHERE code = UPPER\(\$1\)`).
		WithArgs("NOEXISTE").
		WillReturnError(sql.ErrNoRows)

	handler := NewCouponHandler(database.NewCouponRepository(db), testLogger())
	c, w := validateCouponRequest(t, map[string]interface{}{
		"code":   "NOEXISTE",
		"amount": 100.0,
	})

	handler.Validate(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "not_found", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateCoupon_Exhausted(t *testing.T) {
	db, mock := setupTestDB(t)

	maxUses := 5
	mock.ExpectQuery(`SELECT (.+) FROM coupons WHERE code = UPPER\(\$1\)`).
		WithArgs("AGOTADO").
		WillReturnRows(mockCouponRow("AGOTADO", "percentage", 15, 5, &maxUses))

	handler := NewCouponHandler(database.NewCouponRepository(db), testLogger())
	c, w := validateCouponRequest(t, map[string]interface{}{
		"code":   "AGOTADO",
		"amount": 100.0,
	})

	handler.Validate(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "coupon_rejected", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
