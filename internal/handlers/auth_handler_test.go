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
	"golang.org/x/crypto/bcrypt"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/pkg/jwt"
	"github.com/bookandgo/booking-backend/pkg/mail"
)

func setupAuthTestHandler(t *testing.T, db database.DB) *AuthHandler {
	cfg := testConfig()
	logger := testLogger()
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	mailer := mail.NewLogSender(mail.Config{Mode: "dev"}, logger)

	return NewAuthHandler(
		db,
		jwtService,
		database.NewUserRepository(db),
		database.NewAgencyRepository(db),
		database.NewSessionRepository(db),
		mailer,
		testUploadStore(t),
		cfg,
		logger,
	)
}

func authRequest(t *testing.T, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request, _ = http.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	return c, w
}

func mockUserRow(t *testing.T, userID, email, password string, active bool) *sqlmock.Rows {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password", "role", "phone", "avatar", "bio",
		"country", "city", "is_active", "last_activity_at", "created_at", "updated_at", "deleted_at",
	}).AddRow(
		userID, "Maria Torres", email, string(hash), "customer", nil, nil, nil,
		nil, nil, active, nil, now, now, nil,
	)
}

func TestLogin_Success(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New().String()
	email := "maria@example.com"

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs(email).
		WillReturnRows(mockUserRow(t, userID, email, "secret-password", true))
	mock.ExpectExec(`UPDATE sessions`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO sessions`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := setupAuthTestHandler(t, db)
	c, w := authRequest(t, "/api/v1/auth/login", gin.H{
		"email":    email,
		"password": "secret-password",
	})

	handler.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.Equal(t, email, response.User.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New().String()
	email := "maria@example.com"

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs(email).
		WillReturnRows(mockUserRow(t, userID, email, "secret-password", true))

	handler := setupAuthTestHandler(t, db)
	c, w := authRequest(t, "/api/v1/auth/login", gin.H{
		"email":    email,
		"password": "wrong-password",
	})

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "invalid_credentials", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	handler := setupAuthTestHandler(t, db)
	c, w := authRequest(t, "/api/v1/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "whatever-password",
	})

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "invalid_credentials", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_DisabledAccount(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New().String()
	email := "blocked@example.com"

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs(email).
		WillReturnRows(mockUserRow(t, userID, email, "secret-password", false))

	handler := setupAuthTestHandler(t, db)
	c, w := authRequest(t, "/api/v1/auth/login", gin.H{
		"email":    email,
		"password": "secret-password",
	})

	handler.Login(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "account_disabled", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_EmailTaken(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("maria@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	handler := setupAuthTestHandler(t, db)
	c, w := authRequest(t, "/api/v1/auth/register", gin.H{
		"name":     "Maria Torres",
		"email":    "maria@example.com",
		"password": "secret-password",
		"role":     "customer",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "email_taken", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_AgencyMissingBusinessName(t *testing.T) {
	db, _ := setupTestDB(t)

	handler := setupAuthTestHandler(t, db)
	c, w := authRequest(t, "/api/v1/auth/register", gin.H{
		"name":     "Andes Travel",
		"email":    "andes@example.com",
		"password": "secret-password",
		"role":     "agency",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "validation_error", response.Error)
}
