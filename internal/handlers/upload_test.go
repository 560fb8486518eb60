package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
)

// multipartRequest builds a multipart body with one text field and the given files
func multipartRequest(t *testing.T, field, body string, files map[string][]byte) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	if body != "" {
		require.NoError(t, writer.WriteField(field, body))
	}
	for name, content := range files {
		part, err := writer.CreateFormFile(fieldForFile(name), name)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return buf, writer.FormDataContentType()
}

// fieldForFile keeps attachment files under one form field and everything else
// under its own name
func fieldForFile(name string) string {
	if strings.HasPrefix(name, "attachment") {
		return "attachments"
	}
	if strings.HasPrefix(name, "avatar") {
		return "avatar"
	}
	return "featured_image"
}

func setupMessageTestHandler(t *testing.T, db database.DB) *MessageHandler {
	return NewMessageHandler(
		database.NewMessageRepository(db),
		database.NewBookingRepository(db),
		database.NewAgencyRepository(db),
		testUploadStore(t),
		testLogger(),
	)
}

func TestSendMessage_StoresAttachments(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()
	bookingID := uuid.New().String()
	agencyUserID := uuid.New().String()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
		WithArgs(bookingID).
		WillReturnRows(mockBookingRow(bookingID, userID.String(), uuid.New().String(), models.BookingStatusConfirmed))
	mock.ExpectQuery(`SELECT b.user_id, a.user_id`).
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_id"}).AddRow(userID.String(), agencyUserID))
	mock.ExpectQuery(`INSERT INTO messages`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	handler := setupMessageTestHandler(t, db)
	c, w := setupAuthenticatedContext(userID, models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: bookingID}}

	buf, contentType := multipartRequest(t, "body", "Adjunto el comprobante", map[string][]byte{
		"attachment-1.png": []byte("png bytes"),
	})
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID+"/messages", buf)
	c.Request.Header.Set("Content-Type", contentType)

	handler.Send(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Data models.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data.Attachments, 1)
	assert.Equal(t, "attachment-1.png", response.Data.Attachments[0].Name)
	assert.Contains(t, response.Data.Attachments[0].URL, "/storage/messages/booking-"+bookingID+"/")
	assert.Equal(t, agencyUserID, response.Data.ReceiverID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendMessage_RejectsTooManyAttachments(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()
	bookingID := uuid.New().String()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id = \$1`).
		WithArgs(bookingID).
		WillReturnRows(mockBookingRow(bookingID, userID.String(), uuid.New().String(), models.BookingStatusConfirmed))

	handler := setupMessageTestHandler(t, db)
	c, w := setupAuthenticatedContext(userID, models.RoleCustomer)
	c.Params = gin.Params{{Key: "id", Value: bookingID}}

	files := map[string][]byte{}
	for i := 0; i < 6; i++ {
		files["attachment-"+string(rune('a'+i))+".png"] = []byte("x")
	}
	buf, contentType := multipartRequest(t, "body", "Demasiados archivos", files)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID+"/messages", buf)
	c.Request.Header.Set("Content-Type", contentType)

	handler.Send(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadAvatar_Success(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(mockUserRow(t, userID.String(), "maria@example.com", "secret-password", true))
	mock.ExpectExec(`UPDATE users SET avatar = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	handler := setupAuthTestHandler(t, db)
	c, w := setupAuthenticatedContext(userID, models.RoleCustomer)

	buf, contentType := multipartRequest(t, "", "", map[string][]byte{
		"avatar.png": []byte("png bytes"),
	})
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/avatar", buf)
	c.Request.Header.Set("Content-Type", contentType)

	handler.UploadAvatar(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["avatar"], "/storage/avatars/")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadAvatar_RejectsNonImage(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()

	handler := setupAuthTestHandler(t, db)
	c, w := setupAuthenticatedContext(userID, models.RoleCustomer)

	buf, contentType := multipartRequest(t, "", "", map[string][]byte{
		"avatar.txt": []byte("not an image"),
	})
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/avatar", buf)
	c.Request.Header.Set("Content-Type", contentType)

	handler.UploadAvatar(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "upload_error", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
