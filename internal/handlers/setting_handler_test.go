package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
)

func TestUpdateSettingsGroup_Success(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE system_settings SET value = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	handler := NewSettingHandler(database.NewSettingRepository(db), testLogger())
	c, w := setupAuthenticatedContext(uuid.New(), models.RoleAdmin)
	c.Params = gin.Params{{Key: "group", Value: "booking"}}

	payload, err := json.Marshal(gin.H{"settings": gin.H{"tax_rate": "0.18"}})
	require.NoError(t, err)
	c.Request, _ = http.NewRequest(http.MethodPut, "/api/v1/admin/settings/group/booking", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.UpdateGroup(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "booking", response["group"])
	assert.Equal(t, float64(1), response["updated"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSettingsGroup_UnknownKeyRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE system_settings SET value = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	handler := NewSettingHandler(database.NewSettingRepository(db), testLogger())
	c, w := setupAuthenticatedContext(uuid.New(), models.RoleAdmin)
	c.Params = gin.Params{{Key: "group", Value: "booking"}}

	payload, err := json.Marshal(gin.H{"settings": gin.H{"no_such_key": "1"}})
	require.NoError(t, err)
	c.Request, _ = http.NewRequest(http.MethodPut, "/api/v1/admin/settings/group/booking", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.UpdateGroup(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "unknown_key", response.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
