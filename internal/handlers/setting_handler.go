package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
)

// SettingHandler handles system settings HTTP requests
type SettingHandler struct {
	settingRepo *database.SettingRepository
	logger      *logrus.Logger
}

// NewSettingHandler creates a new setting handler
func NewSettingHandler(settingRepo *database.SettingRepository, logger *logrus.Logger) *SettingHandler {
	return &SettingHandler{
		settingRepo: settingRepo,
		logger:      logger,
	}
}

// Public handles GET /api/v1/settings/public
// @Summary Get public settings as a key/value map
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/settings/public [get]
func (h *SettingHandler) Public(c *gin.Context) {
	settings, err := h.settingRepo.ListPublic()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list public settings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// List handles GET /api/v1/admin/settings
// @Summary List all settings
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param group query string false "Filter by settings group"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/settings [get]
func (h *SettingHandler) List(c *gin.Context) {
	settings, err := h.settingRepo.List(c.Query("group"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list settings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
		"total":    len(settings),
	})
}

// Upsert handles PUT /api/v1/admin/settings
// @Summary Create or replace a setting
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param setting body models.UpsertSettingRequest true "Setting"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/admin/settings [put]
func (h *SettingHandler) Upsert(c *gin.Context) {
	var req models.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	settingType := req.Type
	if settingType == "" {
		settingType = "string"
	}
	group := req.Group
	if group == "" {
		group = "general"
	}

	setting := &models.SystemSetting{
		Key:         req.Key,
		Value:       req.Value,
		Type:        settingType,
		Group:       group,
		Description: req.Description,
	}
	if req.IsPublic != nil {
		setting.IsPublic = *req.IsPublic
	}

	if err := h.settingRepo.Upsert(setting); err != nil {
		h.logger.WithError(err).Error("Failed to upsert setting")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to save setting",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Setting saved",
		"setting": setting,
	})
}

// Group handles GET /api/v1/admin/settings/group/:group
// @Summary Get all settings of one group
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param group path string true "Settings group"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/settings/group/{group} [get]
func (h *SettingHandler) Group(c *gin.Context) {
	group := c.Param("group")

	settings, err := h.settingRepo.List(group)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list settings group")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":    group,
		"settings": settings,
		"total":    len(settings),
	})
}

// UpdateGroup handles PUT /api/v1/admin/settings/group/:group
// @Summary Bulk-update the values of one settings group
// @Description Every key must already exist inside the group, otherwise nothing is changed
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param group path string true "Settings group"
// @Param settings body models.UpdateSettingsGroupRequest true "Key to value map"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/admin/settings/group/{group} [put]
func (h *SettingHandler) UpdateGroup(c *gin.Context) {
	var req models.UpdateSettingsGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}
	if len(req.Settings) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "settings must not be empty",
		})
		return
	}

	group := c.Param("group")
	updated, err := h.settingRepo.UpdateGroup(group, req.Settings)
	if err != nil {
		if errors.Is(err, database.ErrUnknownSettingKey) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "unknown_key",
				Message: err.Error(),
			})
			return
		}
		h.logger.WithError(err).Error("Failed to update settings group")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update settings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings updated",
		"group":   group,
		"updated": updated,
	})
}

// Get handles GET /api/v1/admin/settings/:key
// @Summary Get a setting by key
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/settings/{key} [get]
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settingRepo.GetByKey(c.Param("key"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Setting not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load setting")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve setting",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// Delete handles DELETE /api/v1/admin/settings/:key
// @Summary Delete a setting
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/settings/{key} [delete]
func (h *SettingHandler) Delete(c *gin.Context) {
	if err := h.settingRepo.Delete(c.Param("key")); err != nil {
		if err.Error() == "setting not found" {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Setting not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to delete setting")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete setting",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Setting deleted"})
}
