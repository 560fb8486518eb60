package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/middleware"
)

// FavoriteHandler handles favorite tour HTTP requests
type FavoriteHandler struct {
	favoriteRepo *database.FavoriteRepository
	tourRepo     *database.TourRepository
	logger       *logrus.Logger
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favoriteRepo *database.FavoriteRepository, tourRepo *database.TourRepository, logger *logrus.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteRepo: favoriteRepo,
		tourRepo:     tourRepo,
		logger:       logger,
	}
}

// List handles GET /api/v1/favorites
// @Summary List the caller's favorite tours
// @Tags Favorites
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/favorites [get]
func (h *FavoriteHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	page, perPage := parsePagination(c)
	tours, total, err := h.favoriteRepo.ListTours(userCtx.UserID.String(), page, perPage)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list favorites")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve favorites",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tours": tours,
		"meta":  paginationMeta(total, page, perPage),
	})
}

// Toggle handles POST /api/v1/favorites/:tourId/toggle
// @Summary Add or remove a tour from favorites
// @Tags Favorites
// @Security BearerAuth
// @Produce json
// @Param tourId path string true "Tour ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/favorites/{tourId}/toggle [post]
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	tour, err := h.tourRepo.GetByID(c.Param("tourId"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Tour not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load tour")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update favorites",
		})
		return
	}

	favorite, err := h.favoriteRepo.Toggle(userCtx.UserID.String(), tour.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to toggle favorite")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update favorites",
		})
		return
	}

	message := "Tour removed from favorites"
	if favorite {
		message = "Tour added to favorites"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     message,
		"is_favorite": favorite,
	})
}

// Check handles GET /api/v1/favorites/:tourId
// @Summary Check if a tour is among the caller's favorites
// @Tags Favorites
// @Security BearerAuth
// @Produce json
// @Param tourId path string true "Tour ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/favorites/{tourId} [get]
func (h *FavoriteHandler) Check(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	favorite, err := h.favoriteRepo.Exists(userCtx.UserID.String(), c.Param("tourId"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to check favorite")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to check favorite",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorite": favorite})
}
