package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
)

// CategoryHandler handles tour category HTTP requests
type CategoryHandler struct {
	categoryRepo *database.CategoryRepository
	tourRepo     *database.TourRepository
	logger       *logrus.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryRepo *database.CategoryRepository, tourRepo *database.TourRepository, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryRepo: categoryRepo,
		tourRepo:     tourRepo,
		logger:       logger,
	}
}

// List handles GET /api/v1/categories
// @Summary List active categories with tour counts
// @Tags Categories
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryRepo.ListActive()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}

// Get handles GET /api/v1/categories/:slug
// @Summary Get a category and its tours
// @Tags Categories
// @Produce json
// @Param slug path string true "Category slug or ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/categories/{slug} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	param := c.Param("slug")

	var category *models.Category
	var err error
	if _, parseErr := uuid.Parse(param); parseErr == nil {
		category, err = h.categoryRepo.GetByID(param)
	} else {
		category, err = h.categoryRepo.GetBySlug(param)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Category not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load category")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve category",
		})
		return
	}

	tours, err := h.tourRepo.ListByCategory(category.ID, 12)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list category tours")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve category",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"tours":    tours,
	})
}
