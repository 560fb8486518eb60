package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/middleware"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/internal/services"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService *services.ReviewService
	reviewRepo    *database.ReviewRepository
	userRepo      *database.UserRepository
	logger        *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(
	reviewService *services.ReviewService,
	reviewRepo *database.ReviewRepository,
	userRepo *database.UserRepository,
	logger *logrus.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		reviewRepo:    reviewRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

// Submit handles POST /api/v1/reviews
// @Summary Review a tour
// @Description Creates the caller's review of a tour, or replaces the existing one
// @Tags Reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param review body models.CreateReviewRequest true "Review content"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	user, err := h.userRepo.GetByID(userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to store review",
		})
		return
	}

	review, created, err := h.reviewService.Submit(user, &req)
	if err != nil {
		if errors.Is(err, services.ErrTourNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Tour not found",
			})
			return
		}
		if errors.Is(err, services.ErrBookingMismatch) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "booking_mismatch",
				Message: err.Error(),
			})
			return
		}
		h.logger.WithError(err).Error("Failed to store review")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to store review",
		})
		return
	}

	status := http.StatusOK
	message := "Review updated"
	if created {
		status = http.StatusCreated
		message = "Review created"
	}

	c.JSON(status, gin.H{
		"message": message,
		"review":  review,
	})
}

// List handles GET /api/v1/reviews
// @Summary List approved reviews
// @Tags Reviews
// @Produce json
// @Param tour_id query string false "Filter by tour"
// @Param user_id query string false "Filter by author"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	page, perPage := parsePagination(c)
	reviews, total, err := h.reviewRepo.List(models.ReviewFilter{
		TourID:  c.Query("tour_id"),
		UserID:  c.Query("user_id"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reviews")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"meta":    paginationMeta(total, page, perPage),
	})
}

// Mine handles GET /api/v1/reviews/mine
// @Summary List the caller's reviews
// @Tags Reviews
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reviews/mine [get]
func (h *ReviewHandler) Mine(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	page, perPage := parsePagination(c)
	reviews, total, err := h.reviewRepo.List(models.ReviewFilter{
		UserID:  userCtx.UserID.String(),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to list reviews")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"meta":    paginationMeta(total, page, perPage),
	})
}

// MarkHelpful handles POST /api/v1/reviews/:id/helpful
// @Summary Mark a review as helpful
// @Tags Reviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/reviews/{id}/helpful [post]
func (h *ReviewHandler) MarkHelpful(c *gin.Context) {
	count, err := h.reviewRepo.IncrementHelpful(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Review not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to mark review helpful")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to mark review helpful",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Review marked as helpful",
		"helpful_count": count,
	})
}
