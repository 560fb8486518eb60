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

// AgencyHandler handles agency profile and dashboard HTTP requests
type AgencyHandler struct {
	agencyRepo  *database.AgencyRepository
	tourRepo    *database.TourRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewAgencyHandler creates a new agency handler
func NewAgencyHandler(
	agencyRepo *database.AgencyRepository,
	tourRepo *database.TourRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *AgencyHandler {
	return &AgencyHandler{
		agencyRepo:  agencyRepo,
		tourRepo:    tourRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// List handles GET /api/v1/agencies
// @Summary List verified agencies
// @Tags Agencies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/agencies [get]
func (h *AgencyHandler) List(c *gin.Context) {
	page, perPage := parsePagination(c)

	agencies, total, err := h.agencyRepo.ListVerified(page, perPage)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list agencies")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve agencies",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agencies": agencies,
		"meta":     paginationMeta(total, page, perPage),
	})
}

// Get handles GET /api/v1/agencies/:id
// @Summary Get an agency and its published tours
// @Tags Agencies
// @Produce json
// @Param id path string true "Agency ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/agencies/{id} [get]
func (h *AgencyHandler) Get(c *gin.Context) {
	agency, err := h.agencyRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Agency not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load agency")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve agency",
		})
		return
	}

	tours, err := h.tourRepo.ListByAgency(agency.ID, true)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list agency tours")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve agency",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agency": agency,
		"tours":  tours,
	})
}

// Dashboard handles GET /api/v1/agency/dashboard
// @Summary Agency dashboard with statistics and recent bookings
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/agency/dashboard [get]
func (h *AgencyHandler) Dashboard(c *gin.Context) {
	agency, ok := requireAgency(c, h.agencyRepo, h.logger)
	if !ok {
		return
	}

	stats, err := h.agencyRepo.Statistics(agency.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute agency statistics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load dashboard",
		})
		return
	}

	recentBookings, err := h.bookingRepo.ListRecentByAgency(agency.ID, 5)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list recent bookings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load dashboard",
		})
		return
	}

	recentTours, err := h.tourRepo.ListRecentByAgency(agency.ID, 5)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list recent tours")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agency":          agency,
		"statistics":      stats,
		"recent_bookings": recentBookings,
		"recent_tours":    recentTours,
	})
}

// Statistics handles GET /api/v1/agency/statistics
// @Summary Agency statistics
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/agency/statistics [get]
func (h *AgencyHandler) Statistics(c *gin.Context) {
	agency, ok := requireAgency(c, h.agencyRepo, h.logger)
	if !ok {
		return
	}

	stats, err := h.agencyRepo.Statistics(agency.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute agency statistics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// Bookings handles GET /api/v1/agency/bookings
// @Summary List bookings on the agency's tours
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by booking status"
// @Param upcoming query bool false "Only future bookings"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/agency/bookings [get]
func (h *AgencyHandler) Bookings(c *gin.Context) {
	agency, ok := requireAgency(c, h.agencyRepo, h.logger)
	if !ok {
		return
	}

	page, perPage := parsePagination(c)
	filter := models.BookingFilter{
		Status:   c.Query("status"),
		Upcoming: c.Query("upcoming") == "true",
		Past:     c.Query("past") == "true",
		Page:     page,
		PerPage:  perPage,
	}

	bookings, total, err := h.bookingRepo.ListByAgency(agency.ID, filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list agency bookings")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"meta":     paginationMeta(total, page, perPage),
	})
}

// UpdateProfile handles PUT /api/v1/agency/profile
// @Summary Update the agency profile
// @Tags Agency
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body models.UpdateAgencyProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/agency/profile [put]
func (h *AgencyHandler) UpdateProfile(c *gin.Context) {
	agency, ok := requireAgency(c, h.agencyRepo, h.logger)
	if !ok {
		return
	}

	var req models.UpdateAgencyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	updated, err := h.agencyRepo.UpdateProfile(agency.ID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update agency profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"agency":  updated,
	})
}
