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
	"github.com/bookandgo/booking-backend/internal/permissions"
	"github.com/bookandgo/booking-backend/internal/services"
)

// BookingHandler handles booking lifecycle HTTP requests
type BookingHandler struct {
	bookingService *services.BookingService
	bookingRepo    *database.BookingRepository
	userRepo       *database.UserRepository
	agencyRepo     *database.AgencyRepository
	logger         *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingService *services.BookingService,
	bookingRepo *database.BookingRepository,
	userRepo *database.UserRepository,
	agencyRepo *database.AgencyRepository,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		bookingRepo:    bookingRepo,
		userRepo:       userRepo,
		agencyRepo:     agencyRepo,
		logger:         logger,
	}
}

// List handles GET /api/v1/bookings
// @Summary List the caller's bookings
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Param upcoming query bool false "Only future bookings"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	page, perPage := parsePagination(c)
	filter := models.BookingFilter{
		Status:   c.Query("status"),
		Upcoming: c.Query("upcoming") == "true",
		Past:     c.Query("past") == "true",
		Page:     page,
		PerPage:  perPage,
	}

	bookings, total, err := h.bookingRepo.ListByUser(userCtx.UserID.String(), filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
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

// Get handles GET /api/v1/bookings/:id
// @Summary Get a booking
// @Tags Bookings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionView)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Create handles POST /api/v1/bookings
// @Summary Book a tour
// @Description Prices the booking, applies an optional coupon and stores it as pending
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param booking body models.CreateBookingRequest true "Booking details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateBookingRequest
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
			Message: "Failed to create booking",
		})
		return
	}

	booking, err := h.bookingService.Create(user, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTourNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Tour not found",
			})
		case errors.Is(err, services.ErrTourNotBookable), errors.Is(err, services.ErrPartySize):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "not_bookable",
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrCouponRejected):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "coupon_rejected",
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidBookingDate):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
			})
		default:
			h.logger.WithError(err).Error("Failed to create booking")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "database_error",
				Message: "Failed to create booking",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking created",
		"booking": booking,
	})
}

// Cancel handles POST /api/v1/bookings/:id/cancel
// @Summary Cancel a booking
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param cancel body models.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionCancel)
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.bookingService.Cancel(booking, req.Reason); err != nil {
		h.respondTransitionError(c, err, "cancel")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled",
		"booking": booking,
	})
}

// Confirm handles POST /api/v1/agency/bookings/:id/confirm
// @Summary Confirm a pending booking
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/agency/bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionConfirm)
	if !ok {
		return
	}

	if err := h.bookingService.Confirm(booking); err != nil {
		h.respondTransitionError(c, err, "confirm")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking confirmed",
		"booking": booking,
	})
}

// CheckIn handles POST /api/v1/agency/bookings/:id/check-in
// @Summary Check a confirmed booking in on the tour day
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/agency/bookings/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionCheckIn)
	if !ok {
		return
	}

	if err := h.bookingService.CheckIn(booking); err != nil {
		h.respondTransitionError(c, err, "check in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking checked in",
		"booking": booking,
	})
}

// Complete handles POST /api/v1/agency/bookings/:id/complete
// @Summary Complete a booking in progress
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/agency/bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionComplete)
	if !ok {
		return
	}

	if err := h.bookingService.Complete(booking); err != nil {
		h.respondTransitionError(c, err, "complete")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking completed",
		"booking": booking,
	})
}

// authorizeBooking loads the booking behind :id and checks the action
func (h *BookingHandler) authorizeBooking(c *gin.Context, action permissions.Action) (*models.Booking, permissions.Actor, bool) {
	actor, ok := actorFromContext(c, h.agencyRepo)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return nil, permissions.Actor{}, false
	}

	booking, err := h.bookingRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
			return nil, actor, false
		}
		h.logger.WithError(err).Error("Failed to load booking")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve booking",
		})
		return nil, actor, false
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceBooking,
		OwnerID:  booking.UserID,
		AgencyID: booking.AgencyID,
	}, action) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You cannot perform this action on this booking",
		})
		return nil, actor, false
	}

	return booking, actor, true
}

func (h *BookingHandler) respondTransitionError(c *gin.Context, err error, verb string) {
	if errors.Is(err, services.ErrInvalidTransition) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_status",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithError(err).Errorf("Failed to %s booking", verb)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "database_error",
		Message: "Failed to " + verb + " booking",
	})
}
