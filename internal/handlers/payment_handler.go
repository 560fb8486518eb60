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

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	paymentService *services.PaymentService
	paymentRepo    *database.PaymentRepository
	bookingRepo    *database.BookingRepository
	userRepo       *database.UserRepository
	agencyRepo     *database.AgencyRepository
	logger         *logrus.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	paymentService *services.PaymentService,
	paymentRepo *database.PaymentRepository,
	bookingRepo *database.BookingRepository,
	userRepo *database.UserRepository,
	agencyRepo *database.AgencyRepository,
	logger *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		paymentRepo:    paymentRepo,
		bookingRepo:    bookingRepo,
		userRepo:       userRepo,
		agencyRepo:     agencyRepo,
		logger:         logger,
	}
}

// Create handles POST /api/v1/payments
// @Summary Pay for a booking
// @Description Charges the booking through the simulated gateway and confirms it
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payment body models.CreatePaymentRequest true "Payment details"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	booking, err := h.bookingRepo.GetByID(req.BookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load booking")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to process payment",
		})
		return
	}

	// only the booking owner pays for it
	if booking.UserID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You cannot pay for this booking",
		})
		return
	}

	user, err := h.userRepo.GetByID(userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to process payment",
		})
		return
	}

	payment, err := h.paymentService.Create(user, booking, models.PaymentMethod(req.PaymentMethod))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyPaid):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "already_paid",
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "invalid_status",
				Message: err.Error(),
			})
		default:
			h.logger.WithError(err).Error("Failed to process payment")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "database_error",
				Message: "Failed to process payment",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment completed",
		"payment": payment,
		"booking": booking,
	})
}

// Get handles GET /api/v1/payments/:id
// @Summary Get a payment
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, booking, _, ok := h.authorizePayment(c, permissions.ActionView)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment": payment,
		"booking": booking,
	})
}

// Confirm handles POST /api/v1/payments/:id/confirm
// @Summary Confirm a payment
// @Description Idempotent: confirming a completed payment returns it unchanged
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/payments/{id}/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	payment, booking, _, ok := h.authorizePayment(c, permissions.ActionView)
	if !ok {
		return
	}

	confirmed, err := h.paymentService.Confirm(payment, booking)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "invalid_status",
				Message: err.Error(),
			})
			return
		}
		h.logger.WithError(err).Error("Failed to confirm payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to confirm payment",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment confirmed",
		"payment": confirmed,
		"booking": booking,
	})
}

// Refund handles POST /api/v1/payments/:id/refund
// @Summary Refund a completed payment
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	payment, booking, _, ok := h.authorizePayment(c, permissions.ActionRefund)
	if !ok {
		return
	}

	if err := h.paymentService.Refund(payment, booking); err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotRefundable), errors.Is(err, services.ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "invalid_status",
				Message: err.Error(),
			})
		default:
			h.logger.WithError(err).Error("Failed to refund payment")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "database_error",
				Message: "Failed to refund payment",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment refunded",
		"payment": payment,
		"booking": booking,
	})
}

func (h *PaymentHandler) authorizePayment(c *gin.Context, action permissions.Action) (*models.Payment, *models.Booking, permissions.Actor, bool) {
	actor, ok := actorFromContext(c, h.agencyRepo)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return nil, nil, permissions.Actor{}, false
	}

	payment, err := h.paymentRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Payment not found",
			})
			return nil, nil, actor, false
		}
		h.logger.WithError(err).Error("Failed to load payment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve payment",
		})
		return nil, nil, actor, false
	}

	booking, err := h.bookingRepo.GetByID(payment.BookingID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load payment booking")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve payment",
		})
		return nil, nil, actor, false
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourcePayment,
		OwnerID:  payment.UserID,
		AgencyID: booking.AgencyID,
	}, action) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You cannot perform this action on this payment",
		})
		return nil, nil, actor, false
	}

	return payment, booking, actor, true
}
