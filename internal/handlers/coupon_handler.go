package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/middleware"
	"github.com/bookandgo/booking-backend/internal/models"
)

// CouponHandler handles coupon HTTP requests
type CouponHandler struct {
	couponRepo *database.CouponRepository
	logger     *logrus.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponRepo *database.CouponRepository, logger *logrus.Logger) *CouponHandler {
	return &CouponHandler{
		couponRepo: couponRepo,
		logger:     logger,
	}
}

// Validate handles POST /api/v1/coupons/validate
// @Summary Validate a coupon against an amount
// @Description Returns the discount the coupon would produce without redeeming it
// @Tags Coupons
// @Accept json
// @Produce json
// @Param coupon body models.ValidateCouponRequest true "Code and amount"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/coupons/validate [post]
func (h *CouponHandler) Validate(c *gin.Context) {
	var req models.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	coupon, err := h.couponRepo.GetByCode(req.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Coupon not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load coupon")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to validate coupon",
		})
		return
	}

	calc, err := coupon.ApplyToAmount(req.Amount, time.Now())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "coupon_rejected",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"code":        coupon.Code,
		"type":        coupon.Type,
		"calculation": calc,
	})
}

// ============================================================================
// ADMIN COUPON MANAGEMENT
// ============================================================================

// List handles GET /api/v1/admin/coupons
// @Summary List coupons
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param is_active query bool false "Filter by active flag"
// @Param type query string false "percentage or fixed"
// @Param valid query bool false "Only currently redeemable coupons"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/coupons [get]
func (h *CouponHandler) List(c *gin.Context) {
	page, perPage := parsePagination(c)

	filter := models.CouponFilter{
		Type:    c.Query("type"),
		Page:    page,
		PerPage: perPage,
	}
	if raw := c.Query("is_active"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	if raw := c.Query("valid"); raw != "" {
		valid := raw == "true"
		filter.Valid = &valid
	}

	coupons, total, err := h.couponRepo.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list coupons")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve coupons",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons": coupons,
		"meta":    paginationMeta(total, page, perPage),
	})
}

// Create handles POST /api/v1/admin/coupons
// @Summary Create a coupon
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param coupon body models.CreateCouponRequest true "Coupon details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/admin/coupons [post]
func (h *CouponHandler) Create(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	validFrom, err := parseDatePtr(req.ValidFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "valid_from must be in YYYY-MM-DD format",
		})
		return
	}
	validUntil, err := parseDatePtr(req.ValidUntil)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "valid_until must be in YYYY-MM-DD format",
		})
		return
	}

	code := req.NormalizedCode()
	taken, err := h.couponRepo.CodeExists(code)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check coupon code")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create coupon",
		})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "code_taken",
			Message: "A coupon with this code already exists",
		})
		return
	}

	createdBy := userCtx.UserID.String()
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	coupon := &models.Coupon{
		Code:        code,
		Description: req.Description,
		Type:        models.CouponType(req.Type),
		Value:       req.Value,
		MinPurchase: req.MinPurchase,
		MaxUses:     req.MaxUses,
		ValidFrom:   validFrom,
		ValidUntil:  validUntil,
		IsActive:    isActive,
		CreatedBy:   &createdBy,
	}

	if err := h.couponRepo.Create(coupon); err != nil {
		h.logger.WithError(err).Error("Failed to create coupon")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create coupon",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created",
		"coupon":  coupon,
	})
}

// Get handles GET /api/v1/admin/coupons/:id
// @Summary Get a coupon
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Coupon ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/coupons/{id} [get]
func (h *CouponHandler) Get(c *gin.Context) {
	coupon, err := h.couponRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Coupon not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load coupon")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

// Update handles PUT /api/v1/admin/coupons/:id
// @Summary Update a coupon
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Coupon ID"
// @Param coupon body models.UpdateCouponRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/coupons/{id} [put]
func (h *CouponHandler) Update(c *gin.Context) {
	var req models.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	validFrom, err := parseDatePtr(req.ValidFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "valid_from must be in YYYY-MM-DD format",
		})
		return
	}
	validUntil, err := parseDatePtr(req.ValidUntil)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "valid_until must be in YYYY-MM-DD format",
		})
		return
	}

	coupon, err := h.couponRepo.Update(c.Param("id"), &req, validFrom, validUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Coupon not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to update coupon")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon updated",
		"coupon":  coupon,
	})
}

// Delete handles DELETE /api/v1/admin/coupons/:id
// @Summary Delete a coupon
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Coupon ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/admin/coupons/{id} [delete]
func (h *CouponHandler) Delete(c *gin.Context) {
	if err := h.couponRepo.Delete(c.Param("id")); err != nil {
		if err.Error() == "coupon not found" {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Coupon not found",
			})
			return
		}
		if errors.Is(err, database.ErrCouponInUse) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "coupon_in_use",
				Message: "A redeemed coupon cannot be deleted",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to delete coupon")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}

// Toggle handles POST /api/v1/admin/coupons/:id/toggle
// @Summary Flip a coupon's active flag
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Coupon ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/admin/coupons/{id}/toggle [post]
func (h *CouponHandler) Toggle(c *gin.Context) {
	coupon, err := h.couponRepo.ToggleStatus(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Coupon not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to toggle coupon")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to toggle coupon",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon status changed",
		"coupon":  coupon,
	})
}

// Statistics handles GET /api/v1/admin/coupons/statistics
// @Summary Coupon usage statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/admin/coupons/statistics [get]
func (h *CouponHandler) Statistics(c *gin.Context) {
	stats, err := h.couponRepo.Statistics()
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute coupon statistics")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// parseDatePtr parses an optional YYYY-MM-DD value
func parseDatePtr(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
