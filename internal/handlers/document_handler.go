package handlers

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/internal/permissions"
	"github.com/bookandgo/booking-backend/internal/services"
)

// DocumentHandler handles booking document HTTP requests
type DocumentHandler struct {
	documentService *services.DocumentService
	docRepo         *database.DocumentRepository
	bookingRepo     *database.BookingRepository
	agencyRepo      *database.AgencyRepository
	logger          *logrus.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	documentService *services.DocumentService,
	docRepo *database.DocumentRepository,
	bookingRepo *database.BookingRepository,
	agencyRepo *database.AgencyRepository,
	logger *logrus.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		docRepo:         docRepo,
		bookingRepo:     bookingRepo,
		agencyRepo:      agencyRepo,
		logger:          logger,
	}
}

// List handles GET /api/v1/bookings/:id/documents
// @Summary List a booking's documents
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/bookings/{id}/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionView)
	if !ok {
		return
	}

	documents, err := h.docRepo.ListByBooking(booking.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve documents",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": documents,
		"total":     len(documents),
	})
}

// GenerateVoucher handles GET /api/v1/bookings/:id/documents/voucher
// @Summary Generate the booking voucher PDF
// @Description Returns 201 with a fresh PDF, or 200 with the previously generated one
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/bookings/{id}/documents/voucher [get]
func (h *DocumentHandler) GenerateVoucher(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionView)
	if !ok {
		return
	}

	// vouchers exist for paid bookings only
	if booking.Status != models.BookingStatusConfirmed &&
		booking.Status != models.BookingStatusInProgress &&
		booking.Status != models.BookingStatusCompleted {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_status",
			Message: "Vouchers are only available for confirmed bookings",
		})
		return
	}

	doc, fresh, err := h.documentService.GenerateVoucher(booking)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate voucher")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate voucher",
		})
		return
	}

	status := http.StatusOK
	message := "Voucher already generated"
	if fresh {
		status = http.StatusCreated
		message = "Voucher generated"
	}

	c.JSON(status, gin.H{
		"message":  message,
		"document": doc,
	})
}

// GenerateInvoice handles POST /api/v1/bookings/:id/documents/invoice
// @Summary Generate the booking invoice PDF
// @Tags Documents
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param invoice body models.GenerateInvoiceRequest true "Billing details"
// @Success 200 {object} map[string]interface{}
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/bookings/{id}/documents/invoice [post]
func (h *DocumentHandler) GenerateInvoice(c *gin.Context) {
	booking, _, ok := h.authorizeBooking(c, permissions.ActionView)
	if !ok {
		return
	}

	var req models.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if booking.Status != models.BookingStatusConfirmed &&
		booking.Status != models.BookingStatusInProgress &&
		booking.Status != models.BookingStatusCompleted {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_status",
			Message: "Invoices are only available for confirmed bookings",
		})
		return
	}

	doc, fresh, err := h.documentService.GenerateInvoice(booking, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate invoice")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate invoice",
		})
		return
	}

	status := http.StatusOK
	message := "Invoice already generated"
	if fresh {
		status = http.StatusCreated
		message = "Invoice generated"
	}

	c.JSON(status, gin.H{
		"message":  message,
		"document": doc,
	})
}

// Download handles GET /api/v1/documents/:id/download
// @Summary Download a document PDF
// @Tags Documents
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, _, ok := h.authorizeDocument(c, permissions.ActionDownload)
	if !ok {
		return
	}

	reader, err := h.documentService.Open(doc)
	if err != nil {
		h.logger.WithError(err).Error("Failed to open document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to download document",
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.Header("Content-Type", doc.MimeType)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.WithError(err).Warn("Document download interrupted")
	}
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	doc, _, ok := h.authorizeDocument(c, permissions.ActionDelete)
	if !ok {
		return
	}

	if err := h.documentService.Delete(doc); err != nil {
		h.logger.WithError(err).Error("Failed to delete document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete document",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

func (h *DocumentHandler) authorizeBooking(c *gin.Context, action permissions.Action) (*models.Booking, permissions.Actor, bool) {
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
		Type:     permissions.ResourceDocument,
		OwnerID:  booking.UserID,
		AgencyID: booking.AgencyID,
	}, action) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You cannot access this booking's documents",
		})
		return nil, actor, false
	}

	return booking, actor, true
}

func (h *DocumentHandler) authorizeDocument(c *gin.Context, action permissions.Action) (*models.BookingDocument, permissions.Actor, bool) {
	actor, ok := actorFromContext(c, h.agencyRepo)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return nil, permissions.Actor{}, false
	}

	doc, err := h.docRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Document not found",
			})
			return nil, actor, false
		}
		h.logger.WithError(err).Error("Failed to load document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve document",
		})
		return nil, actor, false
	}

	booking, err := h.bookingRepo.GetByID(doc.BookingID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load document booking")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve document",
		})
		return nil, actor, false
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceDocument,
		OwnerID:  booking.UserID,
		AgencyID: booking.AgencyID,
	}, action) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You cannot access this document",
		})
		return nil, actor, false
	}

	return doc, actor, true
}
