package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/middleware"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/internal/permissions"
	"github.com/bookandgo/booking-backend/pkg/storage"
)

// MessageHandler handles booking conversation HTTP requests
type MessageHandler struct {
	messageRepo *database.MessageRepository
	bookingRepo *database.BookingRepository
	agencyRepo  *database.AgencyRepository
	uploads     storage.Storage
	logger      *logrus.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	messageRepo *database.MessageRepository,
	bookingRepo *database.BookingRepository,
	agencyRepo *database.AgencyRepository,
	uploads storage.Storage,
	logger *logrus.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		bookingRepo: bookingRepo,
		agencyRepo:  agencyRepo,
		uploads:     uploads,
		logger:      logger,
	}
}

// Conversations handles GET /api/v1/messages/conversations
// @Summary List the caller's booking conversations
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/messages/conversations [get]
func (h *MessageHandler) Conversations(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	conversations, err := h.messageRepo.Conversations(userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list conversations")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve conversations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversations": conversations,
		"total":         len(conversations),
	})
}

// UnreadCount handles GET /api/v1/messages/unread-count
// @Summary Count the caller's unread messages
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	count, err := h.messageRepo.UnreadCount(userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to count unread messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to count unread messages",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// ListByBooking handles GET /api/v1/bookings/:id/messages
// @Summary List a booking's messages
// @Description Returns the conversation oldest first and marks the caller's side as read
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/bookings/{id}/messages [get]
func (h *MessageHandler) ListByBooking(c *gin.Context) {
	booking, userID, ok := h.authorizeConversation(c)
	if !ok {
		return
	}

	page, perPage := parsePagination(c)
	messages, total, err := h.messageRepo.ListByBooking(booking.ID, page, perPage)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve messages",
		})
		return
	}

	// opening the thread marks everything addressed to the caller as read
	if _, err := h.messageRepo.MarkAllRead(booking.ID, userID); err != nil {
		h.logger.WithError(err).Warn("Failed to mark messages read")
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"meta":     paginationMeta(total, page, perPage),
	})
}

// Send handles POST /api/v1/bookings/:id/messages
// @Summary Send a message in a booking conversation
// @Description The receiver is the other participant: the customer for agency senders, the operator for customers. Multipart requests may carry up to five file attachments.
// @Tags Messages
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Booking ID"
// @Param message body models.SendMessageRequest true "Message body"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/bookings/{id}/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	booking, userID, ok := h.authorizeConversation(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	var attachments models.AttachmentList
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req.Body = c.PostForm("body")
		if req.Body == "" || len(req.Body) > 2000 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "body is required and limited to 2000 characters",
			})
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: err.Error(),
			})
			return
		}

		files := form.File["attachments"]
		if len(files) > maxAttachments {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "a message can carry at most 5 attachments",
			})
			return
		}

		for _, fh := range files {
			dir := "messages/booking-" + booking.ID
			_, url, err := saveUpload(h.uploads, fh, dir)
			if err != nil {
				h.logger.WithError(err).Warn("Failed to store attachment")
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error:   "upload_error",
					Message: err.Error(),
				})
				return
			}
			attachments = append(attachments, models.Attachment{
				URL:  url,
				Name: fh.Filename,
				Type: fh.Header.Get("Content-Type"),
				Size: fh.Size,
			})
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ownerID, agencyUserID, err := h.bookingRepo.OwnerAndAgencyUser(booking.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve conversation participants")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to send message",
		})
		return
	}

	receiverID := ownerID
	if userID == ownerID {
		receiverID = agencyUserID
	}

	message := &models.Message{
		BookingID:   booking.ID,
		SenderID:    userID,
		ReceiverID:  receiverID,
		Body:        req.Body,
		Attachments: attachments,
	}

	if err := h.messageRepo.Create(message); err != nil {
		h.logger.WithError(err).Error("Failed to send message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to send message",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message sent",
		"data":    message,
	})
}

// MarkRead handles POST /api/v1/bookings/:id/messages/mark-all-read
// @Summary Mark a conversation as read
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/bookings/{id}/messages/mark-all-read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	booking, userID, ok := h.authorizeConversation(c)
	if !ok {
		return
	}

	marked, err := h.messageRepo.MarkAllRead(booking.ID, userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to mark messages read")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to mark messages read",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Conversation marked as read",
		"marked_read": marked,
	})
}

// Delete handles DELETE /api/v1/messages/:id
// @Summary Delete an own message
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param id path string true "Message ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/messages/{id} [delete]
func (h *MessageHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c, h.agencyRepo)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return
	}

	message, err := h.messageRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Message not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete message",
		})
		return
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceMessage,
		SenderID: message.SenderID,
	}, permissions.ActionDelete) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Only the sender can delete a message",
		})
		return
	}

	if err := h.messageRepo.Delete(message.ID); err != nil {
		h.logger.WithError(err).Error("Failed to delete message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete message",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}

// authorizeConversation loads the booking behind :id and verifies that the
// caller participates in its conversation
func (h *MessageHandler) authorizeConversation(c *gin.Context) (*models.Booking, string, bool) {
	actor, ok := actorFromContext(c, h.agencyRepo)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return nil, "", false
	}

	booking, err := h.bookingRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
			return nil, "", false
		}
		h.logger.WithError(err).Error("Failed to load booking")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve booking",
		})
		return nil, "", false
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceMessage,
		OwnerID:  booking.UserID,
		AgencyID: booking.AgencyID,
	}, permissions.ActionView) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You are not part of this conversation",
		})
		return nil, "", false
	}

	return booking, actor.UserID, true
}
