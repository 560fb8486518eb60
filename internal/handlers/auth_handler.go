package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookandgo/booking-backend/internal/config"
	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/middleware"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/internal/utils"
	"github.com/bookandgo/booking-backend/pkg/jwt"
	"github.com/bookandgo/booking-backend/pkg/mail"
	"github.com/bookandgo/booking-backend/pkg/storage"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	db          database.DB
	jwtService  *jwt.Service
	userRepo    *database.UserRepository
	agencyRepo  *database.AgencyRepository
	sessionRepo *database.SessionRepository
	mailer      mail.Sender
	uploads     storage.Storage
	config      *config.Config
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	db database.DB,
	jwtService *jwt.Service,
	userRepo *database.UserRepository,
	agencyRepo *database.AgencyRepository,
	sessionRepo *database.SessionRepository,
	mailer mail.Sender,
	uploads storage.Storage,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		db:          db,
		jwtService:  jwtService,
		userRepo:    userRepo,
		agencyRepo:  agencyRepo,
		sessionRepo: sessionRepo,
		mailer:      mailer,
		uploads:     uploads,
		config:      cfg,
		logger:      logger,
	}
}

// AuthResponse represents the response after a successful login or register
type AuthResponse struct {
	Message      string         `json:"message"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int            `json:"expires_in_seconds"`
	User         *models.User   `json:"user"`
	Agency       *models.Agency `json:"agency,omitempty"`
}

// Register handles POST /api/v1/auth/register
// @Summary Register a customer or agency account
// @Tags Auth
// @Accept json
// @Produce json
// @Param register body models.RegisterRequest true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
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

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := h.userRepo.EmailExists(email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check email availability")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to register account",
		})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "email_taken",
			Message: "An account with this email already exists",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to register account",
		})
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hash),
		Role:     models.UserRole(req.Role),
		IsActive: true,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	var agency *models.Agency

	// agency accounts get their operator profile in the same transaction
	err = database.WithTx(h.db, func(tx *sqlx.Tx) error {
		if err := h.userRepo.Create(tx, user); err != nil {
			return err
		}
		if user.Role == models.RoleAgency {
			agency = &models.Agency{
				UserID:       user.ID,
				BusinessName: req.BusinessName,
				RucTaxID:     req.RucTaxID,
				Address:      &req.Address,
				City:         &req.City,
			}
			return h.agencyRepo.Create(tx, agency)
		}
		return nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to create account")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to register account",
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("Account registered")

	h.sendWelcome(user)

	h.issueTokens(c, http.StatusCreated, "Account registered", user, agency)
}

// Login handles POST /api/v1/auth/login
// @Summary Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param login body models.LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to log in",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "account_disabled",
			Message: "This account has been deactivated",
		})
		return
	}

	var agency *models.Agency
	if user.IsAgency() {
		agency, err = h.agencyRepo.GetByUserID(user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			h.logger.WithError(err).Error("Failed to load agency profile")
		}
	}

	// a fresh login supersedes earlier sessions
	if err := h.sessionRepo.RevokeAllForUser(user.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke previous sessions")
	}

	h.issueTokens(c, http.StatusOK, "Logged in", user, agency)
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary Rotate tokens using a refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param refresh body models.RefreshRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
		})
		return
	}

	session, err := h.sessionRepo.GetByToken(req.RefreshToken)
	if err != nil || !session.IsUsable(time.Now()) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Refresh token has been revoked",
		})
		return
	}

	user, err := h.userRepo.GetByID(claims.UserID.String())
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Account no longer exists",
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "account_disabled",
			Message: "This account has been deactivated",
		})
		return
	}

	// rotate: revoke the used token before issuing a new pair
	if err := h.sessionRepo.Revoke(req.RefreshToken); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke refresh token")
	}

	var agency *models.Agency
	if user.IsAgency() {
		agency, _ = h.agencyRepo.GetByUserID(user.ID)
	}

	h.issueTokens(c, http.StatusOK, "Tokens refreshed", user, agency)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Revoke the presented refresh token
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// no token supplied, revoke every session of the caller
		user := middleware.MustGetUserContext(c)
		if err := h.sessionRepo.RevokeAllForUser(user.UserID.String()); err != nil {
			h.logger.WithError(err).Error("Failed to revoke sessions")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "database_error",
				Message: "Failed to log out",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		return
	}

	if err := h.sessionRepo.Revoke(req.RefreshToken); err != nil {
		h.logger.WithError(err).Error("Failed to revoke refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to log out",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /api/v1/auth/me
// @Summary Get the authenticated account
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.userRepo.GetByID(userCtx.UserID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Account not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to load user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load account",
		})
		return
	}

	response := gin.H{"user": user}
	if user.IsAgency() {
		if agency, err := h.agencyRepo.GetByUserID(user.ID); err == nil {
			response["agency"] = agency
		}
	}

	c.JSON(http.StatusOK, response)
}

// UpdateProfile handles PUT /api/v1/auth/profile
// @Summary Update the authenticated account's profile
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	user, err := h.userRepo.UpdateProfile(userCtx.UserID.String(), &req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Account not found",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to update profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    user,
	})
}

// UploadAvatar handles POST /api/v1/auth/avatar
// @Summary Upload a profile picture
// @Description Replaces the caller's avatar with the uploaded image
// @Tags Auth
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/auth/avatar [post]
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	fh, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "avatar file is required",
		})
		return
	}

	_, url, err := saveImageUpload(h.uploads, fh, "avatars")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "upload_error",
			Message: err.Error(),
		})
		return
	}

	user, err := h.userRepo.GetByID(userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load user for avatar update")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update avatar",
		})
		return
	}

	if err := h.userRepo.UpdateAvatar(user.ID, url); err != nil {
		h.logger.WithError(err).Error("Failed to update avatar")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update avatar",
		})
		return
	}

	if user.Avatar != nil {
		if err := deleteStoredURL(h.uploads, *user.Avatar); err != nil {
			h.logger.WithError(err).Warn("Failed to delete previous avatar")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Avatar updated",
		"avatar":  url,
	})
}

func (h *AuthHandler) issueTokens(c *gin.Context, status int, message string, user *models.User, agency *models.Agency) {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		h.logger.WithError(err).Error("Invalid user ID")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to issue tokens",
		})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(userID, user.Email, string(user.Role))
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to issue tokens",
		})
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(userID, user.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to issue tokens",
		})
		return
	}

	ip := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)
	expiresAt := time.Now().Add(h.config.JWT.RefreshTokenExpiry)
	if err := h.sessionRepo.Store(user.ID, refreshToken, expiresAt, &ip, &userAgent); err != nil {
		h.logger.WithError(err).Error("Failed to store session")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to issue tokens",
		})
		return
	}

	c.JSON(status, AuthResponse{
		Message:      message,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.config.JWT.AccessTokenExpiry.Seconds()),
		User:         user,
		Agency:       agency,
	})
}

func (h *AuthHandler) sendWelcome(user *models.User) {
	msg := mail.Message{
		To:      user.Email,
		Subject: "Welcome to BookAndGo",
		Body:    "Hi " + user.Name + ",\n\nYour account is ready. Start exploring tours at bookandgo.pe.\n\nThe BookAndGo team",
	}

	if err := h.mailer.Send(msg); err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to send welcome email")
	}
}
