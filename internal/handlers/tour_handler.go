package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bookandgo/booking-backend/internal/database"
	"github.com/bookandgo/booking-backend/internal/middleware"
	"github.com/bookandgo/booking-backend/internal/models"
	"github.com/bookandgo/booking-backend/internal/permissions"
	"github.com/bookandgo/booking-backend/internal/utils"
	"github.com/bookandgo/booking-backend/pkg/storage"
)

// TourHandler handles tour catalog HTTP requests
type TourHandler struct {
	tourRepo     *database.TourRepository
	reviewRepo   *database.ReviewRepository
	agencyRepo   *database.AgencyRepository
	categoryRepo *database.CategoryRepository
	uploads      storage.Storage
	logger       *logrus.Logger
}

// NewTourHandler creates a new tour handler
func NewTourHandler(
	tourRepo *database.TourRepository,
	reviewRepo *database.ReviewRepository,
	agencyRepo *database.AgencyRepository,
	categoryRepo *database.CategoryRepository,
	uploads storage.Storage,
	logger *logrus.Logger,
) *TourHandler {
	return &TourHandler{
		tourRepo:     tourRepo,
		reviewRepo:   reviewRepo,
		agencyRepo:   agencyRepo,
		categoryRepo: categoryRepo,
		uploads:      uploads,
		logger:       logger,
	}
}

func parseOptionalFloat(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// List handles GET /api/v1/tours
// @Summary List published tours
// @Description Filter, sort and paginate the public tour catalog
// @Tags Tours
// @Produce json
// @Param search query string false "Free-text search over title and description"
// @Param location query string false "City, region or country"
// @Param category_id query string false "Category filter"
// @Param min_price query number false "Minimum effective price"
// @Param max_price query number false "Maximum effective price"
// @Param min_rating query number false "Minimum average rating"
// @Param duration query string false "short, medium, day or multi"
// @Param difficulty query string false "easy, moderate or hard"
// @Param sort_by query string false "price_asc, price_desc, rating, popular or created_at"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/tours [get]
func (h *TourHandler) List(c *gin.Context) {
	page, perPage := parsePagination(c)
	if c.Query("per_page") == "" {
		perPage = 12
	}

	filter := models.TourFilter{
		Search:     c.Query("search"),
		Location:   c.Query("location"),
		CategoryID: c.Query("category_id"),
		MinPrice:   parseOptionalFloat(c, "min_price"),
		MaxPrice:   parseOptionalFloat(c, "max_price"),
		MinRating:  parseOptionalFloat(c, "min_rating"),
		Duration:   c.Query("duration"),
		Difficulty: c.Query("difficulty"),
		SortBy:     c.Query("sort_by"),
		Page:       page,
		PerPage:    perPage,
	}

	tours, total, err := h.tourRepo.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list tours")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve tours",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tours": tours,
		"meta":  paginationMeta(total, page, perPage),
	})
}

// Featured handles GET /api/v1/tours/featured
// @Summary List featured tours
// @Tags Tours
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/tours/featured [get]
func (h *TourHandler) Featured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit < 1 || limit > 24 {
		limit = 8
	}

	tours, err := h.tourRepo.ListFeatured(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list featured tours")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve tours",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tours": tours,
		"total": len(tours),
	})
}

// loadTour resolves the :id parameter as a UUID or a slug
func (h *TourHandler) loadTour(idOrSlug string) (*models.Tour, error) {
	if _, err := uuid.Parse(idOrSlug); err == nil {
		return h.tourRepo.GetByID(idOrSlug)
	}
	return h.tourRepo.GetBySlug(idOrSlug)
}

// Get handles GET /api/v1/tours/:id
// @Summary Get a tour by ID or slug
// @Description Returns the tour together with its latest reviews and operator profile
// @Tags Tours
// @Produce json
// @Param id path string true "Tour ID or slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tours/{id} [get]
func (h *TourHandler) Get(c *gin.Context) {
	tour, err := h.loadTour(c.Param("id"))
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
			Message: "Failed to retrieve tour",
		})
		return
	}

	// unpublished tours are only visible to their operator and admins
	if !tour.IsPublished || tour.DeletedAt != nil {
		actor, ok := actorFromContext(c, h.agencyRepo)
		if !ok || !permissions.Allowed(actor, permissions.Resource{
			Type:     permissions.ResourceTour,
			AgencyID: tour.AgencyID,
		}, permissions.ActionUpdate) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Tour not found",
			})
			return
		}
	}

	response := gin.H{"tour": tour}

	if reviews, err := h.reviewRepo.ListLatestByTour(tour.ID, 5); err == nil {
		response["reviews"] = reviews
	}
	if agency, err := h.agencyRepo.GetByID(tour.AgencyID); err == nil {
		response["agency"] = agency
	}
	if category, err := h.categoryRepo.GetByID(tour.CategoryID); err == nil {
		response["category"] = category
	}

	c.JSON(http.StatusOK, response)
}

// Related handles GET /api/v1/tours/:id/related
// @Summary List tours related to a tour
// @Tags Tours
// @Produce json
// @Param id path string true "Tour ID or slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tours/{id}/related [get]
func (h *TourHandler) Related(c *gin.Context) {
	tour, err := h.loadTour(c.Param("id"))
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
			Message: "Failed to retrieve tour",
		})
		return
	}

	tours, err := h.tourRepo.ListRelated(tour.ID, 4)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list related tours")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve tours",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tours": tours,
		"total": len(tours),
	})
}

// Reviews handles GET /api/v1/tours/:id/reviews
// @Summary List approved reviews of a tour
// @Tags Tours
// @Produce json
// @Param id path string true "Tour ID or slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/tours/{id}/reviews [get]
func (h *TourHandler) Reviews(c *gin.Context) {
	tour, err := h.loadTour(c.Param("id"))
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
			Message: "Failed to retrieve tour",
		})
		return
	}

	page, perPage := parsePagination(c)
	filter := models.ReviewFilter{
		TourID:  tour.ID,
		Page:    page,
		PerPage: perPage,
	}
	if rating, err := strconv.Atoi(c.Query("rating")); err == nil && rating >= 1 && rating <= 5 {
		filter.Rating = &rating
	}

	reviews, total, err := h.reviewRepo.List(filter)
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
		"rating":  tour.Rating,
		"meta":    paginationMeta(total, page, perPage),
	})
}

// ============================================================================
// AGENCY TOUR MANAGEMENT
// ============================================================================

// Create handles POST /api/v1/agency/tours
// @Summary Create a tour draft
// @Tags Agency
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tour body models.CreateTourRequest true "Tour details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/agency/tours [post]
func (h *TourHandler) Create(c *gin.Context) {
	agency, ok := requireAgency(c, h.agencyRepo, h.logger)
	if !ok {
		return
	}

	var req models.CreateTourRequest
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

	slug, err := h.uniqueSlug(req.Title)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build slug")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create tour",
		})
		return
	}

	difficulty := models.TourDifficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = models.DifficultyModerate
	}

	tour := &models.Tour{
		AgencyID:      agency.ID,
		CategoryID:    req.CategoryID,
		Title:         req.Title,
		Slug:          slug,
		Description:   req.Description,
		Itinerary:     req.Itinerary,
		Includes:      req.Includes,
		Excludes:      req.Excludes,
		Requirements:  req.Requirements,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		DurationDays:  req.DurationDays,
		DurationHours: req.DurationHours,
		MaxPeople:     req.MaxPeople,
		MinPeople:     req.MinPeople,
		Difficulty:    difficulty,
		City:          req.City,
		Region:        req.Region,
		Country:       req.Country,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		FeaturedImage: req.FeaturedImage,
		IsActive:      true,
	}

	if err := h.tourRepo.Create(tour); err != nil {
		h.logger.WithError(err).Error("Failed to create tour")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create tour",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tour created",
		"tour":    tour,
	})
}

// ListMine handles GET /api/v1/agency/tours
// @Summary List the agency's tours including drafts
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/agency/tours [get]
func (h *TourHandler) ListMine(c *gin.Context) {
	agency, ok := requireAgency(c, h.agencyRepo, h.logger)
	if !ok {
		return
	}

	tours, err := h.tourRepo.ListByAgency(agency.ID, false)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list agency tours")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve tours",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tours": tours,
		"total": len(tours),
	})
}

// Update handles PUT /api/v1/agency/tours/:id
// @Summary Update a tour
// @Tags Agency
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Tour ID"
// @Param tour body models.UpdateTourRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/agency/tours/{id} [put]
func (h *TourHandler) Update(c *gin.Context) {
	tour, actor, ok := h.loadOwnedTour(c)
	if !ok {
		return
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceTour,
		AgencyID: tour.AgencyID,
	}, permissions.ActionUpdate) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You do not manage this tour",
		})
		return
	}

	var req models.UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	updated, err := h.tourRepo.Update(tour.ID, &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update tour")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update tour",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tour updated",
		"tour":    updated,
	})
}

// Publish handles POST /api/v1/agency/tours/:id/publish
// @Summary Publish a tour draft
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/agency/tours/{id}/publish [post]
func (h *TourHandler) Publish(c *gin.Context) {
	tour, actor, ok := h.loadOwnedTour(c)
	if !ok {
		return
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceTour,
		AgencyID: tour.AgencyID,
	}, permissions.ActionPublish) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You do not manage this tour",
		})
		return
	}

	if err := h.tourRepo.Publish(tour.ID); err != nil {
		h.logger.WithError(err).Error("Failed to publish tour")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to publish tour",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tour published"})
}

// Delete handles DELETE /api/v1/agency/tours/:id
// @Summary Soft-delete a tour
// @Tags Agency
// @Security BearerAuth
// @Produce json
// @Param id path string true "Tour ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/agency/tours/{id} [delete]
func (h *TourHandler) Delete(c *gin.Context) {
	tour, actor, ok := h.loadOwnedTour(c)
	if !ok {
		return
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceTour,
		AgencyID: tour.AgencyID,
	}, permissions.ActionDelete) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You do not manage this tour",
		})
		return
	}

	if err := h.tourRepo.SoftDelete(tour.ID); err != nil {
		h.logger.WithError(err).Error("Failed to delete tour")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete tour",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tour deleted"})
}

// UploadImage handles POST /api/v1/agency/tours/:id/image
// @Summary Upload a tour's featured image
// @Tags Agency
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Tour ID"
// @Param featured_image formData file true "Featured image"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/agency/tours/{id}/image [post]
func (h *TourHandler) UploadImage(c *gin.Context) {
	tour, actor, ok := h.loadOwnedTour(c)
	if !ok {
		return
	}

	if !permissions.Allowed(actor, permissions.Resource{
		Type:     permissions.ResourceTour,
		AgencyID: tour.AgencyID,
	}, permissions.ActionUpdate) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You do not manage this tour",
		})
		return
	}

	fh, err := c.FormFile("featured_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "featured_image file is required",
		})
		return
	}

	_, url, err := saveImageUpload(h.uploads, fh, "tours")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "upload_error",
			Message: err.Error(),
		})
		return
	}

	if err := h.tourRepo.SetFeaturedImage(tour.ID, url); err != nil {
		h.logger.WithError(err).Error("Failed to update featured image")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update featured image",
		})
		return
	}

	if tour.FeaturedImage != nil {
		if err := deleteStoredURL(h.uploads, *tour.FeaturedImage); err != nil {
			h.logger.WithError(err).Warn("Failed to delete previous featured image")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Featured image updated",
		"featured_image": url,
	})
}

func (h *TourHandler) loadOwnedTour(c *gin.Context) (*models.Tour, permissions.Actor, bool) {
	actor, ok := actorFromContext(c, h.agencyRepo)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Authentication required",
		})
		return nil, permissions.Actor{}, false
	}

	tour, err := h.tourRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Tour not found",
			})
			return nil, actor, false
		}
		h.logger.WithError(err).Error("Failed to load tour")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve tour",
		})
		return nil, actor, false
	}

	return tour, actor, true
}

func (h *TourHandler) uniqueSlug(title string) (string, error) {
	base := utils.Slugify(title)
	slug := base

	for i := 2; ; i++ {
		taken, err := h.tourRepo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// actorFromContext builds a permission actor from the authenticated user,
// resolving the agency profile for agency users
func actorFromContext(c *gin.Context, agencyRepo *database.AgencyRepository) (permissions.Actor, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		return permissions.Actor{}, false
	}

	actor := permissions.Actor{
		UserID: userCtx.UserID.String(),
		Role:   userCtx.Role,
	}

	if userCtx.Role == models.RoleAgency {
		if agency, err := agencyRepo.GetByUserID(actor.UserID); err == nil {
			actor.AgencyID = agency.ID
		}
	}

	return actor, true
}

// requireAgency loads the agency profile of the authenticated agency user
func requireAgency(c *gin.Context, agencyRepo *database.AgencyRepository, logger *logrus.Logger) (*models.Agency, bool) {
	userCtx := middleware.MustGetUserContext(c)

	agency, err := agencyRepo.GetByUserID(userCtx.UserID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "no_agency_profile",
				Message: "No agency profile is linked to this account",
			})
			return nil, false
		}
		logger.WithError(err).Error("Failed to load agency profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to load agency profile",
		})
		return nil, false
	}

	return agency, true
}
