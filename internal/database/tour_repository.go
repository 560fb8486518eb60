package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// TourRepository handles database operations for the tours table
type TourRepository struct {
	db DB
}

// NewTourRepository creates a new TourRepository
func NewTourRepository(db DB) *TourRepository {
	return &TourRepository{db: db}
}

const tourColumns = `id, agency_id, category_id, title, slug, description, itinerary,
	includes, excludes, requirements, price, discount_price, duration_days,
	duration_hours, max_people, min_people, difficulty, city, region, country,
	latitude, longitude, featured_image, rating, total_reviews, total_bookings,
	is_featured, is_active, is_published, published_at, created_at, updated_at, deleted_at`

// Create inserts a new tour
func (r *TourRepository) Create(tour *models.Tour) error {
	query := `
		INSERT INTO tours (
			id, agency_id, category_id, title, slug, description, itinerary,
			includes, excludes, requirements, price, discount_price, duration_days,
			duration_hours, max_people, min_people, difficulty, city, region,
			country, latitude, longitude, featured_image
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23
		)
		RETURNING created_at, updated_at
	`

	if tour.ID == "" {
		tour.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		tour.ID, tour.AgencyID, tour.CategoryID, tour.Title, tour.Slug,
		tour.Description, tour.Itinerary, tour.Includes, tour.Excludes,
		tour.Requirements, tour.Price, tour.DiscountPrice, tour.DurationDays,
		tour.DurationHours, tour.MaxPeople, tour.MinPeople, tour.Difficulty,
		tour.City, tour.Region, tour.Country, tour.Latitude, tour.Longitude,
		tour.FeaturedImage,
	).Scan(&tour.CreatedAt, &tour.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}

	return nil
}

// GetByID retrieves a tour by ID
func (r *TourRepository) GetByID(tourID string) (*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = $1 AND deleted_at IS NULL`

	var tour models.Tour
	if err := r.db.Get(&tour, query, tourID); err != nil {
		return nil, err
	}

	return &tour, nil
}

// GetBySlug retrieves a tour by its URL slug
func (r *TourRepository) GetBySlug(slug string) (*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE slug = $1 AND deleted_at IS NULL`

	var tour models.Tour
	if err := r.db.Get(&tour, query, slug); err != nil {
		return nil, err
	}

	return &tour, nil
}

// SlugExists checks if a slug is already taken
func (r *TourRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	err := r.db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM tours WHERE slug = $1)`, slug)
	return exists, err
}

// List retrieves published active tours matching the filter
func (r *TourRepository) List(filter models.TourFilter) ([]models.Tour, int, error) {
	where := []string{"is_published = true", "is_active = true", "deleted_at IS NULL"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR city ILIKE %s)", p, p, p))
	}
	if filter.Location != "" {
		p := arg("%" + filter.Location + "%")
		where = append(where, fmt.Sprintf("(city ILIKE %s OR region ILIKE %s OR country ILIKE %s)", p, p, p))
	}
	if filter.CategoryID != "" {
		where = append(where, "category_id = "+arg(filter.CategoryID))
	}
	if filter.MinPrice != nil {
		where = append(where, "COALESCE(discount_price, price) >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		where = append(where, "COALESCE(discount_price, price) <= "+arg(*filter.MaxPrice))
	}
	if filter.MinRating != nil {
		where = append(where, "rating >= "+arg(*filter.MinRating))
	}
	if filter.Difficulty != "" {
		where = append(where, "difficulty = "+arg(filter.Difficulty))
	}

	switch filter.Duration {
	case "short": // up to half a day
		where = append(where, "duration_days = 1 AND COALESCE(duration_hours, 24) <= 5")
	case "medium":
		where = append(where, "duration_days = 1 AND COALESCE(duration_hours, 24) BETWEEN 6 AND 8")
	case "day":
		where = append(where, "duration_days = 1")
	case "multi":
		where = append(where, "duration_days > 1")
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM tours WHERE "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	switch filter.SortBy {
	case "price_asc":
		orderBy = "COALESCE(discount_price, price) ASC"
	case "price_desc":
		orderBy = "COALESCE(discount_price, price) DESC"
	case "rating":
		orderBy = "rating DESC, total_reviews DESC"
	case "popular":
		orderBy = "total_bookings DESC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM tours WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		tourColumns, whereClause, orderBy,
		arg(filter.PerPage), arg((filter.Page-1)*filter.PerPage),
	)

	tours := []models.Tour{}
	if err := r.db.Select(&tours, query, args...); err != nil {
		return nil, 0, err
	}

	return tours, total, nil
}

// ListFeatured retrieves up to limit featured published tours
func (r *TourRepository) ListFeatured(limit int) ([]models.Tour, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tours
		WHERE is_featured = true AND is_published = true AND is_active = true AND deleted_at IS NULL
		ORDER BY rating DESC
		LIMIT $1
	`

	tours := []models.Tour{}
	if err := r.db.Select(&tours, query, limit); err != nil {
		return nil, err
	}

	return tours, nil
}

// ListRelated retrieves published tours sharing the category or city, excluding the tour itself
func (r *TourRepository) ListRelated(tourID string, limit int) ([]models.Tour, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tours
		WHERE id != $1
		  AND is_published = true AND is_active = true AND deleted_at IS NULL
		  AND (category_id = (SELECT category_id FROM tours WHERE id = $1)
		       OR city = (SELECT city FROM tours WHERE id = $1))
		ORDER BY rating DESC
		LIMIT $2
	`

	tours := []models.Tour{}
	if err := r.db.Select(&tours, query, tourID, limit); err != nil {
		return nil, err
	}

	return tours, nil
}

// ListByCategory retrieves published tours in a category
func (r *TourRepository) ListByCategory(categoryID string, limit int) ([]models.Tour, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tours
		WHERE category_id = $1
		  AND is_published = true AND is_active = true AND deleted_at IS NULL
		ORDER BY rating DESC
		LIMIT $2
	`

	tours := []models.Tour{}
	if err := r.db.Select(&tours, query, categoryID, limit); err != nil {
		return nil, err
	}

	return tours, nil
}

// ListByAgency retrieves an agency's tours, newest first
func (r *TourRepository) ListByAgency(agencyID string, publishedOnly bool) ([]models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE agency_id = $1 AND deleted_at IS NULL`
	if publishedOnly {
		query += ` AND is_published = true AND is_active = true`
	}
	query += ` ORDER BY created_at DESC`

	tours := []models.Tour{}
	if err := r.db.Select(&tours, query, agencyID); err != nil {
		return nil, err
	}

	return tours, nil
}

// ListRecentByAgency retrieves the agency's latest tours
func (r *TourRepository) ListRecentByAgency(agencyID string, limit int) ([]models.Tour, error) {
	query := `
		SELECT ` + tourColumns + `
		FROM tours
		WHERE agency_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`

	tours := []models.Tour{}
	if err := r.db.Select(&tours, query, agencyID, limit); err != nil {
		return nil, err
	}

	return tours, nil
}

// Update applies a partial tour update and returns the fresh row
func (r *TourRepository) Update(tourID string, req *models.UpdateTourRequest) (*models.Tour, error) {
	query := `
		UPDATE tours
		SET category_id = COALESCE($2, category_id),
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			itinerary = COALESCE($5, itinerary),
			includes = COALESCE($6, includes),
			excludes = COALESCE($7, excludes),
			requirements = COALESCE($8, requirements),
			price = COALESCE($9, price),
			discount_price = COALESCE($10, discount_price),
			duration_days = COALESCE($11, duration_days),
			duration_hours = COALESCE($12, duration_hours),
			max_people = COALESCE($13, max_people),
			min_people = COALESCE($14, min_people),
			difficulty = COALESCE($15, difficulty),
			city = COALESCE($16, city),
			region = COALESCE($17, region),
			country = COALESCE($18, country),
			latitude = COALESCE($19, latitude),
			longitude = COALESCE($20, longitude),
			featured_image = COALESCE($21, featured_image),
			is_active = COALESCE($22, is_active),
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + tourColumns

	var tour models.Tour
	err := r.db.Get(&tour, query, tourID,
		req.CategoryID, req.Title, req.Description, req.Itinerary, req.Includes,
		req.Excludes, req.Requirements, req.Price, req.DiscountPrice,
		req.DurationDays, req.DurationHours, req.MaxPeople, req.MinPeople,
		req.Difficulty, req.City, req.Region, req.Country, req.Latitude,
		req.Longitude, req.FeaturedImage, req.IsActive)
	if err != nil {
		return nil, err
	}

	return &tour, nil
}

// Publish marks a tour as published
func (r *TourRepository) Publish(tourID string) error {
	query := `
		UPDATE tours
		SET is_published = true,
			published_at = COALESCE(published_at, NOW()),
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, tourID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("tour not found")
	}

	return nil
}

// SoftDelete marks a tour as deleted
func (r *TourRepository) SoftDelete(tourID string) error {
	query := `
		UPDATE tours
		SET deleted_at = NOW(), is_active = false, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, tourID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("tour not found")
	}

	return nil
}

// SetFeaturedImage replaces the tour's featured image URL
func (r *TourRepository) SetFeaturedImage(tourID, url string) error {
	_, err := r.db.Exec(
		`UPDATE tours SET featured_image = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`,
		tourID, url,
	)
	return err
}

// IncrementBookings bumps the tour's booking counter inside the given transaction
func (r *TourRepository) IncrementBookings(run Runner, tourID string) error {
	_, err := run.Exec(`UPDATE tours SET total_bookings = total_bookings + 1, updated_at = NOW() WHERE id = $1`, tourID)
	return err
}

// RecalculateRating refreshes the tour's aggregate rating from approved reviews
func (r *TourRepository) RecalculateRating(run Runner, tourID string) error {
	query := `
		UPDATE tours
		SET rating = COALESCE((
				SELECT AVG(rating) FROM reviews
				WHERE tour_id = $1 AND is_approved = true AND deleted_at IS NULL
			), 0),
			total_reviews = (
				SELECT COUNT(*) FROM reviews
				WHERE tour_id = $1 AND is_approved = true AND deleted_at IS NULL
			),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := run.Exec(query, tourID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("tour not found")
	}

	return nil
}
