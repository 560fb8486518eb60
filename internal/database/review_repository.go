package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// ReviewRepository handles database operations for the reviews table
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, user_id, tour_id, booking_id, agency_id, rating, title,
	comment, service_rating, value_rating, guide_rating, is_verified, is_approved,
	helpful_count, created_at, updated_at, deleted_at`

// GetByUserAndTour retrieves the user's review of a tour, including a
// soft-deleted one so a resubmission can restore it
func (r *ReviewRepository) GetByUserAndTour(userID, tourID string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND tour_id = $2`

	var review models.Review
	if err := r.db.Get(&review, query, userID, tourID); err != nil {
		return nil, err
	}

	return &review, nil
}

// GetByID retrieves a review by ID
func (r *ReviewRepository) GetByID(reviewID string) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1 AND deleted_at IS NULL`

	var review models.Review
	if err := r.db.Get(&review, query, reviewID); err != nil {
		return nil, err
	}

	return &review, nil
}

// Create inserts a new review inside the given transaction
func (r *ReviewRepository) Create(run Runner, review *models.Review) error {
	query := `
		INSERT INTO reviews (
			id, user_id, tour_id, booking_id, agency_id, rating, title, comment,
			service_rating, value_rating, guide_rating, is_verified, is_approved
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	err := run.QueryRow(
		query,
		review.ID, review.UserID, review.TourID, review.BookingID, review.AgencyID,
		review.Rating, review.Title, review.Comment, review.ServiceRating,
		review.ValueRating, review.GuideRating, review.IsVerified, review.IsApproved,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// Restore overwrites an existing review with fresh content inside the given
// transaction, clearing any soft delete so resubmitting never duplicates
func (r *ReviewRepository) Restore(run Runner, review *models.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, title = $3, comment = $4, service_rating = $5,
			value_rating = $6, guide_rating = $7, booking_id = $8,
			is_verified = $9, deleted_at = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := run.QueryRow(
		query,
		review.ID, review.Rating, review.Title, review.Comment,
		review.ServiceRating, review.ValueRating, review.GuideRating,
		review.BookingID, review.IsVerified,
	).Scan(&review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	review.DeletedAt = nil
	return nil
}

// List retrieves approved reviews matching the filter, newest first
func (r *ReviewRepository) List(filter models.ReviewFilter) ([]models.Review, int, error) {
	where := []string{"is_approved = true", "deleted_at IS NULL"}
	args := []interface{}{}

	if filter.TourID != "" {
		args = append(args, filter.TourID)
		where = append(where, fmt.Sprintf("tour_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Rating != nil {
		args = append(args, *filter.Rating)
		where = append(where, fmt.Sprintf("rating = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM reviews WHERE "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	query := fmt.Sprintf(
		"SELECT %s FROM reviews WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		reviewColumns, whereClause, len(args)-1, len(args),
	)

	reviews := []models.Review{}
	if err := r.db.Select(&reviews, query, args...); err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// ListLatestByTour retrieves the latest approved reviews of a tour
func (r *ReviewRepository) ListLatestByTour(tourID string, limit int) ([]models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE tour_id = $1 AND is_approved = true AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2
	`

	reviews := []models.Review{}
	if err := r.db.Select(&reviews, query, tourID, limit); err != nil {
		return nil, err
	}

	return reviews, nil
}

// IncrementHelpful bumps a review's helpful counter
func (r *ReviewRepository) IncrementHelpful(reviewID string) (int, error) {
	query := `
		UPDATE reviews
		SET helpful_count = helpful_count + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING helpful_count
	`

	var count int
	if err := r.db.QueryRow(query, reviewID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
