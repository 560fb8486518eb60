package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bookandgo/booking-backend/internal/models"
)

// AgencyRepository handles database operations for the agencies table
type AgencyRepository struct {
	db DB
}

// NewAgencyRepository creates a new AgencyRepository
func NewAgencyRepository(db DB) *AgencyRepository {
	return &AgencyRepository{db: db}
}

const agencyColumns = `id, user_id, business_name, ruc_tax_id, description, logo,
	phone, website, address, city, country, rating, total_reviews,
	is_verified, verified_at, created_at, updated_at`

// Create inserts a new agency profile inside the given transaction
func (r *AgencyRepository) Create(run Runner, agency *models.Agency) error {
	query := `
		INSERT INTO agencies (id, user_id, business_name, ruc_tax_id, address, city, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if agency.ID == "" {
		agency.ID = uuid.New().String()
	}

	err := run.QueryRow(
		query,
		agency.ID, agency.UserID, agency.BusinessName, agency.RucTaxID,
		agency.Address, agency.City, agency.Phone,
	).Scan(&agency.CreatedAt, &agency.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create agency: %w", err)
	}

	return nil
}

// GetByID retrieves an agency by ID
func (r *AgencyRepository) GetByID(agencyID string) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE id = $1`

	var agency models.Agency
	if err := r.db.Get(&agency, query, agencyID); err != nil {
		return nil, err
	}

	return &agency, nil
}

// GetByUserID retrieves the agency owned by a user
func (r *AgencyRepository) GetByUserID(userID string) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE user_id = $1`

	var agency models.Agency
	if err := r.db.Get(&agency, query, userID); err != nil {
		return nil, err
	}

	return &agency, nil
}

// ListVerified retrieves verified agencies, newest first
func (r *AgencyRepository) ListVerified(page, perPage int) ([]models.Agency, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM agencies WHERE is_verified = true`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + agencyColumns + `
		FROM agencies
		WHERE is_verified = true
		ORDER BY rating DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`

	agencies := []models.Agency{}
	if err := r.db.Select(&agencies, query, perPage, (page-1)*perPage); err != nil {
		return nil, 0, err
	}

	return agencies, total, nil
}

// UpdateProfile applies a partial agency profile update and returns the fresh row
func (r *AgencyRepository) UpdateProfile(agencyID string, req *models.UpdateAgencyProfileRequest) (*models.Agency, error) {
	query := `
		UPDATE agencies
		SET business_name = COALESCE($2, business_name),
			description = COALESCE($3, description),
			logo = COALESCE($4, logo),
			phone = COALESCE($5, phone),
			website = COALESCE($6, website),
			address = COALESCE($7, address),
			city = COALESCE($8, city),
			country = COALESCE($9, country),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + agencyColumns

	var agency models.Agency
	err := r.db.Get(&agency, query, agencyID,
		req.BusinessName, req.Description, req.Logo, req.Phone,
		req.Website, req.Address, req.City, req.Country)
	if err != nil {
		return nil, err
	}

	return &agency, nil
}

// RecalculateRating refreshes the agency's aggregate rating from approved reviews
func (r *AgencyRepository) RecalculateRating(run Runner, agencyID string) error {
	query := `
		UPDATE agencies
		SET rating = COALESCE((
				SELECT AVG(rating) FROM reviews
				WHERE agency_id = $1 AND is_approved = true AND deleted_at IS NULL
			), 0),
			total_reviews = (
				SELECT COUNT(*) FROM reviews
				WHERE agency_id = $1 AND is_approved = true AND deleted_at IS NULL
			),
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := run.Exec(query, agencyID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("agency not found")
	}

	return nil
}

// Statistics returns the agency's operational aggregates
func (r *AgencyRepository) Statistics(agencyID string) (*models.AgencyStatistics, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM tours
				WHERE agency_id = $1 AND deleted_at IS NULL) AS total_tours,
			(SELECT COUNT(*) FROM bookings
				WHERE agency_id = $1
				  AND status IN ('pending', 'confirmed', 'in_progress')) AS active_bookings,
			(SELECT COALESCE(SUM(total_price), 0) FROM bookings
				WHERE agency_id = $1
				  AND status IN ('confirmed', 'in_progress', 'completed')) AS total_revenue,
			(SELECT COUNT(*) FROM reviews
				WHERE agency_id = $1 AND is_approved = true AND deleted_at IS NULL) AS total_reviews
	`

	var stats models.AgencyStatistics
	if err := r.db.Get(&stats, query, agencyID); err != nil {
		return nil, err
	}

	return &stats, nil
}
