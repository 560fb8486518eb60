package database

import (
	"strings"

	"github.com/bookandgo/booking-backend/internal/models"
)

// tour columns qualified for joins against the favorites table
var favoriteTourColumns = func() string {
	cols := strings.Split(tourColumns, ",")
	for i, col := range cols {
		cols[i] = "t." + strings.TrimSpace(col)
	}
	return strings.Join(cols, ", ")
}()

// FavoriteRepository handles database operations for the favorites table
type FavoriteRepository struct {
	db DB
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Toggle adds the tour to the user's favorites, or removes it when already
// present. Returns true when the tour is a favorite after the call.
func (r *FavoriteRepository) Toggle(userID, tourID string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM favorites WHERE user_id = $1 AND tour_id = $2`, userID, tourID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rows > 0 {
		return false, nil
	}

	_, err = r.db.Exec(`INSERT INTO favorites (user_id, tour_id) VALUES ($1, $2)`, userID, tourID)
	if err != nil {
		return false, err
	}

	return true, nil
}

// Exists checks if the tour is among the user's favorites
func (r *FavoriteRepository) Exists(userID, tourID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND tour_id = $2)`

	var exists bool
	if err := r.db.Get(&exists, query, userID, tourID); err != nil {
		return false, err
	}

	return exists, nil
}

// ListTours retrieves the user's favorite tours, most recently saved first
func (r *FavoriteRepository) ListTours(userID string, page, perPage int) ([]models.Tour, int, error) {
	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM favorites WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + favoriteTourColumns + `
		FROM favorites f
		JOIN tours t ON t.id = f.tour_id
		WHERE f.user_id = $1 AND t.deleted_at IS NULL
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`

	tours := []models.Tour{}
	if err := r.db.Select(&tours, query, userID, perPage, (page-1)*perPage); err != nil {
		return nil, 0, err
	}

	return tours, total, nil
}
