package database

import (
	"github.com/bookandgo/booking-backend/internal/models"
)

// CategoryRepository handles database operations for the categories table
type CategoryRepository struct {
	db DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListActive retrieves active categories with their published tour counts
func (r *CategoryRepository) ListActive() ([]models.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.icon, c.is_active,
			   COUNT(t.id) FILTER (
				   WHERE t.is_published = true AND t.is_active = true AND t.deleted_at IS NULL
			   ) AS tours_count,
			   c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN tours t ON t.category_id = c.id
		WHERE c.is_active = true
		GROUP BY c.id
		ORDER BY c.name
	`

	categories := []models.Category{}
	if err := r.db.Select(&categories, query); err != nil {
		return nil, err
	}

	return categories, nil
}

// GetBySlug retrieves an active category by slug
func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	query := `
		SELECT id, name, slug, icon, is_active, 0 AS tours_count, created_at, updated_at
		FROM categories
		WHERE slug = $1 AND is_active = true
	`

	var category models.Category
	if err := r.db.Get(&category, query, slug); err != nil {
		return nil, err
	}

	return &category, nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(categoryID string) (*models.Category, error) {
	query := `
		SELECT id, name, slug, icon, is_active, 0 AS tours_count, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	var category models.Category
	if err := r.db.Get(&category, query, categoryID); err != nil {
		return nil, err
	}

	return &category, nil
}
